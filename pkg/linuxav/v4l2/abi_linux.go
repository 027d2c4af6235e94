//go:build linux

package v4l2

import "unsafe"

// Struct sizes from videodev2.h. None of these structs contain pointers or
// longs, so the layout is the same on 32 and 64 bit targets.
var (
	_ [104]byte = [unsafe.Sizeof(capability{})]byte{}
	_ [64]byte  = [unsafe.Sizeof(fmtdesc{})]byte{}
	_ [24]byte  = [unsafe.Sizeof(frmsizeStepwise{})]byte{}
	_ [44]byte  = [unsafe.Sizeof(frmsizeenum{})]byte{}
)

const (
	vidiocQuerycap       = 0x80685600
	vidiocEnumFmt        = 0xc0405602
	vidiocEnumFramesizes = 0xc02c564a
)

const (
	capVideoCapture = 0x00000001
	capStreaming    = 0x04000000
	capDeviceCaps   = 0x80000000

	bufTypeVideoCapture = 1
	fmtFlagEmulated     = 0x0002

	frmsizeTypeDiscrete   = 1
	frmsizeTypeContinuous = 2
	frmsizeTypeStepwise   = 3
)

type capability struct {
	driver       [16]byte
	card         [32]byte
	busInfo      [32]byte
	version      uint32
	capabilities uint32
	deviceCaps   uint32
	reserved     [3]uint32
}

type fmtdesc struct {
	index       uint32
	typ         uint32
	flags       uint32
	description [32]byte
	pixelformat uint32
	mbusCode    uint32
	reserved    [3]uint32
}

type frmsizeStepwise struct {
	minWidth   uint32
	maxWidth   uint32
	stepWidth  uint32
	minHeight  uint32
	maxHeight  uint32
	stepHeight uint32
}

// frmsizeenum holds a union of discrete (8 bytes) and stepwise (24 bytes).
type frmsizeenum struct {
	index       uint32
	pixelFormat uint32
	typ         uint32
	union       [24]byte
	reserved    [2]uint32
}

func (f *frmsizeenum) discrete() Size {
	d := (*[2]uint32)(unsafe.Pointer(&f.union[0]))
	return Size{Width: d[0], Height: d[1]}
}

func (f *frmsizeenum) stepwise() Stepwise {
	s := (*frmsizeStepwise)(unsafe.Pointer(&f.union[0]))
	return Stepwise{
		MinWidth: s.minWidth, MaxWidth: s.maxWidth, StepWidth: s.stepWidth,
		MinHeight: s.minHeight, MaxHeight: s.maxHeight, StepHeight: s.stepHeight,
	}
}

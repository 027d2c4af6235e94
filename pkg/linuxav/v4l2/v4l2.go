// Package v4l2 enumerates Video4Linux2 capture devices and the frame sizes
// they support, using plain ioctls without cgo.
//
//	devices, _ := v4l2.FindDevices()
//	for _, dev := range devices {
//	    formats, _ := v4l2.Formats(dev.Path)
//	    sizes, _ := v4l2.FrameSizes(dev.Path, formats[0].PixelFormat)
//	}
//
// Streaming is not handled here.
package v4l2

import (
	"bytes"
	"fmt"
)

// Pixel formats the preview pipeline understands.
const (
	PixFmtMJPEG uint32 = 0x47504A4D // 'MJPG'
	PixFmtYUYV  uint32 = 0x56595559 // 'YUYV'
	PixFmtH264  uint32 = 0x34363248 // 'H264'
	PixFmtNV12  uint32 = 0x3231564E // 'NV12'
)

// DeviceInfo describes a video capture node.
type DeviceInfo struct {
	Path     string // /dev/videoN
	Card     string // Human readable name reported by the driver
	Driver   string
	BusInfo  string
	StableID string // /dev/v4l/by-id name, or synthesized from bus info
	Index    int    // Node index within the physical device
	Caps     uint32
}

// USB reports whether the device sits on a USB bus.
func (d DeviceInfo) USB() bool {
	return d.Driver == "uvcvideo" || bytes.HasPrefix([]byte(d.BusInfo), []byte("usb-"))
}

// Format is a pixel format offered by a device.
type Format struct {
	PixelFormat uint32
	Description string
	Emulated    bool
}

// FourCC returns the format code as text, e.g. "MJPG".
func (f Format) FourCC() string {
	return FourCC(f.PixelFormat)
}

// Size is a frame size in pixels.
type Size struct {
	Width  uint32
	Height uint32
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// FourCC converts a little-endian pixel format code to text.
func FourCC(format uint32) string {
	return string([]byte{
		byte(format),
		byte(format >> 8),
		byte(format >> 16),
		byte(format >> 24),
	})
}

// commonSizes are offered for devices that report a stepwise or continuous
// range instead of discrete sizes.
var commonSizes = []Size{
	{320, 240},
	{640, 480},
	{800, 600},
	{1024, 768},
	{1280, 720},
	{1280, 960},
	{1280, 1024},
	{1920, 1080},
	{1920, 1200},
	{2560, 1440},
	{3840, 2160},
	{4096, 2160},
}

// Stepwise is a range of frame sizes.
type Stepwise struct {
	MinWidth, MaxWidth, StepWidth    uint32
	MinHeight, MaxHeight, StepHeight uint32
}

// Expand returns the common sizes that fall inside the range and respect
// its step.
func (r Stepwise) Expand() []Size {
	var sizes []Size
	for _, s := range commonSizes {
		if !inStep(s.Width, r.MinWidth, r.MaxWidth, r.StepWidth) ||
			!inStep(s.Height, r.MinHeight, r.MaxHeight, r.StepHeight) {
			continue
		}
		sizes = append(sizes, s)
	}
	return sizes
}

func inStep(v, lo, hi, step uint32) bool {
	if v < lo || v > hi {
		return false
	}
	return step <= 1 || (v-lo)%step == 0
}

// cstr converts a NUL-terminated byte array to a string.
func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

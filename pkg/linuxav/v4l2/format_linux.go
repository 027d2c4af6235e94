//go:build linux

package v4l2

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Formats lists the pixel formats of a capture device in driver order.
func Formats(path string) ([]Format, error) {
	var formats []Format
	err := withDevice(path, func(fd int) error {
		for i := uint32(0); ; i++ {
			desc := fmtdesc{index: i, typ: bufTypeVideoCapture}
			if err := ioctl(fd, vidiocEnumFmt, unsafe.Pointer(&desc)); err != nil {
				if errors.Is(err, unix.EINVAL) {
					return nil
				}
				return fmt.Errorf("enumerate format %d: %w", i, err)
			}
			formats = append(formats, Format{
				PixelFormat: desc.pixelformat,
				Description: cstr(desc.description[:]),
				Emulated:    desc.flags&fmtFlagEmulated != 0,
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("formats of %s: %w", path, err)
	}
	return formats, nil
}

// FrameSizes lists the frame sizes a device offers for pixelFormat, in the
// order the driver reports them. Stepwise ranges are expanded to common
// sizes.
func FrameSizes(path string, pixelFormat uint32) ([]Size, error) {
	var sizes []Size
	err := withDevice(path, func(fd int) error {
		for i := uint32(0); ; i++ {
			fs := frmsizeenum{index: i, pixelFormat: pixelFormat}
			if err := ioctl(fd, vidiocEnumFramesizes, unsafe.Pointer(&fs)); err != nil {
				if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTTY) {
					return nil
				}
				return fmt.Errorf("enumerate frame size %d: %w", i, err)
			}

			switch fs.typ {
			case frmsizeTypeDiscrete:
				sizes = append(sizes, fs.discrete())
			case frmsizeTypeContinuous, frmsizeTypeStepwise:
				// Only one range entry is ever reported.
				sizes = append(sizes, fs.stepwise().Expand()...)
				return nil
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("frame sizes of %s: %w", path, err)
	}
	return sizes, nil
}

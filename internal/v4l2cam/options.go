// Package v4l2cam implements the camera service on Video4Linux2 capture
// devices. Enumeration uses plain ioctls; streaming uses go4vl.
package v4l2cam

import (
	"log/slog"

	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/pkg/linuxav/v4l2"
)

// Override replaces what the driver reports about a camera.
type Override struct {
	LensFacing        camera.LensFacing
	SensorOrientation camera.Angle
	HasOrientation    bool
}

// ProfileFunc looks up an override by device path or card name.
type ProfileFunc func(path, card string) (Override, bool)

// Options configures a Service.
type Options struct {
	// Profiles supplies per-camera overrides (optional).
	Profiles ProfileFunc

	// OnFrame is called for every frame delivered to the targets (optional).
	OnFrame func(id camera.Identity, size int)

	// BufferCount is the number of mmap buffers. Zero uses 4.
	BufferCount uint32

	// Logger for service operations. If nil, uses slog.Default().
	Logger *slog.Logger
}

// preferredFormats are tried in order; compressed frames keep the preview
// websocket light.
var preferredFormats = []uint32{v4l2.PixFmtMJPEG, v4l2.PixFmtYUYV}

// choosePixelFormat picks the preview pixel format from what a device
// offers. Emulated formats are only used when nothing native matches.
func choosePixelFormat(formats []v4l2.Format) (uint32, bool) {
	for _, emulated := range []bool{false, true} {
		for _, want := range preferredFormats {
			for _, f := range formats {
				if f.PixelFormat == want && f.Emulated == emulated {
					return want, true
				}
			}
		}
	}
	if len(formats) > 0 {
		return formats[0].PixelFormat, true
	}
	return 0, false
}

// characteristics builds the camera view of a device. USB cameras default
// to external; on-board sensors default to back.
func characteristics(info v4l2.DeviceInfo, sizes []v4l2.Size, profiles ProfileFunc) camera.Characteristics {
	ch := camera.Characteristics{
		Name:        info.Card,
		LensFacing:  camera.LensFacingBack,
		OutputSizes: make([]camera.Resolution, 0, len(sizes)),
	}
	if info.USB() {
		ch.LensFacing = camera.LensFacingExternal
	}

	for _, s := range sizes {
		ch.OutputSizes = append(ch.OutputSizes, camera.Resolution{Width: int(s.Width), Height: int(s.Height)})
	}

	if profiles != nil {
		if o, ok := profiles(info.Path, info.Card); ok {
			if o.LensFacing != "" {
				ch.LensFacing = o.LensFacing
			}
			if o.HasOrientation {
				ch.SensorOrientation = camera.NormalizeAngle(int(o.SensorOrientation))
			}
		}
	}
	return ch
}

package v4l2cam

import (
	"context"
	"errors"
	"testing"

	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/pkg/linuxav/v4l2"
)

func TestChoosePixelFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats []v4l2.Format
		want    uint32
		ok      bool
	}{
		{
			name:    "mjpeg preferred over yuyv",
			formats: []v4l2.Format{{PixelFormat: v4l2.PixFmtYUYV}, {PixelFormat: v4l2.PixFmtMJPEG}},
			want:    v4l2.PixFmtMJPEG,
			ok:      true,
		},
		{
			name:    "native yuyv beats emulated mjpeg",
			formats: []v4l2.Format{{PixelFormat: v4l2.PixFmtMJPEG, Emulated: true}, {PixelFormat: v4l2.PixFmtYUYV}},
			want:    v4l2.PixFmtYUYV,
			ok:      true,
		},
		{
			name:    "falls back to first format",
			formats: []v4l2.Format{{PixelFormat: v4l2.PixFmtNV12}, {PixelFormat: v4l2.PixFmtH264}},
			want:    v4l2.PixFmtNV12,
			ok:      true,
		},
		{
			name: "no formats",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := choosePixelFormat(tt.formats)
			if ok != tt.ok || got != tt.want {
				t.Errorf("choosePixelFormat() = %s, %v; want %s, %v", v4l2.FourCC(got), ok, v4l2.FourCC(tt.want), tt.ok)
			}
		})
	}
}

func TestCharacteristicsDefaults(t *testing.T) {
	sizes := []v4l2.Size{{Width: 1920, Height: 1080}, {Width: 640, Height: 480}}

	usb := characteristics(v4l2.DeviceInfo{Path: "/dev/video0", Card: "HD Webcam", Driver: "uvcvideo"}, sizes, nil)
	if usb.LensFacing != camera.LensFacingExternal {
		t.Errorf("usb camera facing = %s, want external", usb.LensFacing)
	}
	if usb.Name != "HD Webcam" {
		t.Errorf("name = %q", usb.Name)
	}
	if len(usb.OutputSizes) != 2 || usb.OutputSizes[0] != (camera.Resolution{Width: 1920, Height: 1080}) {
		t.Errorf("output sizes not kept in driver order: %v", usb.OutputSizes)
	}

	csi := characteristics(v4l2.DeviceInfo{Path: "/dev/video1", Driver: "unicam", BusInfo: "platform:csi"}, sizes, nil)
	if csi.LensFacing != camera.LensFacingBack {
		t.Errorf("board camera facing = %s, want back", csi.LensFacing)
	}
	if csi.SensorOrientation != 0 {
		t.Errorf("default orientation = %d, want 0", csi.SensorOrientation)
	}
}

func TestCharacteristicsProfileOverride(t *testing.T) {
	profiles := func(path, card string) (Override, bool) {
		if path == "/dev/video2" || card == "imx219" {
			return Override{LensFacing: camera.LensFacingFront, SensorOrientation: -90, HasOrientation: true}, true
		}
		return Override{}, false
	}

	ch := characteristics(v4l2.DeviceInfo{Path: "/dev/video4", Card: "imx219"}, nil, profiles)
	if ch.LensFacing != camera.LensFacingFront {
		t.Errorf("facing = %s, want front", ch.LensFacing)
	}
	if ch.SensorOrientation != 270 {
		t.Errorf("orientation = %d, want 270", ch.SensorOrientation)
	}

	other := characteristics(v4l2.DeviceInfo{Path: "/dev/video5", Card: "other"}, nil, profiles)
	if other.LensFacing != camera.LensFacingBack {
		t.Errorf("unmatched camera facing = %s, want back", other.LensFacing)
	}
}

type recordingSurface struct {
	frames [][]byte
	err    error
}

func (s *recordingSurface) SetDefaultBufferSize(camera.Resolution) {}
func (s *recordingSurface) BufferSize() camera.Resolution          { return camera.Resolution{} }
func (s *recordingSurface) WriteFrame(frame []byte) error {
	s.frames = append(s.frames, frame)
	return s.err
}

func TestForwardFramesReportsEndOfStream(t *testing.T) {
	frames := make(chan []byte, 2)
	frames <- []byte{0xff, 0xd8}
	frames <- []byte{0xff, 0xd8, 0xff}
	close(frames)

	good := &recordingSurface{}
	broken := &recordingSurface{err: errors.New("client gone")}
	var sizes []int
	var writeErrs int

	err := forwardFrames(context.Background(), frames, []camera.Surface{good, broken},
		func(n int) { sizes = append(sizes, n) },
		func(error) { writeErrs++ })

	if !errors.Is(err, errStreamEnded) {
		t.Fatalf("forwardFrames() error = %v, want errStreamEnded", err)
	}
	if len(good.frames) != 2 || len(broken.frames) != 2 {
		t.Errorf("frames delivered = %d and %d, want 2 each", len(good.frames), len(broken.frames))
	}
	if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 3 {
		t.Errorf("frame sizes = %v, want [2 3]", sizes)
	}
	if writeErrs != 2 {
		t.Errorf("write errors = %d, want 2", writeErrs)
	}
}

func TestForwardFramesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frames := make(chan []byte)
	if err := forwardFrames(ctx, frames, nil, nil, nil); err != nil {
		t.Errorf("forwardFrames() error = %v after cancel, want nil", err)
	}

	// A channel closed by stopping the device is not a stream failure.
	close(frames)
	if err := forwardFrames(ctx, frames, nil, nil, nil); err != nil {
		t.Errorf("forwardFrames() error = %v for closed channel after cancel, want nil", err)
	}
}

//go:build linux

package v4l2cam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vladimirvivien/go4vl/device"
	vl "github.com/vladimirvivien/go4vl/v4l2"
	"golang.org/x/sys/unix"

	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/pkg/linuxav/hotplug"
	"github.com/smazurov/campreview/pkg/linuxav/v4l2"
)

const defaultBufferCount = 4

// Service is a camera.Service backed by V4L2 device nodes. Identities are
// device paths such as /dev/video0.
type Service struct {
	opts   Options
	logger *slog.Logger

	mu   sync.Mutex
	open map[camera.Identity]*cameraDevice
}

// NewService creates a V4L2 camera service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BufferCount == 0 {
		opts.BufferCount = defaultBufferCount
	}
	return &Service{
		opts:   opts,
		logger: logger,
		open:   make(map[camera.Identity]*cameraDevice),
	}
}

// ListCameraIdentities returns the capture nodes in node order.
func (s *Service) ListCameraIdentities() ([]camera.Identity, error) {
	devices, err := v4l2.FindDevices()
	if err != nil {
		return nil, err
	}
	ids := make([]camera.Identity, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, camera.Identity(d.Path))
	}
	return ids, nil
}

// Characteristics reports the card name, facing, orientation and frame
// sizes of the preferred pixel format.
func (s *Service) Characteristics(id camera.Identity) (camera.Characteristics, error) {
	info, err := v4l2.Query(string(id))
	if err != nil {
		return camera.Characteristics{}, camera.NewError(camera.ErrCodeDeviceAccess, "failed to query camera", err)
	}

	pixfmt, err := s.pixelFormat(id)
	if err != nil {
		return camera.Characteristics{}, err
	}

	sizes, err := v4l2.FrameSizes(string(id), pixfmt)
	if err != nil {
		return camera.Characteristics{}, camera.NewError(camera.ErrCodeDeviceAccess, "failed to list frame sizes", err)
	}

	return characteristics(info, sizes, s.opts.Profiles), nil
}

func (s *Service) pixelFormat(id camera.Identity) (uint32, error) {
	formats, err := v4l2.Formats(string(id))
	if err != nil {
		return 0, camera.NewError(camera.ErrCodeDeviceAccess, "failed to list pixel formats", err)
	}
	pixfmt, ok := choosePixelFormat(formats)
	if !ok {
		return 0, camera.NewError(camera.ErrCodeConfigurationFailed, fmt.Sprintf("%s offers no pixel formats", id), nil)
	}
	return pixfmt, nil
}

// OpenCamera opens the device node and reports EventOpened, or EventError
// when the node cannot be opened.
func (s *Service) OpenCamera(id camera.Identity, handler camera.EventHandler, exec camera.Executor) error {
	if handler == nil || exec == nil {
		return errors.New("handler and executor are required")
	}

	pixfmt, err := s.pixelFormat(id)
	if err != nil {
		exec.Post(func() { handler(camera.Event{Kind: camera.EventError, Code: errnoOf(err), Err: err}) })
		return nil
	}

	dev, err := device.Open(string(id),
		device.WithIOType(vl.IOTypeMMAP),
		device.WithBufferSize(s.opts.BufferCount),
	)
	if err != nil {
		s.logger.Warn("Failed to open camera", "camera", id, "error", err)
		exec.Post(func() { handler(camera.Event{Kind: camera.EventError, Code: errnoOf(err), Err: err}) })
		return nil
	}

	cd := &cameraDevice{
		svc:     s,
		id:      id,
		pixfmt:  pixfmt,
		dev:     dev,
		exec:    exec,
		handler: handler,
		logger:  s.logger.With("camera", string(id)),
	}

	s.mu.Lock()
	s.open[id] = cd
	s.mu.Unlock()

	s.logger.Info("Camera opened", "camera", id, "format", v4l2.FourCC(pixfmt))
	if !exec.Post(func() { handler(camera.Event{Kind: camera.EventOpened, Device: cd}) }) {
		_ = cd.Close()
	}
	return nil
}

// WatchHotplug reports EventDisconnected for open cameras whose node is
// removed. It blocks until ctx is cancelled.
func (s *Service) WatchHotplug(ctx context.Context) error {
	mon, err := hotplug.Open(hotplug.SubsystemVideo4Linux)
	if err != nil {
		return fmt.Errorf("failed to open hotplug monitor: %w", err)
	}
	defer mon.Close()

	s.logger.Info("Hotplug monitoring started")
	err = mon.Run(ctx, func(ev hotplug.Event) {
		if ev.Action != hotplug.ActionRemove {
			return
		}
		s.mu.Lock()
		cd := s.open[camera.Identity(ev.DevicePath())]
		s.mu.Unlock()
		if cd != nil {
			s.logger.Warn("Open camera removed", "camera", cd.id)
			cd.disconnected()
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Service) release(cd *cameraDevice) {
	s.mu.Lock()
	if s.open[cd.id] == cd {
		delete(s.open, cd.id)
	}
	s.mu.Unlock()
}

func errnoOf(err error) int {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return 0
}

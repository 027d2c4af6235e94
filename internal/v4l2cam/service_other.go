//go:build !linux

package v4l2cam

import (
	"context"
	"errors"

	"github.com/smazurov/campreview/internal/camera"
)

var errUnsupported = errors.New("v4l2 capture requires linux")

// Service reports no cameras on platforms without V4L2.
type Service struct{}

// NewService creates a service that has no cameras.
func NewService(Options) *Service {
	return &Service{}
}

func (s *Service) ListCameraIdentities() ([]camera.Identity, error) {
	return nil, nil
}

func (s *Service) Characteristics(camera.Identity) (camera.Characteristics, error) {
	return camera.Characteristics{}, camera.NewError(camera.ErrCodeDeviceAccess, "unsupported platform", errUnsupported)
}

func (s *Service) OpenCamera(camera.Identity, camera.EventHandler, camera.Executor) error {
	return errUnsupported
}

// WatchHotplug blocks until ctx is cancelled.
func (s *Service) WatchHotplug(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

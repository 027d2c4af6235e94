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
)

var errClosed = errors.New("camera closed")

// cameraDevice is an open V4L2 node.
type cameraDevice struct {
	svc     *Service
	id      camera.Identity
	pixfmt  uint32
	dev     *device.Device
	exec    camera.Executor
	handler camera.EventHandler
	logger  *slog.Logger

	mu      sync.Mutex
	closed  bool
	capture *captureSession
}

func (d *cameraDevice) ID() camera.Identity { return d.id }

func (d *cameraDevice) CreateCaptureRequest(template camera.Template) (*camera.RequestBuilder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	return camera.NewRequestBuilder(template), nil
}

// CreateCaptureSession applies the buffer size of the first target as the
// device format and reports the outcome on the executor.
func (d *cameraDevice) CreateCaptureSession(targets []camera.Surface, handler camera.EventHandler) error {
	if len(targets) == 0 {
		return errors.New("at least one target is required")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return errClosed
	}
	if d.capture != nil {
		d.capture.stop()
		d.capture = nil
	}
	d.mu.Unlock()

	size := targets[0].BufferSize()
	err := d.dev.SetPixFormat(vl.PixFormat{
		PixelFormat: vl.FourCCType(d.pixfmt),
		Width:       uint32(size.Width),
		Height:      uint32(size.Height),
		Field:       vl.FieldNone,
	})
	if err != nil {
		err = fmt.Errorf("set format %s: %w", size, err)
		d.logger.Warn("Capture session configuration failed", "error", err)
		d.exec.Post(func() { handler(camera.Event{Kind: camera.EventConfigureFailed, Device: d, Err: err}) })
		return nil
	}

	cs := &captureSession{device: d, size: size}
	d.mu.Lock()
	d.capture = cs
	d.mu.Unlock()

	d.logger.Debug("Capture session configured", "size", size.String())
	if !d.exec.Post(func() { handler(camera.Event{Kind: camera.EventConfigured, Device: d, Session: cs}) }) {
		cs.stop()
	}
	return nil
}

// Close stops streaming and releases the node. Calling it twice is a no-op.
func (d *cameraDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	cs := d.capture
	d.capture = nil
	d.mu.Unlock()

	if cs != nil {
		cs.stop()
	}
	d.svc.release(d)

	if err := d.dev.Close(); err != nil {
		return fmt.Errorf("close %s: %w", d.id, err)
	}
	d.logger.Info("Camera closed")
	return nil
}

func (d *cameraDevice) disconnected() {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return
	}
	d.exec.Post(func() { d.handler(camera.Event{Kind: camera.EventDisconnected, Device: d}) })
}

// failed reports a device error for an open node whose stream broke.
func (d *cameraDevice) failed(err error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return
	}
	d.exec.Post(func() { d.handler(camera.Event{Kind: camera.EventError, Device: d, Code: int(unix.EIO), Err: err}) })
}

// captureSession pumps frames from the device to the request targets.
type captureSession struct {
	device *cameraDevice
	size   camera.Resolution

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// SetRepeatingRequest starts streaming into req's targets.
func (cs *captureSession) SetRepeatingRequest(req camera.CaptureRequest) error {
	if len(req.Targets) == 0 {
		return errors.New("request has no targets")
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.stopped {
		return errClosed
	}
	if cs.cancel != nil {
		return errors.New("repeating request already active")
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := cs.device.dev.Start(ctx); err != nil {
		cancel()
		return fmt.Errorf("start streaming: %w", err)
	}
	cs.cancel = cancel
	cs.done = make(chan struct{})

	go cs.pump(ctx, req.Targets)
	return nil
}

// Close stops the repeating request.
func (cs *captureSession) Close() error {
	cs.stop()
	return nil
}

func (cs *captureSession) stop() {
	cs.mu.Lock()
	if cs.stopped {
		cs.mu.Unlock()
		return
	}
	cs.stopped = true
	cancel, done := cs.cancel, cs.done
	cs.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if err := cs.device.dev.Stop(); err != nil {
		cs.device.logger.Debug("Stop streaming failed", "error", err)
	}
	<-done
}

func (cs *captureSession) pump(ctx context.Context, targets []camera.Surface) {
	defer close(cs.done)
	d := cs.device
	d.logger.Info("Streaming started", "size", cs.size.String())

	onFrame := func(size int) {
		if d.svc.opts.OnFrame != nil {
			d.svc.opts.OnFrame(d.id, size)
		}
	}
	onWriteErr := func(err error) { d.logger.Debug("Frame write failed", "error", err) }

	if err := forwardFrames(ctx, d.dev.GetOutput(), targets, onFrame, onWriteErr); err != nil {
		d.logger.Warn("Streaming failed", "error", err)
		d.failed(err)
		return
	}
	d.logger.Info("Streaming stopped")
}

package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smazurov/campreview/internal/camera"
	"github.com/smazurov/campreview/internal/looper"
)

const looperName = "camera-background"

// Controller drives one camera from surface-ready through open, configure
// and repeating preview capture, and releases it on pause.
//
// Lifecycle calls (OnResume, OnPause, OnSurfaceReady, OnSurfaceSizeChanged,
// OnPermissionResult) are serialized. Camera callbacks run on a looper
// created per resume; callbacks from an earlier setup cycle are ignored.
type Controller struct {
	opts   Options
	logger *slog.Logger

	lifecycle sync.Mutex

	mu                sync.Mutex
	state             State
	updatedAt         time.Time
	resumed           bool
	surface           camera.Surface
	surfaceSize       camera.Resolution
	loop              *looper.Looper
	generation        uint64
	sessionID         string
	cameraID          camera.Identity
	previewSize       camera.Resolution
	rotation          camera.Angle
	device            camera.Device
	capture           camera.CaptureSession
	request           *camera.RequestBuilder
	permissionPending bool
	lastErr           error
}

// NewController creates a controller in the idle state.
func NewController(opts *Options) *Controller {
	if opts == nil || opts.Service == nil || opts.Permissions == nil {
		panic("session Options with Service and Permissions is required")
	}

	o := *opts
	if o.Display == nil {
		o.Display = fixedDisplay(camera.Rotation0)
	}
	if o.Notifier == nil {
		o.Notifier = discardNotifier{}
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		opts:      o,
		logger:    logger,
		state:     StateIdle,
		updatedAt: time.Now(),
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current session details.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:        c.state,
		SessionID:    c.sessionID,
		CameraID:     c.cameraID,
		PreviewSize:  c.previewSize,
		Rotation:     c.rotation,
		Resumed:      c.resumed,
		SurfaceReady: c.surface != nil,
		Surface:      c.surfaceSize,
		UpdatedAt:    c.updatedAt,
	}
	if c.lastErr != nil {
		snap.LastError = c.lastErr.Error()
	}
	return snap
}

// OnResume starts the background looper and, if a surface is already
// available, sets up and connects the camera.
func (c *Controller) OnResume() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.resumed {
		c.mu.Unlock()
		c.logger.Warn("Resume ignored, session already resumed")
		return
	}
	c.resumed = true
	c.loop = looper.New(looperName, c.logger)
	c.loop.Start()
	ready := c.surface != nil
	c.mu.Unlock()

	c.logger.Info("Session resumed", "surface_ready", ready)
	if ready {
		c.setupAndConnect()
	}
}

// OnPause closes the camera on the looper, then stops the looper and waits
// for it to exit. No camera callback runs after OnPause returns.
func (c *Controller) OnPause() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if !c.resumed {
		c.mu.Unlock()
		c.logger.Debug("Pause ignored, session not resumed")
		return
	}
	c.resumed = false
	c.generation++
	loop := c.loop
	c.loop = nil
	c.mu.Unlock()

	if !loop.Post(c.closeCamera) {
		c.closeCamera()
	}
	loop.QuitSafely()
	loop.Join()

	c.transition(StateClosed)
	c.logger.Info("Session paused")
}

// OnSurfaceReady records the display surface and its size. When the
// session is resumed the camera is set up and connected immediately.
func (c *Controller) OnSurfaceReady(surface camera.Surface, width, height int) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	c.surface = surface
	c.surfaceSize = camera.Resolution{Width: width, Height: height}
	resumed := c.resumed
	c.mu.Unlock()

	c.logger.Info("Surface ready", "width", width, "height", height, "resumed", resumed)
	if resumed {
		c.setupAndConnect()
	}
}

// OnSurfaceSizeChanged is accepted for completeness; the preview size is
// fixed for the lifetime of a setup cycle.
func (c *Controller) OnSurfaceSizeChanged(width, height int) {
	c.logger.Debug("Surface size changed", "width", width, "height", height)
}

// OnPermissionResult delivers the answer to a permission request.
func (c *Controller) OnPermissionResult(granted bool) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	c.permissionPending = false
	ready := c.resumed && c.surface != nil
	c.mu.Unlock()

	if !granted {
		c.logger.Warn("Camera permission denied")
		c.opts.Notifier.ShowNotice(NoticePermissionDenied)
		return
	}

	c.logger.Info("Camera permission granted", "reconnect", ready)
	if ready {
		c.setupAndConnect()
	}
}

func (c *Controller) setupAndConnect() {
	if err := c.setup(); err != nil {
		c.fail(err)
		return
	}
	c.connect()
}

// setup selects the first camera that is not front facing and fixes the
// preview size and rotation for a new cycle.
func (c *Controller) setup() error {
	c.beginCycle()
	c.transition(StateConfiguring)

	ids, err := c.opts.Service.ListCameraIdentities()
	if err != nil {
		c.transition(StateError)
		return camera.NewError(camera.ErrCodeDeviceAccess, "failed to list cameras", err)
	}

	var (
		selected camera.Identity
		chars    camera.Characteristics
		found    bool
	)
	for _, id := range ids {
		ch, err := c.opts.Service.Characteristics(id)
		if err != nil {
			c.logger.Warn("Skipping camera without characteristics", "camera", id, "error", err)
			continue
		}
		if ch.LensFacing == camera.LensFacingFront {
			continue
		}
		selected, chars, found = id, ch, true
		break
	}
	if !found {
		c.transition(StateIdle)
		return camera.NewError(camera.ErrCodeNoCamera, "no back or external camera available", nil)
	}

	c.mu.Lock()
	target := c.surfaceSize
	c.mu.Unlock()

	rotation := camera.ResolveRotation(chars.SensorOrientation, c.opts.Display.Rotation())
	if camera.SwapRequired(rotation) {
		target = target.Swapped()
	}

	size, err := camera.ChooseOptimalSize(chars.OutputSizes, target.Width, target.Height)
	if err != nil {
		c.transition(StateIdle)
		return fmt.Errorf("camera %s: %w", selected, err)
	}

	c.mu.Lock()
	c.sessionID = uuid.NewString()
	c.cameraID = selected
	c.previewSize = size
	c.rotation = rotation
	sessionID := c.sessionID
	c.mu.Unlock()

	c.logger.Info("Camera selected",
		"session_id", sessionID,
		"camera", selected,
		"name", chars.Name,
		"rotation", int(rotation),
		"target", target.String(),
		"preview_size", size.String())

	if c.opts.OnPreviewSelected != nil {
		c.opts.OnPreviewSelected(selected, size, rotation)
	}
	return nil
}

// beginCycle invalidates callbacks of the previous cycle and hands its
// camera to the looper for closing, so no later step of the new cycle can
// leave the old device open.
func (c *Controller) beginCycle() {
	c.mu.Lock()
	c.generation++
	device, capture := c.device, c.capture
	c.device, c.capture, c.request = nil, nil, nil
	loop := c.loop
	c.mu.Unlock()

	if device == nil && capture == nil {
		return
	}
	if device != nil {
		c.logger.Info("Releasing camera of the previous cycle", "camera", device.ID())
	}
	release := func() { closeHandles(c.logger, device, capture) }
	if loop == nil || !loop.Post(release) {
		release()
	}
}

// connect checks permission and posts the open onto the looper.
func (c *Controller) connect() {
	c.mu.Lock()
	id := c.cameraID
	gen := c.generation
	loop := c.loop
	c.mu.Unlock()

	if !c.opts.Permissions.Granted(id) {
		c.requestPermission(id)
		return
	}

	c.transition(StateOpening)
	if !loop.Post(func() { c.openCamera(gen, id, loop) }) {
		c.logger.Warn("Looper rejected open request", "camera", id)
	}
}

func (c *Controller) requestPermission(id camera.Identity) {
	c.mu.Lock()
	request := !c.permissionPending
	c.permissionPending = true
	c.mu.Unlock()

	if request {
		if c.opts.Permissions.ShouldShowRationale(id) {
			c.opts.Notifier.ShowNotice(NoticePermissionRationale)
		}
		c.logger.Info("Requesting camera permission", "camera", id)
		c.opts.Permissions.Request(id)
	}

	c.transition(StateIdle)
	c.fail(camera.NewError(camera.ErrCodePermissionDenied,
		fmt.Sprintf("access to camera %s not granted", id), nil))
}

// openCamera runs on the looper.
func (c *Controller) openCamera(gen uint64, id camera.Identity, loop *looper.Looper) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	old, oldCapture := c.device, c.capture
	c.device, c.capture, c.request = nil, nil, nil
	c.mu.Unlock()

	if old != nil {
		c.logger.Debug("Closing previous camera before reopening", "camera", old.ID())
		closeHandles(c.logger, old, oldCapture)
	}

	handler := func(ev camera.Event) { c.handleEvent(gen, ev) }
	if err := c.opts.Service.OpenCamera(id, handler, loop); err != nil {
		c.mu.Lock()
		current := gen == c.generation
		var from State
		if current {
			from = c.setStateLocked(StateError)
		}
		c.mu.Unlock()
		if current {
			c.notifyState(from, StateError)
			c.fail(camera.NewError(camera.ErrCodeDeviceAccess, fmt.Sprintf("failed to open camera %s", id), err))
		}
	}
}

// handleEvent runs on the looper for every camera callback.
func (c *Controller) handleEvent(gen uint64, ev camera.Event) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.discardStale(ev)
		return
	}
	c.mu.Unlock()

	switch ev.Kind {
	case camera.EventOpened:
		c.onOpened(gen, ev.Device)
	case camera.EventConfigured:
		c.onConfigured(gen, ev.Session)
	case camera.EventConfigureFailed:
		c.onConfigureFailed(ev.Err)
	case camera.EventDisconnected:
		c.onDeviceLost(gen, camera.NewError(camera.ErrCodeDeviceAccess, "camera disconnected", ev.Err))
	case camera.EventError:
		c.onDeviceLost(gen, camera.NewError(camera.ErrCodeDeviceAccess,
			fmt.Sprintf("camera error %d", ev.Code), ev.Err))
	default:
		c.logger.Warn("Unknown camera event", "kind", ev.Kind.String())
	}
}

func (c *Controller) discardStale(ev camera.Event) {
	c.logger.Debug("Ignoring stale camera event", "kind", ev.Kind.String())
	switch ev.Kind {
	case camera.EventOpened:
		if ev.Device != nil {
			closeHandles(c.logger, ev.Device, nil)
		}
	case camera.EventConfigured:
		if ev.Session != nil {
			if err := ev.Session.Close(); err != nil {
				c.logger.Warn("Failed to close stale capture session", "error", err)
			}
		}
	}
}

func (c *Controller) onOpened(gen uint64, device camera.Device) {
	if device == nil {
		c.onDeviceLost(gen, camera.NewError(camera.ErrCodeDeviceAccess, "camera opened without a handle", nil))
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		closeHandles(c.logger, device, nil)
		return
	}
	c.device = device
	from := c.setStateLocked(StateOpened)
	surface := c.surface
	size := c.previewSize
	c.mu.Unlock()
	c.notifyState(from, StateOpened)

	c.logger.Info("Camera opened", "camera", device.ID())
	if err := c.startPreview(gen, device, surface, size); err != nil {
		c.fail(err)
	}
}

// startPreview builds the preview request and creates a capture session
// targeting the surface.
func (c *Controller) startPreview(gen uint64, device camera.Device, surface camera.Surface, size camera.Resolution) error {
	if surface == nil {
		return camera.NewError(camera.ErrCodeConfigurationFailed, "no surface to preview into", nil)
	}
	surface.SetDefaultBufferSize(size)

	builder, err := device.CreateCaptureRequest(camera.TemplatePreview)
	if err != nil {
		return camera.NewError(camera.ErrCodeDeviceAccess, "failed to create preview request", err)
	}
	builder.AddTarget(surface)

	c.mu.Lock()
	c.request = builder
	c.mu.Unlock()

	handler := func(ev camera.Event) { c.handleEvent(gen, ev) }
	if err := device.CreateCaptureSession([]camera.Surface{surface}, handler); err != nil {
		return camera.NewError(camera.ErrCodeDeviceAccess, "failed to create capture session", err)
	}
	return nil
}

func (c *Controller) onConfigured(gen uint64, capture camera.CaptureSession) {
	c.mu.Lock()
	if gen != c.generation || c.device == nil || c.request == nil || capture == nil {
		c.mu.Unlock()
		c.discardStale(camera.Event{Kind: camera.EventConfigured, Session: capture})
		return
	}
	c.capture = capture
	req := c.request.Build()
	c.mu.Unlock()

	if err := capture.SetRepeatingRequest(req); err != nil {
		c.fail(camera.NewError(camera.ErrCodeDeviceAccess, "failed to start repeating preview", err))
		return
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	from := c.setStateLocked(StateStreaming)
	c.mu.Unlock()
	c.notifyState(from, StateStreaming)
	c.logger.Info("Preview streaming")
}

func (c *Controller) onConfigureFailed(cause error) {
	c.opts.Notifier.ShowNotice(NoticeConfigureFailed)
	c.fail(camera.NewError(camera.ErrCodeConfigurationFailed, "capture session configuration failed", cause))
}

// onDeviceLost releases the handle after a disconnect or device error.
func (c *Controller) onDeviceLost(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	device, capture := c.device, c.capture
	c.device, c.capture, c.request = nil, nil, nil
	from := c.setStateLocked(StateError)
	c.mu.Unlock()

	closeHandles(c.logger, device, capture)
	c.notifyState(from, StateError)
	c.fail(err)
}

// closeCamera runs on the looper during pause.
func (c *Controller) closeCamera() {
	c.mu.Lock()
	device, capture := c.device, c.capture
	c.device, c.capture, c.request = nil, nil, nil
	c.mu.Unlock()

	if device != nil {
		c.logger.Info("Closing camera", "camera", device.ID())
	}
	closeHandles(c.logger, device, capture)
}

func closeHandles(logger *slog.Logger, device camera.Device, capture camera.CaptureSession) {
	if capture != nil {
		if err := capture.Close(); err != nil {
			logger.Warn("Failed to close capture session", "error", err)
		}
	}
	if device != nil {
		if err := device.Close(); err != nil {
			logger.Warn("Failed to close camera", "camera", device.ID(), "error", err)
		}
	}
}

func (c *Controller) transition(to State) {
	c.mu.Lock()
	from := c.setStateLocked(to)
	c.mu.Unlock()
	c.notifyState(from, to)
}

// setStateLocked must be called with c.mu held.
func (c *Controller) setStateLocked(to State) State {
	from := c.state
	c.state = to
	c.updatedAt = time.Now()
	return from
}

func (c *Controller) notifyState(from, to State) {
	if from == to {
		return
	}
	c.logger.Debug("Session state changed", "from", from, "to", to)
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(from, to)
	}
}

// fail records and reports an absorbed failure.
func (c *Controller) fail(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()

	var camErr *camera.Error
	if errors.As(err, &camErr) && camErr.HasCode(camera.ErrCodePermissionDenied) {
		c.logger.Warn("Camera session failure", "code", camErr.Code, "error", err)
	} else {
		c.logger.Error("Camera session failure", "code", camera.CodeOf(err), "error", err)
	}

	if c.opts.OnError != nil {
		c.opts.OnError(err)
	}
}

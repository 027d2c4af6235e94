package camera

import "fmt"

// Identity is an opaque identifier for a physical camera unit.
type Identity string

// LensFacing describes which way a camera points.
type LensFacing string

// Lens facing values. External also covers cameras that do not report a
// direction.
const (
	LensFacingFront    LensFacing = "front"
	LensFacingBack     LensFacing = "back"
	LensFacingExternal LensFacing = "external"
)

// ParseLensFacing accepts front, back or external (empty means external).
func ParseLensFacing(s string) (LensFacing, error) {
	switch LensFacing(s) {
	case LensFacingFront, LensFacingBack, LensFacingExternal:
		return LensFacing(s), nil
	case "":
		return LensFacingExternal, nil
	default:
		return "", fmt.Errorf("invalid lens facing %q: must be front, back or external", s)
	}
}

// Characteristics are the static properties of a camera.
type Characteristics struct {
	Name              string       `json:"name"`
	LensFacing        LensFacing   `json:"lens_facing"`
	SensorOrientation Angle        `json:"sensor_orientation"`
	OutputSizes       []Resolution `json:"output_sizes"`
}

// Surface is the destination that preview frames are written into. It is
// owned by the UI side and only referenced by a capture session.
type Surface interface {
	// SetDefaultBufferSize fixes the size of the frames the surface expects.
	SetDefaultBufferSize(size Resolution)
	// BufferSize returns the size last set, or the zero value.
	BufferSize() Resolution
	// WriteFrame delivers one encoded frame.
	WriteFrame(frame []byte) error
}

// Template selects the device defaults a capture request starts from.
type Template int

// Capture request templates.
const (
	TemplatePreview Template = iota + 1
)

// CaptureRequest is an immutable request to capture into a set of targets.
type CaptureRequest struct {
	Template Template
	Targets  []Surface
}

// RequestBuilder accumulates targets for a CaptureRequest.
type RequestBuilder struct {
	template Template
	targets  []Surface
}

// NewRequestBuilder starts a request from the given template.
func NewRequestBuilder(template Template) *RequestBuilder {
	return &RequestBuilder{template: template}
}

// AddTarget binds a surface to the request.
func (b *RequestBuilder) AddTarget(surface Surface) {
	b.targets = append(b.targets, surface)
}

// Build returns a snapshot of the request.
func (b *RequestBuilder) Build() CaptureRequest {
	targets := make([]Surface, len(b.targets))
	copy(targets, b.targets)
	return CaptureRequest{Template: b.template, Targets: targets}
}

// EventKind enumerates the asynchronous callbacks of a camera and its
// capture session.
type EventKind int

// Event kinds.
const (
	EventOpened EventKind = iota + 1
	EventDisconnected
	EventError
	EventConfigured
	EventConfigureFailed
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	case EventConfigured:
		return "configured"
	case EventConfigureFailed:
		return "configure_failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Event is a single camera callback. Device is set for device events,
// Session for EventConfigured, Code for EventError.
type Event struct {
	Kind    EventKind
	Device  Device
	Session CaptureSession
	Code    int
	Err     error
}

// EventHandler receives camera callbacks. Implementations of Service invoke
// it only on the Executor passed to OpenCamera.
type EventHandler func(Event)

// Executor runs tasks in order on a single background goroutine. Post
// reports false when the executor no longer accepts work.
type Executor interface {
	Post(task func()) bool
}

// Service is the platform camera service.
type Service interface {
	ListCameraIdentities() ([]Identity, error)
	Characteristics(id Identity) (Characteristics, error)
	// OpenCamera starts opening the camera. The outcome arrives as
	// EventOpened, EventDisconnected or EventError on exec.
	OpenCamera(id Identity, handler EventHandler, exec Executor) error
}

// Device is an open camera handle.
type Device interface {
	ID() Identity
	CreateCaptureRequest(template Template) (*RequestBuilder, error)
	// CreateCaptureSession configures the output targets. The outcome
	// arrives as EventConfigured or EventConfigureFailed on the executor
	// the device was opened with.
	CreateCaptureSession(targets []Surface, handler EventHandler) error
	// Close releases the device and cancels any repeating request.
	Close() error
}

// CaptureSession is a configured set of outputs on an open device.
type CaptureSession interface {
	// SetRepeatingRequest keeps capturing req until the session or device
	// is closed.
	SetRepeatingRequest(req CaptureRequest) error
	Close() error
}

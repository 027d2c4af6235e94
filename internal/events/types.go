package events

// Event type constants for kelindar/event.
const (
	TypeSessionStateChanged uint32 = iota + 1
	TypePreviewSelected
	TypeNotice
	TypeCameraError
	TypeLogEntry
	TypePreviewMetrics
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// SessionStateChangedEvent is published on every camera session transition.
// Used for LED control and other reactive subsystems.
type SessionStateChangedEvent struct {
	SessionID string `json:"session_id,omitempty" doc:"Setup cycle identifier"`
	CameraID  string `json:"camera_id,omitempty" example:"/dev/video0" doc:"Selected camera"`
	From      string `json:"from" example:"opened" doc:"Previous state"`
	To        string `json:"to" example:"streaming" doc:"New state"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionStateChangedEvent.
func (e SessionStateChangedEvent) Type() uint32 { return TypeSessionStateChanged }

// GetState implements the SessionStateEvent interface for LED manager.
func (e SessionStateChangedEvent) GetState() string {
	return e.To
}

// PreviewSelectedEvent is published once per setup cycle with the chosen
// camera and preview size.
type PreviewSelectedEvent struct {
	CameraID  string `json:"camera_id" example:"/dev/video0" doc:"Selected camera"`
	Width     int    `json:"width" example:"1280" doc:"Preview width"`
	Height    int    `json:"height" example:"720" doc:"Preview height"`
	Rotation  int    `json:"rotation" example:"90" doc:"Sensor to display rotation in degrees"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PreviewSelectedEvent.
func (e PreviewSelectedEvent) Type() uint32 { return TypePreviewSelected }

// NoticeEvent is a short-lived message for the user.
type NoticeEvent struct {
	Text      string `json:"text" example:"Unable to setup camera preview" doc:"Notice text"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for NoticeEvent.
func (e NoticeEvent) Type() uint32 { return TypeNotice }

// CameraErrorEvent reports a failure absorbed by the session controller.
type CameraErrorEvent struct {
	Code      string `json:"code" example:"DEVICE_ACCESS" doc:"Error code"`
	Message   string `json:"message" doc:"Error description"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for CameraErrorEvent.
func (e CameraErrorEvent) Type() uint32 { return TypeCameraError }

// LogEntryEvent represents a log entry for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" example:"2025-01-09T10:30:00.123Z" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"session" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }

// PreviewMetricsEvent carries periodic frame statistics for a camera.
type PreviewMetricsEvent struct {
	CameraID string `json:"camera_id" example:"/dev/video0" doc:"Camera"`
	FPS      string `json:"fps" example:"29.97" doc:"Frames per second over the last interval"`
	Frames   uint64 `json:"frames" doc:"Frames delivered since start"`
	Bytes    uint64 `json:"bytes" doc:"Frame bytes delivered since start"`
	Width    int    `json:"width" example:"1280" doc:"Preview width"`
	Height   int    `json:"height" example:"720" doc:"Preview height"`
}

// Type returns the event type identifier for PreviewMetricsEvent.
func (e PreviewMetricsEvent) Type() uint32 { return TypePreviewMetrics }

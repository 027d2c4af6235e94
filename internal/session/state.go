package session

import (
	"time"

	"github.com/smazurov/campreview/internal/camera"
)

// State is the lifecycle state of a camera session.
type State string

// Session states.
const (
	StateIdle        State = "idle"        // Waiting for resume and a surface
	StateConfiguring State = "configuring" // Picking a camera and preview size
	StateOpening     State = "opening"     // OpenCamera posted, waiting for the device
	StateOpened      State = "opened"      // Device open, capture session being configured
	StateStreaming   State = "streaming"   // Repeating preview request active
	StateError       State = "error"       // Device disconnected or failed
	StateClosed      State = "closed"      // Paused, device released
)

// Active reports whether a device handle may be held in this state.
func (s State) Active() bool {
	return s == StateOpening || s == StateOpened || s == StateStreaming
}

// Snapshot is a point-in-time view of a controller.
type Snapshot struct {
	State        State             `json:"state" example:"streaming" doc:"Current session state"`
	SessionID    string            `json:"session_id,omitempty" doc:"Identifier of the current setup cycle"`
	CameraID     camera.Identity   `json:"camera_id,omitempty" example:"/dev/video0" doc:"Selected camera"`
	PreviewSize  camera.Resolution `json:"preview_size" doc:"Preview size chosen for this cycle"`
	Rotation     camera.Angle      `json:"rotation" example:"90" doc:"Total rotation between sensor and display"`
	Resumed      bool              `json:"resumed" doc:"Whether the session is in the foreground"`
	SurfaceReady bool              `json:"surface_ready" doc:"Whether a display surface is attached"`
	Surface      camera.Resolution `json:"surface_size" doc:"Size reported by the display surface"`
	LastError    string            `json:"last_error,omitempty" doc:"Most recent failure"`
	UpdatedAt    time.Time         `json:"updated_at" doc:"Time of the last state change"`
}

package session

import (
	"log/slog"

	"github.com/smazurov/campreview/internal/camera"
)

// Transient notice texts shown to the user.
const (
	NoticePermissionRationale = "Camera App Requires Access To Camera"
	NoticePermissionDenied    = "Application won't run without camera services"
	NoticeConfigureFailed     = "Unable to setup camera preview"
)

// Permissions is the platform permission broker for camera access.
type Permissions interface {
	Granted(id camera.Identity) bool
	// ShouldShowRationale reports whether the user should be told why
	// access is needed before it is requested again.
	ShouldShowRationale(id camera.Identity) bool
	// Request asks for access. The answer comes back through
	// Controller.OnPermissionResult.
	Request(id camera.Identity)
}

// Display reports the current rotation of the display surface.
type Display interface {
	Rotation() camera.DisplayRotation
}

// Notifier shows short-lived messages to the user.
type Notifier interface {
	ShowNotice(text string)
}

// StateChangeCallback is called after every state transition.
type StateChangeCallback func(oldState, newState State)

// PreviewSelectedCallback is called once per setup cycle when the camera
// and preview size have been chosen.
type PreviewSelectedCallback func(id camera.Identity, size camera.Resolution, rotation camera.Angle)

// Options configures a Controller.
type Options struct {
	// Service is the platform camera service (required).
	Service camera.Service

	// Permissions gates device access (required).
	Permissions Permissions

	// Display provides the current display rotation. Nil means Rotation0.
	Display Display

	// Notifier receives user-facing notices. Nil discards them.
	Notifier Notifier

	// OnStateChange is called when the session state transitions (optional).
	OnStateChange StateChangeCallback

	// OnPreviewSelected is called when a preview size is chosen (optional).
	OnPreviewSelected PreviewSelectedCallback

	// OnError is called for every failure the controller absorbs (optional).
	OnError func(err error)

	// Logger for controller operations. If nil, uses slog.Default().
	Logger *slog.Logger
}

type fixedDisplay camera.DisplayRotation

func (d fixedDisplay) Rotation() camera.DisplayRotation { return camera.DisplayRotation(d) }

type discardNotifier struct{}

func (discardNotifier) ShowNotice(string) {}

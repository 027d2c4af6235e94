package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/campreview/internal/api/models"
)

// registerSessionRoutes maps the lifecycle calls of the platform glue onto
// the session controller.
func (s *Server) registerSessionRoutes() {
	ctrl := s.options.Controller

	huma.Register(s.api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/session",
		Summary:     "Get Session",
		Description: "Current camera session state, selected camera and preview size",
		Tags:        []string{"session"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.SessionResponse, error) {
		return &models.SessionResponse{Body: ctrl.Snapshot()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "resume-session",
		Method:        http.MethodPost,
		Path:          "/api/session/resume",
		Summary:       "Resume",
		Description:   "The preview came to the foreground. Starts the camera once a surface is attached.",
		Tags:          []string{"session"},
		Security:      withAuth(),
		Errors:        []int{401},
		DefaultStatus: http.StatusOK,
	}, func(_ context.Context, _ *struct{}) (*models.SessionResponse, error) {
		ctrl.OnResume()
		return &models.SessionResponse{Body: ctrl.Snapshot()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "pause-session",
		Method:        http.MethodPost,
		Path:          "/api/session/pause",
		Summary:       "Pause",
		Description:   "The preview left the foreground. Releases the camera and stops the background context.",
		Tags:          []string{"session"},
		Security:      withAuth(),
		Errors:        []int{401},
		DefaultStatus: http.StatusOK,
	}, func(_ context.Context, _ *struct{}) (*models.SessionResponse, error) {
		ctrl.OnPause()
		return &models.SessionResponse{Body: ctrl.Snapshot()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "attach-surface",
		Method:        http.MethodPost,
		Path:          "/api/session/surface",
		Summary:       "Surface Ready",
		Description:   "Attach the websocket preview surface with the given size. Frames are served on /ws/preview.",
		Tags:          []string{"session"},
		Security:      withAuth(),
		Errors:        []int{400, 401, 422},
		DefaultStatus: http.StatusOK,
	}, func(_ context.Context, input *models.SurfaceRequest) (*models.SessionResponse, error) {
		ctrl.OnSurfaceReady(s.options.Surface, input.Body.Width, input.Body.Height)
		return &models.SessionResponse{Body: ctrl.Snapshot()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "surface-size-changed",
		Method:        http.MethodPost,
		Path:          "/api/session/surface/size",
		Summary:       "Surface Size Changed",
		Description:   "Report a new surface size. The preview size of the running cycle is not changed.",
		Tags:          []string{"session"},
		Security:      withAuth(),
		Errors:        []int{400, 401, 422},
		DefaultStatus: http.StatusOK,
	}, func(_ context.Context, input *models.SurfaceRequest) (*models.SessionResponse, error) {
		ctrl.OnSurfaceSizeChanged(input.Body.Width, input.Body.Height)
		return &models.SessionResponse{Body: ctrl.Snapshot()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-permission",
		Method:      http.MethodGet,
		Path:        "/api/permission",
		Summary:     "Get Permission Request",
		Description: "Whether a camera permission request is waiting for an answer",
		Tags:        []string{"session"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.PermissionResponse, error) {
		resp := &models.PermissionResponse{}
		if s.options.Permissions != nil {
			id, pending := s.options.Permissions.Pending()
			resp.Body.Pending = pending
			resp.Body.CameraID = string(id)
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "answer-permission",
		Method:        http.MethodPost,
		Path:          "/api/permission",
		Summary:       "Permission Result",
		Description:   "Deliver the answer to a camera permission request",
		Tags:          []string{"session"},
		Security:      withAuth(),
		Errors:        []int{400, 401},
		DefaultStatus: http.StatusOK,
	}, func(_ context.Context, input *models.PermissionRequest) (*models.SessionResponse, error) {
		// The broker forwards a pending answer to the controller itself.
		switch {
		case s.options.Permissions == nil:
			ctrl.OnPermissionResult(input.Body.Granted)
		case !s.options.Permissions.Answer(input.Body.Granted):
			s.logger.Debug("Ignoring permission answer without a pending request", "granted", input.Body.Granted)
		}
		return &models.SessionResponse{Body: ctrl.Snapshot()}, nil
	})
}

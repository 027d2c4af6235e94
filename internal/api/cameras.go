package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/campreview/internal/api/models"
	"github.com/smazurov/campreview/internal/camera"
)

func (s *Server) registerCameraRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-cameras",
		Method:      http.MethodGet,
		Path:        "/api/cameras",
		Summary:     "List Cameras",
		Description: "Cameras with their characteristics. With width and height, also the preview size the session would choose for that surface.",
		Tags:        []string{"cameras"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(_ context.Context, input *models.CamerasRequest) (*models.CamerasResponse, error) {
		ids, err := s.options.Cameras.ListCameraIdentities()
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to list cameras", err)
		}

		display := camera.Rotation0
		if s.options.Display != nil {
			display = s.options.Display.Rotation()
		}

		resp := &models.CamerasResponse{}
		resp.Body.Cameras = make([]models.CameraData, 0, len(ids))
		for _, id := range ids {
			resp.Body.Cameras = append(resp.Body.Cameras,
				describeCamera(s.options.Cameras, id, display, input.Width, input.Height))
		}
		resp.Body.Count = len(resp.Body.Cameras)
		return resp, nil
	})
}

// describeCamera reports a camera the way the session would see it.
func describeCamera(svc camera.Service, id camera.Identity, display camera.DisplayRotation, width, height int) models.CameraData {
	data := models.CameraData{ID: id}

	ch, err := svc.Characteristics(id)
	if err != nil {
		data.Error = err.Error()
		return data
	}
	data.Name = ch.Name
	data.LensFacing = ch.LensFacing
	data.SensorOrientation = ch.SensorOrientation
	data.OutputSizes = ch.OutputSizes
	data.Selectable = ch.LensFacing != camera.LensFacingFront
	data.Rotation = camera.ResolveRotation(ch.SensorOrientation, display)

	if width <= 0 || height <= 0 {
		return data
	}
	_, size, err := camera.PreviewFor(ch, display, width, height)
	if err != nil {
		data.Error = err.Error()
		return data
	}
	data.PreviewSize = &size
	return data
}

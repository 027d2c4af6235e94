package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/campreview/internal/api/models"
)

func (s *Server) registerDisplayRoutes() {
	if s.options.Display == nil {
		return
	}
	disp := s.options.Display

	huma.Register(s.api, huma.Operation{
		OperationID: "get-display",
		Method:      http.MethodGet,
		Path:        "/api/display",
		Summary:     "Get Display Rotation",
		Tags:        []string{"display"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.DisplayResponse, error) {
		resp := &models.DisplayResponse{}
		resp.Body.Rotation = int(disp.Rotation().Degrees())
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-display",
		Method:      http.MethodPut,
		Path:        "/api/display",
		Summary:     "Set Display Rotation",
		Description: "Report the display rotation. It is read at the start of the next setup cycle.",
		Tags:        []string{"display"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 422},
	}, func(_ context.Context, input *models.DisplayRequest) (*models.DisplayResponse, error) {
		changed, err := disp.SetDegrees(input.Body.Rotation)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid display rotation", err)
		}
		if changed {
			s.logger.Info("Display rotation changed", "rotation", input.Body.Rotation)
		}
		resp := &models.DisplayResponse{}
		resp.Body.Rotation = int(disp.Rotation().Degrees())
		return resp, nil
	})
}

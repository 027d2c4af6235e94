package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/campreview/internal/api/models"
)

// registerLEDRoutes registers the status LED endpoint.
func (s *Server) registerLEDRoutes() {
	if s.options.LEDs == nil {
		s.logger.Debug("LED manager not available, skipping LED routes")
		return
	}
	leds := s.options.LEDs

	huma.Register(s.api, huma.Operation{
		OperationID: "get-leds",
		Method:      http.MethodGet,
		Path:        "/api/leds",
		Summary:     "Get LED Status",
		Description: "Logical LEDs on this board and the pattern of the status LED",
		Tags:        []string{"leds"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*models.LEDResponse, error) {
		resp := &models.LEDResponse{}
		resp.Body.Available = leds.GetController().Available()
		resp.Body.Pattern = string(leds.Pattern())
		return resp, nil
	})
}

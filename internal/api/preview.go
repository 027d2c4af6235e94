package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/campreview/internal/api/models"
)

func (s *Server) registerPreviewRoutes() {
	if s.options.Surface == nil {
		return
	}
	preview := s.options.Surface

	huma.Register(s.api, huma.Operation{
		OperationID: "preview-snapshot",
		Method:      http.MethodGet,
		Path:        "/api/preview/snapshot",
		Summary:     "Preview Snapshot",
		Description: "The most recent preview frame as delivered by the camera (JPEG for MJPEG devices)",
		Tags:        []string{"preview"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, _ *struct{}) (*models.SnapshotResponse, error) {
		frame, at, ok := preview.LastFrame()
		if !ok {
			return nil, huma.Error404NotFound("No preview frame captured yet")
		}
		return &models.SnapshotResponse{
			ContentType:  http.DetectContentType(frame),
			LastModified: at.UTC().Format(http.TimeFormat),
			Age:          time.Since(at).Round(time.Millisecond).String(),
			Body:         frame,
		}, nil
	})
}

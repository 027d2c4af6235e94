package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/campreview/internal/api/models"
	"github.com/smazurov/campreview/internal/notice"
)

func (s *Server) registerNoticeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-notices",
		Method:      http.MethodGet,
		Path:        "/api/notices",
		Summary:     "Recent Notices",
		Description: "Short-lived user messages shown by the session, oldest first",
		Tags:        []string{"notices"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, input *models.NoticesRequest) (*models.NoticesResponse, error) {
		resp := &models.NoticesResponse{}
		resp.Body.Notices = []notice.Notice{}
		if s.options.Notices != nil {
			resp.Body.Notices = s.options.Notices.Recent(input.Limit)
		}
		return resp, nil
	})
}

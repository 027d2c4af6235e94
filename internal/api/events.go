package api

import (
	"context"
	"maps"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/campreview/internal/events"
	"github.com/smazurov/campreview/internal/metrics/exporters"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	eventTypes := map[string]any{
		"session-state":    events.SessionStateChangedEvent{},
		"preview-selected": events.PreviewSelectedEvent{},
		"notice":           events.NoticeEvent{},
		"camera-error":     events.CameraErrorEvent{},
	}
	maps.Copy(eventTypes, exporters.GetEventTypes())

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of session state, preview selection, notices, camera errors and preview metrics",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, eventTypes, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.SessionStateChangedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PreviewSelectedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.NoticeEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CameraErrorEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PreviewMetricsEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Current state first so clients need not poll /api/session.
		if s.options.Controller != nil {
			snap := s.options.Controller.Snapshot()
			if err := send.Data(events.SessionStateChangedEvent{
				SessionID: snap.SessionID,
				CameraID:  string(snap.CameraID),
				From:      string(snap.State),
				To:        string(snap.State),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}); err != nil {
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}

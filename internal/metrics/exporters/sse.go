package exporters

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/campreview/internal/events"
	"github.com/smazurov/campreview/internal/metrics"
)

// EventPublisher interface for publishing events.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter periodically publishes preview statistics on the event bus.
type SSEExporter struct {
	eventBus EventPublisher
	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// last frame counts, owned by the run goroutine
	last map[string]uint64
}

// NewSSEExporter creates a new SSE exporter.
func NewSSEExporter(eventBus EventPublisher) *SSEExporter {
	return &SSEExporter{
		eventBus: eventBus,
		interval: 1 * time.Second,
	}
}

// Start begins the export loop.
func (s *SSEExporter) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.last = make(map[string]uint64)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the exporter and waits for the goroutine to finish.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishMetrics()
		}
	}
}

func (s *SSEExporter) publishMetrics() {
	for cameraID, st := range metrics.GetAllPreviewStats() {
		delta := st.Frames
		if prev := s.last[cameraID]; prev <= st.Frames {
			delta -= prev
		}
		fps := float64(delta) / s.interval.Seconds()
		s.last[cameraID] = st.Frames
		s.eventBus.Publish(events.PreviewMetricsEvent{
			CameraID: cameraID,
			FPS:      strconv.FormatFloat(fps, 'f', 2, 64),
			Frames:   st.Frames,
			Bytes:    st.Bytes,
			Width:    st.Width,
			Height:   st.Height,
		})
	}
}

// GetEventTypes returns event types for SSE endpoint registration.
func GetEventTypes() map[string]any {
	return map[string]any{
		"preview-metrics": events.PreviewMetricsEvent{},
	}
}

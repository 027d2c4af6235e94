// Package metrics provides Prometheus metrics for the camera session and
// the preview frame path.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campreview",
		Subsystem: "session",
		Name:      "transitions_total",
		Help:      "Session state transitions",
	}, []string{"from", "to"})

	sessionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campreview",
		Subsystem: "session",
		Name:      "failures_total",
		Help:      "Failures absorbed by the session controller",
	}, []string{"code"})

	previewFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campreview",
		Subsystem: "preview",
		Name:      "frames_total",
		Help:      "Frames delivered to the preview surface",
	}, []string{"camera"})

	previewBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campreview",
		Subsystem: "preview",
		Name:      "bytes_total",
		Help:      "Frame bytes delivered to the preview surface",
	}, []string{"camera"})

	previewWidth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "campreview",
		Subsystem: "preview",
		Name:      "width_pixels",
		Help:      "Selected preview width",
	}, []string{"camera"})

	previewHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "campreview",
		Subsystem: "preview",
		Name:      "height_pixels",
		Help:      "Selected preview height",
	}, []string{"camera"})

	previewClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "campreview",
		Subsystem: "preview",
		Name:      "clients",
		Help:      "Connected preview websocket clients",
	})

	previewDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campreview",
		Subsystem: "preview",
		Name:      "dropped_frames_total",
		Help:      "Frames dropped for slow preview clients",
	})

	// Local cache for SSE exporter access.
	previewCache   = make(map[string]*PreviewStats)
	previewCacheMu sync.RWMutex
)

// PreviewStats holds current values for one camera.
type PreviewStats struct {
	Frames uint64
	Bytes  uint64
	Width  int
	Height int
}

// RecordTransition counts a session state change.
func RecordTransition(from, to string) {
	sessionTransitions.WithLabelValues(from, to).Inc()
}

// RecordFailure counts a failure by error code.
func RecordFailure(code string) {
	sessionFailures.WithLabelValues(code).Inc()
}

// RecordFrame counts one frame of size bytes for a camera.
func RecordFrame(cameraID string, size int) {
	previewFrames.WithLabelValues(cameraID).Inc()
	previewBytes.WithLabelValues(cameraID).Add(float64(size))
	updateCache(cameraID, func(s *PreviewStats) {
		s.Frames++
		s.Bytes += uint64(size)
	})
}

// SetPreviewSize records the preview size selected for a camera.
func SetPreviewSize(cameraID string, width, height int) {
	previewWidth.WithLabelValues(cameraID).Set(float64(width))
	previewHeight.WithLabelValues(cameraID).Set(float64(height))
	updateCache(cameraID, func(s *PreviewStats) {
		s.Width = width
		s.Height = height
	})
}

// SetPreviewClients sets the number of connected preview clients.
func SetPreviewClients(n int) {
	previewClients.Set(float64(n))
}

// RecordDroppedFrame counts a frame skipped for a slow client.
func RecordDroppedFrame() {
	previewDropped.Inc()
}

// DeletePreviewMetrics removes all metrics for a camera.
func DeletePreviewMetrics(cameraID string) {
	previewFrames.DeleteLabelValues(cameraID)
	previewBytes.DeleteLabelValues(cameraID)
	previewWidth.DeleteLabelValues(cameraID)
	previewHeight.DeleteLabelValues(cameraID)

	previewCacheMu.Lock()
	delete(previewCache, cameraID)
	previewCacheMu.Unlock()
}

// GetPreviewStats returns current values for a camera.
func GetPreviewStats(cameraID string) *PreviewStats {
	previewCacheMu.RLock()
	defer previewCacheMu.RUnlock()
	if s, ok := previewCache[cameraID]; ok {
		dup := *s
		return &dup
	}
	return nil
}

// GetAllPreviewStats returns values for every camera seen since start.
func GetAllPreviewStats() map[string]*PreviewStats {
	previewCacheMu.RLock()
	defer previewCacheMu.RUnlock()
	result := make(map[string]*PreviewStats, len(previewCache))
	for id, s := range previewCache {
		dup := *s
		result[id] = &dup
	}
	return result
}

func updateCache(cameraID string, update func(*PreviewStats)) {
	previewCacheMu.Lock()
	defer previewCacheMu.Unlock()
	s, ok := previewCache[cameraID]
	if !ok {
		s = &PreviewStats{}
		previewCache[cameraID] = s
	}
	update(s)
}

// Package notice delivers short-lived user messages. Notices are logged,
// kept in a small history for the API and published on the event bus.
package notice

import (
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/campreview/internal/events"
)

// DefaultHistory is the number of notices kept when none is configured.
const DefaultHistory = 50

// Notice is one delivered message.
type Notice struct {
	Text      string    `json:"text" doc:"Notice text"`
	Timestamp time.Time `json:"timestamp" doc:"When the notice was shown"`
}

// Center implements session.Notifier.
type Center struct {
	bus    *events.Bus
	logger *slog.Logger
	limit  int
	now    func() time.Time

	mu     sync.Mutex
	recent []Notice
}

// NewCenter creates a notice center. bus may be nil.
func NewCenter(bus *events.Bus, logger *slog.Logger, history int) *Center {
	if logger == nil {
		logger = slog.Default()
	}
	if history <= 0 {
		history = DefaultHistory
	}
	return &Center{
		bus:    bus,
		logger: logger,
		limit:  history,
		now:    time.Now,
	}
}

// ShowNotice records and publishes text.
func (c *Center) ShowNotice(text string) {
	n := Notice{Text: text, Timestamp: c.now()}

	c.mu.Lock()
	c.recent = append(c.recent, n)
	if over := len(c.recent) - c.limit; over > 0 {
		c.recent = append(c.recent[:0], c.recent[over:]...)
	}
	c.mu.Unlock()

	c.logger.Info("Notice", "text", text)
	if c.bus != nil {
		c.bus.Publish(events.NoticeEvent{
			Text:      text,
			Timestamp: n.Timestamp.UTC().Format(time.RFC3339),
		})
	}
}

// Recent returns up to n most recent notices, oldest first. n <= 0 returns all.
func (c *Center) Recent(n int) []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := 0
	if n > 0 && n < len(c.recent) {
		start = len(c.recent) - n
	}
	out := make([]Notice, len(c.recent)-start)
	copy(out, c.recent[start:])
	return out
}

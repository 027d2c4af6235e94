package nats

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/smazurov/campreview/internal/events"
)

// Lifecycle receives remote control commands.
type Lifecycle interface {
	OnResume()
	OnPause()
}

// Bridge publishes session events from the event bus to NATS and forwards
// control messages to the session.
type Bridge struct {
	url       string
	eventBus  *events.Bus
	lifecycle Lifecycle
	logger    *slog.Logger

	mu     sync.Mutex
	conn   *nats.Conn
	sub    *nats.Subscription
	unsubs []func()
}

// NewBridge creates a bridge. lifecycle may be nil to only publish.
func NewBridge(url string, eventBus *events.Bus, lifecycle Lifecycle, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		url:       url,
		eventBus:  eventBus,
		lifecycle: lifecycle,
		logger:    logger.With("component", "nats-bridge"),
	}
}

// Start connects to NATS, subscribes to control subjects and begins
// forwarding events. A server that is not up yet is retried in the
// background.
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil {
		return errors.New("bridge already started")
	}

	conn, err := nats.Connect(b.url,
		nats.Name("campreview"),
		nats.RetryOnFailedConnect(true),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				b.logger.Warn("NATS bridge disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			b.logger.Info("NATS bridge reconnected")
		}),
	)
	if err != nil {
		return err
	}
	b.conn = conn

	if b.lifecycle != nil {
		sub, subErr := conn.Subscribe(SubjectControlPrefix+".*", b.handleControl)
		if subErr != nil {
			b.cleanup()
			return subErr
		}
		b.sub = sub
		if conn.IsConnected() {
			_ = conn.FlushTimeout(2 * time.Second)
		}
	}

	b.unsubs = []func(){
		b.eventBus.Subscribe(func(e events.SessionStateChangedEvent) { b.publish(SubjectSessionState, e) }),
		b.eventBus.Subscribe(func(e events.PreviewSelectedEvent) { b.publish(SubjectPreviewSelected, e) }),
		b.eventBus.Subscribe(func(e events.NoticeEvent) { b.publish(SubjectNotices, e) }),
		b.eventBus.Subscribe(func(e events.CameraErrorEvent) { b.publish(SubjectErrors, e) }),
	}

	b.logger.Info("NATS bridge started", "url", b.url)
	return nil
}

func (b *Bridge) publish(subject string, v any) {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		b.logger.Warn("Failed to marshal event", "subject", subject, "error", err)
		return
	}
	if err := conn.Publish(subject, data); err != nil {
		b.logger.Debug("Failed to publish event", "subject", subject, "error", err)
	}
}

// handleControl runs on the NATS delivery goroutine, so lifecycle calls
// are serialized per subscription.
func (b *Bridge) handleControl(msg *nats.Msg) {
	m, err := UnmarshalControl(msg.Data)
	if err != nil {
		b.logger.Warn("Failed to unmarshal control message", "error", err, "subject", msg.Subject)
		return
	}

	b.logger.Info("Control command received", "action", m.Action, "reason", m.Reason)
	switch m.Action {
	case ActionResume:
		b.lifecycle.OnResume()
	case ActionPause:
		b.lifecycle.OnPause()
	default:
		b.logger.Warn("Unknown control action", "action", m.Action)
	}
}

// cleanup must be called with b.mu held.
func (b *Bridge) cleanup() {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// Stop unsubscribes and closes the connection.
func (b *Bridge) Stop() {
	// Event handlers take b.mu, so unsubscribe without holding it.
	b.mu.Lock()
	unsubs := b.unsubs
	b.unsubs = nil
	b.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleanup()
	b.logger.Info("NATS bridge stopped")
}

// IsConnected reports whether the bridge currently has a server.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil && b.conn.IsConnected()
}

// SendControl connects to url, publishes one control message and
// disconnects.
func SendControl(url string, m ControlMessage) error {
	conn, err := nats.Connect(url, nats.Name("campreview-control"))
	if err != nil {
		return err
	}
	defer conn.Close()

	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := conn.Publish(SubjectControl(m.Action), data); err != nil {
		return err
	}
	return conn.Flush()
}

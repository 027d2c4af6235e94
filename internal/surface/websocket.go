// Package surface provides preview surfaces that frames are written into.
package surface

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/smazurov/campreview/internal/camera"
)

// ErrClosed is returned by WriteFrame after Close.
var ErrClosed = errors.New("surface closed")

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Hello is sent as a text message to every client when it connects and
// whenever the buffer size changes. Frames follow as binary messages.
type Hello struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Options configures a WebSocket surface.
type Options struct {
	// QueueSize is the per-client frame backlog. Zero uses 2.
	QueueSize int

	// OnClients is called with the client count after every change (optional).
	OnClients func(n int)

	// OnDrop is called when a frame is skipped for a slow client (optional).
	OnDrop func()

	// Logger for surface operations. If nil, uses slog.Default().
	Logger *slog.Logger
}

// WebSocket is a camera.Surface that fans frames out to websocket clients.
// A slow client loses frames instead of stalling the capture loop.
type WebSocket struct {
	opts     Options
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	size    camera.Resolution
	clients map[*client]struct{}
	closed  bool
	last    []byte
	lastAt  time.Time
}

type client struct {
	conn    *websocket.Conn
	frames  chan []byte
	control chan Hello
	done    chan struct{}
	once    sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// NewWebSocket creates a websocket surface.
func NewWebSocket(opts Options) *WebSocket {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 2
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocket{
		opts:   opts,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// SetDefaultBufferSize records the frame size and tells connected clients.
func (s *WebSocket) SetDefaultBufferSize(size camera.Resolution) {
	s.mu.Lock()
	s.size = size
	hello := Hello{Width: size.Width, Height: size.Height}
	for c := range s.clients {
		select {
		case c.control <- hello:
		default:
		}
	}
	s.mu.Unlock()
	s.logger.Debug("Preview buffer size set", "size", size.String())
}

// LastFrame returns the most recent frame and when it was written. The
// returned slice must not be modified.
func (s *WebSocket) LastFrame() ([]byte, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastAt, s.last != nil
}

// BufferSize returns the size last set.
func (s *WebSocket) BufferSize() camera.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// WriteFrame queues frame for every connected client. It never blocks.
func (s *WebSocket) WriteFrame(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	// The capture loop reuses its buffers.
	data := make([]byte, len(frame))
	copy(data, frame)
	s.last, s.lastAt = data, time.Now()

	for c := range s.clients {
		select {
		case c.frames <- data:
		default:
			if s.opts.OnDrop != nil {
				s.opts.OnDrop()
			}
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (s *WebSocket) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ServeHTTP upgrades the request and streams frames until the client leaves.
func (s *WebSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Preview websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn:    conn,
		frames:  make(chan []byte, s.opts.QueueSize),
		control: make(chan Hello, 1),
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	hello := Hello{Width: s.size.Width, Height: s.size.Height}
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()

	s.logger.Info("Preview client connected", "remote", r.RemoteAddr, "clients", n)
	s.notifyClients(n)

	go s.readLoop(c)
	s.writeLoop(c, hello)

	s.mu.Lock()
	delete(s.clients, c)
	n = len(s.clients)
	s.mu.Unlock()
	conn.Close()

	s.logger.Info("Preview client disconnected", "remote", r.RemoteAddr, "clients", n)
	s.notifyClients(n)
}

// readLoop discards client messages and notices when the peer goes away.
func (s *WebSocket) readLoop(c *client) {
	defer c.stop()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *WebSocket) writeLoop(c *client, hello Hello) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(hello); err != nil {
		return
	}

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case hello := <-c.control:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(hello); err != nil {
				return
			}
		case frame := <-c.frames:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client and rejects further frames.
func (s *WebSocket) Close() {
	s.mu.Lock()
	s.closed = true
	for c := range s.clients {
		c.stop()
	}
	s.mu.Unlock()
}

func (s *WebSocket) notifyClients(n int) {
	if s.opts.OnClients != nil {
		s.opts.OnClients(n)
	}
}

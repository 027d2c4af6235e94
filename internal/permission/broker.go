// Package permission decides whether the service may use a camera device.
//
// On Linux the answer comes from the device node itself: access is granted
// when the process can open it for reading and writing. A Broker can also
// run in manual mode, where requests stay pending until an operator answers
// through the API.
package permission

import (
	"log/slog"
	"sync"

	"github.com/smazurov/campreview/internal/camera"
)

// ResultFunc receives the answer to a permission request.
type ResultFunc func(granted bool)

// Options configures a Broker.
type Options struct {
	// Manual leaves requests pending until Answer is called.
	Manual bool

	// Access overrides the device access check (tests).
	Access func(path string) error

	// Logger for broker operations. If nil, uses slog.Default().
	Logger *slog.Logger
}

// Broker tracks grants and denials per camera.
type Broker struct {
	access func(path string) error
	manual bool
	logger *slog.Logger

	mu       sync.Mutex
	denied   map[camera.Identity]bool
	pending  camera.Identity
	onResult ResultFunc
	wg       sync.WaitGroup
}

// NewBroker creates a broker.
func NewBroker(opts Options) *Broker {
	b := &Broker{
		access: opts.Access,
		manual: opts.Manual,
		logger: opts.Logger,
		denied: make(map[camera.Identity]bool),
	}
	if b.access == nil {
		b.access = checkAccess
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// SetResultHandler sets where request answers are delivered.
func (b *Broker) SetResultHandler(fn ResultFunc) {
	b.mu.Lock()
	b.onResult = fn
	b.mu.Unlock()
}

// Granted reports whether the device behind id can be opened now.
func (b *Broker) Granted(id camera.Identity) bool {
	if err := b.access(string(id)); err != nil {
		b.logger.Debug("Camera access check failed", "camera", id, "error", err)
		return false
	}
	b.mu.Lock()
	delete(b.denied, id)
	b.mu.Unlock()
	return true
}

// ShouldShowRationale is true once a request for id has been denied.
func (b *Broker) ShouldShowRationale(id camera.Identity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.denied[id]
}

// Request asks for access to id. The answer is delivered asynchronously
// to the result handler; callers may hold locks the handler needs.
func (b *Broker) Request(id camera.Identity) {
	b.mu.Lock()
	b.pending = id
	b.mu.Unlock()

	if b.manual {
		b.logger.Info("Camera permission requested, waiting for answer", "camera", id)
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		err := b.access(string(id))
		if err != nil {
			b.logger.Warn("Camera access denied", "camera", id, "error", err)
		}
		b.Answer(err == nil)
	}()
}

// Answer resolves the pending request. It is a no-op when nothing is pending.
func (b *Broker) Answer(granted bool) bool {
	b.mu.Lock()
	id := b.pending
	if id == "" {
		b.mu.Unlock()
		return false
	}
	b.pending = ""
	if granted {
		delete(b.denied, id)
	} else {
		b.denied[id] = true
	}
	fn := b.onResult
	b.mu.Unlock()

	b.logger.Info("Camera permission answered", "camera", id, "granted", granted)
	if fn != nil {
		fn(granted)
	}
	return true
}

// Pending returns the camera awaiting an answer, if any.
func (b *Broker) Pending() (camera.Identity, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending, b.pending != ""
}

// Wait blocks until in-flight automatic answers have been delivered.
func (b *Broker) Wait() {
	b.wg.Wait()
}

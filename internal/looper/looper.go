// Package looper provides a single-goroutine task queue used as the
// background execution context of a camera session.
//
// Tasks run one at a time in the order they were posted. QuitSafely stops
// intake and lets already-queued tasks finish; Join blocks until the
// goroutine has exited. After Join returns no task will ever run again.
package looper

import (
	"fmt"
	"log/slog"
	"sync"
)

// Looper runs posted tasks sequentially on its own goroutine.
type Looper struct {
	name     string
	logger   *slog.Logger
	mu       sync.Mutex
	queue    []func()
	started  bool
	quitting bool
	wake     chan struct{}
	done     chan struct{}
}

// New creates a looper. It does not run tasks until Start is called.
func New(name string, logger *slog.Logger) *Looper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Looper{
		name:   name,
		logger: logger.With("looper", name),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Name returns the looper name.
func (l *Looper) Name() string {
	return l.name
}

// Start launches the looper goroutine. Calling it twice is a no-op.
func (l *Looper) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true
	go l.loop()
}

// Post queues a task. It returns false once QuitSafely has been called.
func (l *Looper) Post(task func()) bool {
	l.mu.Lock()
	if l.quitting {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	l.signal()
	return true
}

// Invoke posts a task and waits for it to finish. It returns false when
// the task was rejected. Invoke must not be called from a task running on
// the same looper.
func (l *Looper) Invoke(task func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		task()
	}) {
		return false
	}
	<-finished
	return true
}

// QuitSafely stops accepting tasks. Tasks already queued still run.
func (l *Looper) QuitSafely() {
	l.mu.Lock()
	l.quitting = true
	if !l.started {
		// Nothing will ever drain the queue; release Join waiters.
		l.started = true
		l.queue = nil
		l.mu.Unlock()
		close(l.done)
		return
	}
	l.mu.Unlock()
	l.signal()
}

// Join blocks until the looper goroutine has exited.
func (l *Looper) Join() {
	<-l.done
}

// Done is closed when the looper goroutine has exited.
func (l *Looper) Done() <-chan struct{} {
	return l.done
}

func (l *Looper) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Looper) loop() {
	defer close(l.done)
	l.logger.Debug("Looper started")

	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			if l.quitting {
				l.mu.Unlock()
				l.logger.Debug("Looper stopped")
				return
			}
			l.mu.Unlock()
			<-l.wake
			continue
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.run(task)
	}
}

// run executes one task, recovering panics so a faulty callback cannot
// take the process down.
func (l *Looper) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Task panicked", "panic", fmt.Sprint(r))
		}
	}()
	task()
}

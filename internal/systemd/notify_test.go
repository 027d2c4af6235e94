package systemd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/campreview/internal/events"
)

type sentStates struct {
	mu     sync.Mutex
	states []string
}

func (s *sentStates) notify(state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
	return true, nil
}

func (s *sentStates) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.states...)
}

func newTestNotifier(interval time.Duration) (*Notifier, *sentStates) {
	sent := &sentStates{}
	n := NewNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.notify = sent.notify
	n.watchdog = func() (time.Duration, error) { return interval, nil }
	return n, sent
}

func TestReadyStoppingStatus(t *testing.T) {
	n, sent := newTestNotifier(0)
	n.Ready()
	n.Status("session idle")
	n.Stopping()

	want := []string{"READY=1", "STATUS=session idle", "STOPPING=1"}
	got := sent.all()
	if len(got) != len(want) {
		t.Fatalf("sent %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sent[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSessionStatus(t *testing.T) {
	tests := []struct {
		event events.SessionStateChangedEvent
		want  string
	}{
		{events.SessionStateChangedEvent{To: "idle"}, "session idle"},
		{events.SessionStateChangedEvent{To: "streaming", CameraID: "/dev/video0"}, "session streaming on /dev/video0"},
	}
	for _, tt := range tests {
		if got := sessionStatus(tt.event); got != tt.want {
			t.Errorf("sessionStatus(%+v) = %q, want %q", tt.event, got, tt.want)
		}
	}
}

func TestFollowSession(t *testing.T) {
	n, sent := newTestNotifier(0)
	bus := events.New()
	n.FollowSession(bus)
	defer n.Stop()

	bus.Publish(events.SessionStateChangedEvent{To: "streaming", CameraID: "/dev/video2"})

	deadline := time.Now().Add(2 * time.Second)
	for len(sent.all()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("status not sent")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := sent.all()[0]; got != "STATUS=session streaming on /dev/video2" {
		t.Errorf("status = %q", got)
	}
}

func TestRunWatchdogDisabled(t *testing.T) {
	n, sent := newTestNotifier(0)
	done := make(chan struct{})
	go func() {
		n.RunWatchdog(context.Background(), nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunWatchdog should return when the watchdog is disabled")
	}
	if len(sent.all()) != 0 {
		t.Errorf("sent %v, want nothing", sent.all())
	}
}

func TestRunWatchdogPings(t *testing.T) {
	n, sent := newTestNotifier(20 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.RunWatchdog(ctx, func() bool { return true })
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(sent.all()) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("watchdog pings not sent")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	for _, s := range sent.all() {
		if s != "WATCHDOG=1" {
			t.Errorf("unexpected state %q", s)
		}
	}
}

func TestRunWatchdogSkipsWhenUnhealthy(t *testing.T) {
	n, sent := newTestNotifier(10 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	n.RunWatchdog(ctx, func() bool { return false })
	if len(sent.all()) != 0 {
		t.Errorf("sent %v, want nothing while unhealthy", sent.all())
	}
}

func TestNotifyErrorIsLogged(t *testing.T) {
	n, _ := newTestNotifier(0)
	n.notify = func(string) (bool, error) { return false, errors.New("socket gone") }
	n.Ready() // must not panic
}

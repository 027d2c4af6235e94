package led

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/smazurov/campreview/internal/events"
)

type mockController struct {
	mu       sync.Mutex
	setCalls []Pattern
	err      error
}

func (m *mockController) Set(led string, pattern Pattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if led != StatusLED {
		return errors.New("unexpected led " + led)
	}
	if m.err != nil {
		return m.err
	}
	m.setCalls = append(m.setCalls, pattern)
	return nil
}

func (m *mockController) Available() []string {
	return []string{StatusLED}
}

func (m *mockController) calls() []Pattern {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Pattern(nil), m.setCalls...)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitPattern(t *testing.T, m *Manager, want Pattern) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for m.Pattern() != want {
		if time.Now().After(deadline) {
			t.Fatalf("pattern = %q, want %q", m.Pattern(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPatternFor(t *testing.T) {
	tests := []struct {
		state string
		want  Pattern
	}{
		{"streaming", PatternSolid},
		{"error", PatternBlink},
		{"idle", PatternOff},
		{"opening", PatternOff},
		{"closed", PatternOff},
	}
	for _, tt := range tests {
		if got := PatternFor(tt.state); got != tt.want {
			t.Errorf("PatternFor(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestManager_FollowsSessionState(t *testing.T) {
	ctrl := &mockController{}
	bus := events.New()

	mgr := NewManager(ctrl, bus, newTestLogger())
	mgr.Start()

	if got := mgr.Pattern(); got != PatternOff {
		t.Fatalf("pattern after Start = %q, want off", got)
	}

	bus.Publish(events.SessionStateChangedEvent{From: "opened", To: "streaming"})
	waitPattern(t, mgr, PatternSolid)

	bus.Publish(events.SessionStateChangedEvent{From: "streaming", To: "error"})
	waitPattern(t, mgr, PatternBlink)

	mgr.Stop()
	if got := mgr.Pattern(); got != PatternOff {
		t.Errorf("pattern after Stop = %q, want off", got)
	}

	want := []Pattern{PatternOff, PatternSolid, PatternBlink, PatternOff}
	got := ctrl.calls()
	if len(got) != len(want) {
		t.Fatalf("Set calls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestManager_SkipsRepeatedPattern(t *testing.T) {
	ctrl := &mockController{}
	mgr := NewManager(ctrl, events.New(), newTestLogger())

	mgr.apply(PatternSolid)
	mgr.apply(PatternSolid)

	if got := ctrl.calls(); len(got) != 1 {
		t.Errorf("Set called %d times, want 1", len(got))
	}
}

func TestManager_ControllerError(t *testing.T) {
	ctrl := &mockController{err: errors.New("no such led")}
	mgr := NewManager(ctrl, events.New(), newTestLogger())

	mgr.apply(PatternSolid)
	if got := mgr.Pattern(); got != "" {
		t.Errorf("pattern = %q after failed Set, want empty", got)
	}
}

func TestManager_GetController(t *testing.T) {
	ctrl := &mockController{}
	mgr := NewManager(ctrl, events.New(), newTestLogger())

	if got := mgr.GetController(); got != ctrl {
		t.Error("GetController() did not return the original controller")
	}
}

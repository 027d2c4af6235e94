package led

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	ctrl := New(newTestLogger(), "")
	if ctrl == nil {
		t.Fatal("New() returned nil")
	}
	if ctrl.Available() == nil {
		t.Error("Available() returned nil")
	}
}

func TestNewWithConfiguredLED(t *testing.T) {
	ctrl := New(newTestLogger(), "led0")
	s, ok := ctrl.(*sysfs)
	if !ok {
		t.Fatalf("New() returned %T, want *sysfs", ctrl)
	}
	if s.leds[StatusLED] != "led0" {
		t.Errorf("status LED = %q, want led0", s.leds[StatusLED])
	}
}

func TestBoardLED(t *testing.T) {
	tests := []struct {
		model  string
		want   string
		wantOK bool
	}{
		{"FriendlyElec NanoPC-T6", "usr_led", true},
		{"Orange Pi 5 Plus", "green_led", true},
		{"Raspberry Pi 4 Model B Rev 1.4", "ACT", true},
		{"unknown", "", false},
	}
	for _, tt := range tests {
		got, ok := boardLED(tt.model)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("boardLED(%q) = %q, %v; want %q, %v", tt.model, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestDetectBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model")
	if err := os.WriteFile(path, []byte("Raspberry Pi 5\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := detectBoard(path); got != "Raspberry Pi 5" {
		t.Errorf("detectBoard() = %q", got)
	}
	if got := detectBoard(filepath.Join(t.TempDir(), "missing")); got != "unknown" {
		t.Errorf("detectBoard(missing) = %q, want unknown", got)
	}
}

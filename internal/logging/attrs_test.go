package logging

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

func collect(s handlerScope, r slog.Record, sep string) map[string]any {
	out := make(map[string]any)
	s.each(r, func(groups []string, a slog.Attr) {
		out[joinKey(groups, a.Key, sep)] = plainValue(a.Value)
	})
	return out
}

func TestHandlerScopeGroupsApplyToLaterAttrs(t *testing.T) {
	s := handlerScope{}.
		withAttrs([]slog.Attr{slog.String("module", "session")}).
		withGroup("preview").
		withAttrs([]slog.Attr{slog.String("camera", "/dev/video0")}).
		withGroup("size")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "selected", 0)
	r.AddAttrs(slog.Int("width", 1280), slog.Group("crop", slog.Int("x", 4)))

	got := collect(s, r, ".")
	want := map[string]any{
		"module":              "session",
		"preview.camera":      "/dev/video0",
		"preview.size.width":  int64(1280),
		"preview.size.crop.x": int64(4),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestHandlerScopeDerivedScopesDoNotShare(t *testing.T) {
	base := handlerScope{}.withGroup("a")
	left := base.withGroup("left")
	right := base.withGroup("right")

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "m", 0)
	r.AddAttrs(slog.Bool("ok", true))

	if got := collect(left, r, "."); got["a.left.ok"] != true {
		t.Errorf("left scope = %v", got)
	}
	if got := collect(right, r, "."); got["a.right.ok"] != true {
		t.Errorf("right scope = %v", got)
	}
}

func TestWalkAttrSkipsEmptyAndInlinesUnnamedGroups(t *testing.T) {
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "m", 0)
	r.AddAttrs(slog.Attr{}, slog.Group("", slog.String("inline", "yes")), slog.Any("err", errors.New("boom")))

	got := collect(handlerScope{}, r, "_")
	if len(got) != 2 || got["inline"] != "yes" || got["err"] != "boom" {
		t.Errorf("got %v", got)
	}
}

func TestJournalField(t *testing.T) {
	tests := map[string]string{
		"camera":          "CAMERA",
		"preview_width":   "PREVIEW_WIDTH",
		"camera.id":       "CAMERA_ID",
		"_SYSTEMD_UNIT":   "SYSTEMD_UNIT",
		"90deg":           "F90DEG",
		"---":             "FIELD",
		"sensor-rotation": "SENSOR_ROTATION",
	}
	for in, want := range tests {
		if got := journalField(in); got != want {
			t.Errorf("journalField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJournalValue(t *testing.T) {
	ts := time.Date(2025, 1, 27, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		v    slog.Value
		want string
	}{
		{slog.IntValue(90), "90"},
		{slog.Float64Value(29.97), "29.97"},
		{slog.BoolValue(true), "true"},
		{slog.DurationValue(1500 * time.Millisecond), "1.5s"},
		{slog.TimeValue(ts), "2025-01-27T10:30:00.000Z"},
		{slog.AnyValue(errors.New("EBUSY")), "EBUSY"},
	}
	for _, tt := range tests {
		if got := journalValue(tt.v); got != tt.want {
			t.Errorf("journalValue(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestJournalPriority(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  journal.Priority
	}{
		{slog.LevelDebug, journal.PriDebug},
		{slog.LevelInfo, journal.PriInfo},
		{slog.LevelWarn, journal.PriWarning},
		{slog.LevelError, journal.PriErr},
		{slog.LevelError + 4, journal.PriErr},
	}
	for _, tt := range tests {
		if got := journalPriority(tt.level); got != tt.want {
			t.Errorf("journalPriority(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/smazurov/campreview/internal/camera"
)

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeTestFile(t, path, `
[display]
rotation = 90

[[cameras]]
match = "/dev/video0"
facing = "back"
sensor_orientation = 270

[[cameras]]
match = "UVC Camera"
facing = "front"
`)

	p, err := LoadProfiles(path)
	if err != nil {
		t.Fatalf("LoadProfiles failed: %v", err)
	}
	if got := p.DisplayRotation(); got != camera.Rotation90 {
		t.Errorf("DisplayRotation() = %v, want 90", got)
	}
	if len(p.Cameras) != 2 {
		t.Fatalf("got %d cameras, want 2", len(p.Cameras))
	}

	c, ok := p.Lookup("/dev/video0", "")
	if !ok {
		t.Fatal("expected a match by path")
	}
	if c.Facing != "back" || c.SensorOrientation == nil || *c.SensorOrientation != 270 {
		t.Errorf("unexpected profile %+v", c)
	}

	c, ok = p.Lookup("/dev/video4", "UVC Camera")
	if !ok || c.Facing != "front" || c.SensorOrientation != nil {
		t.Errorf("card lookup = %+v, %v", c, ok)
	}

	if _, ok := p.Lookup("/dev/video9", "Other"); ok {
		t.Error("expected no match")
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	p, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if len(p.Cameras) != 0 || p.DisplayRotation() != camera.Rotation0 {
		t.Errorf("expected empty profiles, got %+v", p)
	}

	p, err = LoadProfiles("")
	if err != nil || len(p.Cameras) != 0 {
		t.Errorf("empty path: %+v, %v", p, err)
	}
}

func TestLoadProfilesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad rotation", "[display]\nrotation = 45\n", "display"},
		{"bad facing", "[[cameras]]\nmatch = \"x\"\nfacing = \"up\"\n", "cameras[0]"},
		{"bad orientation", "[[cameras]]\nmatch = \"x\"\nsensor_orientation = 100\n", "sensor orientation"},
		{"missing match", "[[cameras]]\nfacing = \"back\"\n", "match is required"},
		{"bad toml", "[[cameras\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profiles.toml")
			writeTestFile(t, path, tt.content)

			_, err := LoadProfiles(path)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestProfileStore(t *testing.T) {
	var empty ProfileStore
	if got := empty.Get(); len(got.Cameras) != 0 {
		t.Errorf("zero store returned %+v", got)
	}

	s := NewProfileStore(Profiles{Display: DisplayProfile{Rotation: 180}})
	if got := s.Get().DisplayRotation(); got != camera.Rotation180 {
		t.Errorf("rotation = %v, want 180", got)
	}

	s.Set(Profiles{Cameras: []CameraProfile{{Match: "a"}}})
	if got := s.Get(); len(got.Cameras) != 1 || got.Display.Rotation != 0 {
		t.Errorf("after Set got %+v", got)
	}
}

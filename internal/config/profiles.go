package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/campreview/internal/camera"
)

// DisplayProfile describes the display surface.
type DisplayProfile struct {
	Rotation int `toml:"rotation" json:"rotation"`
}

// CameraProfile overrides what a driver reports about one camera.
type CameraProfile struct {
	Match             string `toml:"match" json:"match"` // Device path or card name
	Facing            string `toml:"facing,omitempty" json:"facing,omitempty"`
	SensorOrientation *int   `toml:"sensor_orientation,omitempty" json:"sensor_orientation,omitempty"`
}

// Profiles is the camera profile file.
type Profiles struct {
	Display DisplayProfile  `toml:"display" json:"display"`
	Cameras []CameraProfile `toml:"cameras" json:"cameras"`
}

// LoadProfiles reads and validates a profile file. A missing file yields
// empty profiles.
func LoadProfiles(path string) (Profiles, error) {
	var p Profiles
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read profiles: %w", err)
	}

	if err := toml.Unmarshal(data, &p); err != nil {
		return Profiles{}, fmt.Errorf("failed to parse profiles: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profiles{}, err
	}
	return p, nil
}

// Validate checks rotation, facing and orientation values.
func (p Profiles) Validate() error {
	if _, err := camera.ParseDisplayRotation(p.Display.Rotation); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	for i, c := range p.Cameras {
		if c.Match == "" {
			return fmt.Errorf("cameras[%d]: match is required", i)
		}
		if c.Facing != "" {
			if _, err := camera.ParseLensFacing(c.Facing); err != nil {
				return fmt.Errorf("cameras[%d]: %w", i, err)
			}
		}
		if c.SensorOrientation != nil && !camera.Angle(*c.SensorOrientation).Valid() {
			return fmt.Errorf("cameras[%d]: invalid sensor orientation %d", i, *c.SensorOrientation)
		}
	}
	return nil
}

// DisplayRotation returns the configured display rotation.
func (p Profiles) DisplayRotation() camera.DisplayRotation {
	r, err := camera.ParseDisplayRotation(p.Display.Rotation)
	if err != nil {
		return camera.Rotation0
	}
	return r
}

// Lookup returns the first camera profile whose match equals the device
// path or the card name.
func (p Profiles) Lookup(path, card string) (CameraProfile, bool) {
	for _, c := range p.Cameras {
		if c.Match == path || (card != "" && c.Match == card) {
			return c, true
		}
	}
	return CameraProfile{}, false
}

// ProfileStore holds the current profiles and is safe for concurrent use.
// Reloads replace the whole snapshot.
type ProfileStore struct {
	current atomic.Pointer[Profiles]
}

// NewProfileStore returns a store holding p.
func NewProfileStore(p Profiles) *ProfileStore {
	s := &ProfileStore{}
	s.Set(p)
	return s
}

// Set replaces the stored profiles.
func (s *ProfileStore) Set(p Profiles) {
	s.current.Store(&p)
}

// Get returns the stored profiles.
func (s *ProfileStore) Get() Profiles {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Profiles{}
}

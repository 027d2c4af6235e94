// Package display tracks the rotation of the preview surface.
package display

import (
	"sync/atomic"

	"github.com/smazurov/campreview/internal/camera"
)

// Provider holds the current display rotation. The zero value reports
// Rotation0.
type Provider struct {
	rotation atomic.Int32
}

// New returns a provider set to r.
func New(r camera.DisplayRotation) *Provider {
	p := &Provider{}
	p.Set(r)
	return p
}

// Rotation returns the current rotation.
func (p *Provider) Rotation() camera.DisplayRotation {
	return camera.DisplayRotation(p.rotation.Load())
}

// Set replaces the rotation and reports whether it changed.
func (p *Provider) Set(r camera.DisplayRotation) bool {
	return p.rotation.Swap(int32(r)) != int32(r)
}

// SetDegrees sets the rotation from 0, 90, 180 or 270 degrees.
func (p *Provider) SetDegrees(degrees int) (bool, error) {
	r, err := camera.ParseDisplayRotation(degrees)
	if err != nil {
		return false, err
	}
	return p.Set(r), nil
}

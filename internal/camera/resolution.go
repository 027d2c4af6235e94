package camera

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is a frame size in pixels.
type Resolution struct {
	Width  int `json:"width" toml:"width"`
	Height int `json:"height" toml:"height"`
}

// Area returns Width*Height computed in 64 bits so that sizes near the
// 32-bit range do not overflow.
func (r Resolution) Area() int64 {
	return int64(r.Width) * int64(r.Height)
}

// IsZero reports whether r has no dimensions set.
func (r Resolution) IsZero() bool {
	return r.Width == 0 && r.Height == 0
}

// Swapped returns r with width and height exchanged.
func (r Resolution) Swapped() Resolution {
	return Resolution{Width: r.Height, Height: r.Width}
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseResolution parses "WIDTHxHEIGHT" (e.g. "1280x720").
func ParseResolution(s string) (Resolution, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return Resolution{}, fmt.Errorf("invalid resolution %q: expected WIDTHxHEIGHT", s)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution width %q: %w", parts[0], err)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid resolution height %q: %w", parts[1], err)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("invalid resolution %q: dimensions must be positive", s)
	}

	return Resolution{Width: width, Height: height}, nil
}

// CompareByArea orders resolutions by pixel area. It returns a negative
// number when a is smaller than b, zero when equal and positive otherwise.
func CompareByArea(a, b Resolution) int {
	aa, ba := a.Area(), b.Area()
	switch {
	case aa < ba:
		return -1
	case aa > ba:
		return 1
	default:
		return 0
	}
}

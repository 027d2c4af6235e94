package camera

import "fmt"

// Angle is a clockwise rotation in degrees, one of 0, 90, 180 or 270 once
// normalized.
type Angle int

// NormalizeAngle reduces any angle into [0, 360).
func NormalizeAngle(degrees int) Angle {
	return Angle(((degrees % 360) + 360) % 360)
}

// Valid reports whether a is a right-angle multiple in [0, 360).
func (a Angle) Valid() bool {
	return a == 0 || a == 90 || a == 180 || a == 270
}

// DisplayRotation is the discrete rotation state of the display surface.
type DisplayRotation int

// Display rotation states.
const (
	Rotation0 DisplayRotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// displayDegrees maps each display rotation state to degrees.
var displayDegrees = [...]Angle{
	Rotation0:   0,
	Rotation90:  90,
	Rotation180: 180,
	Rotation270: 270,
}

// Degrees returns the rotation in degrees. Out-of-range values map to 0.
func (r DisplayRotation) Degrees() Angle {
	if r < Rotation0 || int(r) >= len(displayDegrees) {
		return 0
	}
	return displayDegrees[r]
}

func (r DisplayRotation) String() string {
	return fmt.Sprintf("%d", r.Degrees())
}

// ParseDisplayRotation converts 0/90/180/270 degrees into a DisplayRotation.
func ParseDisplayRotation(degrees int) (DisplayRotation, error) {
	for r, d := range displayDegrees {
		if int(d) == degrees {
			return DisplayRotation(r), nil
		}
	}
	return Rotation0, fmt.Errorf("invalid display rotation %d: must be 0, 90, 180 or 270", degrees)
}

// ResolveRotation combines the sensor mounting orientation with the current
// display rotation into the total correction angle.
func ResolveRotation(sensor Angle, display DisplayRotation) Angle {
	return NormalizeAngle(int(NormalizeAngle(int(sensor))) + int(display.Degrees()) + 360)
}

// SwapRequired reports whether width and height must be exchanged before
// choosing an output size for the given total rotation.
func SwapRequired(total Angle) bool {
	return total == 90 || total == 270
}

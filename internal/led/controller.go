// Package led drives a board status LED from the camera session state.
package led

// Pattern is how an LED is lit.
type Pattern string

// LED patterns.
const (
	PatternOff   Pattern = "off"
	PatternSolid Pattern = "solid"
	PatternBlink Pattern = "blink"
)

// StatusLED is the logical LED the manager drives.
const StatusLED = "status"

// Controller abstracts LED hardware control across different SBC boards.
// Implementations handle board-specific LED naming.
type Controller interface {
	// Set lights a logical LED with the given pattern.
	Set(led string, pattern Pattern) error

	// Available returns the logical LEDs supported by this controller.
	Available() []string
}

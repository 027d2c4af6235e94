package led

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfs implements Controller using the Linux sysfs LED interface.
type sysfs struct {
	root string
	leds map[string]string // logical LED -> sysfs name
}

func newSysfs(root string, leds map[string]string) *sysfs {
	return &sysfs{root: root, leds: leds}
}

// Set writes the trigger and brightness for a pattern. Blink uses the
// kernel heartbeat trigger; solid and off take manual control.
func (s *sysfs) Set(led string, pattern Pattern) error {
	name, ok := s.leds[led]
	if !ok {
		return fmt.Errorf("LED %q not supported on this board", led)
	}

	ledPath := filepath.Join(s.root, name)
	if _, err := os.Stat(ledPath); err != nil {
		return fmt.Errorf("LED %q not found at %s: %w", led, ledPath, err)
	}

	var trigger, brightness string
	switch pattern {
	case PatternSolid:
		trigger, brightness = "none", "1"
	case PatternBlink:
		trigger = "heartbeat"
	case PatternOff:
		trigger, brightness = "none", "0"
	default:
		return fmt.Errorf("unknown LED pattern %q", pattern)
	}

	if err := os.WriteFile(filepath.Join(ledPath, "trigger"), []byte(trigger), 0o644); err != nil {
		return fmt.Errorf("failed to set LED trigger: %w", err)
	}
	if brightness == "" {
		return nil
	}
	if err := os.WriteFile(filepath.Join(ledPath, "brightness"), []byte(brightness), 0o644); err != nil {
		return fmt.Errorf("failed to set LED brightness: %w", err)
	}
	return nil
}

func (s *sysfs) Available() []string {
	names := make([]string, 0, len(s.leds))
	for led := range s.leds {
		names = append(names, led)
	}
	sort.Strings(names)
	return names
}

package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// boardLEDs maps a device tree model fragment to the sysfs LED used as the
// status LED.
var boardLEDs = []struct {
	model string
	sysfs string
}{
	{"NanoPC-T6", "usr_led"},
	{"Orange Pi", "green_led"},
	{"Raspberry Pi", "ACT"},
}

// New creates an LED controller. A non-empty sysfsName selects that LED
// directly; otherwise the board is detected from the device tree. Falls
// back to a no-op controller when no LED is known.
func New(logger *slog.Logger, sysfsName string) Controller {
	if logger == nil {
		logger = slog.Default()
	}

	if sysfsName != "" {
		logger.Info("Using configured status LED", "sysfs_name", sysfsName)
		return newSysfs(sysfsLEDPath, map[string]string{StatusLED: sysfsName})
	}

	model := detectBoard(deviceTreeModelPath)
	if name, ok := boardLED(model); ok {
		logger.Info("Detected board with status LED", "board_model", model, "sysfs_name", name)
		return newSysfs(sysfsLEDPath, map[string]string{StatusLED: name})
	}

	logger.Info("No LED support detected, using no-op controller", "board_model", model)
	return newNoop(logger)
}

func boardLED(model string) (string, bool) {
	for _, b := range boardLEDs {
		if strings.Contains(model, b.model) {
			return b.sysfs, true
		}
	}
	return "", false
}

// detectBoard reads the device tree model to identify the board.
func detectBoard(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	// Device tree strings are NUL terminated.
	return strings.TrimRight(string(data), "\x00")
}

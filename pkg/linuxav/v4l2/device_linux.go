//go:build linux

package v4l2

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unsafe"
)

const sysfsRoot = "/sys/class/video4linux"

// FindDevices returns every node that can stream video capture, ordered by
// node number.
func FindDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir(sysfsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", sysfsRoot, err)
	}

	var devices []DeviceInfo
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "video") {
			continue
		}
		info, err := Query("/dev/" + entry.Name())
		if err != nil {
			continue
		}
		if info.Caps&capVideoCapture == 0 || info.Caps&capStreaming == 0 {
			continue
		}
		devices = append(devices, info)
	}

	slices.SortFunc(devices, func(a, b DeviceInfo) int {
		return nodeNumber(a.Path) - nodeNumber(b.Path)
	})
	return devices, nil
}

// Query reads the capabilities of a single device node.
func Query(path string) (DeviceInfo, error) {
	var c capability
	err := withDevice(path, func(fd int) error {
		return ioctl(fd, vidiocQuerycap, unsafe.Pointer(&c))
	})
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("query %s: %w", path, err)
	}

	caps := c.capabilities
	if caps&capDeviceCaps != 0 {
		caps = c.deviceCaps
	}

	node := filepath.Base(path)
	index := readSysfsInt(filepath.Join(sysfsRoot, node, "index"))
	info := DeviceInfo{
		Path:    path,
		Card:    cstr(c.card[:]),
		Driver:  cstr(c.driver[:]),
		BusInfo: cstr(c.busInfo[:]),
		Index:   index,
		Caps:    caps,
	}

	info.StableID = findStableID(node, index)
	if info.StableID == "" {
		info.StableID = fmt.Sprintf("%s-video-index%d", strings.TrimPrefix(info.BusInfo, "usb-"), index)
	}
	return info, nil
}

// findStableID looks for the /dev/v4l/by-id symlink pointing at node.
func findStableID(node string, index int) string {
	const byID = "/dev/v4l/by-id"
	entries, err := os.ReadDir(byID)
	if err != nil {
		return ""
	}

	suffix := fmt.Sprintf("-video-index%d", index)
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		target, err := os.Readlink(filepath.Join(byID, entry.Name()))
		if err == nil && filepath.Base(target) == node {
			return entry.Name()
		}
	}
	return ""
}

func readSysfsInt(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	v, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return v
}

// nodeNumber extracts N from /dev/videoN, or -1.
func nodeNumber(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "video"))
	if err != nil {
		return -1
	}
	return n
}

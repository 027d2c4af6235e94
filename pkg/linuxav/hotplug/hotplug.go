//go:build linux

// Package hotplug reports kernel device add/remove events read from the
// kobject uevent netlink socket, without cgo or udev.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"

	"golang.org/x/sys/unix"
)

// Actions reported by the kernel.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
)

// SubsystemVideo4Linux is the subsystem of V4L2 device nodes.
const SubsystemVideo4Linux = "video4linux"

// netlinkKobjectUEvent is NETLINK_KOBJECT_UEVENT.
const netlinkKobjectUEvent = 15

// Event is a single kernel uevent.
type Event struct {
	Action    string
	KObj      string
	Subsystem string
	DevName   string
	Env       map[string]string
}

// DevicePath returns the /dev node of the event, or "" when the event has
// no DEVNAME.
func (e Event) DevicePath() string {
	if e.DevName == "" {
		return ""
	}
	if strings.HasPrefix(e.DevName, "/") {
		return e.DevName
	}
	return "/dev/" + e.DevName
}

// Monitor reads uevents for a set of subsystems.
type Monitor struct {
	fd         int
	subsystems []string
}

// Open binds a netlink socket to the kernel broadcast group. With no
// subsystems every event is reported.
func Open(subsystems ...string) (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, err
	}

	if err := unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: 1}); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	// A receive timeout lets Run notice context cancellation.
	tv := unix.Timeval{Sec: 1}
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	return &Monitor{fd: fd, subsystems: subsystems}, nil
}

// Close releases the socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// Run calls fn for every matching event until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, fn func(Event)) error {
	buf := make([]byte, 8192)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, _, err := unix.Recvfrom(m.fd, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			return err
		}

		ev, ok := Parse(buf[:n])
		if !ok {
			continue
		}
		if len(m.subsystems) > 0 && !slices.Contains(m.subsystems, ev.Subsystem) {
			continue
		}
		fn(ev)
	}
}

// Parse decodes "ACTION@KOBJ\0KEY=VALUE\0...". Messages re-broadcast by
// libudev carry a binary header which is skipped.
func Parse(data []byte) (Event, bool) {
	if bytes.HasPrefix(data, []byte("libudev")) {
		data = skipLibudevHeader(data)
	}

	fields := bytes.Split(data, []byte{0})
	if len(fields) == 0 {
		return Event{}, false
	}

	action, kobj, found := strings.Cut(string(fields[0]), "@")
	if !found || action == "" {
		return Event{}, false
	}

	ev := Event{Action: action, KObj: kobj, Env: make(map[string]string)}
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(string(field), "=")
		if !ok || key == "" {
			continue
		}
		ev.Env[key] = value
		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		}
	}
	return ev, true
}

func skipLibudevHeader(data []byte) []byte {
	for i := 0; i < len(data)-1; i++ {
		if data[i] != 0 {
			continue
		}
		rest := data[i+1:]
		head := rest
		if end := bytes.IndexByte(rest, 0); end >= 0 {
			head = rest[:end]
		}
		if at := bytes.IndexByte(head, '@'); at > 0 && at < 20 {
			return rest
		}
	}
	return data
}

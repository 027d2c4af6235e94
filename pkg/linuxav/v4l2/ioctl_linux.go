//go:build linux

package v4l2

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func ioctl(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func openDevice(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
}

// withDevice opens path for the duration of fn.
func withDevice(path string, fn func(fd int) error) error {
	fd, err := openDevice(path)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return fn(fd)
}

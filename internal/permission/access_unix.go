//go:build unix

package permission

import "golang.org/x/sys/unix"

// checkAccess reports whether the process may open path for capture.
func checkAccess(path string) error {
	return unix.Access(path, unix.R_OK|unix.W_OK)
}

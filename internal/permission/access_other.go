//go:build !unix

package permission

func checkAccess(string) error {
	return nil
}

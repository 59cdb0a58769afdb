//go:build windows

package safefile

import (
	"os"
)

// OpenNoFollow opens path for writing. O_NOFOLLOW is not available on
// Windows; WriteAtomic checks the destination with Lstat before renaming.
func OpenNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// OpenNoFollowRead opens path for reading.
func OpenNoFollowRead(path string) (*os.File, error) {
	return os.Open(path)
}

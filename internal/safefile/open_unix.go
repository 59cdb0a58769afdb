//go:build !windows

package safefile

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/minutes/internal/errors"
)

// OpenNoFollow opens path with O_NOFOLLOW so a symlink planted at the final
// path component is rejected. O_CLOEXEC prevents FD leaks across exec.
//
// Only the final component is protected. Callers that accept user paths
// must also require the file to sit directly in a trusted directory.
func OpenNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	fd, err := syscall.Open(path, flag|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("cannot write to symlink")
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// OpenNoFollowRead opens path read-only with O_NOFOLLOW.
// A missing file is reported as os.ErrNotExist.
func OpenNoFollowRead(path string) (*os.File, error) {
	fd, err := syscall.Open(path, syscall.O_RDONLY|syscall.O_NOFOLLOW|syscall.O_CLOEXEC, 0)
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidRequest("cannot read from symlink")
		}
		if stderrors.Is(err, syscall.ENOENT) {
			return nil, os.ErrNotExist
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

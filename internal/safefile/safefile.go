// Package safefile writes files atomically and opens them without
// following symlinks.
package safefile

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"runtime"
)

// ErrDestinationExists is returned on Windows when WriteAtomic would have
// to replace an existing file.
var ErrDestinationExists = fmt.Errorf("destination already exists")

// WriteAtomic streams write into a temp file next to path, syncs it, and
// renames it over path. On any failure the temp file is removed and an
// existing file at path is left untouched. A symlink at path is refused.
func WriteAtomic(path string, perm os.FileMode, write func(io.Writer) error) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := OpenNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if err := write(file); err != nil {
		return err
	}
	if err := file.Sync(); err != nil {
		return err
	}
	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	file = nil

	// os.Rename would replace the link itself, not its target
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("destination is a symlink: %s", path)
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return ErrDestinationExists
			}
		}
		return fmt.Errorf("failed to finalize write: %w", err)
	}

	success = true
	return nil
}

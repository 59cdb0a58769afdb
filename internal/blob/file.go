package blob

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hpungsan/minutes/internal/safefile"
)

// File stores each key as <dir>/<key>.json. Writes go to a temp file that
// is synced and renamed into place, so readers see either the old value or
// the new one.
type File struct {
	dir string
}

// NewFile creates dir (0700) if needed and returns a File rooted there.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	_ = os.Chmod(dir, 0700)
	return &File{dir: dir}, nil
}

// Dir returns the directory values are stored in.
func (f *File) Dir() string {
	return f.dir
}

func (f *File) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get implements Medium.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	path, err := f.path(key)
	if err != nil {
		return "", false, err
	}

	file, err := safefile.OpenNoFollowRead(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set implements Medium.
func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(key)
	if err != nil {
		return err
	}

	return safefile.WriteAtomic(path, 0600, func(w io.Writer) error {
		_, err := io.WriteString(w, value)
		return err
	})
}

// Remove implements Medium.
func (f *File) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !stderrors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Close implements io.Closer. It is a no-op.
func (f *File) Close() error {
	return nil
}

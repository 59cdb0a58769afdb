// Package blob provides the key/value persistence media the meeting store
// writes its collection to. Each medium stores whole string values under
// string keys; there is no partial update.
package blob

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/errors"
)

// Medium is a key/value blob store.
type Medium interface {
	// Get returns the value under key; the bool is false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set replaces the value under key. A failed Set leaves the old value in place.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Backend is a Medium that holds resources until closed.
type Backend interface {
	Medium
	io.Closer
}

// Open builds the backend selected by cfg.Backend, rooted at baseDir.
func Open(cfg *config.Config, baseDir string) (Backend, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(0), nil
	case config.BackendFile:
		return NewFile(filepath.Join(baseDir, "blobs"))
	case config.BackendSQLite, "":
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, err
		}
		db.ConfigurePool(database, cfg)
		return NewSQLite(database), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ValidateKey rejects keys that are empty or unsafe as file names.
func ValidateKey(key string) error {
	if key == "" {
		return errors.NewInvalidRequest("key is required")
	}
	if len(key) > 128 || !keyPattern.MatchString(key) {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid key %q: use letters, digits, '_', '.', '-'", key))
	}
	return nil
}

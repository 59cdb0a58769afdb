package blob

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/metrics"
)

// maxBusyRetries bounds retries of a single operation on SQLITE_BUSY.
const maxBusyRetries = 5

// SQLite stores values in the kv table of the minutes database.
// Operations that fail with a BUSY/LOCKED error are retried with
// exponential backoff; every other error is returned immediately.
type SQLite struct {
	db *sql.DB

	// newBackOff is replaceable in tests.
	newBackOff func() backoff.BackOff
}

// NewSQLite wraps an initialized database (see db.Init). Close closes it.
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{
		db: database,
		newBackOff: func() backoff.BackOff {
			exp := backoff.NewExponentialBackOff()
			exp.InitialInterval = 20 * time.Millisecond
			exp.Multiplier = 2
			exp.MaxInterval = 500 * time.Millisecond
			exp.MaxElapsedTime = 5 * time.Second
			return backoff.WithMaxRetries(exp, maxBusyRetries)
		},
	}
}

// DB returns the underlying database handle.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) retry(ctx context.Context, op func() error) error {
	attempts := 0
	return backoff.Retry(func() error {
		if attempts > 0 {
			metrics.BlobRetries.WithLabelValues("sqlite").Inc()
		}
		attempts++

		err := op()
		if err != nil && !db.IsBusy(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(s.newBackOff(), ctx))
}

// Get implements Medium.
func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		ok    bool
	)
	err := s.retry(ctx, func() error {
		var err error
		value, ok, err = db.GetValue(ctx, s.db, key)
		return err
	})
	if err != nil {
		return "", false, err
	}
	return value, ok, nil
}

// Set implements Medium.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return s.retry(ctx, func() error {
		return db.PutValue(ctx, s.db, key, value)
	})
}

// Remove implements Medium.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	return s.retry(ctx, func() error {
		return db.DeleteValue(ctx, s.db, key)
	})
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

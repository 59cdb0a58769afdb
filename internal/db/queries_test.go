package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutAndGetValue(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := Init(tmpDir)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	_, ok, err := GetValue(ctx, db, "sgapp_meetings")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, PutValue(ctx, db, "sgapp_meetings", `[{"id":"a"}]`))

	value, ok, err := GetValue(ctx, db, "sgapp_meetings")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"a"}]`, value)

	ts, err := UpdatedAt(ctx, db, "sgapp_meetings")
	require.NoError(t, err)
	require.NotZero(t, ts)
}

func TestPutValue_Replaces(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := Init(tmpDir)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, PutValue(ctx, db, "k", "one"))
	require.NoError(t, PutValue(ctx, db, "k", "two"))

	value, ok, err := GetValue(ctx, db, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", value)

	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestPutValue_EmptyString(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := Init(tmpDir)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, PutValue(ctx, db, "k", ""))

	value, ok, err := GetValue(ctx, db, "k")
	require.NoError(t, err)
	require.True(t, ok, "empty value is still present")
	require.Equal(t, "", value)
}

func TestDeleteValue(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := Init(tmpDir)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, PutValue(ctx, db, "k", "v"))
	require.NoError(t, DeleteValue(ctx, db, "k"))

	_, ok, err := GetValue(ctx, db, "k")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting again is fine
	require.NoError(t, DeleteValue(ctx, db, "k"))

	ts, err := UpdatedAt(ctx, db, "k")
	require.NoError(t, err)
	require.Zero(t, ts)
}

func TestGetValue_CancelledContext(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := Init(tmpDir)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = GetValue(ctx, db, "k")
	require.Error(t, err)
}

func TestIsBusy(t *testing.T) {
	require.False(t, IsBusy(nil))
	require.False(t, IsBusy(errors.New("no such table: kv")))
	require.True(t, IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	require.True(t, IsBusy(fmt.Errorf("put: %w", errors.New("SQLITE_LOCKED"))))
}

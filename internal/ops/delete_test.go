package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/minutes/internal/errors"
)

func TestDelete_ByID(t *testing.T) {
	st := newTestStore(t)
	recs := seed(t, st, 2)
	ctx := context.Background()

	out, err := Delete(ctx, st, DeleteInput{ID: recs[0].ID})
	require.NoError(t, err)
	require.True(t, out.Deleted)
	require.Equal(t, recs[0].ID, out.ID)

	all := st.ListAll(ctx)
	require.Len(t, all, 1)
	require.Equal(t, recs[1].ID, all[0].ID)
}

func TestDelete_NotFound(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, 1)

	_, err := Delete(context.Background(), st, DeleteInput{ID: "missing"})
	require.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)
	require.Len(t, st.ListAll(context.Background()), 1)
}

func TestDelete_Twice(t *testing.T) {
	st := newTestStore(t)
	recs := seed(t, st, 1)
	ctx := context.Background()

	_, err := Delete(ctx, st, DeleteInput{ID: recs[0].ID})
	require.NoError(t, err)
	_, err = Delete(ctx, st, DeleteInput{ID: recs[0].ID})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDelete_EmptyID(t *testing.T) {
	st := newTestStore(t)

	_, err := Delete(context.Background(), st, DeleteInput{})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/minutes/internal/meeting"
)

func TestList_Empty(t *testing.T) {
	st := newTestStore(t)

	out, err := List(context.Background(), st, ListInput{})
	require.NoError(t, err)
	require.NotNil(t, out.Items)
	require.Empty(t, out.Items)
	require.Equal(t, 0, out.Pagination.Total)
	require.False(t, out.Pagination.HasMore)
}

func TestList_MostRecentFirst(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, 3)

	out, err := List(context.Background(), st, ListInput{})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	require.Equal(t, "m2", out.Items[0].Title)
	require.Equal(t, "m0", out.Items[2].Title)
	require.Equal(t, 3, out.Items[0].WordCount)
	require.Equal(t, "created_desc", out.Sort)
}

func TestList_Pagination(t *testing.T) {
	st := newTestStore(t)
	seed(t, st, 5)
	ctx := context.Background()

	page1, err := List(ctx, st, ListInput{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	require.True(t, page1.Pagination.HasMore)
	require.Equal(t, 5, page1.Pagination.Total)

	page3, err := List(ctx, st, ListInput{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	require.Equal(t, "m0", page3.Items[0].Title)
	require.False(t, page3.Pagination.HasMore)

	past, err := List(ctx, st, ListInput{Limit: 2, Offset: 10})
	require.NoError(t, err)
	require.Empty(t, past.Items)
	require.False(t, past.Pagination.HasMore)
}

func TestList_LimitBounds(t *testing.T) {
	st := newTestStore(t)

	out, err := List(context.Background(), st, ListInput{Limit: 1000, Offset: -3})
	require.NoError(t, err)
	require.Equal(t, MaxListLimit, out.Pagination.Limit)
	require.Equal(t, 0, out.Pagination.Offset)
}

func TestList_Query(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Save(ctx, meeting.Candidate{Title: "Budget review", Transcript: "numbers"})
	require.NoError(t, err)
	_, err = st.Save(ctx, meeting.Candidate{Title: "Standup", Transcript: "talked about the BUDGET"})
	require.NoError(t, err)
	_, err = st.Save(ctx, meeting.Candidate{Title: "Retro", Participants: []string{"Budgie"}})
	require.NoError(t, err)
	_, err = st.Save(ctx, meeting.Candidate{Title: "Hiring"})
	require.NoError(t, err)

	out, err := List(ctx, st, ListInput{Query: "  budg "})
	require.NoError(t, err)
	require.Equal(t, 3, out.Pagination.Total)
	require.Equal(t, "Retro", out.Items[0].Title)
	require.Equal(t, "Standup", out.Items[1].Title)
	require.Equal(t, "Budget review", out.Items[2].Title)
}

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/minutes/internal/blob"
	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/db"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/metrics"
)

func newTestStore(t *testing.T) (*Store, *blob.Memory) {
	t.Helper()
	mem := blob.NewMemory(0)
	return New(mem, config.DefaultConfig(), zerolog.Nop()), mem
}

// requireSameRecord compares every persisted field; times by instant.
func requireSameRecord(t *testing.T, want, got *meeting.Record) {
	t.Helper()
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Title, got.Title)
	require.Equal(t, want.CreatedDate, got.CreatedDate)
	require.True(t, want.StartTime.Equal(got.StartTime), "startTime %v != %v", want.StartTime, got.StartTime)
	require.True(t, want.EndTime.Equal(got.EndTime), "endTime %v != %v", want.EndTime, got.EndTime)
	require.Equal(t, want.DurationLabel, got.DurationLabel)
	require.Equal(t, want.Transcript, got.Transcript)
	require.Equal(t, want.Summary, got.Summary)
	require.Equal(t, want.Participants, got.Participants)
	require.Equal(t, want.RecordingSeconds, got.RecordingSeconds)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", want.CreatedAt, got.CreatedAt)
}

func TestSave_FillsDefaults(t *testing.T) {
	s, _ := newTestStore(t)
	fixed := time.Date(2026, 3, 14, 9, 30, 15, 123456789, time.UTC)
	s.now = func() time.Time { return fixed }

	rec, err := s.Save(context.Background(), meeting.Candidate{RecordingSeconds: 65})
	require.NoError(t, err)

	require.NotEmpty(t, rec.ID)
	require.Equal(t, "Untitled Meeting", rec.Title)
	require.Equal(t, []string{"You"}, rec.Participants)
	require.Equal(t, "3/14/2026", rec.CreatedDate)
	require.Equal(t, "01:05", rec.DurationLabel)
	require.Equal(t, "", rec.Transcript)
	require.Equal(t, "", rec.Summary)
	require.True(t, rec.EndTime.Equal(fixed.Truncate(time.Millisecond)))
	require.True(t, rec.StartTime.Equal(rec.EndTime.Add(-65*time.Second)))
	require.True(t, rec.CreatedAt.Equal(fixed.Truncate(time.Millisecond)))
}

func TestSave_UsesConfiguredDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DefaultTitle = "Sync"
	cfg.DefaultParticipants = []string{"Ana", "Ben"}
	s := New(blob.NewMemory(0), cfg, zerolog.Nop())

	rec, err := s.Save(context.Background(), meeting.Candidate{Title: "   ", Participants: []string{" ", ""}})
	require.NoError(t, err)
	require.Equal(t, "Sync", rec.Title)
	require.Equal(t, []string{"Ana", "Ben"}, rec.Participants)
}

func TestSave_RoundTrip(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	sqlite := blob.NewSQLite(database)
	defer sqlite.Close()

	file, err := blob.NewFile(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)

	media := map[string]blob.Medium{
		"memory": blob.NewMemory(0),
		"file":   file,
		"sqlite": sqlite,
	}

	for name, m := range media {
		t.Run(name, func(t *testing.T) {
			s := New(m, config.DefaultConfig(), zerolog.Nop())
			saved, err := s.Save(ctx, meeting.Candidate{
				Title:            "Quarterly review",
				StartTime:        start,
				EndTime:          start.Add(90 * time.Second),
				Transcript:       "Welcome everyone. Let's begin.",
				Summary:          "short",
				Participants:     []string{"Ana", "Ben"},
				RecordingSeconds: 90,
			})
			require.NoError(t, err)

			got, ok := s.GetByID(ctx, saved.ID)
			require.True(t, ok)
			requireSameRecord(t, saved, got)
			require.Equal(t, "01:30", got.DurationLabel)
		})
	}
}

func TestSave_RetentionCap(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 57; i++ {
		rec, err := s.Save(ctx, meeting.Candidate{Title: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	all := s.ListAll(ctx)
	require.Len(t, all, 50)
	// Most recent first; the 7 oldest evicted
	for i, r := range all {
		require.Equal(t, ids[56-i], r.ID)
	}
	_, ok := s.GetByID(ctx, ids[6])
	require.False(t, ok)
	_, ok = s.GetByID(ctx, ids[7])
	require.True(t, ok)
}

func TestSave_ConfiguredCap(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxMeetings = 3
	s := New(blob.NewMemory(0), cfg, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Save(ctx, meeting.Candidate{Title: fmt.Sprintf("m%d", i)})
		require.NoError(t, err)
	}
	all := s.ListAll(ctx)
	require.Len(t, all, 3)
	require.Equal(t, "m4", all[0].Title)
	require.Equal(t, "m2", all[2].Title)
}

func TestSave_ReplacesExistingID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, meeting.Candidate{Title: "draft"})
	require.NoError(t, err)
	_, err = s.Save(ctx, meeting.Candidate{Title: "other"})
	require.NoError(t, err)

	_, err = s.Save(ctx, meeting.Candidate{ID: first.ID, Title: "final"})
	require.NoError(t, err)

	all := s.ListAll(ctx)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID)
	require.Equal(t, "final", all[0].Title)
}

func TestSave_ZeroDuration(t *testing.T) {
	s, _ := newTestStore(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rec, err := s.Save(context.Background(), meeting.Candidate{StartTime: now, EndTime: now})
	require.NoError(t, err)
	require.Equal(t, 0, rec.RecordingSeconds)
	require.Equal(t, "00:00", rec.DurationLabel)
	require.True(t, rec.StartTime.Equal(rec.EndTime))
}

func TestSave_RejectsEndBeforeStart(t *testing.T) {
	s, mem := newTestStore(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.Save(context.Background(), meeting.Candidate{StartTime: now, EndTime: now.Add(-time.Minute)})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	// Start in the future with no end resolves end to now, which is before start
	s.now = func() time.Time { return now }
	_, err = s.Save(context.Background(), meeting.Candidate{StartTime: now.Add(time.Hour)})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, ok, _ := mem.Get(context.Background(), s.Key())
	require.False(t, ok, "nothing written")
}

func TestSave_WriteFailureLeavesCollectionUnchanged(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	kept, err := s.Save(ctx, meeting.Candidate{Title: "kept"})
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.StorageFailures.WithLabelValues("write"))
	mem.SetQuota(1)

	_, err = s.Save(ctx, meeting.Candidate{Title: "too big", Transcript: "lots of words"})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrStorageWrite))
	require.ErrorIs(t, err, blob.ErrQuotaExceeded)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.StorageFailures.WithLabelValues("write")))

	all := s.ListAll(ctx)
	require.Len(t, all, 1)
	require.Equal(t, kept.ID, all[0].ID)
}

func TestSave_CancelledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Save(ctx, meeting.Candidate{})
	require.True(t, errors.Is(err, errors.ErrCancelled))
}

func TestSave_Concurrent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Save(ctx, meeting.Candidate{Title: fmt.Sprintf("m%d", i)})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	all := s.ListAll(ctx)
	require.Len(t, all, 20)
	seen := make(map[string]bool)
	for _, r := range all {
		require.False(t, seen[r.ID], "duplicate id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestListAll_Empty(t *testing.T) {
	s, _ := newTestStore(t)
	all := s.ListAll(context.Background())
	require.NotNil(t, all)
	require.Empty(t, all)
}

func TestListAll_CorruptStorage(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"{not json", `{"id":"x"}`, "null", "   ", `"text"`} {
		t.Run(raw, func(t *testing.T) {
			s, mem := newTestStore(t)
			require.NoError(t, mem.Set(ctx, s.Key(), raw))

			all := s.ListAll(ctx)
			require.NotNil(t, all)
			require.Empty(t, all)

			_, ok := s.GetByID(ctx, "x")
			require.False(t, ok)

			// A save starts over from an empty collection
			_, err := s.Save(ctx, meeting.Candidate{Title: "fresh"})
			require.NoError(t, err)
			require.Len(t, s.ListAll(ctx), 1)
		})
	}
}

func TestListAll_ReadsExternalChanges(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, meeting.Candidate{Title: "a"})
	require.NoError(t, err)

	require.NoError(t, mem.Set(ctx, s.Key(), `[{"id":"ext","title":"external"}]`))
	all := s.ListAll(ctx)
	require.Len(t, all, 1)
	require.Equal(t, "ext", all[0].ID)

	_, err = s.Save(ctx, meeting.Candidate{Title: "b"})
	require.NoError(t, err)
	all = s.ListAll(ctx)
	require.Len(t, all, 2)
	require.Equal(t, "ext", all[1].ID)
}

func TestGetByID_Missing(t *testing.T) {
	s, _ := newTestStore(t)
	rec, ok := s.GetByID(context.Background(), "nope")
	require.False(t, ok)
	require.Nil(t, rec)

	_, ok = s.GetByID(context.Background(), "  ")
	require.False(t, ok)
}

func TestDeleteByID_Idempotent(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	a, err := s.Save(ctx, meeting.Candidate{Title: "a"})
	require.NoError(t, err)
	b, err := s.Save(ctx, meeting.Candidate{Title: "b"})
	require.NoError(t, err)

	require.True(t, s.DeleteByID(ctx, a.ID))
	after, _, err := mem.Get(ctx, s.Key())
	require.NoError(t, err)

	require.True(t, s.DeleteByID(ctx, a.ID))
	again, _, err := mem.Get(ctx, s.Key())
	require.NoError(t, err)
	require.Equal(t, after, again)

	all := s.ListAll(ctx)
	require.Len(t, all, 1)
	require.Equal(t, b.ID, all[0].ID)
}

func TestRemove_ReportsFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Save(ctx, meeting.Candidate{})
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.Deletes)
	found, err := s.Remove(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Deletes))

	found, err = s.Remove(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestDeleteByID_WriteFailure(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	rec, err := s.Save(ctx, meeting.Candidate{Transcript: "some words here"})
	require.NoError(t, err)
	_, err = s.Save(ctx, meeting.Candidate{})
	require.NoError(t, err)

	// Quota smaller than the reduced collection
	mem.SetQuota(10)
	require.False(t, s.DeleteByID(ctx, rec.ID))
	require.Len(t, s.ListAll(ctx), 2)
}

func TestClearAll(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, meeting.Candidate{})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(ctx))

	_, ok, err := mem.Get(ctx, s.Key())
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, s.ListAll(ctx))

	// Clearing an empty store is fine
	require.NoError(t, s.ClearAll(ctx))
}

func TestGenerateSummary_Delegates(t *testing.T) {
	s, _ := newTestStore(t)
	require.Equal(t, meeting.NoTranscriptSummary, s.GenerateSummary("", "00:00", "x"))
	require.Equal(t,
		meeting.GenerateSummary("a b. c", "00:05", "T"),
		s.GenerateSummary("a b. c", "00:05", "T"),
	)
}

func TestRestore_MergeAppendsUnknownIDs(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	kept, err := s.Save(ctx, meeting.Candidate{Title: "kept"})
	require.NoError(t, err)

	imported := []meeting.Record{
		{ID: kept.ID, Title: "stale copy"},
		{ID: "01IMPORTED", Title: "imported"},
	}
	n, err := s.Restore(ctx, imported, false)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	all := s.ListAll(ctx)
	require.Len(t, all, 2)
	require.Equal(t, "kept", all[0].Title)
	require.Equal(t, "01IMPORTED", all[1].ID)
}

func TestRestore_Replace(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, meeting.Candidate{Title: "gone"})
	require.NoError(t, err)

	n, err := s.Restore(ctx, []meeting.Record{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}}, true)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	all := s.ListAll(ctx)
	require.Len(t, all, 2)
	require.Equal(t, "a", all[0].ID)
	require.Equal(t, "b", all[1].ID)
}

func TestRestore_RespectsCap(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxMeetings = 2
	s := New(blob.NewMemory(0), cfg, zerolog.Nop())
	ctx := context.Background()

	_, err := s.Save(ctx, meeting.Candidate{Title: "newest"})
	require.NoError(t, err)

	n, err := s.Restore(ctx, []meeting.Record{{ID: "x"}, {ID: "y"}, {ID: "z"}}, false)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, s.ListAll(ctx), 2)
	require.Equal(t, 2, s.Capacity())
}

func TestRestore_RejectsMissingID(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Restore(context.Background(), []meeting.Record{{Title: "no id"}}, false)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	require.Empty(t, s.ListAll(context.Background()))
}

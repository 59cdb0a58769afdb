// Package store persists completed meeting records.
//
// The whole collection is one JSON array stored under a single key of a
// blob.Medium, most recent insert first, capped at a configured size.
// Every operation re-reads the persisted value; nothing is cached between
// calls.
package store

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/hpungsan/minutes/internal/blob"
	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/metrics"
)

// Store is the meeting record store. It is safe for concurrent use within
// one process; it does not coordinate with other processes.
type Store struct {
	medium              blob.Medium
	key                 string
	maxMeetings         int
	defaultTitle        string
	defaultParticipants []string
	log                 zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time

	// mu serializes read-modify-write cycles and guards entropy.
	mu      sync.Mutex
	entropy io.Reader
}

// New returns a Store over medium. A nil cfg uses config.DefaultConfig.
func New(medium blob.Medium, cfg *config.Config, log zerolog.Logger) *Store {
	def := config.DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	s := &Store{
		medium:              medium,
		key:                 cfg.StorageKey,
		maxMeetings:         cfg.MaxMeetings,
		defaultTitle:        cfg.DefaultTitle,
		defaultParticipants: cfg.DefaultParticipants,
		log:                 log.With().Str("component", "store").Logger(),
		now:                 time.Now,
		entropy:             ulid.Monotonic(rand.Reader, 0),
	}
	if s.key == "" {
		s.key = def.StorageKey
	}
	if s.maxMeetings == 0 {
		s.maxMeetings = def.MaxMeetings
	}
	if s.defaultTitle == "" {
		s.defaultTitle = def.DefaultTitle
	}
	if len(s.defaultParticipants) == 0 {
		s.defaultParticipants = def.DefaultParticipants
	}
	return s
}

// Key returns the blob key the collection is stored under.
func (s *Store) Key() string {
	return s.key
}

// Capacity returns the maximum number of records kept.
func (s *Store) Capacity() int {
	return s.maxMeetings
}

// ListAll returns the stored records, most recent first. Missing,
// unreadable, or corrupt data yields an empty slice, never an error.
func (s *Store) ListAll(ctx context.Context) []meeting.Record {
	return s.read(ctx)
}

// GetByID returns the record with the given id.
func (s *Store) GetByID(ctx context.Context, id string) (*meeting.Record, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	for _, r := range s.read(ctx) {
		if r.ID == id {
			rec := r
			return &rec, true
		}
	}
	return nil, false
}

// Save fills defaults on c, prepends the resulting record, trims the
// collection to the cap, and writes it back in one Set. A candidate whose
// ID is already stored replaces that record. On a write failure the stored
// collection is unchanged and a STORAGE_WRITE error is returned.
func (s *Store) Save(ctx context.Context, c meeting.Candidate) (*meeting.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("save")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.build(c)
	if err != nil {
		return nil, err
	}

	existing := s.read(ctx)
	next := make([]meeting.Record, 0, len(existing)+1)
	next = append(next, *rec)
	for _, r := range existing {
		if r.ID != rec.ID {
			next = append(next, r)
		}
	}
	if s.maxMeetings > 0 && len(next) > s.maxMeetings {
		next = next[:s.maxMeetings]
	}

	if err := s.write(ctx, next); err != nil {
		return nil, err
	}

	metrics.Saves.Inc()
	s.log.Debug().Str("id", rec.ID).Int("count", len(next)).Msg("meeting saved")
	return rec, nil
}

// DeleteByID removes the record with the given id and reports success.
// Deleting an id that is not stored is a successful no-op. Write failures
// are logged and reported as false.
func (s *Store) DeleteByID(ctx context.Context, id string) bool {
	if _, err := s.Remove(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("delete failed")
		return false
	}
	return true
}

// Remove deletes the record with the given id. It reports whether a record
// was found; nothing is written when none was.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.NewCancelled("delete")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.read(ctx)
	next := make([]meeting.Record, 0, len(existing))
	for _, r := range existing {
		if r.ID != id {
			next = append(next, r)
		}
	}
	if len(next) == len(existing) {
		return false, nil
	}

	if err := s.write(ctx, next); err != nil {
		return false, err
	}
	metrics.Deletes.Inc()
	return true, nil
}

// ClearAll removes the whole persisted collection.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.medium.Remove(ctx, s.key); err != nil {
		metrics.StorageFailures.WithLabelValues("write").Inc()
		return errors.NewStorageWrite(err)
	}
	return nil
}

// Restore writes previously exported records back. With replace the
// stored collection becomes records; otherwise records whose id is not
// already stored are appended after the existing ones, as the oldest
// entries. The cap still applies. It returns how many of records are
// stored afterwards.
func (s *Store) Restore(ctx context.Context, records []meeting.Record, replace bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.NewCancelled("restore")
	}
	for i := range records {
		if strings.TrimSpace(records[i].ID) == "" {
			return 0, errors.NewInvalidRequest(fmt.Sprintf("record %d has no id", i))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next []meeting.Record
	seen := make(map[string]bool)
	if !replace {
		next = s.read(ctx)
		for _, r := range next {
			seen[r.ID] = true
		}
	}
	base := len(next)
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		next = append(next, r)
	}
	if s.maxMeetings > 0 && len(next) > s.maxMeetings {
		next = next[:s.maxMeetings]
	}

	if err := s.write(ctx, next); err != nil {
		return 0, err
	}
	restored := len(next) - base
	if restored < 0 {
		restored = 0
	}
	s.log.Debug().Int("restored", restored).Bool("replace", replace).Msg("meetings restored")
	return restored, nil
}

// GenerateSummary is the deterministic summary template; see meeting.GenerateSummary.
func (s *Store) GenerateSummary(transcript, durationLabel, title string) string {
	return meeting.GenerateSummary(transcript, durationLabel, title)
}

// build turns a candidate into a complete record. Caller holds s.mu.
func (s *Store) build(c meeting.Candidate) (*meeting.Record, error) {
	at := s.now()

	id := strings.TrimSpace(c.ID)
	if id == "" {
		u, err := ulid.New(ulid.Timestamp(at), s.entropy)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		id = u.String()
	}

	title := strings.TrimSpace(c.Title)
	if title == "" {
		title = s.defaultTitle
	}

	participants := cleanParticipants(c.Participants)
	if len(participants) == 0 {
		participants = append([]string(nil), s.defaultParticipants...)
	}

	end := c.EndTime
	if end.IsZero() {
		end = at
	}
	start := c.StartTime
	if start.IsZero() {
		start = end.Add(-time.Duration(c.RecordingSeconds) * time.Second)
	}
	start, end = normalizeTime(start), normalizeTime(end)
	if end.Before(start) {
		return nil, errors.NewInvalidRequest("endTime must not be before startTime")
	}

	label := c.DurationLabel
	if label == "" {
		label = meeting.FormatDuration(c.RecordingSeconds)
	}

	return &meeting.Record{
		ID:               id,
		Title:            title,
		CreatedDate:      at.Format(meeting.DateLayout),
		StartTime:        start,
		EndTime:          end,
		DurationLabel:    label,
		Transcript:       c.Transcript,
		Summary:          c.Summary,
		Participants:     participants,
		RecordingSeconds: c.RecordingSeconds,
		CreatedAt:        normalizeTime(at),
	}, nil
}

// read loads the collection, absorbing every failure as "no data".
func (s *Store) read(ctx context.Context) []meeting.Record {
	raw, ok, err := s.medium.Get(ctx, s.key)
	if err != nil {
		metrics.StorageFailures.WithLabelValues("read").Inc()
		s.log.Warn().Err(errors.NewStorageRead(err)).Msg("treating unreadable meeting storage as empty")
		return []meeting.Record{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []meeting.Record{}
	}

	var records []meeting.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		metrics.StorageFailures.WithLabelValues("read").Inc()
		s.log.Warn().Err(errors.NewStorageRead(err)).Msg("treating corrupt meeting storage as empty")
		return []meeting.Record{}
	}
	if records == nil {
		return []meeting.Record{}
	}
	return records
}

// write replaces the stored collection in a single Set.
func (s *Store) write(ctx context.Context, records []meeting.Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.medium.Set(ctx, s.key, string(data)); err != nil {
		metrics.StorageFailures.WithLabelValues("write").Inc()
		return errors.NewStorageWrite(err)
	}
	return nil
}

func cleanParticipants(in []string) []string {
	var out []string
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeTime converts to UTC at millisecond precision, the resolution
// persisted timestamps round-trip at.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Package session implements the recording session state machine.
//
// A Session moves Idle -> Recording -> Stopped and never leaves Stopped.
// While recording, a one-second ticker counts elapsed seconds and a
// consumer goroutine applies Source events. Every callback re-checks the
// state under the session mutex, so anything arriving after Stop or
// Cancel is dropped instead of racing the transition.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/metrics"
)

// Status is a session state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusStopped   Status = "stopped"
)

// TickInterval is how often elapsed seconds advance.
const TickInterval = time.Second

// Chunk is the bookkeeping for one captured segment.
type Chunk struct {
	ID          string `json:"id"`
	Transcribed bool   `json:"transcribed"`
	Text        string `json:"text,omitempty"`
}

// Progress reports captured versus transcribed chunks.
type Progress struct {
	Chunks      int `json:"chunks"`
	Transcribed int `json:"transcribed"`
}

// Snapshot is the finalized result of a stopped session.
// StartTime is always EndTime minus RecordingSeconds.
type Snapshot struct {
	SessionID        string    `json:"session_id"`
	Transcript       string    `json:"transcript"`
	RecordingSeconds int       `json:"recording_seconds"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Chunks           int       `json:"chunks"`
	Transcribed      int       `json:"transcribed"`
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for ticks and stop timestamps.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithLogger sets the logger for absorbed source errors.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session is one recording. Create a new Session for every recording.
type Session struct {
	id    string
	src   Source
	clock Clock
	log   zerolog.Logger

	mu        sync.Mutex
	status    Status
	cancelled bool
	elapsed   int
	fragments []string
	chunks    []Chunk
	snapshot  *Snapshot
	ticker    Ticker
	runCancel context.CancelFunc
	drained   chan struct{}

	// wg tracks the ticker and consumer goroutines.
	wg sync.WaitGroup
}

// New returns an Idle session reading from src. src may be nil, in which
// case fragments only arrive through AppendFragment.
func New(src Source, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		src:     src,
		clock:   SystemClock(),
		log:     zerolog.Nop(),
		status:  StatusIdle,
		drained: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("component", "session").Str("session_id", s.id).Logger()
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Elapsed returns the seconds counted so far.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Drained is closed once the source has closed its channel and every
// event it sent has been applied. It never closes for a nil source or
// when the session stops first.
func (s *Session) Drained() <-chan struct{} {
	return s.drained
}

// Transcript returns the fragments received so far, space-joined.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.fragments, " ")
}

// Start begins recording. It fails with INVALID_STATE unless the session
// is Idle, and returns the Source's error unchanged if the Source cannot
// start, leaving the session Idle. Cancelling ctx stops the session as if
// Stop had been called; the result stays available through Snapshot.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusIdle {
		return errors.NewInvalidState("start", s.stateLabel())
	}

	s.elapsed = 0
	s.fragments = nil
	s.chunks = nil

	// The run context outlives ctx so teardown goes through Stop.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	var events <-chan Event
	if s.src != nil {
		var err error
		events, err = s.src.Start(runCtx)
		if err != nil {
			cancel()
			return err
		}
	}

	s.status = StatusRecording
	s.runCancel = cancel
	s.ticker = s.clock.NewTicker(TickInterval)

	s.wg.Add(1)
	go s.tick(runCtx, s.ticker)
	if events != nil {
		s.wg.Add(1)
		go s.consume(runCtx, events)
	}
	go s.watch(ctx, runCtx)

	s.log.Debug().Msg("recording started")
	return nil
}

// AppendFragment adds text to the transcript and reports whether it was
// kept. Whitespace-only text is ignored; text arriving while not Recording
// is dropped.
func (s *Session) AppendFragment(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRecording {
		metrics.DroppedFragments.Inc()
		return false
	}
	s.fragments = append(s.fragments, text)
	return true
}

// RecordChunk registers a captured segment awaiting transcription.
func (s *Session) RecordChunk(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewInvalidRequest("chunk id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRecording {
		return errors.NewInvalidState("record chunk", s.stateLabel())
	}
	for _, c := range s.chunks {
		if c.ID == id {
			return errors.NewInvalidRequest("chunk already recorded: " + id)
		}
	}
	s.chunks = append(s.chunks, Chunk{ID: id})
	return nil
}

// MarkChunkTranscribed records the text produced for a chunk. It does not
// touch the transcript. Unknown ids fail with NOT_FOUND.
func (s *Session) MarkChunkTranscribed(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRecording {
		return errors.NewInvalidState("mark chunk", s.stateLabel())
	}
	for i := range s.chunks {
		if s.chunks[i].ID == id {
			s.chunks[i].Transcribed = true
			s.chunks[i].Text = text
			return nil
		}
	}
	return errors.NewNotFound("chunk", id)
}

// Progress reports how many chunks have been captured and transcribed.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

// Chunks returns a copy of the chunk bookkeeping.
func (s *Session) Chunks() []Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Stop ends the recording and returns the finalized snapshot. Calling Stop
// on a stopped session returns the same snapshot. Stop fails with
// INVALID_STATE on an Idle session or one that was cancelled.
func (s *Session) Stop() (*Snapshot, error) {
	s.mu.Lock()
	switch s.status {
	case StatusIdle:
		s.mu.Unlock()
		return nil, errors.NewInvalidState("stop", s.stateLabel())
	case StatusStopped:
		defer s.mu.Unlock()
		if s.cancelled || s.snapshot == nil {
			return nil, errors.NewInvalidState("stop", s.stateLabel())
		}
		snap := *s.snapshot
		return &snap, nil
	}

	now := s.clock.Now()
	p := s.progressLocked()
	s.snapshot = &Snapshot{
		SessionID:        s.id,
		Transcript:       strings.Join(s.fragments, " "),
		RecordingSeconds: s.elapsed,
		StartTime:        now.Add(-time.Duration(s.elapsed) * time.Second),
		EndTime:          now,
		Chunks:           p.Chunks,
		Transcribed:      p.Transcribed,
	}
	s.status = StatusStopped
	s.haltLocked()
	snap := *s.snapshot
	s.mu.Unlock()

	s.detach()
	s.log.Debug().Int("seconds", snap.RecordingSeconds).Msg("recording stopped")
	return &snap, nil
}

// Cancel abandons the session and discards everything it captured.
// It is a no-op on a stopped session.
func (s *Session) Cancel() {
	s.mu.Lock()
	switch s.status {
	case StatusStopped:
		s.mu.Unlock()
		return
	case StatusIdle:
		s.status = StatusStopped
		s.cancelled = true
		s.mu.Unlock()
		return
	}

	s.status = StatusStopped
	s.cancelled = true
	s.elapsed = 0
	s.fragments = nil
	s.chunks = nil
	s.haltLocked()
	s.mu.Unlock()

	s.detach()
	s.log.Debug().Msg("recording cancelled")
}

// Snapshot returns the finalized snapshot once the session has stopped
// normally. The bool is false while recording and after Cancel.
func (s *Session) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil || s.cancelled {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// haltLocked stops the ticker and cancels the run context. Caller holds s.mu.
func (s *Session) haltLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	if s.runCancel != nil {
		s.runCancel()
	}
}

// detach stops the source and waits for the session goroutines. It must
// be called without s.mu held.
func (s *Session) detach() {
	if s.src != nil {
		if err := s.src.Stop(); err != nil {
			s.log.Warn().Err(err).Msg("source stop failed")
		}
	}
	s.wg.Wait()
}

func (s *Session) stateLabel() string {
	if s.cancelled {
		return "cancelled"
	}
	return string(s.status)
}

func (s *Session) progressLocked() Progress {
	p := Progress{Chunks: len(s.chunks)}
	for _, c := range s.chunks {
		if c.Transcribed {
			p.Transcribed++
		}
	}
	return p
}

func (s *Session) tick(ctx context.Context, t Ticker) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			s.mu.Lock()
			if s.status == StatusRecording {
				s.elapsed++
			}
			s.mu.Unlock()
		}
	}
}

func (s *Session) consume(ctx context.Context, events <-chan Event) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				close(s.drained)
				return
			}
			s.apply(ev)
		}
	}
}

func (s *Session) apply(ev Event) {
	switch ev.Kind {
	case EventChunk:
		if err := s.RecordChunk(ev.ChunkID); err != nil {
			s.log.Debug().Err(err).Str("chunk_id", ev.ChunkID).Msg("chunk ignored")
		}
	case EventText:
		if ev.ChunkID != "" {
			err := s.MarkChunkTranscribed(ev.ChunkID, ev.Text)
			switch {
			case errors.Is(err, errors.ErrNotFound):
				s.log.Warn().Err(err).Str("chunk_id", ev.ChunkID).Msg("transcription for unknown chunk")
			case err != nil:
				s.log.Debug().Err(err).Str("chunk_id", ev.ChunkID).Msg("late transcription dropped")
			}
		}
		s.AppendFragment(ev.Text)
	case EventError:
		metrics.SourceErrors.Inc()
		s.log.Warn().Err(ev.Err).Str("chunk_id", ev.ChunkID).Msg("source error; fragment lost")
	default:
		s.log.Debug().Str("kind", string(ev.Kind)).Msg("unknown event kind")
	}
}

// watch turns cancellation of the Start context into an implicit Stop.
func (s *Session) watch(parent, run context.Context) {
	select {
	case <-parent.Done():
		if _, err := s.Stop(); err != nil && !errors.Is(err, errors.ErrInvalidState) {
			s.log.Warn().Err(err).Msg("implicit stop failed")
		}
	case <-run.Done():
	}
}

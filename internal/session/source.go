package session

import (
	"context"
	"time"
)

// EventKind classifies a Source event.
type EventKind string

const (
	// EventChunk announces a captured segment awaiting transcription.
	EventChunk EventKind = "chunk"
	// EventText delivers a transcript fragment, optionally for a chunk.
	EventText EventKind = "text"
	// EventError reports a failure; the session logs it and keeps recording.
	EventError EventKind = "error"
)

// Event is one delivery from a Source.
type Event struct {
	Kind    EventKind
	ChunkID string
	Text    string
	Err     error
}

// Source supplies transcript fragments while a session records.
//
// Start begins delivery on the returned channel until ctx is cancelled or
// the source runs dry, at which point the channel is closed. Sources must
// select on ctx when sending so a stopped session never blocks them.
// Stop releases the source and waits for its goroutines. A Source is not
// restartable.
type Source interface {
	Start(ctx context.Context) (<-chan Event, error)
	Stop() error
}

// Ticker is the subset of time.Ticker the session uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock provides the session's notion of time.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// SystemClock returns a Clock backed by package time.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }

package transcribe

import (
	"context"
	"sync"
	"time"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/session"
)

// Default simulated cadence: first segment after 2s, then one every 4s.
const (
	DefaultSimulatedFirst = 2 * time.Second
	DefaultSimulatedEvery = 4 * time.Second
)

// Simulated plays canned segments on a fixed cadence and closes its
// channel when they run out. It is the fallback when no live capture is
// available.
type Simulated struct {
	Segments []string
	First    time.Duration
	Every    time.Duration

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
}

// NewSimulated returns a Simulated with the demo segments and default cadence.
func NewSimulated() *Simulated {
	return &Simulated{
		Segments: SimulatedSegments,
		First:    DefaultSimulatedFirst,
		Every:    DefaultSimulatedEvery,
		done:     make(chan struct{}),
	}
}

// Start implements session.Source.
func (s *Simulated) Start(ctx context.Context) (<-chan session.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, errors.NewInvalidState("start", "started")
	}
	s.started = true
	if s.done == nil {
		s.done = make(chan struct{})
	}

	ctx, s.cancel = context.WithCancel(ctx)
	out := make(chan session.Event)
	segments := append([]string(nil), s.Segments...)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(out)
		defer close(s.done)

		timer := time.NewTimer(s.First)
		defer timer.Stop()

		for _, seg := range segments {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			select {
			case out <- session.Event{Kind: session.EventText, Text: seg}:
			case <-ctx.Done():
				return
			}
			timer.Reset(s.Every)
		}
	}()
	return out, nil
}

// Stop implements session.Source.
func (s *Simulated) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	return nil
}

// Done is closed once every segment has been delivered or the source stops.
func (s *Simulated) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		s.done = make(chan struct{})
	}
	return s.done
}

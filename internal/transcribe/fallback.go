package transcribe

import (
	"context"
	"sync"

	"github.com/hpungsan/minutes/internal/session"
)

// Fallback starts Primary and, if that fails, Secondary.
type Fallback struct {
	Primary   session.Source
	Secondary session.Source

	mu     sync.Mutex
	active session.Source
	reason error
}

// WithFallback returns a Source that uses fallback when primary cannot start.
func WithFallback(primary, fallback session.Source) *Fallback {
	return &Fallback{Primary: primary, Secondary: fallback}
}

// Start implements session.Source. The primary's error is kept in Reason
// when the fallback is used; if both fail the fallback's error is returned.
func (f *Fallback) Start(ctx context.Context) (<-chan session.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	events, err := f.Primary.Start(ctx)
	if err == nil {
		f.active = f.Primary
		return events, nil
	}
	f.reason = err

	events, err = f.Secondary.Start(ctx)
	if err != nil {
		return nil, err
	}
	f.active = f.Secondary
	return events, nil
}

// Stop implements session.Source.
func (f *Fallback) Stop() error {
	f.mu.Lock()
	active := f.active
	f.mu.Unlock()

	if active == nil {
		return nil
	}
	return active.Stop()
}

// UsedFallback reports whether the secondary source is the active one.
func (f *Fallback) UsedFallback() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active != nil && f.active == f.Secondary
}

// Reason returns the primary's start error, if any.
func (f *Fallback) Reason() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reason
}

// Done forwards to the active source when it reports completion.
// It returns nil (never ready) when nothing is active.
func (f *Fallback) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.active.(interface{ Done() <-chan struct{} }); ok {
		return d.Done()
	}
	return nil
}

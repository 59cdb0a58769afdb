package transcribe

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/session"
)

// Chunked cuts a capture chunk every Interval and transcribes each one in
// its own goroutine, so a slow Transcriber never delays the next cut.
// For every chunk it emits a chunk event, then either a text event or an
// error event carrying the same chunk id.
type Chunked struct {
	Interval    time.Duration
	Transcriber Transcriber

	// NewID generates chunk ids; uuid.NewString when nil.
	NewID func() string

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewChunked returns a Chunked source.
func NewChunked(interval time.Duration, t Transcriber) *Chunked {
	return &Chunked{Interval: interval, Transcriber: t}
}

// Start implements session.Source.
func (c *Chunked) Start(ctx context.Context) (<-chan session.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Interval <= 0 {
		return nil, errors.NewInvalidRequest("chunk interval must be positive")
	}
	if c.Transcriber == nil {
		return nil, errors.NewInvalidRequest("transcriber is required")
	}
	if c.started {
		return nil, errors.NewInvalidState("start", "started")
	}
	c.started = true

	newID := c.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	ctx, c.cancel = context.WithCancel(ctx)
	out := make(chan session.Event)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.Interval)
		defer ticker.Stop()

		for index := 0; ; index++ {
			select {
			case <-ctx.Done():
				return
			case at := <-ticker.C:
				chunk := Chunk{ID: newID(), Index: index, CapturedAt: at}
				if !send(ctx, out, session.Event{Kind: session.EventChunk, ChunkID: chunk.ID}) {
					return
				}
				c.wg.Add(1)
				go c.transcribe(ctx, chunk, out)
			}
		}
	}()
	return out, nil
}

func (c *Chunked) transcribe(ctx context.Context, chunk Chunk, out chan<- session.Event) {
	defer c.wg.Done()
	text, err := c.Transcriber.Transcribe(ctx, chunk)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		send(ctx, out, session.Event{Kind: session.EventError, ChunkID: chunk.ID, Err: err})
		return
	}
	send(ctx, out, session.Event{Kind: session.EventText, ChunkID: chunk.ID, Text: text})
}

// Stop implements session.Source. It cancels in-flight transcriptions and
// waits for them.
func (c *Chunked) Stop() error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	return nil
}

func send(ctx context.Context, out chan<- session.Event, ev session.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

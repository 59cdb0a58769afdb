package transcribe

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/session"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// LineSource turns each non-blank line of a reader into a text event.
// It stands in for on-device recognition: pipe a live recognizer into it
// or type.
type LineSource struct {
	r io.Reader

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
}

// Lines returns a LineSource reading r.
func Lines(r io.Reader) *LineSource {
	return &LineSource{r: r, done: make(chan struct{})}
}

// Start implements session.Source.
func (l *LineSource) Start(ctx context.Context) (<-chan session.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.r == nil {
		return nil, errors.NewInvalidRequest("line source has no input")
	}
	if l.started {
		return nil, errors.NewInvalidState("start", "started")
	}
	l.started = true

	ctx, l.cancel = context.WithCancel(ctx)
	out := make(chan session.Event)
	lines := readLines(l.r, ctx.Done())

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(out)
		defer close(l.done)
		forward(ctx, lines, out)
	}()
	return out, nil
}

// Stop implements session.Source. A read blocked on the underlying reader
// returns at its next line or EOF.
func (l *LineSource) Stop() error {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	l.wg.Wait()
	return nil
}

// Done is closed once the input is exhausted or the source stops.
func (l *LineSource) Done() <-chan struct{} {
	return l.done
}

// readLines scans r in its own goroutine, which cannot be interrupted
// mid-read. It sends text events, then an error event if scanning failed,
// and closes the channel.
func readLines(r io.Reader, stop <-chan struct{}) <-chan session.Event {
	lines := make(chan session.Event)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			select {
			case lines <- session.Event{Kind: session.EventText, Text: text}:
			case <-stop:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- session.Event{Kind: session.EventError, Err: err}:
			case <-stop:
			}
		}
	}()
	return lines
}

// forward copies events until in closes or ctx is cancelled.
func forward(ctx context.Context, in <-chan session.Event, out chan<- session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

package transcribe

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/session"
)

// CommandSource runs an external recognizer and treats each line it
// prints as a fragment. Start fails if the command cannot be launched,
// which makes it a natural primary for WithFallback.
type CommandSource struct {
	name string
	args []string

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	done    chan struct{}
}

// Command returns a CommandSource for the given program and arguments.
func Command(name string, args ...string) *CommandSource {
	return &CommandSource{name: name, args: args, done: make(chan struct{})}
}

// Start implements session.Source.
func (c *CommandSource) Start(ctx context.Context) (<-chan session.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.name == "" {
		return nil, errors.NewInvalidRequest("recognizer command is required")
	}
	if c.started {
		return nil, errors.NewInvalidState("start", "started")
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("recognizer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start recognizer %q: %w", c.name, err)
	}
	c.started = true
	c.cancel = cancel

	out := make(chan session.Event)
	lines := readLines(stdout, ctx.Done())

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(out)
		defer close(c.done)
		forward(ctx, lines, out)
		// Reap the process; an exit after cancellation is expected
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			select {
			case out <- session.Event{Kind: session.EventError, Err: fmt.Errorf("recognizer exited: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}

// Stop implements session.Source. It kills the recognizer and waits for it.
func (c *CommandSource) Stop() error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	return nil
}

// Done is closed once the recognizer exits or the source stops.
func (c *CommandSource) Done() <-chan struct{} {
	return c.done
}

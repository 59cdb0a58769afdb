package transcribe

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultMockDelay is how long MockTranscriber pretends a request takes.
const DefaultMockDelay = 2 * time.Second

// Chunk is one captured segment handed to a Transcriber.
type Chunk struct {
	ID         string
	Index      int
	CapturedAt time.Time
}

// Transcriber turns a captured chunk into text.
type Transcriber interface {
	Transcribe(ctx context.Context, chunk Chunk) (string, error)
}

// TranscriberFunc adapts a function to Transcriber.
type TranscriberFunc func(ctx context.Context, chunk Chunk) (string, error)

// Transcribe implements Transcriber.
func (f TranscriberFunc) Transcribe(ctx context.Context, chunk Chunk) (string, error) {
	return f(ctx, chunk)
}

// MockTranscriber waits Delay and returns a random sentence from Texts.
type MockTranscriber struct {
	Delay time.Duration
	Texts []string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockTranscriber returns a MockTranscriber over MockTranscripts.
// A nil rng uses the package-level generator.
func NewMockTranscriber(delay time.Duration, rng *rand.Rand) *MockTranscriber {
	return &MockTranscriber{Delay: delay, Texts: MockTranscripts, rng: rng}
}

// Transcribe implements Transcriber.
func (m *MockTranscriber) Transcribe(ctx context.Context, _ Chunk) (string, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	texts := m.Texts
	if len(texts) == 0 {
		texts = MockTranscripts
	}
	return texts[m.intN(len(texts))], nil
}

func (m *MockTranscriber) intN(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rng == nil {
		return rand.IntN(n)
	}
	return m.rng.IntN(n)
}

package ops

import (
	"context"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/store"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID                string
	IncludeTranscript *bool // default true
}

// GetOutput is a full record plus its word count.
type GetOutput struct {
	meeting.Record
	WordCount int `json:"wordCount"`
}

// Get returns one stored meeting or NOT_FOUND.
func Get(ctx context.Context, st *store.Store, input GetInput) (*GetOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	rec, ok := st.GetByID(ctx, id)
	if !ok {
		return nil, errors.NewNotFound("meeting", id)
	}

	out := &GetOutput{Record: *rec, WordCount: meeting.WordCount(rec.Transcript)}
	if input.IncludeTranscript != nil && !*input.IncludeTranscript {
		out.Transcript = ""
	}
	return out, nil
}

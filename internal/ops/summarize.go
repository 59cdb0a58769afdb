package ops

import (
	"context"

	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/store"
)

// SummarizeInput contains parameters for the Summarize operation.
type SummarizeInput struct {
	ID         string
	Summarizer meeting.Summarizer // default meeting.TemplateSummarizer
}

// SummarizeOutput carries a freshly computed summary next to the stored one.
type SummarizeOutput struct {
	ID            string `json:"id"`
	Summary       string `json:"summary"`
	StoredSummary string `json:"storedSummary"`
	Changed       bool   `json:"changed"`
}

// Summarize recomputes the summary of a stored meeting. Nothing is written.
func Summarize(ctx context.Context, st *store.Store, input SummarizeInput) (*SummarizeOutput, error) {
	out, err := Get(ctx, st, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	summarizer := input.Summarizer
	if summarizer == nil {
		summarizer = meeting.TemplateSummarizer{}
	}
	rec := out.Record
	summary := summarizer.Summarize(rec.Transcript, rec.DurationLabel, rec.Title)

	return &SummarizeOutput{
		ID:            rec.ID,
		Summary:       summary,
		StoredSummary: rec.Summary,
		Changed:       summary != rec.Summary,
	}, nil
}

package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/session"
	"github.com/hpungsan/minutes/internal/store"
)

// FinalizeInput contains parameters for the Finalize operation.
type FinalizeInput struct {
	Snapshot     session.Snapshot // required, from Session.Stop
	Title        string           // optional, default "Meeting <date>"
	Participants []string         // optional, store default applies
	Summarizer   meeting.Summarizer
}

// FinalizeOutput contains the result of the Finalize operation.
type FinalizeOutput struct {
	Meeting     *meeting.Record `json:"meeting"`
	Chunks      int             `json:"chunks"`
	Transcribed int             `json:"transcribed"`
}

// Finalize turns a stopped session's snapshot into a saved meeting record.
// The summary is derived from the transcript before the record is saved.
func Finalize(ctx context.Context, st *store.Store, input FinalizeInput) (*FinalizeOutput, error) {
	snap := input.Snapshot
	if snap.EndTime.IsZero() {
		return nil, errors.NewInvalidRequest("snapshot has no end time; stop the session first")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultTitle(snap.EndTime)
	}

	summarizer := input.Summarizer
	if summarizer == nil {
		summarizer = meeting.TemplateSummarizer{}
	}
	label := meeting.FormatDuration(snap.RecordingSeconds)

	rec, err := st.Save(ctx, meeting.Candidate{
		Title:            title,
		StartTime:        snap.StartTime,
		EndTime:          snap.EndTime,
		DurationLabel:    label,
		Transcript:       snap.Transcript,
		Summary:          summarizer.Summarize(snap.Transcript, label, title),
		Participants:     input.Participants,
		RecordingSeconds: snap.RecordingSeconds,
	})
	if err != nil {
		return nil, err
	}

	return &FinalizeOutput{
		Meeting:     rec,
		Chunks:      snap.Chunks,
		Transcribed: snap.Transcribed,
	}, nil
}

// DefaultTitle is the title given to a recording saved without one.
func DefaultTitle(at time.Time) string {
	return "Meeting " + at.Local().Format(meeting.DateLayout)
}

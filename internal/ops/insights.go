package ops

import (
	"context"
	"time"

	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/store"
)

// Recommendation thresholds and texts.
const (
	PaceThresholdWPM    = 150
	ContentThreshold    = 100
	RecGoodPace         = "Good speaking pace maintained"
	RecSpeakMore        = "Consider speaking more for better transcription"
	RecSubstantial      = "Substantial content captured"
	RecLongerRecordings = "Try longer recordings for better insights"
)

// InsightsInput contains parameters for the Insights operation.
type InsightsInput struct {
	ID string
}

// InsightsOutput holds derived transcript metrics for one meeting.
type InsightsOutput struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	TotalWords       int       `json:"totalWords"`
	UniqueWords      int       `json:"uniqueWords"`
	Sentences        int       `json:"sentences"`
	WordsPerMinute   int       `json:"wordsPerMinute"`
	RecordingSeconds int       `json:"recordingSeconds"`
	DurationLabel    string    `json:"durationLabel"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Recommendations  []string  `json:"recommendations"`
}

// Insights computes transcript metrics for a stored meeting.
func Insights(ctx context.Context, st *store.Store, input InsightsInput) (*InsightsOutput, error) {
	out, err := Get(ctx, st, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}
	return ComputeInsights(&out.Record), nil
}

// ComputeInsights derives metrics from rec without touching storage.
func ComputeInsights(rec *meeting.Record) *InsightsOutput {
	words := meeting.WordCount(rec.Transcript)
	wpm := meeting.WordsPerMinute(words, rec.RecordingSeconds)

	recs := make([]string, 0, 2)
	if wpm > PaceThresholdWPM {
		recs = append(recs, RecGoodPace)
	} else {
		recs = append(recs, RecSpeakMore)
	}
	if words > ContentThreshold {
		recs = append(recs, RecSubstantial)
	} else {
		recs = append(recs, RecLongerRecordings)
	}

	return &InsightsOutput{
		ID:               rec.ID,
		Title:            rec.Title,
		TotalWords:       words,
		UniqueWords:      meeting.UniqueWords(rec.Transcript),
		Sentences:        meeting.SentenceCount(rec.Transcript),
		WordsPerMinute:   wpm,
		RecordingSeconds: rec.RecordingSeconds,
		DurationLabel:    rec.DurationLabel,
		StartTime:        rec.StartTime,
		EndTime:          rec.EndTime,
		Recommendations:  recs,
	}
}

// Package ops implements the meeting use cases shared by the CLI, MCP and
// web surfaces. Every operation takes an explicit *store.Store and returns
// a JSON-ready output struct.
package ops

import (
	"strings"
	"time"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/meeting"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// MeetingSummary is the list view of a record: everything but the
// transcript and summary text.
type MeetingSummary struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	CreatedDate      string    `json:"createdDate"`
	DurationLabel    string    `json:"durationLabel"`
	RecordingSeconds int       `json:"recordingSeconds"`
	Participants     []string  `json:"participants"`
	WordCount        int       `json:"wordCount"`
	StartTime        time.Time `json:"startTime"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ToSummary builds the list view of rec.
func ToSummary(rec *meeting.Record) MeetingSummary {
	return MeetingSummary{
		ID:               rec.ID,
		Title:            rec.Title,
		CreatedDate:      rec.CreatedDate,
		DurationLabel:    rec.DurationLabel,
		RecordingSeconds: rec.RecordingSeconds,
		Participants:     rec.Participants,
		WordCount:        meeting.WordCount(rec.Transcript),
		StartTime:        rec.StartTime,
		CreatedAt:        rec.CreatedAt,
	}
}

// requireID trims id and rejects an empty one.
func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	return id, nil
}

// clampPage applies list defaults and bounds to limit and offset.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

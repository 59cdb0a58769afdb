package meeting

import (
	"time"

	"github.com/hpungsan/minutes/internal/errors"
)

// DateLayout is the human-readable date stored in CreatedDate.
const DateLayout = "1/2/2006"

// Record is a completed meeting as persisted by the store.
// JSON field names are stable; the stored collection carries no schema
// version, and its absence means version 0.
type Record struct {
	// ID is a ULID assigned at save time; it sorts by creation instant
	ID string `json:"id"`

	// Title is the display title
	Title string `json:"title"`

	// CreatedDate is the local calendar date of the save, in DateLayout
	CreatedDate string `json:"createdDate"`

	// StartTime and EndTime bound the recording itself
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	// DurationLabel is RecordingSeconds formatted as MM:SS
	DurationLabel string `json:"durationLabel"`

	// Transcript is the space-joined fragment text; empty is valid
	Transcript string `json:"transcript"`

	// Summary is derived from the transcript, possibly empty
	Summary string `json:"summary"`

	// Participants is the ordered list of participant names
	Participants []string `json:"participants"`

	// RecordingSeconds is the elapsed recording time
	RecordingSeconds int `json:"recordingSeconds"`

	// CreatedAt is the instant of the save operation
	CreatedAt time.Time `json:"createdAt"`
}

// Duration returns the recording length.
func (r *Record) Duration() time.Duration {
	return time.Duration(r.RecordingSeconds) * time.Second
}

// Candidate is a partial record handed to the store for saving.
// Zero values mean "absent" and are filled with defaults.
type Candidate struct {
	// ID, when set, replaces any stored record with the same id
	ID string

	Title            string
	StartTime        time.Time
	EndTime          time.Time
	DurationLabel    string
	Transcript       string
	Summary          string
	Participants     []string
	RecordingSeconds int
}

// Validate checks invariants that defaults cannot repair.
func (c *Candidate) Validate() error {
	if c.RecordingSeconds < 0 {
		return errors.NewInvalidRequest("recordingSeconds must be non-negative")
	}
	if !c.StartTime.IsZero() && !c.EndTime.IsZero() && c.EndTime.Before(c.StartTime) {
		return errors.NewInvalidRequest("endTime must not be before startTime")
	}
	return nil
}

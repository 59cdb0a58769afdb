package ops

import (
	"context"

	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/store"
)

// StatsOutput aggregates the whole stored collection.
type StatsOutput struct {
	Meetings           int    `json:"meetings"`
	TotalWords         int    `json:"totalWords"`
	TotalSeconds       int    `json:"totalSeconds"`
	TotalDurationLabel string `json:"totalDurationLabel"`
	AverageWords       int    `json:"averageWords"`
	AverageSeconds     int    `json:"averageSeconds"`
	Capacity           int    `json:"capacity"`
}

// Stats summarizes every stored meeting. Averages are integer means and 0
// for an empty store.
func Stats(ctx context.Context, st *store.Store) (*StatsOutput, error) {
	all := st.ListAll(ctx)

	out := &StatsOutput{Meetings: len(all), Capacity: st.Capacity()}
	for i := range all {
		out.TotalWords += meeting.WordCount(all[i].Transcript)
		out.TotalSeconds += all[i].RecordingSeconds
	}
	if out.Meetings > 0 {
		out.AverageWords = out.TotalWords / out.Meetings
		out.AverageSeconds = out.TotalSeconds / out.Meetings
	}
	out.TotalDurationLabel = meeting.FormatDuration(out.TotalSeconds)
	return out, nil
}

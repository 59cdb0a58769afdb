package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/minutes/internal/store"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Query  string // optional, case-insensitive match on title, participants, transcript
	Limit  int    // default 20, max 100
	Offset int
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []MeetingSummary `json:"items"`
	Pagination Pagination       `json:"pagination"`
	Sort       string           `json:"sort"`
}

// List returns a page of stored meetings, most recent first.
func List(ctx context.Context, st *store.Store, input ListInput) (*ListOutput, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	query := strings.ToLower(strings.TrimSpace(input.Query))

	all := st.ListAll(ctx)
	matched := all[:0]
	for _, rec := range all {
		if query == "" || matches(rec.Title, rec.Transcript, rec.Participants, query) {
			matched = append(matched, rec)
		}
	}

	total := len(matched)
	items := make([]MeetingSummary, 0, limit)
	for i := offset; i < total && len(items) < limit; i++ {
		items = append(items, ToSummary(&matched[i]))
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "created_desc",
	}, nil
}

func matches(title, transcript string, participants []string, query string) bool {
	if strings.Contains(strings.ToLower(title), query) || strings.Contains(strings.ToLower(transcript), query) {
		return true
	}
	for _, p := range participants {
		if strings.Contains(strings.ToLower(p), query) {
			return true
		}
	}
	return false
}

package ops

import (
	"context"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/store"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete removes a stored meeting. Unlike store.DeleteByID, an unknown id
// is reported as NOT_FOUND so interactive callers can tell the difference.
func Delete(ctx context.Context, st *store.Store, input DeleteInput) (*DeleteOutput, error) {
	id, err := requireID(input.ID)
	if err != nil {
		return nil, err
	}

	found, err := st.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFound("meeting", id)
	}
	return &DeleteOutput{Deleted: true, ID: id}, nil
}

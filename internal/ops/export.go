package ops

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/safefile"
	"github.com/hpungsan/minutes/internal/store"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ExportsDir string // required; Path must be directly inside it
	Path       string // optional, default: <ExportsDir>/meetings[-<query>]-<timestamp>.jsonl
	Query      string // optional filter, same matching as List
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes stored meetings to a JSONL file: one header line, then one
// record per line, most recent first. An existing file at the path is only
// replaced once the new content is fully written.
func Export(ctx context.Context, st *store.Store, input ExportInput) (*ExportOutput, error) {
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("export")
	}
	now := time.Now()
	query := strings.ToLower(strings.TrimSpace(input.Query))

	exportPath := input.Path
	if exportPath == "" {
		exportPath = defaultExportPath(input.ExportsDir, query, now)
	}
	// Default paths are validated too; the query is user input
	if err := ValidatePath(exportPath, PathCheckWrite, input.ExportsDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	var records []meeting.Record
	for _, rec := range st.ListAll(ctx) {
		if query == "" || matches(rec.Title, rec.Transcript, rec.Participants, query) {
			records = append(records, rec)
		}
	}

	exportedAt := now.Unix()
	err := safefile.WriteAtomic(exportPath, 0600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		if err := enc.Encode(meeting.NewExportHeader(len(records), exportedAt)); err != nil {
			return err
		}
		for i := range records {
			if ctx.Err() != nil {
				return errors.NewCancelled("export")
			}
			if err := enc.Encode(&records[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var mErr *errors.MinutesError
		if stderrors.As(err, &mErr) {
			return nil, mErr
		}
		if stderrors.Is(err, safefile.ErrDestinationExists) {
			return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to write export: %w", err))
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(records),
		ExportedAt: exportedAt,
	}, nil
}

// defaultExportPath builds <exportsDir>/meetings[-<query>]-<timestamp>.jsonl.
func defaultExportPath(exportsDir, query string, now time.Time) string {
	name := "meetings"
	if query != "" {
		name += "-" + SanitizeForFilename(query)
	}
	filename := fmt.Sprintf("%s-%s.jsonl", name, now.Format("2006-01-02T150405"))
	return filepath.Join(exportsDir, filename)
}

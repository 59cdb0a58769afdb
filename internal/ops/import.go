package ops

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/safefile"
	"github.com/hpungsan/minutes/internal/store"
)

// ImportMode controls how imported records combine with stored ones.
type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"   // add records whose id is not stored
	ImportModeReplace ImportMode = "replace" // stored collection becomes the file's records
)

// maxLineBytes bounds one JSONL line; transcripts can be long.
const maxLineBytes = 16 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	ExportsDir string // required; Path must be directly inside it
	Path       string // required
	Mode       ImportMode
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one rejected line.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import reads a file written by Export back into the store. In replace
// mode any bad line aborts the import and nothing is written.
func Import(ctx context.Context, st *store.Store, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeMerge
	}
	if input.Mode != ImportModeMerge && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: merge, replace")
	}
	if err := ValidatePath(input.Path, PathCheckRead, input.ExportsDir); err != nil {
		return nil, err
	}

	file, err := safefile.OpenNoFollowRead(input.Path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewNotFound("file", input.Path)
		}
		var mErr *errors.MinutesError
		if stderrors.As(err, &mErr) {
			return nil, mErr
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, lineErrs, err := parseExport(file)
	if err != nil {
		return nil, err
	}

	out := &ImportOutput{Errors: lineErrs}
	if out.Errors == nil {
		out.Errors = []ImportError{}
	}
	if input.Mode == ImportModeReplace && len(lineErrs) > 0 {
		return out, nil
	}

	n, err := st.Restore(ctx, records, input.Mode == ImportModeReplace)
	if err != nil {
		return nil, err
	}
	out.Imported = n
	out.Skipped = len(records) - n
	return out, nil
}

// parseExport checks the header line and decodes every record line.
// A missing or foreign header fails the whole file.
func parseExport(file *os.File) ([]meeting.Record, []ImportError, error) {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, nil, errors.NewInternal(err)
		}
		return nil, nil, errors.NewInvalidRequest("import file is empty")
	}
	var header meeting.ExportHeader
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil || !header.MinutesExport {
		return nil, nil, errors.NewInvalidRequest("import file has no minutes export header")
	}
	if header.SchemaVersion != meeting.ExportSchemaVersion {
		return nil, nil, errors.NewInvalidRequest(
			fmt.Sprintf("unsupported export schema version %q", header.SchemaVersion))
	}

	var records []meeting.Record
	var lineErrs []ImportError
	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if strings.TrimSpace(string(line)) == "" {
			continue
		}

		var rec meeting.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			lineErrs = append(lineErrs, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}
		if strings.TrimSpace(rec.ID) == "" {
			lineErrs = append(lineErrs, ImportError{
				Line:    lineNum,
				Code:    string(errors.ErrInvalidRequest),
				Message: "record has no id",
			})
			continue
		}
		if rec.RecordingSeconds < 0 || rec.EndTime.Before(rec.StartTime) {
			lineErrs = append(lineErrs, ImportError{
				Line:    lineNum,
				ID:      rec.ID,
				Code:    string(errors.ErrInvalidRequest),
				Message: "record has an invalid time range",
			})
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("failed to read import file: %v", err))
	}
	return records, lineErrs, nil
}

package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/minutes/internal/errors"
)

// ExportsDirName is the directory under the base dir that export and
// import paths are confined to.
const ExportsDirName = "exports"

// PathCheckMode indicates whether the path check is for reading or writing.
type PathCheckMode int

const (
	PathCheckRead  PathCheckMode = iota // import
	PathCheckWrite                      // export
)

// ExportsDir returns the exports directory under baseDir.
func ExportsDir(baseDir string) string {
	return filepath.Join(baseDir, ExportsDirName)
}

// ValidatePath checks an import or export path against exportsDir:
//   - no ".." components
//   - a .jsonl extension
//   - the file sits directly in exportsDir, not in a subdirectory
//   - the file is not a symlink
//
// Requiring the file to be a direct child closes the window where an
// intermediate directory is swapped for a symlink between check and open;
// the final component is covered by O_NOFOLLOW at open time.
func ValidatePath(path string, mode PathCheckMode, exportsDir string) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".jsonl" {
		return errors.NewInvalidRequest("path must have .jsonl extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	configured, resolved, err := resolveDir(exportsDir)
	if err != nil {
		return err
	}
	parentDir := filepath.Dir(absPath)
	if parentDir != configured && parentDir != resolved {
		return errors.NewInvalidRequest(
			fmt.Sprintf("file must be directly in %s (no subdirectories)", configured))
	}

	info, err := os.Lstat(absPath)
	switch {
	case err == nil && info.Mode()&os.ModeSymlink != 0:
		return errors.NewInvalidRequest("path must not be a symlink")
	case err != nil && os.IsNotExist(err) && mode == PathCheckRead:
		return errors.NewNotFound("file", path)
	}
	return nil
}

// resolveDir returns dir as an absolute path, plus the same path with a
// symlinked final component resolved so either spelling is accepted.
func resolveDir(dir string) (string, string, error) {
	if dir == "" {
		return "", "", errors.NewInternal(fmt.Errorf("exports directory is not configured"))
	}
	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return "", "", errors.NewInvalidRequest(fmt.Sprintf("invalid exports directory: %v", err))
	}
	resolved := abs
	if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
		resolved, err = filepath.EvalSymlinks(abs)
		if err != nil {
			return "", "", errors.NewInvalidRequest(fmt.Sprintf("cannot resolve exports directory: %v", err))
		}
	}
	return abs, resolved, nil
}

// containsTraversal checks if path contains ".." directory traversal.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// User input may use forward slashes on any platform
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

// SanitizeForFilename makes s safe to embed in a file name.
func SanitizeForFilename(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")

	var b strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 {
			b.WriteRune(r)
		}
	}
	s = b.String()

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")
	if s == "" {
		s = "unnamed"
	}
	return s
}

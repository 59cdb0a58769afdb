// Package logger provides a configured zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level.
// Unknown or empty level names fall back to info.
func New(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().
		Str("service", "minutes").
		Timestamp().
		Logger()
}

// Stderr returns a logger for the binary. Stdout is reserved for MCP stdio
// and JSON command output, so logs always go to stderr; a human-readable
// console writer is used when stderr is a terminal.
func Stderr(level string) zerolog.Logger {
	var w io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return New(level, w)
}

// Nop returns a disabled logger, for tests and callers that do not log.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

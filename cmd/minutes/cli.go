package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/errors"
	"github.com/hpungsan/minutes/internal/meeting"
	"github.com/hpungsan/minutes/internal/ops"
	"github.com/hpungsan/minutes/internal/session"
	"github.com/hpungsan/minutes/internal/store"
	"github.com/hpungsan/minutes/internal/transcribe"
	"github.com/hpungsan/minutes/internal/web"
)

// Transcript sources selectable with record --source.
const (
	sourceLines     = "lines"
	sourceSimulated = "simulated"
	sourceChunked   = "chunked"
	sourceCommand   = "command"
)

// progressInterval is how often record reports progress on stderr.
const progressInterval = 5 * time.Second

// appEnv is what commands need at run time. It is nil for help and version.
type appEnv struct {
	store   *store.Store
	cfg     *config.Config
	baseDir string
	log     zerolog.Logger
	stdin   io.Reader
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "minutes",
		Usage:   "Local meeting recorder and archive",
		Version: Version,
		Commands: []*cli.Command{
			recordCmd(env),
			listCmd(env),
			showCmd(env),
			deleteCmd(env),
			insightsCmd(env),
			statsCmd(env),
			summarizeCmd(env),
			exportCmd(env),
			importCmd(env),
			clearCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// recordCmd creates the record command.
func recordCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "record",
		Usage: "Record a meeting until interrupted, the source ends, or --duration elapses",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Meeting title (default: Meeting <date>)"},
			&cli.StringFlag{Name: "participants", Aliases: []string{"p"}, Usage: "Comma-separated participant names"},
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Value: sourceLines, Usage: "Transcript source: lines|simulated|chunked|command"},
			&cli.StringFlag{Name: "recognizer", Usage: "Recognizer command line for --source=command"},
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Stop after this long (default: until interrupted)"},
			&cli.DurationFlag{Name: "chunk-interval", Usage: "Segment length for --source=chunked (default: config chunk_interval_seconds)"},
		},
		Action: func(c *cli.Context) error {
			src, err := buildSource(c, env)
			if err != nil {
				return outputError(err)
			}

			sess := session.New(src, session.WithLogger(env.log))
			if err := sess.Start(c.Context); err != nil {
				return outputError(err)
			}
			if fb, ok := src.(*transcribe.Fallback); ok && fb.UsedFallback() {
				env.log.Warn().Err(fb.Reason()).Msg("recognizer unavailable; using simulated transcription")
			}
			fmt.Fprintln(c.App.ErrWriter, "Recording... press Ctrl-C to stop.")

			waitForEnd(c.Context, c.App.ErrWriter, sess, c.Duration("duration"))

			snap, err := sess.Stop()
			if err != nil {
				return outputError(err)
			}
			fmt.Fprintf(c.App.ErrWriter, "Stopped after %s. %d of %d segments transcribed.\n",
				meeting.FormatDuration(snap.RecordingSeconds), snap.Transcribed, snap.Chunks)

			// The run context may already be cancelled by the interrupt that ended the recording
			saveCtx := context.WithoutCancel(c.Context)
			output, err := ops.Finalize(saveCtx, env.store, ops.FinalizeInput{
				Snapshot:     *snap,
				Title:        c.String("title"),
				Participants: parseList(c.String("participants")),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(c, output)
		},
	}
}

// buildSource resolves the --source flag to a fragment source.
func buildSource(c *cli.Context, env *appEnv) (session.Source, error) {
	switch c.String("source") {
	case sourceLines:
		return transcribe.Lines(env.stdin), nil
	case sourceSimulated:
		return transcribe.NewSimulated(), nil
	case sourceChunked:
		interval := c.Duration("chunk-interval")
		if interval <= 0 {
			interval = time.Duration(env.cfg.ChunkIntervalSeconds) * time.Second
		}
		return transcribe.NewChunked(interval, transcribe.NewMockTranscriber(transcribe.DefaultMockDelay, nil)), nil
	case sourceCommand:
		fields := strings.Fields(c.String("recognizer"))
		if len(fields) == 0 {
			return nil, errors.NewInvalidRequest("--recognizer is required with --source=command")
		}
		return transcribe.WithFallback(transcribe.Command(fields[0], fields[1:]...), transcribe.NewSimulated()), nil
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown source %q (want lines, simulated, chunked, or command)", c.String("source")))
	}
}

// waitForEnd blocks until ctx is done, the duration elapses, or the
// session's source runs dry, reporting progress to w meanwhile.
func waitForEnd(ctx context.Context, w io.Writer, sess *session.Session, d time.Duration) {
	var deadline <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline:
			return
		case <-sess.Drained():
			return
		case <-ticker.C:
			p := sess.Progress()
			fmt.Fprintf(w, "  %d s recorded, %d of %d segments transcribed\n", sess.Elapsed(), p.Transcribed, p.Chunks)
		}
	}
}

// listCmd creates the list command.
func listCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored meetings, most recent first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Filter by title, participant or transcript text"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, env.store, ops.ListInput{
				Query:  c.String("query"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a stored meeting",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-transcript", Usage: "Exclude the transcript from output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.GetInput{ID: c.Args().First()}
			if c.Bool("no-transcript") {
				include := false
				input.IncludeTranscript = &include
			}

			output, err := ops.Get(c.Context, env.store, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a stored meeting",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Delete(c.Context, env.store, ops.DeleteInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// insightsCmd creates the insights command.
func insightsCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "insights",
		Usage:     "Show word, pace and content metrics for a meeting",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Insights(c.Context, env.store, ops.InsightsInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show totals across all stored meetings",
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(c.Context, env.store)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// summarizeCmd creates the summarize command.
func summarizeCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Usage:     "Recompute a meeting's summary without saving it",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Summarize(c.Context, env.store, ops.SummarizeInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export meetings to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.minutes/exports/meetings-<timestamp>.jsonl)"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Only export meetings matching this filter"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, env.store, ops.ExportInput{
				ExportsDir: ops.ExportsDir(env.baseDir),
				Path:       c.String("path"),
				Query:      c.String("query"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// importCmd creates the import command.
func importCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import meetings from a JSONL export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(ops.ImportModeMerge), Usage: "merge|replace"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, env.store, ops.ImportInput{
				ExportsDir: ops.ExportsDir(env.baseDir),
				Path:       c.String("path"),
				Mode:       ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Remove every stored meeting",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Usage: "Confirm removal"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("clear removes every meeting; pass --yes to confirm"))
			}
			if err := env.store.ClearAll(c.Context); err != nil {
				return outputError(err)
			}
			return outputJSON(c, map[string]bool{"cleared": true})
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8484, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(env.store, Version, c.String("bind"), c.Int("port"), env.log)
			if err != nil {
				return outputError(err)
			}
			if err := web.Run(c.Context, srv, env.log); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON writes v to the app's output as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var mErr *errors.MinutesError
	if stderrors.As(err, &mErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", mErr.Code, mErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseList splits a comma-separated string into trimmed, non-empty items.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if item := strings.TrimSpace(p); item != "" {
			items = append(items, item)
		}
	}
	return items
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/hpungsan/minutes/internal/blob"
	"github.com/hpungsan/minutes/internal/config"
	"github.com/hpungsan/minutes/internal/logger"
	"github.com/hpungsan/minutes/internal/mcp"
	"github.com/hpungsan/minutes/internal/ops"
	"github.com/hpungsan/minutes/internal/store"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"record": true, "list": true, "show": true, "delete": true,
	"insights": true, "stats": true, "summarize": true,
	"export": true, "import": true, "clear": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
             _             _
   _ __ ___ (_)_ __  _   _| |_ ___  ___
  | '_ ' _ \| | '_ \| | | | __/ _ \/ __|
  | | | | | | | | | | |_| | ||  __/\__ \
  |_| |_| |_|_|_| |_|\__,_|\__\___||___/

  Local meeting recorder and archive

  Usage: minutes <command> [options]
         minutes --help

  MCP server mode requires piped input.`)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Help and version need no storage
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	baseDir := filepath.Join(homeDir, ".minutes")
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "error: create %s: %v\n", baseDir, err)
		os.Exit(1)
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Stderr(cfg.LogLevel)

	backend, err := blob.Open(cfg, baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open %s storage: %v\n", cfg.Backend, err)
		os.Exit(1)
	}
	defer backend.Close()

	st := store.New(backend, cfg, log)

	if isCLIMode() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		app := newCLIApp(&appEnv{store: st, cfg: cfg, baseDir: baseDir, log: log, stdin: os.Stdin})
		err := app.RunContext(ctx, os.Args)
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			backend.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'minutes --help' for usage.\n")
		backend.Close()
		os.Exit(1)
	}

	if err := mcp.Run(st, cfg, ops.ExportsDir(baseDir), Version, log); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		backend.Close()
		os.Exit(1)
	}
}

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/dash-soft/hanoi/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Exit codes
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// Command selects what the program does
type Command string

const (
	CommandRun     Command = "run"
	CommandHistory Command = "history"
	CommandServe   Command = "serve"
	CommandMCP     Command = "mcp"
)

// Options is the parsed command line
type Options struct {
	Command      Command
	SettingsPath string
	Settings     *config.Settings
	Plain        bool
	Debug        bool
	Limit        int
	ServerURL    string
}

// Parse processes command-line arguments. It returns the options, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("hanoi", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
hanoi - Tower of Hanoi solver and terminal visualizer.

Usage:
  hanoi [options] [COMMAND]

Commands:
  run       Set up the disks and watch them being solved (default)
  history   List previous solve sessions
  serve     Serve history and solutions over HTTP
  mcp       Expose the HTTP API as MCP tools on stdio

Options:
`)
		flagSet.PrintDefaults()
	}

	settingsFlag := flagSet.String("settings", config.DefaultSettingsPath, "Path to the YAML settings file.")
	snapshotFlag := flagSet.String("config", "", "Path to the saved disk arrangement (default config.json).")
	moveLogFlag := flagSet.String("log", "", "Path to the move log (default log.txt).")
	historyFlag := flagSet.String("history", "", "Path to the history database.")
	noHistoryFlag := flagSet.Bool("no-history", false, "Do not record sessions.")
	delayFlag := flagSet.Duration("delay", 0, "Time between moves, e.g. 60ms.")
	plainFlag := flagSet.Bool("plain", false, "Line-based prompts and output instead of the full-screen view.")
	debugFlag := flagSet.Bool("debug", false, "Show the debug panel.")
	logLevelFlag := flagSet.String("log-level", "", "Diagnostics level. Options: 'debug', 'info', 'warn', 'error'.")
	addrFlag := flagSet.String("addr", "", "Listen address for serve.")
	limitFlag := flagSet.Int("limit", 20, "Number of sessions shown by history.")
	serverFlag := flagSet.String("server", "", "Base URL of the hanoi server used by mcp (default http://<addr>).")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	command := CommandRun
	switch flagSet.NArg() {
	case 0:
	case 1:
		command = Command(flagSet.Arg(0))
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("expected at most one command, got %d", flagSet.NArg())}
	}
	switch command {
	case CommandRun, CommandHistory, CommandServe, CommandMCP:
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("unknown command %q: must be one of run, history, serve, mcp", command)}
	}

	if *limitFlag < 1 {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid limit: must be at least 1"}
	}

	settings, err := config.LoadSettings(*settingsFlag)
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	// Only flags given on the command line override the settings file
	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config":
			settings.SnapshotPath = *snapshotFlag
		case "log":
			settings.MoveLogPath = *moveLogFlag
		case "history":
			settings.HistoryPath = *historyFlag
		case "no-history":
			settings.HistoryEnabled = !*noHistoryFlag
		case "delay":
			settings.FrameDelay = *delayFlag
		case "log-level":
			settings.LogLevel = *logLevelFlag
		case "addr":
			settings.ListenAddr = *addrFlag
		}
	})
	if err := settings.Validate(); err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid option: " + err.Error()}
	}
	slog.Debug("CLI parameter validation complete.")

	serverURL := *serverFlag
	if serverURL == "" {
		serverURL = "http://" + settings.ListenAddr
	}

	opts := &Options{
		Command:      command,
		SettingsPath: *settingsFlag,
		Settings:     settings,
		Plain:        *plainFlag,
		Debug:        *debugFlag,
		Limit:        *limitFlag,
		ServerURL:    serverURL,
	}
	slog.Debug("CLI parser finished successfully.", "command", command, "settings", *settingsFlag)
	return opts, false, nil
}

// Interrupted returns the error that ends the process with ExitInterrupted
func Interrupted() *ExitError {
	return &ExitError{Code: ExitInterrupted, Message: "interrupted"}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dash-soft/hanoi/internal/api"
	"github.com/dash-soft/hanoi/internal/cli"
	"github.com/dash-soft/hanoi/internal/config"
	"github.com/dash-soft/hanoi/internal/hanoi"
	"github.com/dash-soft/hanoi/internal/history"
	"github.com/dash-soft/hanoi/internal/mcpserver"
	"github.com/dash-soft/hanoi/internal/session"
	"github.com/dash-soft/hanoi/internal/tui"
)

func main() {
	// Minimal logger until the diagnostics file is open
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitFailure)
	}
}

// run holds the program logic so tests can drive it without a process
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, stdout)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	switch opts.Command {
	case cli.CommandServe:
		return serve(ctx, stdout, opts)
	case cli.CommandHistory:
		return listHistory(stdout, opts)
	case cli.CommandMCP:
		return serveMCP(ctx, stderr, opts)
	default:
		return solve(ctx, stdin, stdout, stderr, opts)
	}
}

// openDiagnostics routes slog to the diagnostics file; the terminal
// belongs to the solver view
func openDiagnostics(settings *config.Settings) (*slog.Logger, func(), error) {
	path := settings.DiagnosticsPath
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create diagnostics directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open diagnostics log: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: settings.SlogLevel()}))
	slog.SetDefault(logger)
	return logger, func() { f.Close() }, nil
}

// openHistory opens the history store. History is best effort: a store
// that cannot be opened only disables recording.
func openHistory(settings *config.Settings, logger *slog.Logger) (*history.DB, session.Recorder) {
	if !settings.HistoryEnabled {
		return nil, nil
	}
	db, err := history.Open(settings.HistoryPath)
	if err != nil {
		logger.Warn("history unavailable", "path", settings.HistoryPath, "error", err)
		return nil, nil
	}
	return db, history.NewSessionStore(db)
}

func solve(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, opts *cli.Options) error {
	settings := opts.Settings
	logger, closeLog, err := openDiagnostics(settings)
	if err != nil {
		return err
	}
	defer closeLog()

	db, recorder := openHistory(settings, logger)
	if db != nil {
		defer db.Close()
	}

	s := session.New(session.Options{
		SnapshotPath: settings.SnapshotPath,
		MoveLogPath:  settings.MoveLogPath,
		History:      recorder,
		Logger:       logger,
	})
	if err := s.Begin(); err != nil {
		return err
	}
	logger.Info("session created", "session_id", s.ID, "plain", opts.Plain)

	if opts.Plain {
		return solvePlain(ctx, s, stdin, stdout, stderr, settings.FrameDelay)
	}

	m, err := tui.Run(ctx, s, tui.Options{FrameDelay: settings.FrameDelay, Debug: opts.Debug})
	if err != nil {
		s.Close()
		return fmt.Errorf("run terminal view: %w", err)
	}
	if !m.Started() {
		s.Close()
		if err := m.Err(); err != nil {
			return setupError(err)
		}
		return cli.Interrupted()
	}
	return finish(s, stdout, stderr, m.Interrupted())
}

// solvePlain runs setup and the solve on line-based input and output
func solvePlain(ctx context.Context, s *session.Session, stdin io.Reader, stdout, stderr io.Writer, delay time.Duration) error {
	p := session.NewPrompter(ctx, stdin, stdout)
	err := session.Setup(s, p)
	p.Close()
	if err != nil {
		s.Close()
		return setupError(err)
	}

	fmt.Fprintln(stdout, "\nStarting position:")
	for _, r := range []*hanoi.Rod{s.Source, s.Auxiliary, s.Target} {
		fmt.Fprintln(stdout, "  "+tui.RodRow(r))
	}
	fmt.Fprintf(stdout, "\nSolving %d disks in %d moves\n", s.NumDisks, s.PlannedMoves())
	interrupted := false
	for m := range s.Steps() {
		fmt.Fprintf(stdout, "Move %d: %s\n", m.Seq, m)
		if delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			interrupted = true
			break
		}
	}
	return finish(s, stdout, stderr, interrupted)
}

// finish records the outcome, prints the report and picks the exit status
func finish(s *session.Session, stdout, stderr io.Writer, interrupted bool) error {
	closeErr := s.Close()
	s.Report(stdout, stderr)

	if err := s.Err(); err != nil {
		return err
	}
	if interrupted {
		return cli.Interrupted()
	}
	return closeErr
}

func setupError(err error) error {
	switch {
	case errors.Is(err, session.ErrRestore):
		return &cli.ExitError{Code: cli.ExitFailure, Message: "Error: " + err.Error()}
	case errors.Is(err, session.ErrInterrupted):
		return cli.Interrupted()
	case errors.Is(err, session.ErrNoInput):
		return &cli.ExitError{Code: cli.ExitFailure, Message: "Error: input ended before setup was complete"}
	default:
		return err
	}
}

func listHistory(stdout io.Writer, opts *cli.Options) error {
	if !opts.Settings.HistoryEnabled {
		return &cli.ExitError{Code: cli.ExitFailure, Message: "history is disabled"}
	}
	db, err := history.Open(opts.Settings.HistoryPath)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := history.NewSessionStore(db).List(opts.Limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(stdout, "No sessions recorded yet.")
		return nil
	}

	for _, rec := range sessions {
		started := time.Unix(rec.StartedAt, 0).Format("2006-01-02 15:04:05")
		restored := ""
		if rec.Restored {
			restored = "  (restored)"
		}
		fmt.Fprintf(stdout, "%s %s  %s  %2d disks  %6d moves  %-11s%s\n",
			rec.StatusIcon(), rec.ID[:min(8, len(rec.ID))], started, rec.NumDisks, rec.TotalMoves, rec.Status, restored)
	}
	return nil
}

func serve(ctx context.Context, stdout io.Writer, opts *cli.Options) error {
	settings := opts.Settings
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: settings.SlogLevel()}))
	slog.SetDefault(logger)

	db, _ := openHistory(settings, logger)
	if db != nil {
		defer db.Close()
	}

	ln, err := net.Listen("tcp", settings.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", settings.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:      api.NewRouter(db, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("hanoi server starting", "addr", ln.Addr().String(), "history", db != nil)
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		return err
	}
	<-errc

	logger.Info("server stopped")
	return nil
}

// serveMCP speaks MCP on stdin/stdout, so logs go to stderr
func serveMCP(ctx context.Context, stderr io.Writer, opts *cli.Options) error {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.Settings.SlogLevel()}))
	slog.SetDefault(logger)

	if err := mcpserver.New(opts.ServerURL, logger).Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

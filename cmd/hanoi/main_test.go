package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dash-soft/hanoi/internal/cli"
	"github.com/dash-soft/hanoi/internal/movelog"
)

// inTempDir runs the test in an empty working directory, where all the
// default paths live
func inTempDir(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

type result struct {
	stdout string
	stderr string
	err    error
}

func runWith(ctx context.Context, stdin string, args ...string) result {
	var stdout, stderr bytes.Buffer
	err := run(ctx, strings.NewReader(stdin), &stdout, &stderr, args)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func requireExitCode(t *testing.T, err error, code int) *cli.ExitError {
	t.Helper()
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "expected *cli.ExitError, got %v", err)
	require.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestRun_PlainSolve(t *testing.T) {
	inTempDir(t)

	res := runWith(context.Background(), "3\n\ns\ns\ns\n", "-plain", "-delay", "0")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Source:    [3] [2] [1]")
	assert.Contains(t, res.stdout, "Solving 3 disks in 7 moves")
	assert.Contains(t, res.stdout, "Move 1: Moved disk 1 from Source to Target")
	assert.Contains(t, res.stdout, "Move 7: Moved disk 1 from Source to Target")
	assert.Contains(t, res.stdout, "Total moves: 7")
	assert.Contains(t, res.stdout, "Rod Target: 3 2 1")
	assert.Contains(t, res.stdout, movelog.ReplayHeader)
	assert.Empty(t, res.stderr)

	_, err := os.Stat("config.json")
	assert.NoError(t, err, "arrangement should be saved")
	logData, err := os.ReadFile("log.txt")
	require.NoError(t, err)
	assert.Equal(t, 7, strings.Count(string(logData), "\n"))

	hist := runWith(context.Background(), "", "history")
	require.NoError(t, hist.err)
	assert.Contains(t, hist.stdout, "✓")
	assert.Contains(t, hist.stdout, "3 disks")
	assert.Contains(t, hist.stdout, "7 moves")
	assert.Contains(t, hist.stdout, "solved")
}

func TestRun_PlainRestoresSnapshot(t *testing.T) {
	inTempDir(t)
	require.NoError(t, runWith(context.Background(), "2\n\na\na\n", "-plain", "-delay", "0").err)

	res := runWith(context.Background(), "y\n", "-plain", "-delay", "0")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Loaded disk configuration from config.json")
	assert.Contains(t, res.stdout, "Total moves: 3")
	assert.Contains(t, res.stdout, "Rod Target: 2 1")

	hist := runWith(context.Background(), "", "history")
	require.NoError(t, hist.err)
	assert.Equal(t, 2, strings.Count(hist.stdout, "✓"))
	assert.Contains(t, hist.stdout, "(restored)")
}

func TestRun_RestoreFailure(t *testing.T) {
	inTempDir(t)
	require.NoError(t, os.WriteFile("config.json", []byte("{not json"), 0644))

	res := runWith(context.Background(), "y\n", "-plain", "-no-history")

	exitErr := requireExitCode(t, res.err, cli.ExitFailure)
	assert.True(t, strings.HasPrefix(exitErr.Message, "Error: "), exitErr.Message)
	assert.NotContains(t, res.stdout, "Total moves")
}

func TestRun_InputEndsDuringSetup(t *testing.T) {
	inTempDir(t)

	res := runWith(context.Background(), "", "-plain", "-no-history")

	requireExitCode(t, res.err, cli.ExitFailure)
}

func TestRun_InterruptDuringSetup(t *testing.T) {
	inTempDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := runWith(ctx, "4\n\ns\ns\ns\ns\n", "-plain", "-delay", "1s")

	requireExitCode(t, res.err, cli.ExitInterrupted)
	assert.NotContains(t, res.stdout, "Move 1:")
	assert.NotContains(t, res.stdout, "Total moves")
	_, err := os.Stat("config.json")
	assert.True(t, errors.Is(err, os.ErrNotExist), "arrangement should not be saved")

	hist := runWith(context.Background(), "", "history")
	require.NoError(t, hist.err)
	assert.Equal(t, "No sessions recorded yet.\n", hist.stdout)
}

func TestRun_InterruptWhileWaitingForInput(t *testing.T) {
	inTempDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	var stdout, stderr bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, pr, &stdout, &stderr, []string{"-plain", "-no-history"})
	}()

	// the disk count is read, the thread limit prompt waits
	_, err := pw.Write([]byte("3\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		requireExitCode(t, err, cli.ExitInterrupted)
	case <-time.After(2 * time.Second):
		t.Fatal("run still waiting on input after cancel")
	}
	_, err = os.Stat("config.json")
	assert.True(t, errors.Is(err, os.ErrNotExist), "arrangement should not be saved")
	assert.NotContains(t, stdout.String(), "Move 1:")
}

// cancelWriter cancels once marker has been written
type cancelWriter struct {
	bytes.Buffer
	marker string
	cancel context.CancelFunc
}

func (w *cancelWriter) Write(p []byte) (int, error) {
	n, err := w.Buffer.Write(p)
	if strings.Contains(w.Buffer.String(), w.marker) {
		w.cancel()
	}
	return n, err
}

func TestRun_InterruptStopsAfterCurrentMove(t *testing.T) {
	inTempDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stdout := &cancelWriter{marker: "Move 1:", cancel: cancel}
	var stderr bytes.Buffer

	err := run(ctx, strings.NewReader("4\n\ns\ns\ns\ns\n"), stdout, &stderr, []string{"-plain", "-delay", "1s"})

	requireExitCode(t, err, cli.ExitInterrupted)
	assert.Contains(t, stdout.String(), "Total moves: 1")
	assert.NotContains(t, stdout.String(), "Move 2:")
	_, statErr := os.Stat("config.json")
	assert.NoError(t, statErr, "arrangement saved before the solve")

	hist := runWith(context.Background(), "", "history")
	require.NoError(t, hist.err)
	assert.Contains(t, hist.stdout, "interrupted")
}

func TestRun_History(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		inTempDir(t)
		res := runWith(context.Background(), "", "history")
		require.NoError(t, res.err)
		assert.Equal(t, "No sessions recorded yet.\n", res.stdout)
	})

	t.Run("disabled", func(t *testing.T) {
		inTempDir(t)
		res := runWith(context.Background(), "", "-no-history", "history")
		requireExitCode(t, res.err, cli.ExitFailure)
	})
}

func TestRun_Help(t *testing.T) {
	inTempDir(t)

	res := runWith(context.Background(), "", "-h")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Usage:")
}

func TestRun_UnknownCommand(t *testing.T) {
	inTempDir(t)

	res := runWith(context.Background(), "", "juggle")

	requireExitCode(t, res.err, cli.ExitUsage)
}

func TestRun_ServeShutsDownOnCancel(t *testing.T) {
	inTempDir(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := runWith(ctx, "", "-addr", "127.0.0.1:0", "serve")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "hanoi server starting")
	assert.Contains(t, res.stdout, "server stopped")
}

package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dash-soft/hanoi/internal/config"
)

// inTempDir isolates the test from settings and .env files in the
// working directory
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %v", err)
	require.Equal(t, code, exitErr.Code)
}

func TestParse_Defaults(t *testing.T) {
	inTempDir(t)

	opts, shouldExit, err := Parse(nil, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, CommandRun, opts.Command)
	require.Equal(t, config.DefaultSettings(), opts.Settings)
	require.False(t, opts.Plain)
	require.Equal(t, 20, opts.Limit)
	require.Equal(t, "http://127.0.0.1:8742", opts.ServerURL)
}

func TestParse_FlagsOverrideSettings(t *testing.T) {
	inTempDir(t)

	args := []string{
		"-config", "disks.json",
		"-log", "moves.txt",
		"-history", "h.db",
		"-delay", "10ms",
		"-log-level", "debug",
		"-addr", ":9000",
		"-plain", "-debug",
		"-limit", "5",
		"history",
	}
	opts, shouldExit, err := Parse(args, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, shouldExit)
	require.Equal(t, CommandHistory, opts.Command)
	require.Equal(t, "disks.json", opts.Settings.SnapshotPath)
	require.Equal(t, "moves.txt", opts.Settings.MoveLogPath)
	require.Equal(t, "h.db", opts.Settings.HistoryPath)
	require.Equal(t, 10*time.Millisecond, opts.Settings.FrameDelay)
	require.Equal(t, "debug", opts.Settings.LogLevel)
	require.Equal(t, ":9000", opts.Settings.ListenAddr)
	require.True(t, opts.Plain)
	require.True(t, opts.Debug)
	require.Equal(t, 5, opts.Limit)
}

func TestParse_SettingsFileThenFlags(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "settings.yaml")
	yaml := "move_log_path: from-file.txt\nframe_delay: 250ms\nhistory_enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	opts, _, err := Parse([]string{"-settings", path, "-delay", "1ms", "-no-history"}, &bytes.Buffer{})

	require.NoError(t, err)
	require.Equal(t, path, opts.SettingsPath)
	require.Equal(t, "from-file.txt", opts.Settings.MoveLogPath)
	require.Equal(t, time.Millisecond, opts.Settings.FrameDelay)
	require.False(t, opts.Settings.HistoryEnabled)
}

func TestParse_MCPServerURL(t *testing.T) {
	inTempDir(t)

	opts, _, err := Parse([]string{"-addr", "localhost:9000", "mcp"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, CommandMCP, opts.Command)
	require.Equal(t, "http://localhost:9000", opts.ServerURL)

	opts, _, err = Parse([]string{"-server", "http://hanoi.internal:8080", "mcp"}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "http://hanoi.internal:8080", opts.ServerURL)
}

func TestParse_Help(t *testing.T) {
	inTempDir(t)
	out := &bytes.Buffer{}

	opts, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	require.True(t, shouldExit)
	require.Nil(t, opts)
	require.Contains(t, out.String(), "Usage:")
	require.Contains(t, out.String(), "-delay")
}

func TestParse_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"unknown command", []string{"solve"}},
		{"too many commands", []string{"run", "serve"}},
		{"bad log level", []string{"-log-level", "loud"}},
		{"negative delay", []string{"-delay", "-5ms"}},
		{"bad duration", []string{"-delay", "soon"}},
		{"empty snapshot path", []string{"-config", ""}},
		{"zero limit", []string{"-limit", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inTempDir(t)
			_, shouldExit, err := Parse(tt.args, &bytes.Buffer{})
			require.False(t, shouldExit)
			requireExitCode(t, err, ExitUsage)
		})
	}
}

func TestParse_BrokenSettingsFile(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frame_delay: [nope"), 0644))

	_, _, err := Parse([]string{"-settings", path}, &bytes.Buffer{})
	requireExitCode(t, err, ExitUsage)
}

func TestInterrupted(t *testing.T) {
	err := error(Interrupted())
	requireExitCode(t, err, ExitInterrupted)
	require.Equal(t, "interrupted", err.Error())
}

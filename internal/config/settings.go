package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSettingsPath is the project-level settings file
var DefaultSettingsPath = filepath.Join(".hanoi", "settings.yaml")

// Settings holds application preferences. Values come from defaults, then
// the YAML settings file, then HANOI_* environment variables.
type Settings struct {
	SnapshotPath    string        `yaml:"snapshot_path" env:"HANOI_SNAPSHOT_PATH"`
	MoveLogPath     string        `yaml:"move_log_path" env:"HANOI_MOVE_LOG_PATH"`
	HistoryPath     string        `yaml:"history_path" env:"HANOI_HISTORY_PATH"`
	HistoryEnabled  bool          `yaml:"history_enabled" env:"HANOI_HISTORY_ENABLED"`
	DiagnosticsPath string        `yaml:"diagnostics_path" env:"HANOI_DIAGNOSTICS_PATH"`
	FrameDelay      time.Duration `yaml:"frame_delay" env:"HANOI_FRAME_DELAY"`
	LogLevel        string        `yaml:"log_level" env:"HANOI_LOG_LEVEL"`
	ListenAddr      string        `yaml:"listen_addr" env:"HANOI_LISTEN_ADDR"`
}

// DefaultSettings returns the built-in settings
func DefaultSettings() *Settings {
	return &Settings{
		SnapshotPath:    DefaultSnapshotPath,
		MoveLogPath:     "log.txt",
		HistoryPath:     filepath.Join(".hanoi", "history.db"),
		HistoryEnabled:  true,
		DiagnosticsPath: filepath.Join(".hanoi", "hanoi.log"),
		FrameDelay:      60 * time.Millisecond,
		LogLevel:        "info",
		ListenAddr:      "127.0.0.1:8742",
	}
}

// LoadSettings layers the settings file at path (if present), a .env file
// in the working directory (if present) and the environment over the
// defaults.
func LoadSettings(path string) (*Settings, error) {
	cfg := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// no settings file, keep defaults
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	// .env is optional; existing environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the program cannot run with
func (s *Settings) Validate() error {
	if s.SnapshotPath == "" {
		return fmt.Errorf("snapshot_path must not be empty")
	}
	if s.MoveLogPath == "" {
		return fmt.Errorf("move_log_path must not be empty")
	}
	if s.HistoryEnabled && s.HistoryPath == "" {
		return fmt.Errorf("history_path must not be empty when history is enabled")
	}
	if s.FrameDelay < 0 {
		return fmt.Errorf("frame_delay must not be negative, got %s", s.FrameDelay)
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured diagnostics level
func (s *Settings) SlogLevel() slog.Level {
	level, _ := ParseLevel(s.LogLevel)
	return level
}

// ParseLevel maps a level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", name)
	}
}

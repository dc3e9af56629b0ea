// Package session drives one Tower of Hanoi run: it sets up the rods,
// persists the starting arrangement, runs the planner and reports the
// result.
package session

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dash-soft/hanoi/internal/config"
	"github.com/dash-soft/hanoi/internal/hanoi"
	"github.com/dash-soft/hanoi/internal/model"
	"github.com/dash-soft/hanoi/internal/movelog"
)

// ErrRestore marks failures to restore a saved arrangement
var ErrRestore = errors.New("restore configuration")

// Recorder stores the outcome of sessions
type Recorder interface {
	Begin(rec model.SessionRecord) error
	Finish(id string, status model.SessionStatus, totalMoves int, final map[string][]int) error
}

// Options configures a session
type Options struct {
	SnapshotPath string
	MoveLogPath  string
	History      Recorder
	Logger       *slog.Logger
}

// Session owns the three rods and the move log for one run
type Session struct {
	ID          string
	Source      *hanoi.Rod
	Target      *hanoi.Rod
	Auxiliary   *hanoi.Rod
	NumDisks    int
	ThreadLimit int // recorded only; solving is sequential
	Restored    bool

	opts    Options
	logger  *slog.Logger
	log     *movelog.Log
	moves   int
	err     error
	started bool
	closed  bool
}

// New creates a session with empty rods
func New(opts Options) *Session {
	if opts.SnapshotPath == "" {
		opts.SnapshotPath = config.DefaultSnapshotPath
	}
	if opts.MoveLogPath == "" {
		opts.MoveLogPath = "log.txt"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New().String()
	return &Session{
		ID:          id,
		Source:      hanoi.NewRod(hanoi.Source),
		Target:      hanoi.NewRod(hanoi.Target),
		Auxiliary:   hanoi.NewRod(hanoi.Auxiliary),
		ThreadLimit: 1,
		opts:        opts,
		logger:      logger.With("session_id", id),
	}
}

// SnapshotPath returns where the starting arrangement is stored
func (s *Session) SnapshotPath() string {
	return s.opts.SnapshotPath
}

// MoveLogPath returns where moves are logged
func (s *Session) MoveLogPath() string {
	return s.opts.MoveLogPath
}

// SnapshotAvailable reports whether a saved arrangement exists
func (s *Session) SnapshotAvailable() bool {
	return config.SnapshotExists(s.opts.SnapshotPath)
}

// Begin resets the move log. It runs at the start of every session,
// before the first move.
func (s *Session) Begin() error {
	if s.log != nil {
		s.log.Close()
	}
	log, err := movelog.Create(s.opts.MoveLogPath)
	if err != nil {
		return err
	}
	s.log = log
	s.logger.Debug("move log reset", "path", s.opts.MoveLogPath)
	return nil
}

// Restore loads the saved arrangement into the rods. The snapshot is not
// written back.
func (s *Session) Restore() error {
	snap, err := config.LoadSnapshot(s.opts.SnapshotPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRestore, err)
	}

	s.resetRods()
	snap.Apply(s.Source, s.Target, s.Auxiliary)
	s.NumDisks = snap.NumDisks
	s.Restored = true

	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrRestore, err)
	}
	s.logger.Info("restored configuration", "path", s.opts.SnapshotPath, "num_disks", s.NumDisks)
	return nil
}

// Configure clears the rods and sets the disk count for manual placement
func (s *Session) Configure(numDisks int) error {
	if numDisks < 0 {
		return &hanoi.ConfigError{Field: "num_disks", Reason: fmt.Sprintf("must not be negative, got %d", numDisks)}
	}
	s.resetRods()
	s.NumDisks = numDisks
	s.Restored = false
	return nil
}

// SetThreadLimit records the parallelism limit. It has no effect on
// solving.
func (s *Session) SetThreadLimit(n int) error {
	if n < 1 {
		return fmt.Errorf("thread limit must be at least 1, got %d", n)
	}
	s.ThreadLimit = n
	return nil
}

// Place puts disk on the rod named by choice. Unrecognized choices fall
// back to Source and return a warning for the user.
func (s *Session) Place(disk int, choice string) string {
	name, ok := hanoi.ParseRodChoice(choice)
	if !ok {
		name = hanoi.Source
		s.logger.Warn("invalid placement", "disk", disk, "input", choice)
	}
	s.Rod(name).AddDisk(disk)
	return placementWarning(disk, choice)
}

// placementWarning is the message for a choice that names no rod
func placementWarning(disk int, choice string) string {
	if _, ok := hanoi.ParseRodChoice(choice); ok {
		return ""
	}
	return fmt.Sprintf("Invalid input. Defaulting to Source for disk %d.", disk)
}

// PlaceManual configures numDisks disks placed smallest first according
// to choices, then persists the arrangement. Missing choices count as
// invalid input.
func (s *Session) PlaceManual(numDisks, threadLimit int, choices []string) ([]string, error) {
	if err := s.Configure(numDisks); err != nil {
		return nil, err
	}
	if err := s.SetThreadLimit(threadLimit); err != nil {
		return nil, err
	}

	var warnings []string
	for disk := 1; disk <= numDisks; disk++ {
		choice := ""
		if disk <= len(choices) {
			choice = choices[disk-1]
		}
		if w := s.Place(disk, choice); w != "" {
			warnings = append(warnings, w)
		}
	}

	if err := s.Persist(); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// Persist saves the current arrangement as the snapshot
func (s *Session) Persist() error {
	snap := config.SnapshotOf(s.Source, s.Target, s.Auxiliary)
	if err := config.SaveSnapshot(s.opts.SnapshotPath, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Info("saved configuration", "path", s.opts.SnapshotPath, "num_disks", snap.NumDisks)
	return nil
}

// Validate checks the current arrangement
func (s *Session) Validate() error {
	return hanoi.ValidatePlacement(s.NumDisks, s.Source, s.Target, s.Auxiliary)
}

// Rod returns the rod with the given name
func (s *Session) Rod(name hanoi.RodName) *hanoi.Rod {
	switch name {
	case hanoi.Target:
		return s.Target
	case hanoi.Auxiliary:
		return s.Auxiliary
	default:
		return s.Source
	}
}

// PlannedMoves returns how many moves the solve will take
func (s *Session) PlannedMoves() uint64 {
	if s.allOnSource() {
		return hanoi.MoveCount(s.NumDisks)
	}
	return hanoi.GatherCount(s.Source, s.Target, s.Auxiliary)
}

// Moves returns how many moves have been made so far
func (s *Session) Moves() int {
	return s.moves
}

// Err returns the error that stopped the solve, if any
func (s *Session) Err() error {
	return s.err
}

// Steps returns the solve as a sequence of moves. Each move is applied
// to the rods and written to the move log before it is yielded.
func (s *Session) Steps() iter.Seq[hanoi.Move] {
	return func(yield func(hanoi.Move) bool) {
		if err := s.start(); err != nil {
			s.err = err
			return
		}

		emit := func(m hanoi.Move) bool {
			s.moves = m.Seq
			if err := s.log.Append(m); err != nil {
				s.err = err
				return false
			}
			s.logger.Debug("move", "seq", m.Seq, "disk", m.Disk, "from", m.From, "to", m.To)
			return yield(m)
		}

		var err error
		if s.allOnSource() {
			_, err = hanoi.Solve(s.NumDisks, s.Source, s.Target, s.Auxiliary, emit)
		} else {
			s.logger.Info("disks start off the source rod, gathering onto target")
			_, err = hanoi.Gather(s.Source, s.Target, s.Auxiliary, emit)
		}
		if err != nil && s.err == nil {
			s.err = err
		}
	}
}

// Run solves to completion, calling observe after each move
func (s *Session) Run(observe func(hanoi.Move)) (int, error) {
	for m := range s.Steps() {
		if observe != nil {
			observe(m)
		}
	}
	return s.moves, s.err
}

// Outcome classifies the session for history
func (s *Session) Outcome() model.SessionStatus {
	switch {
	case s.err != nil:
		return model.SessionStatusFailed
	case s.Target.Len() == s.NumDisks:
		return model.SessionStatusSolved
	default:
		return model.SessionStatusInterrupted
	}
}

// Close records the outcome and closes the move log
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.started && s.opts.History != nil {
		final := make(map[string][]int, 3)
		for name, disks := range s.Summary().Final {
			final[string(name)] = disks
		}
		if err := s.opts.History.Finish(s.ID, s.Outcome(), s.moves, final); err != nil {
			s.logger.Warn("failed to record session outcome", "error", err)
		}
	}
	s.logger.Info("session closed", "status", s.Outcome(), "moves", s.moves)
	return s.log.Close()
}

func (s *Session) start() error {
	if s.started {
		return fmt.Errorf("session %s already solved", s.ID)
	}
	if s.log == nil {
		if err := s.Begin(); err != nil {
			return err
		}
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.started = true

	if s.opts.History != nil {
		rec := model.SessionRecord{
			ID:          s.ID,
			NumDisks:    s.NumDisks,
			ThreadLimit: s.ThreadLimit,
			Restored:    s.Restored,
		}
		if err := s.opts.History.Begin(rec); err != nil {
			// history is best effort
			s.logger.Warn("failed to record session start", "error", err)
		}
	}
	s.logger.Info("solve started", "num_disks", s.NumDisks, "thread_limit", s.ThreadLimit, "restored", s.Restored)
	return nil
}

func (s *Session) allOnSource() bool {
	return s.Source.Len() == s.NumDisks
}

func (s *Session) resetRods() {
	s.Source.Reset()
	s.Target.Reset()
	s.Auxiliary.Reset()
}

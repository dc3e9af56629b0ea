package movelog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dash-soft/hanoi/internal/hanoi"
)

// ReplayHeader precedes the replayed moves on standard output
const ReplayHeader = "--- Log of Moves ---"

// Log appends one line per move to a plain-text file
type Log struct {
	file  *os.File
	mu    sync.Mutex
	lines int
}

// Create truncates (or creates) the move log at path. Every session
// starts with an empty log.
func Create(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create move log: %w", err)
	}

	return &Log{file: file}, nil
}

// Lines returns how many moves have been written
func (l *Log) Lines() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lines
}

// Append writes the move as a single line and flushes it to disk
func (l *Log) Append(m hanoi.Move) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.WriteString(m.String() + "\n"); err != nil {
		return fmt.Errorf("write move %d: %w", m.Seq, err)
	}
	l.lines++
	return l.file.Sync()
}

// Close closes the log file
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// ReadMoves returns the lines of the move log at path
func ReadMoves(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

// Replay copies the move log at path to w under ReplayHeader. Nothing is
// written if the log cannot be read.
func Replay(path string, w io.Writer) error {
	lines, err := ReadMoves(path)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\n%s\n", ReplayHeader); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

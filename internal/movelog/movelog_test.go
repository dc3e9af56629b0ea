package movelog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dash-soft/hanoi/internal/hanoi"
)

func TestCreate_TruncatesExistingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := os.WriteFile(path, []byte("Moved disk 9 from Source to Target\n"), 0644); err != nil {
		t.Fatalf("Failed to seed log: %v", err)
	}

	log, err := Create(path)
	if err != nil {
		t.Fatalf("Failed to create log: %v", err)
	}
	defer log.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty log after Create, got %q", data)
	}
}

func TestAppend_WritesOneLinePerMove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	log, err := Create(path)
	if err != nil {
		t.Fatalf("Failed to create log: %v", err)
	}

	moves := []hanoi.Move{
		{Seq: 1, Disk: 1, From: hanoi.Source, To: hanoi.Target},
		{Seq: 2, Disk: 2, From: hanoi.Source, To: hanoi.Auxiliary},
		{Seq: 3, Disk: 1, From: hanoi.Target, To: hanoi.Auxiliary},
	}
	for _, m := range moves {
		if err := log.Append(m); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if log.Lines() != 3 {
		t.Errorf("Expected 3 lines, got %d", log.Lines())
	}
	log.Close()

	lines, err := ReadMoves(path)
	if err != nil {
		t.Fatalf("ReadMoves failed: %v", err)
	}
	want := []string{
		"Moved disk 1 from Source to Target",
		"Moved disk 2 from Source to Auxiliary",
		"Moved disk 1 from Target to Auxiliary",
	}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestCreate_MakesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run", "log.txt")
	log, err := Create(path)
	if err != nil {
		t.Fatalf("Failed to create log: %v", err)
	}
	defer log.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected log file at %s: %v", path, err)
	}
}

func TestNilLog_IsNoop(t *testing.T) {
	var log *Log
	if err := log.Append(hanoi.Move{Seq: 1, Disk: 1}); err != nil {
		t.Errorf("Expected nil error from nil log, got %v", err)
	}
	if err := log.Close(); err != nil {
		t.Errorf("Expected nil error closing nil log, got %v", err)
	}
}

func TestReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	log, err := Create(path)
	if err != nil {
		t.Fatalf("Failed to create log: %v", err)
	}
	log.Append(hanoi.Move{Seq: 1, Disk: 1, From: hanoi.Source, To: hanoi.Target})
	log.Close()

	var out bytes.Buffer
	if err := Replay(path, &out); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	want := "\n--- Log of Moves ---\nMoved disk 1 from Source to Target\n"
	if out.String() != want {
		t.Errorf("Expected %q, got %q", want, out.String())
	}
}

func TestReplay_EmptyLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	log, err := Create(path)
	if err != nil {
		t.Fatalf("Failed to create log: %v", err)
	}
	log.Close()

	var out bytes.Buffer
	if err := Replay(path, &out); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if out.String() != "\n--- Log of Moves ---\n" {
		t.Errorf("Expected only the header, got %q", out.String())
	}
}

func TestReplay_MissingLog(t *testing.T) {
	var out bytes.Buffer
	err := Replay(filepath.Join(t.TempDir(), "missing.txt"), &out)
	if err == nil {
		t.Fatal("Expected error for missing log")
	}
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
	if !strings.Contains(err.Error(), "missing.txt") {
		t.Errorf("Expected error to name the file, got %v", err)
	}
}

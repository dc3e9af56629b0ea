package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dash-soft/hanoi/internal/config"
	"github.com/dash-soft/hanoi/internal/hanoi"
)

func TestSetup_ManualEntry(t *testing.T) {
	s := newTestSession(t, nil)
	var out bytes.Buffer
	p := NewPrompter(context.Background(), strings.NewReader("3\n4\ns\nq\nt\n"), &out)

	require.NoError(t, Setup(s, p))

	assert.Equal(t, 3, s.NumDisks)
	assert.Equal(t, 4, s.ThreadLimit)
	assert.Equal(t, []int{2, 1}, s.Source.Disks())
	assert.Equal(t, []int{3}, s.Target.Disks())
	assert.Contains(t, out.String(), "Where is disk 2? (S/A/T): ")
	assert.Contains(t, out.String(), "Invalid input. Defaulting to Source for disk 2.")
	assert.True(t, s.SnapshotAvailable())
}

func TestSetup_ReusesSnapshot(t *testing.T) {
	s := newTestSession(t, nil)
	src := hanoi.NewRod(hanoi.Source)
	src.AddDisk(1)
	snap := config.SnapshotOf(src, hanoi.NewRod(hanoi.Target), hanoi.NewRod(hanoi.Auxiliary))
	require.NoError(t, config.SaveSnapshot(s.SnapshotPath(), snap))

	var out bytes.Buffer
	require.NoError(t, Setup(s, NewPrompter(context.Background(), strings.NewReader("Y\n"), &out)))

	assert.True(t, s.Restored)
	assert.Equal(t, 1, s.NumDisks)
	assert.Contains(t, out.String(), "A config.json file exists. Do you want to use it? (y/n): ")
	assert.Contains(t, out.String(), "Loaded disk configuration from")
}

func TestSetup_DeclinesSnapshot(t *testing.T) {
	s := newTestSession(t, nil)
	require.NoError(t, config.SaveSnapshot(s.SnapshotPath(), config.Snapshot{}))

	var out bytes.Buffer
	require.NoError(t, Setup(s, NewPrompter(context.Background(), strings.NewReader("n\n2\n\na\na\n"), &out)))

	assert.False(t, s.Restored)
	assert.Equal(t, 1, s.ThreadLimit)
	assert.Equal(t, []int{2, 1}, s.Auxiliary.Disks())
}

func TestSetup_RepromptsForBadNumbers(t *testing.T) {
	s := newTestSession(t, nil)
	var out bytes.Buffer
	p := NewPrompter(context.Background(), strings.NewReader("-1\nmany\n1\n0\nfour\n2\ns\n"), &out)

	require.NoError(t, Setup(s, p))
	assert.Equal(t, 1, s.NumDisks)
	assert.Equal(t, 2, s.ThreadLimit)
	assert.Equal(t, 2, strings.Count(out.String(), "disk count must be"))
	assert.Equal(t, 2, strings.Count(out.String(), "thread limit must be"))
}

func TestSetup_EndOfInput(t *testing.T) {
	s := newTestSession(t, nil)
	err := Setup(s, NewPrompter(context.Background(), strings.NewReader("2\n1\ns\n"), &bytes.Buffer{}))
	assert.True(t, errors.Is(err, ErrNoInput))
}

func TestSetup_CancelledBeforeFirstPrompt(t *testing.T) {
	s := newTestSession(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := Setup(s, NewPrompter(ctx, strings.NewReader("2\n\ns\ns\n"), &out))

	assert.True(t, errors.Is(err, ErrInterrupted), "got %v", err)
	assert.False(t, s.SnapshotAvailable(), "nothing should be saved")
	assert.Equal(t, 0, s.NumDisks)
	assert.Empty(t, out.String())
}

func TestSetup_CancelWhileWaitingForInput(t *testing.T) {
	s := newTestSession(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	p := NewPrompter(ctx, pr, &bytes.Buffer{})
	defer p.Close()

	done := make(chan error, 1)
	go func() { done <- Setup(s, p) }()

	// answer the disk count, then leave the thread prompt waiting
	_, err := pw.Write([]byte("3\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrInterrupted), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("setup still waiting on input after cancel")
	}
	assert.False(t, s.SnapshotAvailable(), "nothing should be saved")
}

func TestSetup_WarningFollowsItsPrompt(t *testing.T) {
	s := newTestSession(t, nil)
	var out bytes.Buffer

	require.NoError(t, Setup(s, NewPrompter(context.Background(), strings.NewReader("2\n\nx\nt\n"), &out)))

	text := out.String()
	warn := strings.Index(text, "Invalid input. Defaulting to Source for disk 1.")
	require.NotEqual(t, -1, warn)
	assert.Less(t, strings.Index(text, "Where is disk 1?"), warn)
	assert.Less(t, warn, strings.Index(text, "Where is disk 2?"))
	assert.Equal(t, []int{1}, s.Source.Disks())
	assert.Equal(t, []int{2}, s.Target.Disks())
}

func TestIsYes(t *testing.T) {
	for _, in := range []string{"y", "Y", "yes", " YES "} {
		assert.True(t, IsYes(in), in)
	}
	for _, in := range []string{"n", "", "yep", "no"} {
		assert.False(t, IsYes(in), in)
	}
}

func TestParseThreadLimit(t *testing.T) {
	n, err := ParseThreadLimit("")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ParseThreadLimit(" 8 ")
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	_, err = ParseThreadLimit("0")
	require.Error(t, err)
}

package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrNoInput is returned when the input ends before a prompt is answered
	ErrNoInput = errors.New("no more input")
	// ErrInterrupted is returned when the context is cancelled during setup
	ErrInterrupted = errors.New("setup interrupted")
)

type line struct {
	text string
	err  error
}

// Prompter asks setup questions on a line-oriented terminal. Lines are read
// on a background goroutine so a cancelled context ends a prompt that is
// still waiting for input.
type Prompter struct {
	ctx    context.Context
	cancel context.CancelFunc
	in     io.Reader
	out    io.Writer

	once  sync.Once
	lines chan line
}

// NewPrompter reads answers from in and writes prompts to out until ctx is
// cancelled
func NewPrompter(ctx context.Context, in io.Reader, out io.Writer) *Prompter {
	ctx, cancel := context.WithCancel(ctx)
	return &Prompter{ctx: ctx, cancel: cancel, in: in, out: out}
}

// Close stops the background reader. A read already blocked on the input
// returns only when the input does.
func (p *Prompter) Close() {
	p.cancel()
}

func (p *Prompter) read() {
	defer close(p.lines)
	sc := bufio.NewScanner(p.in)
	for sc.Scan() {
		select {
		case p.lines <- line{text: sc.Text()}:
		case <-p.ctx.Done():
			return
		}
	}
	if err := sc.Err(); err != nil {
		select {
		case p.lines <- line{err: err}:
		case <-p.ctx.Done():
		}
	}
}

func (p *Prompter) ask(prompt string) (string, error) {
	if p.ctx.Err() != nil {
		return "", ErrInterrupted
	}
	fmt.Fprint(p.out, prompt)
	p.once.Do(func() {
		p.lines = make(chan line)
		go p.read()
	})

	select {
	case <-p.ctx.Done():
		fmt.Fprintln(p.out)
		return "", ErrInterrupted
	case l, ok := <-p.lines:
		switch {
		case !ok:
			return "", ErrNoInput
		case l.err != nil:
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// Confirm asks a yes/no question; only y or yes counts as yes
func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.ask(question + " (y/n): ")
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// DiskCount asks for a non-negative disk count until one is given
func (p *Prompter) DiskCount() (int, error) {
	for {
		answer, err := p.ask("Enter the number of disks: ")
		if err != nil {
			return 0, err
		}
		n, err := ParseDiskCount(answer)
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(p.out, err)
	}
}

// ThreadLimit asks for the thread limit; blank means 1
func (p *Prompter) ThreadLimit() (int, error) {
	for {
		answer, err := p.ask("Enter the number of threads to use: ")
		if err != nil {
			return 0, err
		}
		n, err := ParseThreadLimit(answer)
		if err == nil {
			return n, nil
		}
		fmt.Fprintln(p.out, err)
	}
}

// Placement asks which rod disk starts on and returns the raw answer
func (p *Prompter) Placement(disk int) (string, error) {
	return p.ask(fmt.Sprintf("Where is disk %d? (S/A/T): ", disk))
}

// Setup runs the interactive setup on s: reuse the saved arrangement if
// the user agrees, otherwise ask for the disks and save them. Nothing is
// saved if setup is interrupted.
func Setup(s *Session, p *Prompter) error {
	if s.SnapshotAvailable() {
		reuse, err := p.Confirm(fmt.Sprintf("A %s file exists. Do you want to use it?", filepath.Base(s.SnapshotPath())))
		if err != nil {
			return err
		}
		if reuse {
			if err := s.Restore(); err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Loaded disk configuration from %s\n", s.SnapshotPath())
			return nil
		}
	}

	n, err := p.DiskCount()
	if err != nil {
		return err
	}
	threads, err := p.ThreadLimit()
	if err != nil {
		return err
	}

	if n > 0 {
		fmt.Fprintln(p.out, "Please enter the location of each disk (Source, Auxiliary, Target):")
	}
	choices := make([]string, 0, n)
	for disk := 1; disk <= n; disk++ {
		choice, err := p.Placement(disk)
		if err != nil {
			return err
		}
		if warning := placementWarning(disk, choice); warning != "" {
			fmt.Fprintln(p.out, warning)
		}
		choices = append(choices, choice)
	}

	if p.ctx.Err() != nil {
		return ErrInterrupted
	}
	_, err = s.PlaceManual(n, threads, choices)
	return err
}

// IsYes reports whether answer means yes
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ParseDiskCount parses a non-negative disk count
func ParseDiskCount(input string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("disk count must be a whole number of 0 or more, got %q", input)
	}
	return n, nil
}

// ParseThreadLimit parses a positive thread limit; blank means 1
func ParseThreadLimit(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("thread limit must be a whole number of 1 or more, got %q", input)
	}
	return n, nil
}

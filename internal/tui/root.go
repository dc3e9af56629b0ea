// Package tui is the interactive front end: it collects the starting
// arrangement and animates the solve one move per frame.
package tui

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dash-soft/hanoi/internal/hanoi"
	"github.com/dash-soft/hanoi/internal/session"
)

// Step tracks where the user is in the run
type Step int

const (
	StepConfirmRestore Step = iota // Saved arrangement found, asking to reuse it
	StepDiskCount
	StepThreadLimit
	StepPlacement // One disk at a time, smallest first
	StepSolving
	StepDone
)

const (
	DefaultFrameDelay = 60 * time.Millisecond
	minFrameDelay     = 5 * time.Millisecond
	maxFrameDelay     = 2 * time.Second

	maxMoveLines = 500
	debugWidth   = 44
)

// Options configures the program
type Options struct {
	FrameDelay time.Duration
	Debug      bool
}

// frameMsg advances the solve by one move. Frames from an older
// schedule (before a pause) carry a stale gen and are dropped.
type frameMsg struct {
	gen int
}

// Spinner animation frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model is the root Bubble Tea model
type Model struct {
	// Terminal dimensions
	width  int
	height int

	session  *session.Session
	step     Step
	showHelp bool

	// Setup input
	input    textinput.Model
	inputErr string
	warnings []string
	disk     int // next disk to place

	// Solve state
	next         func() (hanoi.Move, bool)
	stop         func()
	total        uint64
	lastMove     string
	moveLines    []string
	viewport     viewport.Model
	delay        time.Duration
	paused       bool
	frameGen     int
	spinnerIndex int
	startTime    time.Time
	elapsed      time.Duration

	interrupted bool
	quitting    bool // set when the model itself ends the program
	err         error

	keys  KeyMap
	debug DebugPanel
}

// NewModel creates the model for one session. When a saved arrangement
// exists the user is asked whether to reuse it first.
func NewModel(s *session.Session, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = 12
	ti.Width = 20

	delay := opts.FrameDelay
	if delay <= 0 {
		delay = DefaultFrameDelay
	}

	m := Model{
		session:  s,
		input:    ti,
		viewport: viewport.New(60, 10),
		delay:    delay,
		keys:     DefaultKeyMap(),
		debug:    NewDebugPanel(opts.Debug),
	}

	if s.SnapshotAvailable() {
		m.step = StepConfirmRestore
		m.debug.AddEvent("setup", "snapshot found at "+s.SnapshotPath())
	} else {
		m.enterStep(StepDiskCount)
	}
	return m
}

// Run starts the program in the alternate screen and returns the final
// model once the user leaves it or ctx is cancelled
func Run(ctx context.Context, s *session.Session, opts Options) (Model, error) {
	return run(ctx, NewModel(s, opts), tea.WithAltScreen())
}

func run(ctx context.Context, m Model, opts ...tea.ProgramOption) (Model, error) {
	p := tea.NewProgram(m, append(opts, tea.WithContext(ctx))...)
	return settle(p.Run())
}

// settle turns the result of a program run into the final model. A program
// stopped from outside, by a cancelled context or a signal bubbletea
// handles itself, ends the same way as the user quitting mid-solve.
func settle(final tea.Model, err error) (Model, error) {
	switch {
	case err == nil:
	case errors.Is(err, tea.ErrProgramPanic):
		return Model{}, err
	case !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, tea.ErrInterrupted):
		return Model{}, err
	}
	m, ok := final.(Model)
	if !ok {
		if err == nil {
			err = fmt.Errorf("unexpected final model %T", final)
		}
		return Model{}, err
	}
	if !m.quitting && m.err == nil {
		if m.stop != nil {
			m.stop()
		}
		m.interrupted = m.step != StepDone
		m.debug.AddEvent("quit", "stopped from outside")
	}
	return m, nil
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Step returns the current step
func (m Model) Step() Step {
	return m.step
}

// Interrupted reports whether the user left before the solve finished
func (m Model) Interrupted() bool {
	return m.interrupted
}

// Started reports whether the solve began
func (m Model) Started() bool {
	return m.next != nil
}

// Err returns the error that ended the program, if any
func (m Model) Err() error {
	return m.err
}

// Warnings returns the placement warnings shown during setup
func (m Model) Warnings() []string {
	return m.warnings
}

// Delay returns the current frame delay
func (m Model) Delay() time.Duration {
	return m.delay
}

// Paused reports whether playback is paused
func (m Model) Paused() bool {
	return m.paused
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil

	case frameMsg:
		return m.advance(msg)

	case tea.KeyMsg:
		// Ctrl+C always quits, regardless of state
		if key.Matches(msg, m.keys.Interrupt) {
			return m.quit(m.step != StepDone)
		}
		switch m.step {
		case StepConfirmRestore:
			return m.updateConfirm(msg)
		case StepDiskCount, StepThreadLimit, StepPlacement:
			return m.updateInput(msg)
		default:
			return m.updatePlayback(msg)
		}
	}

	// cursor blink and other input housekeeping
	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		if err := m.session.Restore(); err != nil {
			m.err = err
			m.debug.AddEvent("restore", err.Error())
			return m, tea.Quit
		}
		m.debug.AddEvent("restore", fmt.Sprintf("%d disks", m.session.NumDisks))
		return m.startSolving()
	case key.Matches(msg, m.keys.No):
		m.enterStep(StepDiskCount)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Escape):
		return m.quit(true)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m.quit(true)
	case key.Matches(msg, m.keys.Enter):
		return m.submit(m.input.Value())
	case m.step == StepPlacement && m.input.Value() == "" && key.Matches(msg, m.keys.PlaceRod):
		return m.submit(msg.String())
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit applies the answer for the current setup step
func (m Model) submit(value string) (tea.Model, tea.Cmd) {
	m.inputErr = ""

	switch m.step {
	case StepDiskCount:
		n, err := session.ParseDiskCount(value)
		if err == nil {
			err = m.session.Configure(n)
		}
		if err != nil {
			m.inputErr = err.Error()
			m.input.Reset()
			return m, nil
		}
		m.debug.AddEvent("setup", fmt.Sprintf("%d disks", n))
		m.enterStep(StepThreadLimit)

	case StepThreadLimit:
		n, err := session.ParseThreadLimit(value)
		if err == nil {
			err = m.session.SetThreadLimit(n)
		}
		if err != nil {
			m.inputErr = err.Error()
			m.input.Reset()
			return m, nil
		}
		if m.session.NumDisks == 0 {
			return m.persistAndSolve()
		}
		m.disk = 1
		m.enterStep(StepPlacement)

	case StepPlacement:
		if w := m.session.Place(m.disk, value); w != "" {
			m.warnings = append(m.warnings, w)
			m.debug.AddEvent("setup", w)
		}
		m.disk++
		m.input.Reset()
		if m.disk > m.session.NumDisks {
			return m.persistAndSolve()
		}
	}

	return m, nil
}

func (m Model) persistAndSolve() (tea.Model, tea.Cmd) {
	if err := m.session.Persist(); err != nil {
		m.err = err
		return m, tea.Quit
	}
	return m.startSolving()
}

func (m Model) startSolving() (tea.Model, tea.Cmd) {
	m.input.Blur()
	m.step = StepSolving
	m.total = m.session.PlannedMoves()
	m.next, m.stop = iter.Pull(m.session.Steps())
	m.startTime = time.Now()
	m.debug.AddEvent("solve", fmt.Sprintf("%d disks, %d moves planned", m.session.NumDisks, m.total))
	return m, m.scheduleFrame()
}

func (m Model) updatePlayback(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case m.showHelp && key.Matches(msg, m.keys.Escape):
		m.showHelp = false
		return m, nil
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Escape):
		return m.quit(m.step == StepSolving)
	case m.step == StepDone && key.Matches(msg, m.keys.Enter):
		return m.quit(false)
	}

	if m.step == StepSolving {
		switch {
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
			if m.paused {
				m.debug.AddEvent("playback", "paused")
				return m, nil
			}
			m.debug.AddEvent("playback", "resumed")
			return m, m.scheduleFrame()
		case key.Matches(msg, m.keys.Faster):
			m.delay = max(m.delay/2, minFrameDelay)
			m.debug.AddEvent("playback", "delay "+m.delay.String())
			return m, nil
		case key.Matches(msg, m.keys.Slower):
			m.delay = min(m.delay*2, maxFrameDelay)
			m.debug.AddEvent("playback", "delay "+m.delay.String())
			return m, nil
		case key.Matches(msg, m.keys.Finish):
			for m.stepOnce() {
			}
			m.finishSolving()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// advance makes one move per frame and schedules the next frame
func (m Model) advance(msg frameMsg) (tea.Model, tea.Cmd) {
	if m.step != StepSolving || m.paused || msg.gen != m.frameGen {
		return m, nil
	}
	if !m.stepOnce() {
		m.finishSolving()
		return m, nil
	}
	m.refreshMoves()
	return m, m.scheduleFrame()
}

// stepOnce pulls the next move from the session. The session has
// already applied and logged it.
func (m *Model) stepOnce() bool {
	mv, ok := m.next()
	if !ok {
		return false
	}
	m.lastMove = mv.String()
	m.moveLines = append(m.moveLines, fmt.Sprintf("%5d  %s", mv.Seq, mv))
	if len(m.moveLines) > maxMoveLines {
		m.moveLines = m.moveLines[len(m.moveLines)-maxMoveLines:]
	}
	m.spinnerIndex++
	m.debug.AddEvent("move", fmt.Sprintf("#%d disk %d %s→%s", mv.Seq, mv.Disk, mv.From, mv.To))
	return true
}

func (m *Model) finishSolving() {
	m.stop()
	m.step = StepDone
	m.paused = false
	m.elapsed = time.Since(m.startTime)
	if err := m.session.Err(); err != nil {
		m.err = err
		m.debug.AddEvent("error", err.Error())
	} else {
		m.debug.AddEvent("solve", fmt.Sprintf("done in %d moves", m.session.Moves()))
	}
	m.refreshMoves()
}

func (m *Model) scheduleFrame() tea.Cmd {
	m.frameGen++
	gen := m.frameGen
	return tea.Tick(m.delay, func(time.Time) tea.Msg {
		return frameMsg{gen: gen}
	})
}

func (m Model) quit(interrupted bool) (tea.Model, tea.Cmd) {
	if m.stop != nil {
		m.stop()
	}
	m.interrupted = interrupted
	m.quitting = true
	return m, tea.Quit
}

// enterStep switches to a setup step that reads a line of input
func (m *Model) enterStep(step Step) {
	m.step = step
	m.input.Reset()
	switch step {
	case StepDiskCount:
		m.input.Placeholder = "e.g. 3"
	case StepThreadLimit:
		m.input.Placeholder = "1"
	case StepPlacement:
		m.input.Placeholder = "S/A/T"
	}
	m.input.Focus()
}

func (m *Model) refreshMoves() {
	m.viewport.SetContent(strings.Join(m.moveLines, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) resizeViewport() {
	width := m.width - 4 // border and padding
	if m.debug.IsEnabled() {
		width -= debugWidth
	}
	m.viewport.Width = max(width, 20)
	// header, rods panel, progress, move list chrome, status bar
	m.viewport.Height = max(m.height-18, 3)
	m.refreshMoves()
}

// View renders the current step
func (m Model) View() string {
	switch m.step {
	case StepConfirmRestore, StepDiskCount, StepThreadLimit, StepPlacement:
		return m.setupView()
	}
	if m.showHelp {
		return m.helpView()
	}
	return m.mainView()
}

// setupView renders the setup questions in a centered box
func (m Model) setupView() string {
	var content strings.Builder
	content.WriteString(LogoStyle.Render("HANOI") + SubtitleStyle.Render(" · Tower of Hanoi"))
	content.WriteString("\n\n")

	var title, hint string
	switch m.step {
	case StepConfirmRestore:
		title = fmt.Sprintf("A %s file exists. Do you want to use it?", filepath.Base(m.session.SnapshotPath()))
		hint = "y use it • n enter disks • q quit"
	case StepDiskCount:
		title = "Enter the number of disks"
		hint = "Enter submit • Esc quit"
	case StepThreadLimit:
		title = "Enter the number of threads to use"
		hint = "blank means 1 • Enter submit • Esc quit"
	case StepPlacement:
		title = fmt.Sprintf("Where is disk %d of %d?", m.disk, m.session.NumDisks)
		hint = "s Source • a Auxiliary • t Target • Esc quit"
	}
	content.WriteString(TitleStyle.Render(title))
	content.WriteString("\n\n")

	if m.step == StepPlacement {
		content.WriteString(m.renderRodRows())
		content.WriteString("\n\n")
	}
	if m.step != StepConfirmRestore {
		content.WriteString(m.input.View())
		content.WriteString("\n")
	}
	if m.inputErr != "" {
		content.WriteString(ErrorStyle.Render(m.inputErr))
		content.WriteString("\n")
	}
	for _, w := range m.warnings {
		content.WriteString(WarningStyle.Render(w))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(DimStyle.Render(hint))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		BoxStyle.Render(content.String()),
	)
}

// mainView renders the rods, progress and move list
func (m Model) mainView() string {
	header := m.renderHeader()

	body := lipgloss.JoinVertical(lipgloss.Left,
		RodsStyle.Render(m.renderRodRows()),
		m.renderProgress(),
		m.renderMoves(),
	)
	if m.debug.IsEnabled() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.debug.Render(debugWidth, lipgloss.Height(body)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.renderStatusBar(),
	)
}

// renderHeader renders the header bar
func (m Model) renderHeader() string {
	title := LogoStyle.Render("HANOI")
	subtitle := SubtitleStyle.Render(fmt.Sprintf("%d disks", m.session.NumDisks))
	info := SubtitleStyle.Render(" · threads " + fmt.Sprint(m.session.ThreadLimit))
	if m.session.Restored {
		info += SubtitleStyle.Render(" · restored")
	}

	return lipgloss.NewStyle().
		PaddingLeft(1).
		Render(title+"  "+subtitle+info) + "\n"
}

// renderRodRows renders one labeled row per rod
func (m Model) renderRodRows() string {
	s := m.session
	rows := make([]string, 0, 3)
	for _, r := range []*hanoi.Rod{s.Source, s.Auxiliary, s.Target} {
		rows = append(rows, renderRod(r))
	}
	return strings.Join(rows, "\n")
}

func renderRod(r *hanoi.Rod) string {
	label := RodLabelStyle.Render(string(r.Name()) + ":")
	disks := r.Disks()
	if len(disks) == 0 {
		return label + RodEmptyStyle.Render("·")
	}
	parts := make([]string, len(disks))
	for i, d := range disks {
		parts[i] = diskStyle(d).Render(fmt.Sprintf("[%d]", d))
	}
	return label + strings.Join(parts, " ")
}

// RodRow renders a rod as plain text, largest disk first
func RodRow(r *hanoi.Rod) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-11s", string(r.Name())+":")
	for i, d := range r.Disks() {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "[%d]", d)
	}
	return strings.TrimRight(b.String(), " ")
}

func (m Model) renderProgress() string {
	progress := ProgressStyle.Render(fmt.Sprintf("Move %d / %d", m.session.Moves(), m.total))

	last := DimStyle.Render("No moves yet")
	if m.lastMove != "" {
		last = LastMoveStyle.Render(m.lastMove)
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(progress + "\n" + last)
}

// renderMoves renders the scrollable list of recent moves
func (m Model) renderMoves() string {
	title := OutputHeaderStyle.Render("MOVES")

	content := m.viewport.View()
	if len(m.moveLines) == 0 {
		content = DimStyle.Render("Nothing to move.")
		if m.step == StepSolving {
			content = DimStyle.Render("Waiting for the first move...")
		}
	}

	return OutputStyle.Render(title + "\n" + content)
}

// renderStatusBar renders the bottom status bar
func (m Model) renderStatusBar() string {
	var status string
	switch {
	case m.step == StepDone && m.err != nil:
		status = ErrorStyle.Bold(true).Render("⊘ Failed")
	case m.step == StepDone:
		status = StatusDoneStyle.Render(fmt.Sprintf("✓ Solved in %d moves (%s)", m.session.Moves(), m.elapsed.Round(time.Millisecond)))
	case m.paused:
		status = StatusPausedStyle.Render("⏸ Paused")
	default:
		status = StatusRunningStyle.Render(spinnerFrames[m.spinnerIndex%len(spinnerFrames)] + " Solving")
	}

	mutedStyle := lipgloss.NewStyle().Foreground(ColorFgMuted)
	keyStyle := lipgloss.NewStyle().Foreground(ColorFgPrimary)

	status += mutedStyle.Render(" │ " + m.delay.String() + "/move")

	var hints []key.Binding
	if m.step == StepDone {
		hints = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Help, m.keys.Quit}
	} else {
		hints = m.keys.ShortHelp()
	}
	for _, b := range hints {
		status += mutedStyle.Render(" │ ") + keyStyle.Render(b.Help().Key) + mutedStyle.Render(" "+b.Help().Desc)
	}

	return StatusBarStyle.Render(status)
}

// helpView renders the help overlay
func (m Model) helpView() string {
	var content strings.Builder
	content.WriteString(HelpTitleStyle.Render("Keyboard Shortcuts"))
	content.WriteString("\n")

	for _, group := range m.keys.FullHelp() {
		content.WriteString("\n")
		for _, b := range group {
			content.WriteString(HelpKeyStyle.Render(b.Help().Key) + HelpDescStyle.Render(b.Help().Desc))
			content.WriteString("\n")
		}
	}
	content.WriteString("\n")
	content.WriteString(HelpDescStyle.Render("Press ? or Esc to close"))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		HelpStyle.Render(content.String()),
	)
}

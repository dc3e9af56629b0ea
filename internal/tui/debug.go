package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// debugBuffer is how many events the panel keeps
const debugBuffer = 100

// DebugPanel shows recent solver and UI events next to the rods
type DebugPanel struct {
	enabled bool
	lines   []string
}

// NewDebugPanel creates a new debug panel
func NewDebugPanel(enabled bool) DebugPanel {
	return DebugPanel{enabled: enabled}
}

// IsEnabled returns whether debug mode is enabled
func (d *DebugPanel) IsEnabled() bool {
	return d.enabled
}

// AddEvent records an event as "[kind] details" with a timestamp
func (d *DebugPanel) AddEvent(kind, details string) {
	if !d.enabled {
		return
	}
	line := time.Now().Format("15:04:05.000") + " [" + kind + "]"
	if details != "" {
		line += " " + details
	}
	d.lines = append(d.lines, line)
	if len(d.lines) > debugBuffer {
		d.lines = d.lines[len(d.lines)-debugBuffer:]
	}
}

// Lines returns the buffered events, oldest first
func (d *DebugPanel) Lines() []string {
	return d.lines
}

// Render draws the newest events that fit in a width x height box
func (d *DebugPanel) Render(width, height int) string {
	if !d.enabled {
		return ""
	}

	title := WarningStyle.Bold(true).Render("DEBUG")

	// title row and borders
	contentHeight := max(height-4, 1)
	maxLen := max(width-4, 10)

	start := max(len(d.lines)-contentHeight, 0)
	lines := make([]string, 0, contentHeight)
	for _, line := range d.lines[start:] {
		lines = append(lines, truncate(line, maxLen))
	}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorYellow).
		Padding(0, 1).
		Render(title + "\n" + strings.Join(lines, "\n"))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

package tui

import "github.com/charmbracelet/lipgloss"

// One Dark Pro color palette
var (
	ColorBgHighlight = lipgloss.Color("#2C313C")

	ColorFgPrimary   = lipgloss.Color("#ABB2BF")
	ColorFgSecondary = lipgloss.Color("#828997")
	ColorFgMuted     = lipgloss.Color("#636B78")
	ColorFgComment   = lipgloss.Color("#5C6370")

	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")
	ColorCyan    = lipgloss.Color("#56B6C2")
	ColorOrange  = lipgloss.Color("#D19A66")

	ColorBorder = lipgloss.Color("#3F4451")
)

// diskColors cycles by disk size so neighbouring disks differ
var diskColors = []lipgloss.Color{ColorBlue, ColorGreen, ColorYellow, ColorMagenta, ColorCyan, ColorOrange, ColorRed}

// Component styles
var (
	LogoStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	// Setup box
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	// Rods panel
	RodsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	RodLabelStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			Width(11)

	RodEmptyStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)

	// Move list
	OutputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	OutputHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorMagenta).
				Bold(true)

	LastMoveStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorYellow).
			Foreground(ColorYellow).
			PaddingLeft(1)

	ProgressStyle = lipgloss.NewStyle().
			Foreground(ColorFgSecondary)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1).
			PaddingRight(1)

	StatusRunningStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	StatusPausedStyle = lipgloss.NewStyle().
				Foreground(ColorYellow).
				Bold(true)

	StatusDoneStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	// Help overlay
	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	HelpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Width(8)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)
)

// diskStyle returns the style for a disk of the given size
func diskStyle(size int) lipgloss.Style {
	if size < 1 {
		size = 1
	}
	return lipgloss.NewStyle().
		Foreground(diskColors[(size-1)%len(diskColors)]).
		Bold(true)
}

package output

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	ColorSafe   = lipgloss.Color("#04B575") // green
	ColorDanger = lipgloss.Color("#FF4040") // red
	ColorInfo   = lipgloss.Color("#00BFFF") // cyan
	ColorLabel  = lipgloss.Color("#AAAAAA") // light gray for labels
)

// Box styles
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorInfo).
			Padding(0, 1)

	SafeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSafe).
			Padding(0, 1)

	DangerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDanger).
			Padding(0, 1)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorInfo)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorLabel).
			Width(20)

	ValueStyle = lipgloss.NewStyle()

	DangerText = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)
)

const IconDanger = "❌"

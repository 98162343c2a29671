package keypad

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary = lipgloss.Color("#8B5CF6") // Violet
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorMuted   = lipgloss.Color("#6B7280") // Gray
	ColorText    = lipgloss.Color("#F8FAFC") // Slate 50
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Align(lipgloss.Right)

	DisplayStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true).
			Align(lipgloss.Right)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)
)

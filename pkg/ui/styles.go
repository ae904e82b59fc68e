package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette, tuned for dark terminals to match the exported charts.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#4B50C8", Dark: "#636EFA"}
	ColorGood    = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#2CA02C"}
	ColorBad     = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#D62728"}
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	headerStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Underline(true)

	tabStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorBad)

	statusStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	helpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// barStyle renders a bar segment in the entity's own theme color.
func barStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

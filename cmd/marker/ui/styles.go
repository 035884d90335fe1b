// Package ui provides the visual styling for the marker TUI.
package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors shared across panes.
var (
	Primary     = lipgloss.Color("#2196F3") // Blue
	Accent      = lipgloss.Color("#8BC34A") // Lime Green
	Destructive = lipgloss.Color("#e53935") // Red
	Warning     = lipgloss.Color("#FFC107") // Yellow
	MutedGray   = lipgloss.Color("#808080")
)

// Styles holds the prebuilt lipgloss styles used by the views.
type Styles struct {
	Title     lipgloss.Style
	TabActive lipgloss.Style
	TabIdle   lipgloss.Style
	Card      lipgloss.Style
	Label     lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warn      lipgloss.Style
	Selected  lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles builds the default style set.
func NewStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(Primary).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(Primary).Padding(0, 2),
		TabIdle: lipgloss.NewStyle().Foreground(MutedGray).Padding(0, 2),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(MutedGray).
			Padding(0, 1),
		Label:    lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(MutedGray),
		Success:  lipgloss.NewStyle().Foreground(Accent),
		Error:    lipgloss.NewStyle().Foreground(Destructive),
		Warn:     lipgloss.NewStyle().Foreground(Warning),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Help:     lipgloss.NewStyle().Foreground(MutedGray),
	}
}

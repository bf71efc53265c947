package theme

import "github.com/charmbracelet/lipgloss"

// Dracula theme
// https://draculatheme.com/
var Dracula = Theme{
	Name: "dracula",

	Background: lipgloss.Color("#282A36"),
	Foreground: lipgloss.Color("#F8F8F2"),
	Subtle:     lipgloss.Color("#6272A4"),
	Highlight:  lipgloss.Color("#44475A"),
	Border:     lipgloss.Color("#6272A4"),

	Primary:   lipgloss.Color("#BD93F9"),
	Secondary: lipgloss.Color("#FF79C6"),
	Info:      lipgloss.Color("#8BE9FD"),

	Success: lipgloss.Color("#50FA7B"),
	Warning: lipgloss.Color("#F1FA8C"),
	Error:   lipgloss.Color("#FF5555"),

	Open:           lipgloss.Color("#F8F8F2"),
	Done:           lipgloss.Color("#6272A4"),
	SessionRunning: lipgloss.Color("#8BE9FD"),
	SessionEnded:   lipgloss.Color("#50FA7B"),
	Reminder:       lipgloss.Color("#FFB86C"),
}

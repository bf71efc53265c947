package theme

import "github.com/charmbracelet/lipgloss"

// Nord theme - Arctic, north-bluish color palette
// https://www.nordtheme.com/
var Nord = Theme{
	Name: "nord",

	// Polar Night
	Background: lipgloss.Color("#2E3440"),
	Foreground: lipgloss.Color("#ECEFF4"),
	Subtle:     lipgloss.Color("#4C566A"),
	Highlight:  lipgloss.Color("#3B4252"),
	Border:     lipgloss.Color("#4C566A"),

	// Frost
	Primary:   lipgloss.Color("#88C0D0"),
	Secondary: lipgloss.Color("#81A1C1"),
	Info:      lipgloss.Color("#5E81AC"),

	// Aurora
	Success: lipgloss.Color("#A3BE8C"),
	Warning: lipgloss.Color("#EBCB8B"),
	Error:   lipgloss.Color("#BF616A"),

	Open:           lipgloss.Color("#E5E9F0"),
	Done:           lipgloss.Color("#4C566A"),
	SessionRunning: lipgloss.Color("#88C0D0"),
	SessionEnded:   lipgloss.Color("#A3BE8C"),
	Reminder:       lipgloss.Color("#EBCB8B"),
}

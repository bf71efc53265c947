package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// DefaultName is the theme used when none is configured
const DefaultName = "nord"

// Theme defines the color scheme and styles for the UI
type Theme struct {
	Name string

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Todo colors
	Open           lipgloss.Color
	Done           lipgloss.Color
	SessionRunning lipgloss.Color
	SessionEnded   lipgloss.Color
	Reminder       lipgloss.Color
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	// Base styles
	App    lipgloss.Style
	Header lipgloss.Style
	Footer lipgloss.Style

	// List styles
	SectionHeading lipgloss.Style
	DateHeading    lipgloss.Style
	TodoNormal     lipgloss.Style
	TodoSelected   lipgloss.Style
	TodoDone       lipgloss.Style
	Description    lipgloss.Style
	Reminder       lipgloss.Style
	ElapsedRunning lipgloss.Style
	ElapsedEnded   lipgloss.Style
	Empty          lipgloss.Style

	// Form styles
	Title        lipgloss.Style
	Label        lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Placeholder  lipgloss.Style
	FormError    lipgloss.Style

	// Help styles
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusInfo  lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Background(t.Background).
			Foreground(t.Foreground),

		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		SectionHeading: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Bold(true).
			Underline(true).
			Padding(0, 1),

		DateHeading: lipgloss.NewStyle().
			Foreground(t.Info).
			Padding(0, 1),

		TodoNormal: lipgloss.NewStyle().
			Foreground(t.Open).
			Padding(0, 1),

		TodoSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			Bold(true).
			Padding(0, 1),

		TodoDone: lipgloss.NewStyle().
			Foreground(t.Done).
			Strikethrough(true).
			Padding(0, 1),

		Description: lipgloss.NewStyle().
			Foreground(t.Subtle).
			PaddingLeft(6),

		Reminder: lipgloss.NewStyle().
			Foreground(t.Reminder),

		ElapsedRunning: lipgloss.NewStyle().
			Foreground(t.SessionRunning).
			Bold(true),

		ElapsedEnded: lipgloss.NewStyle().
			Foreground(t.SessionEnded),

		Empty: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(0, 2),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			MarginBottom(1),

		Label: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Placeholder: lipgloss.NewStyle().
			Foreground(t.Subtle),

		FormError: lipgloss.NewStyle().
			Foreground(t.Error),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),

		StatusBar: lipgloss.NewStyle().
			Background(t.Highlight).
			Foreground(t.Foreground).
			Padding(0, 1),

		StatusInfo: lipgloss.NewStyle().
			Foreground(t.Success),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),
	}
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Nord,
	Styles: NewStyles(Nord),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Nord,
		Dracula,
	}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

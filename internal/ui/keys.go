package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Todo actions
	Add          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	Toggle       key.Binding
	StartSession key.Binding
	EndSession   key.Binding

	// General
	Reload     key.Binding
	Export     key.Binding
	ThemeCycle key.Binding
	Help       key.Binding
	Quit       key.Binding
	Back       key.Binding
	NextField  key.Binding
	Confirm    key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),

		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add todo"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter/e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("tab", " "),
			key.WithHelp("tab", "toggle done"),
		),
		StartSession: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start session"),
		),
		EndSession: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "end session"),
		),

		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export json"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save"),
		),
	}
}

// ShortHelp returns keybindings to show in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.StartSession, k.Delete, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Add, k.Edit, k.Toggle, k.Delete},
		{k.StartSession, k.EndSession, k.Reload, k.Export},
		{k.ThemeCycle, k.Help, k.Quit},
	}
}

// FormHelp returns the bindings active while editing a todo
func (k KeyMap) FormHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.NextField, k.Back}
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/tempo/internal/app"
	"github.com/dori/tempo/internal/timers"
	"github.com/dori/tempo/internal/ui/theme"
	"github.com/dori/tempo/internal/ui/views"
	"github.com/dori/tempo/internal/watch"
	"go.uber.org/zap"
)

// RootModel is the main application model. It owns the list view and
// feeds it scheduler and watcher events.
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	listView    views.ListView
	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:      application,
		keys:     DefaultKeyMap(),
		help:     h,
		listView: views.NewListView(application.Context(), application.Controller, application.Config.DataDir),
	}
}

// Init shows the loaded todos and starts listening for background events
func (m RootModel) Init() tea.Cmd {
	return tea.Batch(
		m.listView.Init(),
		waitForTimerEvent(m.app.Scheduler),
		waitForStoreChange(m.app.Watcher),
	)
}

// waitForTimerEvent blocks on the scheduler's event channel. The returned
// message re-arms the wait in Update.
func waitForTimerEvent(s *timers.Scheduler) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		return TimerEventMsg{Event: <-s.Events()}
	}
}

func waitForStoreChange(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return StoreChangedMsg{Change: change}
	}
}

// Update handles messages and delegates to the list view
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.listView = m.listView.SetSize(m.width, m.height-4)
		return m, nil

	case TimerEventMsg:
		switch msg.Event.Kind {
		case timers.EventReminderFired:
			m.statusMsg = fmt.Sprintf("Reminder: %s", msg.Event.Title)
		case timers.EventElapsed:
			m.listView = m.listView.ApplyElapsed(msg.Event.TodoID, msg.Event.Elapsed)
		}
		return m, waitForTimerEvent(m.app.Scheduler)

	case StoreChangedMsg:
		m.app.Logger.Debug(m.app.Context(), "database changed on disk, reloading",
			zap.String("path", msg.Change.Path))
		return m, tea.Batch(m.listView.Reload(), waitForStoreChange(m.app.Watcher))

	case tea.KeyMsg:
		m.statusMsg = ""
		m.errorMsg = ""
		isInputMode := m.listView.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			return m, m.cycleTheme()
		}

		if isInputMode {
			break
		}

		if m.helpVisible {
			if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) {
				m.helpVisible = false
			}
			return m, nil
		}

		if key.Matches(msg, m.keys.Help) {
			m.helpVisible = true
			m.help.ShowAll = true
			return m, nil
		}

	case views.ErrorMsg:
		m.errorMsg = msg.Err.Error()
		m.app.Logger.Warn(m.app.Context(), "operation failed", zap.Error(msg.Err))
		return m, nil

	case views.StatusMsg:
		m.statusMsg = msg.Text
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	var cmd tea.Cmd
	m.listView, cmd = m.listView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the header, the list and the footer
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.listView.View()
	}

	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("tempo")

	open, done := 0, 0
	for _, td := range m.app.Controller.Todos() {
		if td.Status {
			done++
		} else {
			open++
		}
	}

	subtle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	counts := subtle.Render(fmt.Sprintf("[%d open · %d done]", open, done))
	themeIndicator := subtle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, counts)
	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(themeIndicator)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + themeIndicator
}

func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var lines []string
	if m.errorMsg != "" {
		lines = append(lines, styles.StatusError.Render(m.errorMsg))
	} else if m.statusMsg != "" {
		lines = append(lines, styles.StatusInfo.Render(m.statusMsg))
	}

	switch {
	case m.helpVisible:
		lines = append(lines, key("?/esc", "close help"))
	case m.listView.IsInputMode():
		lines = append(lines, key("enter", "save")+sep+
			key("tab", "next field")+sep+
			key("esc", "cancel"))
	case m.listView.Mode() == views.ListModeConfirmDelete:
		lines = append(lines, key("y", "delete")+sep+key("n/esc", "keep"))
	default:
		lines = append(lines,
			key("a", "add")+sep+
				key("enter", "edit")+sep+
				key("tab", "done")+sep+
				key("s/S", "start/end session")+sep+
				key("d", "del"),
			key("ctrl+e", "export")+sep+
				key("ctrl+t", "theme")+sep+
				key("?", "help")+sep+
				key("q", "quit"))
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)
	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder
	b.WriteString(titleStyle.Render("tempo help"))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Reminders accept +15m, 16:30, tomorrow 09:00 or 2026-06-01 10:00"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))
	return b.String()
}

// cycleTheme switches to the next available theme
func (m *RootModel) cycleTheme() tea.Cmd {
	themes := theme.Available()
	current := theme.Current.Theme.Name

	for i, t := range themes {
		if t.Name == current {
			next := themes[(i+1)%len(themes)]
			theme.SetTheme(next)
			return func() tea.Msg {
				return ThemeChangedMsg{ThemeName: next.Name}
			}
		}
	}
	return nil
}

package ui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tempo/internal/app"
	"github.com/dori/tempo/internal/config"
	"github.com/dori/tempo/internal/logging"
	"github.com/dori/tempo/internal/model"
	"github.com/dori/tempo/internal/timers"
	"github.com/dori/tempo/internal/ui/theme"
	"github.com/dori/tempo/internal/ui/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newRoot(t *testing.T) (RootModel, *logging.TestLogger) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.DataDir = dir
	cfg.DB.Path = filepath.Join(dir, "tempo.db")
	cfg.Log.File = filepath.Join(dir, "tempo.log")

	log := logging.NewTestLogger()
	a, err := app.New(&cfg, app.ModeCommand, app.WithLogger(log.Logger))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.Start(context.Background()))

	_, err = a.Controller.Create(context.Background(), model.Draft{Title: "Water plants", Description: "balcony"})
	require.NoError(t, err)

	m := NewRootModel(a)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(RootModel)
	next, _ = m.Update(m.listView.Init()())
	return next.(RootModel), log
}

func update(t *testing.T, m RootModel, msg tea.Msg) (RootModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(RootModel), cmd
}

func TestRootRendersTodos(t *testing.T) {
	m, _ := newRoot(t)

	out := m.View()
	assert.Contains(t, out, "tempo")
	assert.Contains(t, out, "[1 open · 0 done]")
	assert.Contains(t, out, "Water plants")
	assert.Contains(t, out, "balcony")
}

func TestRootLoadingBeforeSize(t *testing.T) {
	m, _ := newRoot(t)
	m.width = 0
	assert.Equal(t, "Loading...", m.View())
}

func TestRootQuit(t *testing.T) {
	m, _ := newRoot(t)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRootQuitIgnoredWhileTyping(t *testing.T) {
	m, _ := newRoot(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	require.True(t, m.listView.IsInputMode())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.listView.IsInputMode())

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRootThemeCycle(t *testing.T) {
	t.Cleanup(func() { theme.SetTheme(theme.Nord) })
	m, _ := newRoot(t)
	theme.SetTheme(theme.Nord)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.NotNil(t, cmd)
	assert.Equal(t, "dracula", theme.Current.Theme.Name)

	m, _ = update(t, m, cmd())
	assert.Equal(t, "Theme: dracula", m.statusMsg)
	assert.Contains(t, m.View(), "theme: dracula")
}

func TestRootHelpToggle(t *testing.T) {
	m, _ := newRoot(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.helpVisible)
	assert.Contains(t, m.View(), "start session")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.helpVisible)
}

func TestRootReminderEvent(t *testing.T) {
	m, _ := newRoot(t)

	m, cmd := update(t, m, TimerEventMsg{Event: timers.Event{
		Kind:   timers.EventReminderFired,
		TodoID: 1,
		Title:  "Water plants",
	}})

	// command mode has no scheduler to wait on
	assert.Nil(t, cmd)
	assert.Equal(t, "Reminder: Water plants", m.statusMsg)
	assert.Contains(t, m.View(), "Reminder: Water plants")
}

func TestRootErrorIsShownAndLogged(t *testing.T) {
	m, log := newRoot(t)

	m, _ = update(t, m, views.ErrorMsg{Err: errors.New("disk on fire")})

	assert.Contains(t, m.View(), "disk on fire")
	log.AssertLogged(t, zapcore.WarnLevel, "operation failed")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.errorMsg)
}

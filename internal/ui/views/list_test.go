package views

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tempo/internal/controller"
	"github.com/dori/tempo/internal/db"
	"github.com/dori/tempo/internal/export"
	"github.com/dori/tempo/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	ctrl *controller.Controller
	dir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := db.Open(filepath.Join(dir, "tempo.db"), db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctrl := controller.New(store, controller.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, ctrl.Load(context.Background()))
	return &fixture{ctrl: ctrl, dir: dir}
}

func (f *fixture) view(t *testing.T) ListView {
	t.Helper()
	v := NewListView(context.Background(), f.ctrl, f.dir).
		WithClock(func() time.Time { return fixedNow }).
		SetSize(100, 40)
	v, _ = v.Update(v.Init()())
	return v
}

func (f *fixture) create(t *testing.T, title string) model.Todo {
	t.Helper()
	td, err := f.ctrl.Create(context.Background(), model.Draft{Title: title, Description: "details"})
	require.NoError(t, err)
	return td
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds its messages back into the view until nothing
// is left. Messages meant for the root model are returned.
func drain(v ListView, cmd tea.Cmd) (ListView, []tea.Msg) {
	var out []tea.Msg
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case ErrorMsg, StatusMsg:
			out = append(out, msg)
			cmd = nil
		default:
			v, cmd = v.Update(msg)
		}
	}
	return v, out
}

func typeText(v ListView, s string) ListView {
	v, _ = v.Update(press(s))
	return v
}

func TestListViewEmpty(t *testing.T) {
	v := newFixture(t).view(t)

	out := v.View()
	assert.Contains(t, out, "Open (0)")
	assert.Contains(t, out, "Done (0)")
	assert.Contains(t, out, "Nothing to do")

	_, ok := v.Selected()
	assert.False(t, ok)
}

func TestListViewAddTodo(t *testing.T) {
	f := newFixture(t)
	v := f.view(t)

	v, _ = v.Update(press("a"))
	require.Equal(t, ListModeForm, v.Mode())
	assert.True(t, v.IsInputMode())

	v = typeText(v, "Buy milk")
	v, _ = v.Update(press("tab"))
	v = typeText(v, "two litres")
	v, _ = v.Update(press("tab"))
	v = typeText(v, "+15m")

	v, cmd := v.Update(press("enter"))
	v, msgs := drain(v, cmd)

	assert.Equal(t, ListModeNormal, v.Mode())
	require.Len(t, msgs, 1)
	assert.Equal(t, StatusMsg{Text: `Added "Buy milk"`}, msgs[0])

	todos := f.ctrl.Todos()
	require.Len(t, todos, 1)
	assert.Equal(t, "two litres", todos[0].Description)
	require.NotNil(t, todos[0].RemindIn)
	assert.Equal(t, fixedNow.Add(15*time.Minute), *todos[0].RemindIn)

	out := v.View()
	assert.Contains(t, out, "[ ] Buy milk")
	assert.Contains(t, out, "in 15 minutes")
	assert.Contains(t, out, "2026-05-10")
}

func TestListViewFormValidation(t *testing.T) {
	f := newFixture(t)
	v := f.view(t)

	v, _ = v.Update(press("a"))
	v, cmd := v.Update(press("enter"))

	assert.Nil(t, cmd)
	assert.Equal(t, ListModeForm, v.Mode())
	assert.Contains(t, v.View(), "the title field is required")
	assert.Empty(t, f.ctrl.Todos())

	v = typeText(v, "title")
	v, _ = v.Update(press("tab"))
	v = typeText(v, "desc")
	v, _ = v.Update(press("tab"))
	v = typeText(v, "whenever")
	v, cmd = v.Update(press("enter"))

	assert.Nil(t, cmd)
	assert.Contains(t, v.View(), "remind")
	assert.Empty(t, f.ctrl.Todos())

	v, _ = v.Update(press("esc"))
	assert.Equal(t, ListModeNormal, v.Mode())
}

func TestListViewEditPrefills(t *testing.T) {
	f := newFixture(t)
	td := f.create(t, "Write report")
	v := f.view(t)

	v, _ = v.Update(press("e"))
	require.Equal(t, ListModeForm, v.Mode())
	id, editing := v.form.Editing()
	assert.True(t, editing)
	assert.Equal(t, td.ID, id)
	assert.Equal(t, "Write report", v.form.Value(FieldTitle))
	assert.Equal(t, "details", v.form.Value(FieldDescription))

	v, cmd := v.Update(press("enter"))
	v, msgs := drain(v, cmd)

	require.Len(t, msgs, 1)
	assert.Equal(t, StatusMsg{Text: `Updated "Write report"`}, msgs[0])
	assert.Equal(t, ListModeNormal, v.Mode())
}

func TestListViewToggleMovesToDone(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Ship it")
	v := f.view(t)

	v, cmd := v.Update(press("tab"))
	v, msgs := drain(v, cmd)

	require.Len(t, msgs, 1)
	assert.Equal(t, StatusMsg{Text: `Completed "Ship it"`}, msgs[0])
	out := v.View()
	assert.Contains(t, out, "Open (0)")
	assert.Contains(t, out, "Done (1)")
	assert.Contains(t, out, "[x] Ship it")
}

func TestListViewDeleteConfirm(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Temporary")
	v := f.view(t)

	v, _ = v.Update(press("d"))
	require.Equal(t, ListModeConfirmDelete, v.Mode())
	assert.Contains(t, v.View(), `Delete "Temporary"? (y/n)`)

	v, cmd := v.Update(press("n"))
	assert.Nil(t, cmd)
	assert.Equal(t, ListModeNormal, v.Mode())
	assert.Len(t, f.ctrl.Todos(), 1)

	v, _ = v.Update(press("d"))
	v, cmd = v.Update(press("y"))
	v, msgs := drain(v, cmd)

	assert.Equal(t, []tea.Msg{StatusMsg{Text: "Deleted"}}, msgs)
	assert.Empty(t, f.ctrl.Todos())
	_, ok := v.Selected()
	assert.False(t, ok)
}

func TestListViewSessions(t *testing.T) {
	f := newFixture(t)
	td := f.create(t, "Focus")
	v := f.view(t)

	_, cmd := v.Update(press("S"))
	_, msgs := drain(v, cmd)
	assert.Equal(t, []tea.Msg{StatusMsg{Text: "No session running"}}, msgs)

	v, cmd = v.Update(press("s"))
	v, msgs = drain(v, cmd)
	assert.Equal(t, []tea.Msg{StatusMsg{Text: `Started "Focus"`}}, msgs)
	assert.Contains(t, v.View(), "● 00:00:00")

	v = v.ApplyElapsed(td.ID, model.Elapsed{Minutes: 1, Seconds: 5})
	assert.Contains(t, v.View(), "● 00:01:05")

	v, cmd = v.Update(press("S"))
	v, msgs = drain(v, cmd)
	assert.Equal(t, []tea.Msg{StatusMsg{Text: `Stopped "Focus"`}}, msgs)
	assert.Contains(t, v.View(), "■ 00:00:00")
	assert.NotContains(t, v.View(), "●")
}

func TestListViewExport(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Exported")
	v := f.view(t)

	v, cmd := v.Update(press("ctrl+e"))
	_, msgs := drain(v, cmd)

	path := filepath.Join(f.dir, export.FileName)
	assert.Equal(t, []tea.Msg{StatusMsg{Text: "Exported to " + path}}, msgs)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"title": "Exported"`)
}

func TestListViewStoreErrorSurfaces(t *testing.T) {
	f := newFixture(t)
	td := f.create(t, "Gone")
	v := f.view(t)

	require.NoError(t, f.ctrl.Delete(context.Background(), td.ID))

	v, cmd := v.Update(press("tab"))
	_, msgs := drain(v, cmd)
	require.Len(t, msgs, 1)
	errMsg, ok := msgs[0].(ErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, db.ErrNotFound)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hel…", truncate("hello", 4))
	assert.Equal(t, "hello", truncate("hello", 0))
}

package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/tempo/internal/controller"
	"github.com/dori/tempo/internal/derive"
	"github.com/dori/tempo/internal/export"
	"github.com/dori/tempo/internal/model"
	"github.com/dori/tempo/internal/ui/theme"
)

// ListMode represents the current interaction mode of the list
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeForm
	ListModeConfirmDelete
)

func (m ListMode) String() string {
	switch m {
	case ListModeNormal:
		return "Normal"
	case ListModeForm:
		return "Form"
	case ListModeConfirmDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// ErrorMsg reports a failed operation to the root model
type ErrorMsg struct {
	Err error
}

// StatusMsg is a transient message for the status bar
type StatusMsg struct {
	Text string
}

type todosLoadedMsg struct {
	todos []model.Todo
	err   error
}

type todoSavedMsg struct {
	todo model.Todo
	verb string
	err  error
}

type todoDeletedMsg struct {
	id  int64
	err error
}

type exportedMsg struct {
	path string
	err  error
}

// ListView shows todos split into open and done, each grouped by date
type ListView struct {
	ctrl      *controller.Controller
	ctx       context.Context
	exportDir string
	now       func() time.Time

	width  int
	height int

	sections []derive.Section
	items    []model.Todo // display order, what the cursor indexes
	elapsed  map[int64]model.Elapsed

	cursor       int
	scrollOffset int
	mode         ListMode
	form         TodoForm
	deleteID     int64
}

// NewListView creates the list over ctrl. Exports are written to
// exportDir.
func NewListView(ctx context.Context, ctrl *controller.Controller, exportDir string) ListView {
	return ListView{
		ctrl:      ctrl,
		ctx:       ctx,
		exportDir: exportDir,
		now:       time.Now,
		elapsed:   make(map[int64]model.Elapsed),
		form:      NewTodoForm(),
	}
}

// WithClock replaces the clock used for relative times
func (v ListView) WithClock(now func() time.Time) ListView {
	v.now = now
	return v
}

// Init shows the controller's current mirror
func (v ListView) Init() tea.Cmd {
	return func() tea.Msg {
		return todosLoadedMsg{todos: v.ctrl.Todos()}
	}
}

// Reload re-reads the store, e.g. after another process changed it
func (v ListView) Reload() tea.Cmd {
	return func() tea.Msg {
		if err := v.ctrl.Load(v.ctx); err != nil {
			return todosLoadedMsg{err: err}
		}
		return todosLoadedMsg{todos: v.ctrl.Todos()}
	}
}

// IsInputMode returns true when keys go to a text input
func (v ListView) IsInputMode() bool {
	return v.mode == ListModeForm
}

// Mode returns the current interaction mode
func (v ListView) Mode() ListMode {
	return v.mode
}

// Selected returns the todo under the cursor
func (v ListView) Selected() (model.Todo, bool) {
	if v.cursor < 0 || v.cursor >= len(v.items) {
		return model.Todo{}, false
	}
	return v.items[v.cursor], true
}

// SetSize sets the dimensions of the view
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.form = v.form.SetWidth(width)
	return v
}

// ApplyElapsed records the latest elapsed time of a running session
func (v ListView) ApplyElapsed(id int64, e model.Elapsed) ListView {
	v.elapsed[id] = e
	return v
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (ListView, tea.Cmd) {
	switch msg := msg.(type) {
	case todosLoadedMsg:
		if msg.err != nil {
			return v, errorCmd(fmt.Errorf("failed to load todos: %w", msg.err))
		}
		v.setTodos(msg.todos, 0)
		return v, nil

	case todoSavedMsg:
		if msg.err != nil {
			if v.mode == ListModeForm {
				v.form = v.form.SetError(msg.err)
				if errors.Is(msg.err, model.ErrValidation) {
					return v, nil
				}
			}
			return v, errorCmd(msg.err)
		}
		v.mode = ListModeNormal
		v.setTodos(v.ctrl.Todos(), msg.todo.ID)
		return v, statusCmd(fmt.Sprintf("%s %q", msg.verb, msg.todo.Title))

	case todoDeletedMsg:
		if msg.err != nil {
			return v, errorCmd(msg.err)
		}
		delete(v.elapsed, msg.id)
		v.setTodos(v.ctrl.Todos(), 0)
		return v, statusCmd("Deleted")

	case exportedMsg:
		if msg.err != nil {
			return v, errorCmd(msg.err)
		}
		return v, statusCmd("Exported to " + msg.path)

	case tea.KeyMsg:
		switch v.mode {
		case ListModeForm:
			return v.handleFormMode(msg)
		case ListModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	return v, nil
}

func (v ListView) handleNormalMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
	case "g", "home":
		v.cursor = 0
	case "G", "end":
		if len(v.items) > 0 {
			v.cursor = len(v.items) - 1
		}

	case "a", "n":
		v.mode = ListModeForm
		v.form = v.form.ForCreate()
		return v, textinput.Blink

	case "enter", "e":
		if t, ok := v.Selected(); ok {
			v.mode = ListModeForm
			v.form = v.form.ForEdit(t)
			return v, textinput.Blink
		}

	case "tab", " ":
		if t, ok := v.Selected(); ok {
			verb := "Completed"
			if t.Status {
				verb = "Reopened"
			}
			return v, v.mutate(t.ID, verb, v.ctrl.ToggleStatus)
		}

	case "s":
		if t, ok := v.Selected(); ok {
			return v, v.mutate(t.ID, "Started", v.ctrl.StartSession)
		}

	case "S":
		if t, ok := v.Selected(); ok {
			if !t.SessionRunning() {
				return v, statusCmd("No session running")
			}
			return v, v.mutate(t.ID, "Stopped", v.ctrl.EndSession)
		}

	case "d", "delete":
		if t, ok := v.Selected(); ok {
			v.mode = ListModeConfirmDelete
			v.deleteID = t.ID
		}

	case "r":
		return v, v.Reload()

	case "ctrl+e":
		return v, v.export()
	}

	v.ensureCursorVisible()
	return v, nil
}

func (v ListView) handleFormMode(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.mode = ListModeNormal
		v.form = v.form.SetError(nil)
		return v, nil
	case "enter":
		draft, err := v.form.Draft(v.now())
		if err != nil {
			v.form = v.form.SetError(err)
			return v, nil
		}
		return v, v.save(draft)
	}

	var cmd tea.Cmd
	v.form, cmd = v.form.Update(msg)
	return v, cmd
}

func (v ListView) handleDeleteConfirm(msg tea.KeyMsg) (ListView, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = ListModeNormal
		return v, v.deleteTodo(v.deleteID)
	case "n", "N", "esc":
		v.mode = ListModeNormal
		v.deleteID = 0
	}
	return v, nil
}

// setTodos rebuilds the sections. If focus is set the cursor follows that
// todo, otherwise it stays where it was.
func (v *ListView) setTodos(todos []model.Todo, focus int64) {
	v.sections = derive.Sections(todos)
	v.items = make([]model.Todo, 0, len(todos))
	for _, s := range v.sections {
		for _, key := range s.Groups.Keys {
			v.items = append(v.items, s.Groups.ByKey[key]...)
		}
	}

	live := make(map[int64]bool, len(v.items))
	for i, t := range v.items {
		live[t.ID] = true
		if focus != 0 && t.ID == focus {
			v.cursor = i
		}
		if !t.SessionRunning() {
			delete(v.elapsed, t.ID)
		}
	}
	for id := range v.elapsed {
		if !live[id] {
			delete(v.elapsed, id)
		}
	}

	if v.cursor >= len(v.items) {
		v.cursor = len(v.items) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	v.ensureCursorVisible()
}

// visibleTodoCount returns how many todos fit in the viewport. Every todo
// takes two lines and headings take some more.
func (v ListView) visibleTodoCount() int {
	available := (v.height - 6) / 2
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *ListView) ensureCursorVisible() {
	visible := v.visibleTodoCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	maxOffset := len(v.items) - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.scrollOffset > maxOffset {
		v.scrollOffset = maxOffset
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

// View renders the list view
func (v ListView) View() string {
	styles := theme.Current.Styles

	if v.mode == ListModeForm {
		return v.form.View()
	}

	var b strings.Builder

	if v.mode == ListModeConfirmDelete {
		title := ""
		if t, ok := v.Selected(); ok {
			title = t.Title
		}
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Delete %q? (y/n)", title)))
		b.WriteString("\n\n")
	}

	now := v.now()
	index := 0
	for _, s := range v.sections {
		heading := fmt.Sprintf("Open (%d)", s.Groups.Count())
		if s.Completed {
			heading = fmt.Sprintf("Done (%d)", s.Groups.Count())
		}
		b.WriteString(styles.SectionHeading.Render(heading))
		b.WriteString("\n")

		if s.Groups.Count() == 0 {
			empty := "Nothing to do. Press a to add a todo."
			if s.Completed {
				empty = "Nothing finished yet."
			}
			b.WriteString(styles.Empty.Render("  " + empty))
			b.WriteString("\n")
		}

		for _, key := range s.Groups.Keys {
			todos := s.Groups.ByKey[key]
			groupVisible := false
			for i := range todos {
				if v.inViewport(index + i) {
					groupVisible = true
					break
				}
			}
			if groupVisible {
				b.WriteString(styles.DateHeading.Render("  " + key))
				b.WriteString("\n")
			}
			for _, t := range todos {
				if v.inViewport(index) {
					b.WriteString(v.renderTodo(t, index == v.cursor, now))
					b.WriteString("\n")
				}
				index++
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (v ListView) inViewport(i int) bool {
	return i >= v.scrollOffset && i < v.scrollOffset+v.visibleTodoCount()
}

func (v ListView) renderTodo(t model.Todo, isCursor bool, now time.Time) string {
	styles := theme.Current.Styles

	checkbox := "[ ]"
	titleStyle := styles.TodoNormal
	if t.Status {
		checkbox = "[x]"
		titleStyle = styles.TodoDone
	}
	if isCursor {
		titleStyle = styles.TodoSelected
	}

	pointer := "  "
	if isCursor {
		pointer = "> "
	}

	parts := []string{titleStyle.Render(checkbox + " " + t.Title)}

	if t.RemindIn != nil && !t.Status {
		parts = append(parts, styles.Reminder.Render("⏰ "+model.Humanize(*t.RemindIn, now)))
	}

	switch {
	case t.SessionRunning():
		e, ok := v.elapsed[t.ID]
		if !ok {
			d, _ := t.SessionElapsed(now)
			e = model.Decompose(d)
		}
		parts = append(parts, styles.ElapsedRunning.Render("● "+e.String()))
	case t.SessionEnded():
		d, _ := t.SessionElapsed(now)
		parts = append(parts, styles.ElapsedEnded.Render("■ "+model.Decompose(d).String()))
	}

	line := "  " + pointer + strings.Join(parts, "  ")
	desc := styles.Description.Render(truncate(t.Description, v.width-10))
	return lipgloss.JoinVertical(lipgloss.Left, line, "        "+desc)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func (v ListView) save(d model.Draft) tea.Cmd {
	id, editing := v.form.Editing()
	return func() tea.Msg {
		if editing {
			t, err := v.ctrl.Edit(v.ctx, id, d)
			return todoSavedMsg{todo: t, verb: "Updated", err: err}
		}
		t, err := v.ctrl.Create(v.ctx, d)
		return todoSavedMsg{todo: t, verb: "Added", err: err}
	}
}

func (v ListView) mutate(id int64, verb string, fn func(context.Context, int64) (model.Todo, error)) tea.Cmd {
	return func() tea.Msg {
		t, err := fn(v.ctx, id)
		return todoSavedMsg{todo: t, verb: verb, err: err}
	}
}

func (v ListView) deleteTodo(id int64) tea.Cmd {
	return func() tea.Msg {
		return todoDeletedMsg{id: id, err: v.ctrl.Delete(v.ctx, id)}
	}
}

func (v ListView) export() tea.Cmd {
	return func() tea.Msg {
		path, err := export.WriteFile(v.exportDir, v.ctrl.Todos())
		return exportedMsg{path: path, err: err}
	}
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text}
	}
}

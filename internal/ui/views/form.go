package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tempo/internal/model"
	"github.com/dori/tempo/internal/ui/theme"
)

// FormField indexes the inputs of a TodoForm
type FormField int

const (
	FieldTitle FormField = iota
	FieldDescription
	FieldRemind
	fieldCount
)

// remindInputLayout is how an existing reminder is shown for editing
const remindInputLayout = "2006-01-02 15:04"

// TodoForm edits the user-editable fields of a todo
type TodoForm struct {
	inputs    [fieldCount]textinput.Model
	focus     FormField
	editingID int64
	err       string
}

// NewTodoForm creates an empty form
func NewTodoForm() TodoForm {
	var f TodoForm

	f.inputs[FieldTitle] = textinput.New()
	f.inputs[FieldTitle].Placeholder = "What needs doing?"
	f.inputs[FieldTitle].CharLimit = 256

	f.inputs[FieldDescription] = textinput.New()
	f.inputs[FieldDescription].Placeholder = "Details"
	f.inputs[FieldDescription].CharLimit = 1024

	f.inputs[FieldRemind] = textinput.New()
	f.inputs[FieldRemind].Placeholder = "optional: +15m, 16:30, tomorrow 09:00, 2026-06-01 10:00"
	f.inputs[FieldRemind].CharLimit = 64

	return f
}

// ForCreate resets the form for a new todo
func (f TodoForm) ForCreate() TodoForm {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.editingID = 0
	f.err = ""
	return f.focusField(FieldTitle)
}

// ForEdit fills the form with the current values of todo
func (f TodoForm) ForEdit(t model.Todo) TodoForm {
	f.inputs[FieldTitle].SetValue(t.Title)
	f.inputs[FieldDescription].SetValue(t.Description)
	if t.RemindIn != nil {
		f.inputs[FieldRemind].SetValue(t.RemindIn.Local().Format(remindInputLayout))
	} else {
		f.inputs[FieldRemind].SetValue("")
	}
	f.editingID = t.ID
	f.err = ""
	return f.focusField(FieldTitle)
}

// Editing returns the id of the todo being edited
func (f TodoForm) Editing() (int64, bool) {
	return f.editingID, f.editingID != 0
}

// Value returns the current text of one field
func (f TodoForm) Value(field FormField) string {
	return f.inputs[field].Value()
}

// SetError shows err under the form
func (f TodoForm) SetError(err error) TodoForm {
	if err == nil {
		f.err = ""
	} else {
		f.err = err.Error()
	}
	return f
}

// Draft reads the form. A reminder that can't be parsed is reported as a
// validation error on the remind field.
func (f TodoForm) Draft(now time.Time) (model.Draft, error) {
	d := model.Draft{
		Title:       f.inputs[FieldTitle].Value(),
		Description: f.inputs[FieldDescription].Value(),
	}
	if s := strings.TrimSpace(f.inputs[FieldRemind].Value()); s != "" {
		at, err := model.ParseRemind(s, now)
		if err != nil {
			return model.Draft{}, &model.ValidationError{Field: "remind", Reason: err.Error()}
		}
		d.RemindIn = &at
	}
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return model.Draft{}, err
	}
	return d, nil
}

// Update moves focus on tab and forwards everything else to the focused
// input
func (f TodoForm) Update(msg tea.KeyMsg) (TodoForm, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return f.focusField((f.focus + 1) % fieldCount), textinput.Blink
	case "shift+tab", "up":
		return f.focusField((f.focus + fieldCount - 1) % fieldCount), textinput.Blink
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// SetWidth sizes the inputs
func (f TodoForm) SetWidth(width int) TodoForm {
	for i := range f.inputs {
		f.inputs[i].Width = width - 6
	}
	return f
}

func (f TodoForm) focusField(field FormField) TodoForm {
	f.focus = field
	for i := range f.inputs {
		if FormField(i) == field {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return f
}

// View renders the form
func (f TodoForm) View() string {
	styles := theme.Current.Styles
	var b strings.Builder

	heading := "New todo"
	if _, ok := f.Editing(); ok {
		heading = "Edit todo"
	}
	b.WriteString(styles.Title.Render(heading))
	b.WriteString("\n")

	labels := [fieldCount]string{"Title", "Description", "Remind"}
	for i, input := range f.inputs {
		b.WriteString(styles.Label.Render(labels[i]))
		b.WriteString("\n")
		box := styles.Input
		if FormField(i) == f.focus {
			box = styles.InputFocused
		}
		b.WriteString(box.Render(input.View()))
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString(styles.FormError.Render(f.err))
		b.WriteString("\n")
	}
	return b.String()
}

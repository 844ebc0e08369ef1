package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyplan/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and an inline error.
type TextInput struct {
	Model textinput.Model
	Label string
	Err   string
}

// NewTextInput creates a new styled text input. charLimit of 0 means no
// limit.
func NewTextInput(label, placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti, Label: label}
}

// NewPasswordInput creates a text input that masks what is typed.
func NewPasswordInput(label, placeholder string) TextInput {
	t := NewTextInput(label, placeholder, 128)
	t.Model.EchoMode = textinput.EchoPassword
	t.Model.EchoCharacter = '•'
	return t
}

// Focus focuses the input and returns the cursor blink command.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Update handles messages. Editing clears a previous error.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	before := t.Model.Value()
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	if t.Model.Value() != before {
		t.Err = ""
	}
	return t, cmd
}

// View renders the label, the input and any error beneath it.
func (t TextInput) View() string {
	view := ""
	if t.Label != "" {
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if t.Model.Focused() {
			style = theme.Label
		}
		view = style.Render(t.Label) + "\n"
	}
	view += t.Model.View()
	if t.Err != "" {
		view += "\n" + theme.ErrorText.Render("✗ "+t.Err)
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the current value.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

package wizard

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	nextFieldKey = key.NewBinding(key.WithKeys("tab", "down"))
	prevFieldKey = key.NewBinding(key.WithKeys("up"))
	prevValueKey = key.NewBinding(key.WithKeys("left"))
	nextValueKey = key.NewBinding(key.WithKeys("right", " "))
)

// field 表单中的一个输入项
type field interface {
	Label() string
	Focus() tea.Cmd
	Blur()
	Update(msg tea.KeyMsg) tea.Cmd
	View() string
}

// textField 文本输入
type textField struct {
	label string
	input textinput.Model
}

func newTextField(label, placeholder, value string) *textField {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 1024
	ti.Width = 48
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(value)
	return &textField{label: label, input: ti}
}

func newPasswordField(label string) *textField {
	f := newTextField(label, "leave empty to use SSH keys only", "")
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func (f *textField) Label() string  { return f.label }
func (f *textField) Focus() tea.Cmd { return f.input.Focus() }
func (f *textField) Blur()          { f.input.Blur() }
func (f *textField) View() string   { return f.input.View() }

func (f *textField) Update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// Value 去掉首尾空白后的值
func (f *textField) Value() string {
	return strings.TrimSpace(f.input.Value())
}

// choiceField 在固定选项中左右切换
type choiceField struct {
	label   string
	options []string
	index   int
}

func newChoiceField(label string, options []string) *choiceField {
	return &choiceField{label: label, options: options}
}

func (f *choiceField) Label() string  { return f.label }
func (f *choiceField) Focus() tea.Cmd { return nil }
func (f *choiceField) Blur()          {}

func (f *choiceField) Update(msg tea.KeyMsg) tea.Cmd {
	n := len(f.options)
	if n == 0 {
		return nil
	}
	switch {
	case key.Matches(msg, prevValueKey):
		f.index = (f.index - 1 + n) % n
	case key.Matches(msg, nextValueKey):
		f.index = (f.index + 1) % n
	}
	return nil
}

func (f *choiceField) View() string {
	if len(f.options) == 0 {
		return "(none available)"
	}
	return "‹ " + f.options[f.index] + " ›"
}

// Value 当前选项，没有选项时为空
func (f *choiceField) Value() string {
	if len(f.options) == 0 {
		return ""
	}
	return f.options[f.index]
}

// toggleField 开关
type toggleField struct {
	label string
	value bool
}

func newToggleField(label string, value bool) *toggleField {
	return &toggleField{label: label, value: value}
}

func (f *toggleField) Label() string  { return f.label }
func (f *toggleField) Focus() tea.Cmd { return nil }
func (f *toggleField) Blur()          {}

func (f *toggleField) Update(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, prevValueKey, nextValueKey) {
		f.value = !f.value
	}
	return nil
}

func (f *toggleField) View() string {
	if f.value {
		return "[x] yes"
	}
	return "[ ] no"
}

// form 一组纵向排列的输入项
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) *form {
	return &form{fields: fields}
}

// Focus 让当前输入项获得焦点
func (f *form) Focus() tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	return f.fields[f.focus].Focus()
}

func (f *form) Update(msg tea.KeyMsg) tea.Cmd {
	n := len(f.fields)
	if n == 0 {
		return nil
	}
	switch {
	case key.Matches(msg, nextFieldKey):
		return f.moveFocus(1)
	case key.Matches(msg, prevFieldKey):
		return f.moveFocus(-1)
	}
	return f.fields[f.focus].Update(msg)
}

func (f *form) moveFocus(delta int) tea.Cmd {
	n := len(f.fields)
	f.fields[f.focus].Blur()
	f.focus = (f.focus + delta + n) % n
	return f.fields[f.focus].Focus()
}

func (f *form) View() string {
	width := 0
	for _, fd := range f.fields {
		if l := len(fd.Label()); l > width {
			width = l
		}
	}

	var b strings.Builder
	for i, fd := range f.fields {
		label := fd.Label() + strings.Repeat(" ", width-len(fd.Label()))
		if i == f.focus {
			b.WriteString(focusedStyle.Render("› " + label))
		} else {
			b.WriteString(labelStyle.Render("  " + label))
		}
		b.WriteString("  ")
		b.WriteString(fd.View())
		b.WriteString("\n")
	}
	return b.String()
}

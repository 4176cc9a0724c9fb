package form

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joescharf/crowdfund/internal/export"
	"github.com/joescharf/crowdfund/internal/models"
)

type fieldKind int

const (
	kindScalar fieldKind = iota
	kindItem
	kindAdd
	kindSubmit
	kindExport
)

// field is one focusable row of the form.
type field struct {
	key    string
	kind   fieldKind
	scalar models.ScalarField
	list   models.ListField
	index  int
	format export.Format

	multiline bool
	input     textinput.Model
	area      textarea.Model
}

func newScalarField(sf models.ScalarField, width int) *field {
	f := &field{key: string(sf), kind: kindScalar, scalar: sf}
	if sf == models.FieldDescription {
		f.multiline = true
		f.area = textarea.New()
		f.area.ShowLineNumbers = false
		f.area.Placeholder = "What are you building?"
		f.area.SetHeight(4)
		f.area.SetWidth(width)
		f.area.Blur()
		return f
	}
	f.input = textinput.New()
	f.input.Prompt = "> "
	f.input.Width = width
	if sf == models.FieldFundingGoal {
		f.input.Placeholder = "0"
	}
	return f
}

func newItemField(lf models.ListField, index, width int) *field {
	f := &field{key: itemKey(lf, index), kind: kindItem, list: lf, index: index}
	f.input = textinput.New()
	f.input.Prompt = "> "
	f.input.Width = width
	return f
}

func itemKey(lf models.ListField, index int) string {
	return fmt.Sprintf("%s[%d]", lf, index)
}

func (f *field) editable() bool {
	return f.kind == kindScalar || f.kind == kindItem
}

func (f *field) value() string {
	if f.multiline {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *field) setValue(v string) {
	if f.value() == v {
		return
	}
	if f.multiline {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
}

func (f *field) setWidth(w int) {
	if f.multiline {
		f.area.SetWidth(w)
		return
	}
	f.input.Width = w
}

func (f *field) focus() tea.Cmd {
	switch {
	case f.multiline:
		return f.area.Focus()
	case f.editable():
		return f.input.Focus()
	}
	return nil
}

func (f *field) blur() {
	switch {
	case f.multiline:
		f.area.Blur()
	case f.editable():
		f.input.Blur()
	}
}

func (f *field) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.multiline {
		f.area, cmd = f.area.Update(msg)
		return cmd
	}
	f.input, cmd = f.input.Update(msg)
	return cmd
}

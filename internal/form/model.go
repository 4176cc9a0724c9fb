// Package form is the interactive "Create a New Project" terminal form. It
// binds bubbles inputs to a draft.Holder and drives submission and export.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/export"
	"github.com/joescharf/crowdfund/internal/models"
	"github.com/joescharf/crowdfund/internal/submit"
)

const (
	defaultWidth = 60
	minWidth     = 20
)

// Exporter requests a document for a draft snapshot.
type Exporter interface {
	ExportDraft(ctx context.Context, f export.Format, d models.Draft) (export.Result, error)
}

// ExportDoneMsg reports the end of an export started from the form.
type ExportDoneMsg struct {
	Format export.Format
	Result export.Result
	Err    error
}

// alert is a modal notice that swallows input until dismissed.
type alert struct {
	title string
	body  string
	isErr bool
}

// Model is the bubbletea model for the form.
type Model struct {
	ctx       context.Context
	holder    *draft.Holder
	exporter  Exporter
	submitter submit.Submitter

	fields []*field
	cache  map[string]*field
	focus  int
	width  int

	exporting bool
	status    string
	alert     *alert
	quitting  bool
}

// Ensure Model implements tea.Model.
var _ tea.Model = (*Model)(nil)

// New creates a form over holder.
func New(ctx context.Context, holder *draft.Holder, exporter Exporter, submitter submit.Submitter) *Model {
	m := &Model{
		ctx:       ctx,
		holder:    holder,
		exporter:  exporter,
		submitter: submitter,
		cache:     map[string]*field{},
		width:     defaultWidth,
	}
	m.rebuild()
	m.applyFocus()
	return m
}

// Run shows the form until the user quits.
func Run(ctx context.Context, holder *draft.Holder, exporter Exporter, submitter submit.Submitter, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(New(ctx, holder, exporter, submitter), opts...)
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// rebuild lays out the fields from the current draft, reusing existing inputs
// so cursor positions survive edits.
func (m *Model) rebuild() {
	d := m.holder.Snapshot()
	w := m.inputWidth()
	seen := map[string]bool{}
	var fields []*field

	get := func(key string, mk func() *field) *field {
		seen[key] = true
		if f, ok := m.cache[key]; ok {
			return f
		}
		f := mk()
		m.cache[key] = f
		return f
	}

	for _, sf := range models.ScalarFields {
		f := get(string(sf), func() *field { return newScalarField(sf, w) })
		v, _ := draft.Scalar(d, sf)
		f.setValue(v)
		fields = append(fields, f)
	}

	for _, lf := range models.ListFields {
		items, _ := draft.List(d, lf)
		for i, v := range items {
			f := get(itemKey(lf, i), func() *field { return newItemField(lf, i, w) })
			f.setValue(v)
			fields = append(fields, f)
		}
		fields = append(fields, get("add:"+string(lf), func() *field {
			return &field{key: "add:" + string(lf), kind: kindAdd, list: lf}
		}))
	}

	fields = append(fields, get("submit", func() *field {
		return &field{key: "submit", kind: kindSubmit}
	}))
	for _, ef := range export.Formats {
		fields = append(fields, get("export:"+string(ef), func() *field {
			return &field{key: "export:" + string(ef), kind: kindExport, format: ef}
		}))
	}

	for key := range m.cache {
		if !seen[key] {
			delete(m.cache, key)
		}
	}

	m.fields = fields
	if m.focus >= len(fields) {
		m.focus = len(fields) - 1
	}
}

func (m *Model) inputWidth() int {
	w := m.width - 4
	if w < minWidth {
		w = minWidth
	}
	return w
}

func (m *Model) focused() *field {
	return m.fields[m.focus]
}

func (m *Model) applyFocus() tea.Cmd {
	var cmd tea.Cmd
	for i, f := range m.fields {
		if i == m.focus {
			cmd = f.focus()
			continue
		}
		f.blur()
	}
	return cmd
}

func (m *Model) move(delta int) tea.Cmd {
	n := len(m.fields)
	m.focus = ((m.focus+delta)%n + n) % n
	return m.applyFocus()
}

func (m *Model) focusKey(key string) tea.Cmd {
	for i, f := range m.fields {
		if f.key == key {
			m.focus = i
			break
		}
	}
	return m.applyFocus()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		for _, f := range m.fields {
			f.setWidth(m.inputWidth())
		}
		return m, nil

	case ExportDoneMsg:
		m.exporting = false
		m.status = ""
		switch {
		case errors.Is(msg.Err, export.ErrInFlight):
			m.status = "An export is already in progress."
		case msg.Err != nil:
			m.alert = &alert{
				title: fmt.Sprintf("Failed to download %s file.", msg.Format),
				body:  msg.Err.Error(),
				isErr: true,
			}
		default:
			m.status = fmt.Sprintf("Saved %s", msg.Result.Path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if f := m.focused(); f.editable() {
		return m, f.update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.alert != nil {
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter", "esc", " ":
			m.alert = nil
		}
		return m, nil
	}

	f := m.focused()
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		return m, m.move(1)
	case "shift+tab":
		return m, m.move(-1)
	case "down":
		if !f.multiline {
			return m, m.move(1)
		}
	case "up":
		if !f.multiline {
			return m, m.move(-1)
		}
	case "ctrl+s":
		return m, m.submit()
	case "ctrl+p":
		return m, m.startExport(export.FormatPDF)
	case "ctrl+e":
		return m, m.startExport(export.FormatExcel)
	case "ctrl+n":
		if f.kind == kindItem || f.kind == kindAdd {
			return m, m.appendItem(f.list)
		}
		return m, nil
	case "ctrl+d":
		if f.kind == kindItem {
			return m, m.removeItem(f.list, f.index)
		}
		return m, nil
	case "enter":
		switch f.kind {
		case kindAdd:
			return m, m.appendItem(f.list)
		case kindSubmit:
			return m, m.submit()
		case kindExport:
			return m, m.startExport(f.format)
		}
		if !f.multiline {
			return m, m.move(1)
		}
	}

	if !f.editable() {
		return m, nil
	}
	before := f.value()
	cmd := f.update(msg)
	if after := f.value(); after != before {
		m.commit(f, after)
	}
	return m, cmd
}

func (m *Model) commit(f *field, value string) {
	var err error
	switch f.kind {
	case kindScalar:
		_, err = m.holder.SetScalar(f.scalar, value)
	case kindItem:
		_, err = m.holder.SetListItem(f.list, f.index, value)
	}
	if err != nil {
		m.status = err.Error()
	}
}

func (m *Model) appendItem(lf models.ListField) tea.Cmd {
	d, err := m.holder.AppendListItem(lf)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.rebuild()
	items, _ := draft.List(d, lf)
	return m.focusKey(itemKey(lf, len(items)-1))
}

func (m *Model) removeItem(lf models.ListField, index int) tea.Cmd {
	d, err := m.holder.RemoveListItem(lf, index)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.rebuild()
	items, _ := draft.List(d, lf)
	if index >= len(items) {
		index = len(items) - 1
	}
	return m.focusKey(itemKey(lf, index))
}

func (m *Model) submit() tea.Cmd {
	if m.submitter == nil {
		return nil
	}
	r, err := m.submitter.Submit(m.ctx, m.holder.Snapshot())
	if err != nil {
		m.alert = &alert{title: "Project not created", body: err.Error(), isErr: true}
		return nil
	}
	m.alert = &alert{title: r.Message}
	return nil
}

func (m *Model) startExport(f export.Format) tea.Cmd {
	if m.exporter == nil {
		return nil
	}
	if m.exporting {
		m.status = "An export is already in progress."
		return nil
	}
	m.exporting = true
	m.status = fmt.Sprintf("Exporting %s...", f)

	// The payload is the draft as it was when the export was triggered.
	ctx, ex, snap := m.ctx, m.exporter, m.holder.Snapshot()
	return func() tea.Msg {
		res, err := ex.ExportDraft(ctx, f, snap)
		return ExportDoneMsg{Format: f, Result: res, Err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.alert != nil {
		return m.alertView()
	}

	var b strings.Builder
	b.WriteString(Styles.Title.Render("Create a New Project"))
	b.WriteString("\n")

	goalIssue := fundingGoalIssue(m.holder.Snapshot())

	var exportButtons []string
	for i, f := range m.fields {
		focused := i == m.focus
		switch f.kind {
		case kindScalar:
			b.WriteString(Styles.Label.Render(f.scalar.Label()) + Styles.Required.Render(" *") + "\n")
			if f.multiline {
				b.WriteString(f.area.View() + "\n")
			} else {
				b.WriteString(f.input.View() + "\n")
			}
			if f.scalar == models.FieldFundingGoal && goalIssue != "" {
				b.WriteString(Styles.Issue.Render(goalIssue) + "\n")
			}
		case kindItem:
			if f.index == 0 {
				b.WriteString(Styles.Section.Render(f.list.Label()) + "\n")
			}
			b.WriteString(Styles.Label.Render(fmt.Sprintf("%s %d", f.list.ItemLabel(), f.index+1)) + "\n")
			b.WriteString(f.input.View() + "\n")
		case kindAdd:
			b.WriteString(button("Add "+f.list.Label(), focused, false) + "\n")
		case kindSubmit:
			b.WriteString("\n" + button("Create Project", focused, true) + "\n")
		case kindExport:
			exportButtons = append(exportButtons, button("Download "+string(f.format), focused, false))
		}
	}
	if len(exportButtons) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, exportButtons...) + "\n")
	}

	if m.status != "" {
		b.WriteString(Styles.Status.Render(m.status) + "\n")
	}
	b.WriteString(Styles.Help.Render("Tab: next  Shift+Tab: prev  Enter: press  Ctrl+N: add entry  Ctrl+D: remove entry  Ctrl+S: create  Ctrl+P: PDF  Ctrl+E: Excel  Esc: quit"))
	return b.String()
}

// fundingGoalIssue returns the validation message for a goal that was
// entered but is not a usable number. An empty goal is covered by the
// required marker.
func fundingGoalIssue(d models.Draft) string {
	if strings.TrimSpace(d.FundingGoal) == "" {
		return ""
	}
	for _, is := range draft.Validate(d) {
		if is.Field == string(models.FieldFundingGoal) {
			return "Funding goal " + is.Message
		}
	}
	return ""
}

func (m *Model) alertView() string {
	box := Styles.AlertBox
	if m.alert.isErr {
		box = Styles.AlertError
	}
	content := Styles.AlertTitle.Render(m.alert.title)
	if m.alert.body != "" {
		content += "\n\n" + m.alert.body
	}
	content += "\n\n" + Styles.Help.Render("Enter: OK")
	return box.Render(content)
}

func button(label string, focused, primary bool) string {
	style := Styles.Button
	switch {
	case primary && focused:
		style = Styles.PrimaryFocus
	case primary:
		style = Styles.Primary
	case focused:
		style = Styles.ButtonFocus
	}
	return style.Render(label)
}

// Package tui is the interactive form: three inputs, one Add/Update
// action, the record list with edit and delete, and the message banners.
// All state changes go through a roster.Controller.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/roster/internal/model"
	"github.com/Makepad-fr/roster/internal/roster"
	"github.com/Makepad-fr/roster/internal/ui"
)

type focus int

const (
	focusName focus = iota
	focusEmail
	focusToDo
	focusList
	focusCount
)

var inputFields = [...]roster.Field{roster.FieldName, roster.FieldEmail, roster.FieldToDo}

// rowItem adapts a record to bubbles/list.Item.
type rowItem struct {
	rec model.Record
}

func (i rowItem) FilterValue() string { return i.rec.Name }

// rowDelegate renders one record per line.
type rowDelegate struct {
	cols *[3]int
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}
	t := ui.Current()
	line := ui.Row(it.rec, *d.cols)
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(t.SymCursor) + " "
		line = t.Accent.Render(line)
	}
	fmt.Fprint(w, prefix+line)
}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Edit   key.Binding
	Delete key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel edit / quit")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// Model is the Bubble Tea model of the form.
type Model struct {
	ctx    context.Context
	ctrl   *roster.Controller
	logger *log.Logger

	inputs [3]textinput.Model
	list   list.Model
	cols   *[3]int
	focus  focus
	keys   keyMap

	width, height int
}

// New builds the form over ctrl. ctx is passed to every storage write.
func New(ctx context.Context, ctrl *roster.Controller, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		logger: logger.With("component", "tui"),
		cols:   &[3]int{},
		keys:   defaultKeyMap(),
		width:  80,
		height: 24,
	}

	for i, ph := range []string{"Name", "Email", "To-Do"} {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = ph
		ti.CharLimit = 200
		m.inputs[i] = ti
	}

	l := list.New(nil, rowDelegate{cols: m.cols}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = ui.Current().Muted
	m.list = l

	m.refreshList()
	m.syncInputs()
	m.setFocus(focusName)
	m.resize()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, ctrl *roster.Controller, logger *log.Logger) error {
	p := tea.NewProgram(New(ctx, ctrl, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus((m.focus + 1) % focusCount)
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
		case key.Matches(msg, m.keys.Cancel):
			if m.ctrl.Editing() {
				m.ctrl.CancelEdit()
				m.syncInputs()
				return m, m.setFocus(focusName)
			}
			return m, tea.Quit
		}
		if m.focus == focusList {
			return m.updateList(msg)
		}
		if key.Matches(msg, m.keys.Submit) {
			return m.submit()
		}
	}

	if m.focus == focusList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m.updateInput(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	i := int(m.focus)
	var cmd tea.Cmd
	m.inputs[i], cmd = m.inputs[i].Update(msg)
	m.ctrl.SetField(inputFields[i], m.inputs[i].Value())
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Edit):
		if m.ctrl.Len() == 0 {
			return m, nil
		}
		if err := m.ctrl.SelectForEdit(m.list.Index()); err != nil {
			m.logger.Warn("select for edit", "err", err)
			return m, nil
		}
		m.syncInputs()
		return m, m.setFocus(focusName)
	case key.Matches(msg, m.keys.Delete):
		if m.ctrl.Len() == 0 {
			return m, nil
		}
		// Storage failures surface through the notice banner.
		_ = m.ctrl.Delete(m.ctx, m.list.Index())
		m.refreshList()
		m.syncInputs()
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	wasEditing := m.ctrl.Editing()
	err := m.ctrl.Submit(m.ctx)
	if roster.IsValidation(err) {
		return m, nil
	}
	m.refreshList()
	if !wasEditing {
		m.list.Select(m.ctrl.Len() - 1)
	}
	m.syncInputs()
	return m, m.setFocus(focusName)
}

// syncInputs copies the controller's draft into the inputs.
func (m *Model) syncInputs() {
	d := m.ctrl.Draft()
	for i, v := range []string{d.Name, d.Email, d.ToDo} {
		if m.inputs[i].Value() != v {
			m.inputs[i].SetValue(v)
			m.inputs[i].CursorEnd()
		}
	}
}

func (m *Model) refreshList() {
	recs := m.ctrl.Records()
	*m.cols = ui.Columns(recs)
	items := make([]list.Item, len(recs))
	for i, r := range recs {
		items[i] = rowItem{rec: r}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	var cmd tea.Cmd
	for i := range m.inputs {
		if focus(i) == f {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) resize() {
	w := max(m.width-4, 20)
	for i := range m.inputs {
		m.inputs[i].Width = w - 10
	}
	// form box, banners, headers and help take roughly 14 rows
	m.list.SetSize(w, max(m.height-14, 3))
}

// ActionLabel is the primary button label for the current state.
func (m Model) ActionLabel() string {
	if m.ctrl.Editing() {
		return "Update"
	}
	return "Add"
}

func (m Model) View() string {
	t := ui.Current()
	var b strings.Builder

	title := t.Title.Render("Student To-Do List")
	b.WriteString(title + "  " + t.Muted.Render(fmt.Sprintf("%d students", m.ctrl.Len())) + "\n\n")

	var form []string
	for i, label := range []string{"Name", "Email", "To-Do"} {
		ls := t.Label
		if m.focus == focus(i) {
			ls = t.Focused
		}
		form = append(form, ls.Render(label)+" "+m.inputs[i].View())
	}
	action := "[enter] " + m.ActionLabel()
	if m.ctrl.Editing() {
		target, _ := m.ctrl.EditTarget()
		action += fmt.Sprintf(" student %d  [esc] cancel", target+1)
	}
	form = append(form, t.Accent.Render(action))
	b.WriteString(ui.Box(strings.Join(form, "\n")) + "\n")

	if msg := m.ctrl.Err(); msg != "" {
		b.WriteString(t.Error.Render(t.SymFail+" "+msg) + "\n")
	}
	if msg := m.ctrl.Notice(); msg != "" {
		b.WriteString(t.Warn.Render("! "+msg) + "\n")
	}

	b.WriteString("\n")
	listTitle := t.Title.Render("Student List")
	if m.focus == focusList {
		listTitle = t.Accent.Render("Student List")
	}
	b.WriteString(listTitle + "\n")
	if m.ctrl.Len() == 0 {
		b.WriteString(t.Muted.Render("  no students yet") + "\n")
	} else {
		b.WriteString(t.Muted.Render("  "+ui.Header(*m.cols)) + "\n")
		b.WriteString(m.list.View() + "\n")
	}

	b.WriteString("\n" + t.Muted.Render(m.helpLine()))
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

func (m Model) helpLine() string {
	bindings := []key.Binding{m.keys.Next, m.keys.Submit, m.keys.Cancel, m.keys.Quit}
	if m.focus == focusList {
		bindings = []key.Binding{m.keys.Next, m.keys.Edit, m.keys.Delete, m.keys.Cancel}
	}
	parts := make([]string, len(bindings))
	for i, k := range bindings {
		h := k.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, " • ")
}

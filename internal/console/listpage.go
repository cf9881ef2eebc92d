package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"energy-admin/internal/listctl"
	"energy-admin/internal/resource"
)

// ListPage renders one list controller: search box, table, pager and form.
type ListPage struct {
	ctl     *listctl.Controller
	desc    *resource.Descriptor
	styles  Styles
	timeout time.Duration

	table     table.Model
	search    textinput.Model
	searching bool

	inputs   []textinput.Model
	focus    int
	formOpen bool
	snap     listctl.Snapshot
}

// NewListPage creates the page for ctl.
func NewListPage(ctl *listctl.Controller, styles Styles, timeout time.Duration) *ListPage {
	desc := ctl.Descriptor()

	search := textinput.New()
	search.Placeholder = "Search by name..."
	search.CharLimit = 64
	search.Width = 30
	search.Prompt = "/ "

	inputs := make([]textinput.Model, len(desc.Fields))
	for i, f := range desc.Fields {
		in := textinput.New()
		in.CharLimit = 64
		in.Width = 30
		in.Prompt = ""
		if f.Kind == resource.KindOrder {
			in.CharLimit = 4
			in.Placeholder = fmt.Sprintf("%d-%d", resource.OrderMin, resource.OrderMax)
		}
		inputs[i] = in
	}

	p := &ListPage{
		ctl:     ctl,
		desc:    desc,
		styles:  styles,
		timeout: timeout,
		search:  search,
		inputs:  inputs,
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(15),
		),
	}
	p.sync()
	return p
}

// Typing reports whether keys go to a text input rather than to shortcuts.
func (p *ListPage) Typing() bool {
	return p.searching || p.formOpen
}

// SetStyles switches the page to another theme.
func (p *ListPage) SetStyles(s Styles) {
	p.styles = s
}

// run executes a possibly blocking controller call off the UI loop. State
// changes arrive through the controller's change notification.
func (p *ListPage) run(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		fn(ctx)
		return nil
	}
}

// Load fetches lookups and the first page.
func (p *ListPage) Load() tea.Cmd {
	return p.run(p.ctl.Load)
}

// sync copies controller state into the widgets.
func (p *ListPage) sync() {
	p.snap = p.ctl.Snapshot()
	s := p.snap

	cols := make([]table.Column, len(p.desc.Columns))
	for i, c := range p.desc.Columns {
		title := c.Title
		if c.Name == s.Sort {
			if s.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		cols[i] = table.Column{Title: title, Width: c.Width}
	}
	rows := make([]table.Row, len(s.Rows))
	for i, r := range s.Rows {
		row := make(table.Row, len(p.desc.Columns))
		for j, c := range p.desc.Columns {
			if _, isRef := s.Options[c.Name]; isRef {
				row[j] = s.OptionName(c.Name, r.String(c.Name))
			} else {
				row[j] = r.String(c.Name)
			}
		}
		rows[i] = row
	}
	p.table.SetRows(nil)
	p.table.SetColumns(cols)
	p.table.SetRows(rows)
	if p.table.Cursor() >= len(rows) {
		p.table.SetCursor(max(len(rows)-1, 0))
	}

	switch {
	case s.Modal == listctl.ModalClosed && p.formOpen:
		p.formOpen = false
		p.blurInputs()
	case s.Modal != listctl.ModalClosed && !p.formOpen:
		p.formOpen = true
		for i, f := range p.desc.Fields {
			p.inputs[i].SetValue(s.Form[f.Name])
		}
		p.focusField(0)
	}
}

func (p *ListPage) blurInputs() {
	for i := range p.inputs {
		p.inputs[i].Blur()
	}
}

func (p *ListPage) focusField(i int) tea.Cmd {
	n := len(p.desc.Fields)
	p.focus = (i%n + n) % n
	p.blurInputs()
	if p.desc.Fields[p.focus].Kind == resource.KindRef {
		return nil
	}
	return p.inputs[p.focus].Focus()
}

// Update handles a message for this page.
func (p *ListPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case changedMsg:
		p.sync()
		return nil
	case tea.WindowSizeMsg:
		p.table.SetWidth(msg.Width)
		p.table.SetHeight(max(msg.Height-10, 5))
		return nil
	case tea.KeyMsg:
		switch {
		case p.formOpen:
			return p.updateForm(msg)
		case p.searching:
			return p.updateSearch(msg)
		default:
			return p.updateList(msg)
		}
	}
	return nil
}

func (p *ListPage) updateList(msg tea.KeyMsg) tea.Cmd {
	s := p.snap
	switch msg.String() {
	case "/":
		p.searching = true
		return p.search.Focus()
	case "s":
		return p.cycleSort()
	case "d":
		p.ctl.SetDirection(!s.Desc)
	case "right", "l", "pgdown":
		p.ctl.SetPage(s.Page + 1)
	case "left", "h", "pgup":
		p.ctl.SetPage(s.Page - 1)
	case "r":
		p.ctl.Refresh()
	case "a", "n":
		return p.run(p.ctl.OpenCreate)
	case "e", "enter":
		i := p.table.Cursor()
		if i < 0 || i >= len(s.Rows) {
			return nil
		}
		row := s.Rows[i]
		return p.run(func(ctx context.Context) { p.ctl.OpenEdit(ctx, row) })
	default:
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return cmd
	}
	return nil
}

// cycleSort moves the sort to the next sortable column.
func (p *ListPage) cycleSort() tea.Cmd {
	var sortable []string
	for _, c := range p.desc.Columns {
		if c.Sortable {
			sortable = append(sortable, c.Name)
		}
	}
	if len(sortable) == 0 {
		return nil
	}
	next := sortable[0]
	for i, c := range sortable {
		if c == p.snap.Sort {
			next = sortable[(i+1)%len(sortable)]
		}
	}
	_ = p.ctl.SetSort(next)
	return nil
}

func (p *ListPage) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		p.searching = false
		p.search.Blur()
		return nil
	}
	before := p.search.Value()
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	if v := p.search.Value(); v != before {
		p.ctl.SetSearch(v)
	}
	return cmd
}

func (p *ListPage) updateForm(msg tea.KeyMsg) tea.Cmd {
	if p.snap.Modal == listctl.ModalSubmitting {
		return nil
	}
	f := p.desc.Fields[p.focus]
	switch msg.String() {
	case "esc":
		p.ctl.CloseModal()
		return nil
	case "tab", "down":
		return p.focusField(p.focus + 1)
	case "shift+tab", "up":
		return p.focusField(p.focus - 1)
	case "enter", "ctrl+s":
		return p.run(func(ctx context.Context) { _ = p.ctl.Submit(ctx) })
	case "left", "right":
		if f.Kind == resource.KindRef {
			return p.cycleOption(f, msg.String() == "right")
		}
	}
	if f.Kind == resource.KindRef {
		return nil
	}

	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	p.ctl.SetField(context.Background(), f.Name, p.inputs[p.focus].Value())
	if v := p.ctl.Snapshot().Form[f.Name]; v != p.inputs[p.focus].Value() {
		p.inputs[p.focus].SetValue(v)
	}
	return cmd
}

// cycleOption selects the next or previous option of a reference field.
func (p *ListPage) cycleOption(f resource.Field, forward bool) tea.Cmd {
	opts := p.snap.Options[f.Name]
	if len(opts) == 0 {
		return nil
	}
	cur := -1
	for i, o := range opts {
		if o.ID == p.snap.Form[f.Name] {
			cur = i
		}
	}
	switch {
	case cur < 0:
		cur = 0
	case forward:
		cur = (cur + 1) % len(opts)
	default:
		cur = (cur - 1 + len(opts)) % len(opts)
	}
	id := opts[cur].ID
	return p.run(func(ctx context.Context) { p.ctl.SetField(ctx, f.Name, id) })
}

// View renders the page.
func (p *ListPage) View() string {
	s := p.snap
	st := p.styles
	var b strings.Builder

	b.WriteString(st.Title.Render(fmt.Sprintf("%s (%d)", p.desc.Title, s.Total)))
	b.WriteByte('\n')
	b.WriteString(p.search.View())
	b.WriteByte('\n')
	if s.Err != "" {
		b.WriteString(st.Error.Render(s.Err) + "\n")
	}
	if s.Success != "" {
		b.WriteString(st.Success.Render(s.Success) + "\n")
	}

	if p.formOpen {
		b.WriteString(p.formView())
		return b.String()
	}

	b.WriteString(p.table.View())
	b.WriteByte('\n')
	status := fmt.Sprintf("Page %d of %d · %d per page", s.Page+1, s.PageCount(), s.RowsPerPage)
	if s.Status == listctl.StatusLoading {
		status += " · loading…"
	}
	b.WriteString(st.Muted.Render(status))
	b.WriteByte('\n')
	b.WriteString(st.Help.Render("/ search · s sort · d direction · ←/→ page · a new · e edit · r refresh"))
	return b.String()
}

func (p *ListPage) formView() string {
	s := p.snap
	st := p.styles
	var b strings.Builder

	title := "New " + strings.ToLower(p.desc.Singular)
	if s.EditingID != "" {
		title = "Edit " + strings.ToLower(p.desc.Singular)
	}
	b.WriteString(st.Title.Render(title))
	b.WriteByte('\n')

	for i, f := range p.desc.Fields {
		label := st.Label
		if i == p.focus {
			label = st.FocusLabel
		}
		var value string
		if f.Kind == resource.KindRef {
			name := "select a " + strings.ToLower(f.Label)
			if id := s.Form[f.Name]; id != "" {
				name = s.OptionName(f.Name, id)
			}
			value = "◀ " + name + " ▶"
		} else {
			value = p.inputs[i].View()
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label.Render(f.Label), value))
		b.WriteByte('\n')
		if msg := s.FieldErrors[f.Name]; msg != "" {
			b.WriteString(st.Error.Render("  "+msg) + "\n")
		}
		if taken := s.Taken[f.Name]; len(taken) > 0 {
			b.WriteString(st.Muted.Render("  taken: "+joinInts(taken)) + "\n")
		}
	}
	if s.FormErr != "" {
		b.WriteString(st.Error.Render(s.FormErr) + "\n")
	}
	if s.Modal == listctl.ModalSubmitting {
		b.WriteString(st.Muted.Render("saving…") + "\n")
	}
	b.WriteString(st.Help.Render("tab next · ←/→ choose · enter save · esc cancel"))
	return st.Modal.Render(b.String())
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

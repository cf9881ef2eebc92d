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

	"energy-admin/internal/dashboard"
)

// DashboardSource fetches the overview data.
type DashboardSource interface {
	Dashboard(ctx context.Context) (dashboard.Data, error)
}

type dashboardMsg struct {
	data dashboard.Data
	err  error
}

var machineTitles = map[string]string{
	"machine": "Machine",
	"line":    "Line",
	"kwh":     "kWh",
	"peak_kw": "Peak kW",
	"status":  "Status",
}

// DashboardPage shows the KPI cards, the hourly series and the machine table.
type DashboardPage struct {
	src     DashboardSource
	styles  Styles
	timeout time.Duration

	data    dashboard.Data
	loaded  bool
	err     string
	filter  textinput.Model
	typing  bool
	sortIdx int
	desc    bool
	table   table.Model
}

// NewDashboardPage creates the overview page.
func NewDashboardPage(src DashboardSource, styles Styles, timeout time.Duration) *DashboardPage {
	filter := textinput.New()
	filter.Placeholder = "Filter machines..."
	filter.Prompt = "/ "
	filter.CharLimit = 32
	filter.Width = 30
	return &DashboardPage{
		src:     src,
		styles:  styles,
		timeout: timeout,
		filter:  filter,
		table:   table.New(table.WithFocused(true), table.WithHeight(8)),
	}
}

// Typing reports whether the filter box has focus.
func (d *DashboardPage) Typing() bool { return d.typing }

// SetStyles switches the page to another theme.
func (d *DashboardPage) SetStyles(s Styles) { d.styles = s }

// Load fetches the dashboard data.
func (d *DashboardPage) Load() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		data, err := d.src.Dashboard(ctx)
		return dashboardMsg{data: data, err: err}
	}
}

// Update handles a message for this page.
func (d *DashboardPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardMsg:
		if msg.err != nil {
			d.err = "failed to load dashboard: " + msg.err.Error()
			return nil
		}
		d.err = ""
		d.data = msg.data
		d.loaded = true
		d.refresh()
	case tea.KeyMsg:
		if d.typing {
			switch msg.String() {
			case "esc", "enter":
				d.typing = false
				d.filter.Blur()
				return nil
			}
			var cmd tea.Cmd
			d.filter, cmd = d.filter.Update(msg)
			d.refresh()
			return cmd
		}
		switch msg.String() {
		case "/":
			d.typing = true
			return d.filter.Focus()
		case "s":
			d.sortIdx = (d.sortIdx + 1) % len(dashboard.Columns)
			d.refresh()
		case "d":
			d.desc = !d.desc
			d.refresh()
		case "r":
			return d.Load()
		default:
			var cmd tea.Cmd
			d.table, cmd = d.table.Update(msg)
			return cmd
		}
	}
	return nil
}

// refresh re-applies filter and sort to the machine table.
func (d *DashboardPage) refresh() {
	sortCol := dashboard.Columns[d.sortIdx]
	rows := dashboard.Filter(d.data.Machines, d.filter.Value())
	dashboard.Sort(rows, sortCol, d.desc)

	cols := make([]table.Column, len(dashboard.Columns))
	for i, c := range dashboard.Columns {
		title := machineTitles[c]
		if c == sortCol {
			if d.desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		cols[i] = table.Column{Title: title, Width: 14}
	}
	trows := make([]table.Row, len(rows))
	for i, m := range rows {
		trows[i] = table.Row{m.Machine, m.Line, fmt.Sprintf("%.1f", m.KWh), fmt.Sprintf("%.0f", m.PeakKW), m.Status}
	}
	d.table.SetRows(nil)
	d.table.SetColumns(cols)
	d.table.SetRows(trows)
	d.table.SetCursor(0)
}

// View renders the page.
func (d *DashboardPage) View() string {
	st := d.styles
	var b strings.Builder
	b.WriteString(st.Title.Render("Dashboard"))
	b.WriteByte('\n')
	if d.err != "" {
		b.WriteString(st.Error.Render(d.err) + "\n")
	}
	if !d.loaded {
		b.WriteString(st.Muted.Render("loading…"))
		return b.String()
	}

	cards := make([]string, len(d.data.Cards))
	for i, c := range d.data.Cards {
		delta := st.Success
		if c.Delta < 0 {
			delta = st.Error
		}
		cards[i] = st.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
			st.Muted.Render(c.Title),
			st.CardValue.Render(fmt.Sprintf("%.1f %s", c.Value, c.Unit)),
			delta.Render(fmt.Sprintf("%+.1f%%", c.Delta)),
		))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")
	b.WriteString(st.Muted.Render("Hourly consumption (kWh)"))
	b.WriteByte('\n')
	b.WriteString(st.Bar.Render(sparkline(d.data.Series)))
	b.WriteString("\n\n")
	b.WriteString(d.filter.View())
	b.WriteByte('\n')
	b.WriteString(d.table.View())
	b.WriteByte('\n')
	b.WriteString(st.Help.Render("/ filter · s sort · d direction · r reload"))
	return b.String()
}

var sparks = []rune("▁▂▃▄▅▆▇█")

// sparkline renders one block per point, scaled between the series min and max.
func sparkline(series []dashboard.Point) string {
	if len(series) == 0 {
		return ""
	}
	lo, hi := series[0].KWh, series[0].KWh
	for _, p := range series {
		lo = min(lo, p.KWh)
		hi = max(hi, p.KWh)
	}
	out := make([]rune, len(series))
	for i, p := range series {
		idx := 0
		if hi > lo {
			idx = int((p.KWh - lo) / (hi - lo) * float64(len(sparks)-1))
		}
		out[i] = sparks[idx]
	}
	return string(out)
}

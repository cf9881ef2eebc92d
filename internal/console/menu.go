package console

import (
	"strings"

	"energy-admin/internal/resource"
)

// PageDashboard is the page id of the overview.
const PageDashboard = "dashboard"

// MenuItem is a sidebar entry. Groups have children and no page.
type MenuItem struct {
	Title    string
	Page     string
	Children []*MenuItem
	Expanded bool
}

// Menu is the sidebar tree with one level of groups.
type Menu struct {
	Items  []*MenuItem
	cursor int
}

type menuEntry struct {
	item  *MenuItem
	depth int
}

// DefaultMenu returns the console navigation.
func DefaultMenu() *Menu {
	return &Menu{Items: []*MenuItem{
		{Title: "Dashboard", Page: PageDashboard},
		{Title: "Definitions", Children: []*MenuItem{
			{Title: "Companies", Page: resource.Companies},
			{Title: "Countries", Page: resource.Countries},
			{Title: "Cities", Page: resource.Cities},
			{Title: "Districts", Page: resource.Districts},
			{Title: "Line types", Page: resource.LineTypes},
		}},
		{Title: "Production", Children: []*MenuItem{
			{Title: "Lines", Page: resource.Lines},
			{Title: "Machines", Page: resource.Machines},
			{Title: "KPIs", Page: resource.KPIs},
		}},
	}}
}

func (m *Menu) visible() []menuEntry {
	var out []menuEntry
	for _, it := range m.Items {
		out = append(out, menuEntry{item: it})
		if it.Expanded {
			for _, ch := range it.Children {
				out = append(out, menuEntry{item: ch, depth: 1})
			}
		}
	}
	return out
}

// Up moves the cursor to the previous visible entry.
func (m *Menu) Up() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// Down moves the cursor to the next visible entry.
func (m *Menu) Down() {
	if m.cursor < len(m.visible())-1 {
		m.cursor++
	}
}

// Current returns the entry under the cursor.
func (m *Menu) Current() *MenuItem {
	v := m.visible()
	if len(v) == 0 {
		return nil
	}
	return v[m.cursor].item
}

// Activate toggles a group or returns the page of a leaf.
func (m *Menu) Activate() string {
	it := m.Current()
	if it == nil {
		return ""
	}
	if len(it.Children) > 0 {
		it.Expanded = !it.Expanded
		if n := len(m.visible()); m.cursor >= n {
			m.cursor = n - 1
		}
		return ""
	}
	return it.Page
}

// Reveal expands the group holding page and puts the cursor on it.
func (m *Menu) Reveal(page string) {
	for _, it := range m.Items {
		for _, ch := range it.Children {
			if ch.Page == page {
				it.Expanded = true
			}
		}
	}
	for i, e := range m.visible() {
		if e.item.Page == page {
			m.cursor = i
			return
		}
	}
}

// View renders the tree. active is the page currently shown.
func (m *Menu) View(s Styles, active string, focused bool) string {
	var b strings.Builder
	for i, e := range m.visible() {
		prefix := strings.Repeat("  ", e.depth)
		if len(e.item.Children) > 0 {
			if e.item.Expanded {
				prefix += "▾ "
			} else {
				prefix += "▸ "
			}
		} else {
			prefix += "  "
		}
		line := prefix + e.item.Title
		switch {
		case focused && i == m.cursor:
			line = s.MenuCursor.Render("› " + line)
		case e.item.Page != "" && e.item.Page == active:
			line = s.MenuActive.Render("  " + line)
		default:
			line = s.MenuItem.Render("  " + line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

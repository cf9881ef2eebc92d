package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy-admin/internal/resource"
)

func TestMenu_ExpandCollapse(t *testing.T) {
	m := DefaultMenu()
	assert.Len(t, m.visible(), 3)
	assert.Equal(t, PageDashboard, m.Activate())

	m.Down()
	require.Equal(t, "Definitions", m.Current().Title)
	assert.Equal(t, "", m.Activate())
	assert.Len(t, m.visible(), 8)

	m.Down()
	m.Down()
	assert.Equal(t, resource.Countries, m.Activate())

	m.Up()
	m.Up()
	m.Activate()
	assert.Len(t, m.visible(), 3)
	assert.Equal(t, "Definitions", m.Current().Title)
}

func TestMenu_CursorStaysInRange(t *testing.T) {
	m := DefaultMenu()
	for i := 0; i < 10; i++ {
		m.Down()
	}
	assert.Equal(t, "Production", m.Current().Title)
	m.Activate()
	for i := 0; i < 10; i++ {
		m.Down()
	}
	assert.Equal(t, resource.KPIs, m.Current().Page)
	for i := 0; i < 20; i++ {
		m.Up()
	}
	assert.Equal(t, PageDashboard, m.Current().Page)
}

func TestMenu_Reveal(t *testing.T) {
	m := DefaultMenu()
	m.Reveal(resource.Machines)
	assert.Equal(t, resource.Machines, m.Current().Page)
	assert.True(t, m.Items[2].Expanded)
	assert.False(t, m.Items[1].Expanded)
}

func TestMenu_CoversEveryTable(t *testing.T) {
	pages := map[string]bool{}
	for _, it := range DefaultMenu().Items {
		for _, ch := range it.Children {
			pages[ch.Page] = true
		}
	}
	for _, d := range resource.Default().All() {
		assert.True(t, pages[d.Table], d.Table)
	}
}

func TestMenu_View(t *testing.T) {
	m := DefaultMenu()
	m.Reveal(resource.Cities)
	out := m.View(NewStyles(LightTheme()), resource.Cities, true)
	assert.Contains(t, out, "▾ Definitions")
	assert.Contains(t, out, "▸ Production")
	assert.Contains(t, out, "› ")
	assert.Contains(t, out, "Cities")
}

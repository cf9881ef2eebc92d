package console

import "github.com/charmbracelet/lipgloss"

// Theme is one color scheme of the console.
type Theme struct {
	Name       string
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

var (
	destructive = lipgloss.Color("#e53935")
	success     = lipgloss.Color("#43a047")
	warning     = lipgloss.Color("#ffb300")
)

// LightTheme returns the light color scheme.
func LightTheme() Theme {
	return Theme{
		Name:       "light",
		Background: lipgloss.Color("#f4f5f6"),
		Foreground: lipgloss.Color("#1b2533"),
		Primary:    lipgloss.Color("#0f5d8c"),
		Accent:     lipgloss.Color("#f59e0b"),
		Muted:      lipgloss.Color("#7b8794"),
		Border:     lipgloss.Color("#cbd2d9"),
		Card:       lipgloss.Color("#ffffff"),
	}
}

// DarkTheme returns the dark color scheme.
func DarkTheme() Theme {
	return Theme{
		Name:       "dark",
		Background: lipgloss.Color("#111827"),
		Foreground: lipgloss.Color("#e5e7eb"),
		Primary:    lipgloss.Color("#38bdf8"),
		Accent:     lipgloss.Color("#fbbf24"),
		Muted:      lipgloss.Color("#6b7280"),
		Border:     lipgloss.Color("#374151"),
		Card:       lipgloss.Color("#1f2937"),
		IsDark:     true,
	}
}

// ThemeByName returns DarkTheme for "dark" and LightTheme otherwise.
func ThemeByName(name string) Theme {
	if name == "dark" {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the rendered styles for one theme.
type Styles struct {
	Theme Theme

	Navbar     lipgloss.Style
	Sidebar    lipgloss.Style
	Content    lipgloss.Style
	MenuItem   lipgloss.Style
	MenuActive lipgloss.Style
	MenuCursor lipgloss.Style
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Card       lipgloss.Style
	CardValue  lipgloss.Style
	Modal      lipgloss.Style
	Label      lipgloss.Style
	FocusLabel lipgloss.Style
	Bar        lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles builds the styles for theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Navbar: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(theme.Card).
			Bold(true).
			Padding(0, 1),

		Sidebar: lipgloss.NewStyle().
			Width(24).
			Padding(1, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(theme.Border),

		Content: lipgloss.NewStyle().
			Padding(1, 2),

		MenuItem: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		MenuActive: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		MenuCursor: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			MarginBottom(1),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(destructive).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(success).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(warning),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1).
			Width(22),

		CardValue: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(1, 2),

		Label: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Width(12),

		FocusLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true).
			Width(12),

		Bar: lipgloss.NewStyle().
			Foreground(theme.Primary),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),
	}
}

// Package console is the terminal admin console: a sign-in screen, a sidebar
// menu, the dashboard and one list page per administrable table.
package console

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"energy-admin/internal/gateway"
	"energy-admin/internal/listctl"
	"energy-admin/internal/resource"
	"energy-admin/internal/session"
)

// changedMsg tells the UI that some controller state changed.
type changedMsg struct{}

// Options configures the console.
type Options struct {
	Theme   string
	List    listctl.Config
	Timeout time.Duration
}

type focusArea int

const (
	focusSidebar focusArea = iota
	focusContent
)

// App is the root bubbletea model.
type App struct {
	reg  *resource.Registry
	gw   gateway.Gateway
	sess *session.Store
	opts Options
	log  *zap.Logger

	theme  Theme
	styles Styles

	signIn    *SignInForm
	menu      *Menu
	focus     focusArea
	active    string
	dashboard *DashboardPage
	lists     map[string]*ListPage
	ctls      []*listctl.Controller

	changes chan struct{}
	width   int
	height  int
}

// New creates the console model. Controllers are created on first visit of
// their page.
func New(reg *resource.Registry, gw gateway.Gateway, dash DashboardSource, sess *session.Store, opts Options, log *zap.Logger) *App {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	theme := ThemeByName(opts.Theme)
	styles := NewStyles(theme)
	return &App{
		reg:       reg,
		gw:        gw,
		sess:      sess,
		opts:      opts,
		log:       log,
		theme:     theme,
		styles:    styles,
		signIn:    NewSignInForm(sess, opts.Timeout),
		menu:      DefaultMenu(),
		active:    PageDashboard,
		dashboard: NewDashboardPage(dash, styles, opts.Timeout),
		lists:     make(map[string]*ListPage),
		changes:   make(chan struct{}, 1),
	}
}

// notify coalesces change signals; it never blocks the controller.
func (a *App) notify() {
	select {
	case a.changes <- struct{}{}:
	default:
	}
}

func (a *App) listen() tea.Cmd {
	return func() tea.Msg {
		<-a.changes
		return changedMsg{}
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.listen(), a.signIn.Reset())
}

func (a *App) signedIn() bool {
	_, ok := a.sess.Current()
	return ok
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		inner := tea.WindowSizeMsg{Width: max(msg.Width-30, 20), Height: max(msg.Height-4, 10)}
		for _, p := range a.lists {
			p.Update(inner)
		}
		return a, nil

	case changedMsg:
		if p, ok := a.lists[a.active]; ok {
			p.Update(msg)
		}
		return a, a.listen()

	case signedInMsg:
		cmd := a.signIn.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		a.log.Info("signed in", zap.String("email", msg.info.Email))
		a.focus = focusSidebar
		return a, a.open(PageDashboard)

	case dashboardMsg:
		return a, a.dashboard.Update(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.signedIn() {
			return a, a.signIn.Update(msg)
		}
		return a, a.handleKey(msg)
	}

	if !a.signedIn() {
		return a, a.signIn.Update(msg)
	}
	return a, nil
}

func (a *App) typing() bool {
	if a.focus != focusContent {
		return false
	}
	if p, ok := a.lists[a.active]; ok {
		return p.Typing()
	}
	return a.active == PageDashboard && a.dashboard.Typing()
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+o":
		return a.signOut()
	case "ctrl+t":
		a.toggleTheme()
		return nil
	}
	if !a.typing() {
		switch msg.String() {
		case "q":
			return tea.Quit
		case "t":
			a.toggleTheme()
			return nil
		case "tab":
			if a.focus == focusSidebar {
				a.focus = focusContent
			} else {
				a.focus = focusSidebar
			}
			return nil
		}
	}

	if a.focus == focusSidebar {
		switch msg.String() {
		case "up", "k":
			a.menu.Up()
		case "down", "j":
			a.menu.Down()
		case "enter", " ", "right", "l":
			if page := a.menu.Activate(); page != "" {
				a.focus = focusContent
				return a.open(page)
			}
		}
		return nil
	}

	if p, ok := a.lists[a.active]; ok {
		return p.Update(msg)
	}
	return a.dashboard.Update(msg)
}

// open switches to page, creating its controller on first visit.
func (a *App) open(page string) tea.Cmd {
	a.active = page
	a.menu.Reveal(page)
	if page == PageDashboard {
		return a.dashboard.Load()
	}
	if p, ok := a.lists[page]; ok {
		p.Update(changedMsg{})
		return nil
	}
	desc, err := a.reg.Get(page)
	if err != nil {
		a.log.Error("unknown page", zap.String("page", page), zap.Error(err))
		a.active = PageDashboard
		return nil
	}
	ctl := listctl.New(desc, a.gw, a.sess, a.opts.List, a.log.With(zap.String("table", page)))
	ctl.OnChange(a.notify)
	p := NewListPage(ctl, a.styles, a.opts.Timeout)
	if a.width > 0 {
		p.Update(tea.WindowSizeMsg{Width: max(a.width-30, 20), Height: max(a.height-4, 10)})
	}
	a.ctls = append(a.ctls, ctl)
	a.lists[page] = p
	return p.Load()
}

func (a *App) toggleTheme() {
	if a.theme.IsDark {
		a.theme = LightTheme()
	} else {
		a.theme = DarkTheme()
	}
	a.styles = NewStyles(a.theme)
	a.dashboard.SetStyles(a.styles)
	for _, p := range a.lists {
		p.SetStyles(a.styles)
	}
}

// signOut drops the session and every page state.
func (a *App) signOut() tea.Cmd {
	a.Close()
	a.lists = make(map[string]*ListPage)
	a.active = PageDashboard
	a.sess.SignOut()
	a.log.Info("signed out")
	return a.signIn.Reset()
}

// Close stops all controllers and waits for their in-flight queries.
func (a *App) Close() {
	for _, c := range a.ctls {
		c.Close()
	}
	a.ctls = nil
}

// View implements tea.Model.
func (a *App) View() string {
	st := a.styles
	if !a.signedIn() {
		return lipgloss.Place(max(a.width, 60), max(a.height, 16), lipgloss.Center, lipgloss.Center, a.signIn.View(st))
	}

	info, _ := a.sess.Current()
	navbar := st.Navbar.Width(max(a.width, 60)).Render(
		fmt.Sprintf("⚡ Energy Admin   %s   theme: %s", info.Email, a.theme.Name))

	var content string
	if p, ok := a.lists[a.active]; ok {
		content = p.View()
	} else {
		content = a.dashboard.View()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		st.Sidebar.Render(a.menu.View(st, a.active, a.focus == focusSidebar)),
		st.Content.Render(content),
	)
	help := st.Help.Render("tab focus · t theme · ctrl+o sign out · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, navbar, body, help)
}

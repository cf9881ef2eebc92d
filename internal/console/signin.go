package console

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"energy-admin/internal/gateway"
	"energy-admin/internal/session"
)

type signedInMsg struct {
	info session.Info
	err  error
}

// SignInForm is the credentials screen shown while signed out.
type SignInForm struct {
	sess    *session.Store
	timeout time.Duration

	email    textinput.Model
	password textinput.Model
	focus    int
	busy     bool
	err      string
}

// NewSignInForm creates the sign-in screen.
func NewSignInForm(sess *session.Store, timeout time.Duration) *SignInForm {
	email := textinput.New()
	email.Placeholder = "operator@plant.io"
	email.CharLimit = 128
	email.Width = 32
	email.Prompt = ""
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 32
	password.Prompt = ""

	return &SignInForm{sess: sess, timeout: timeout, email: email, password: password}
}

// Reset clears the form for the next sign-in.
func (f *SignInForm) Reset() tea.Cmd {
	f.email.SetValue("")
	f.password.SetValue("")
	f.busy = false
	f.err = ""
	f.focus = 0
	f.password.Blur()
	return f.email.Focus()
}

func (f *SignInForm) submit() tea.Cmd {
	email, password := f.email.Value(), f.password.Value()
	f.busy = true
	f.err = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		info, err := f.sess.SignIn(ctx, email, password)
		return signedInMsg{info: info, err: err}
	}
}

// Update handles a message while signed out.
func (f *SignInForm) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case signedInMsg:
		f.busy = false
		if msg.err != nil {
			f.err = signInError(msg.err)
			f.password.SetValue("")
		}
		return nil
	case tea.KeyMsg:
		if f.busy {
			return nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			f.focus = 1 - f.focus
			if f.focus == 0 {
				f.password.Blur()
				return f.email.Focus()
			}
			f.email.Blur()
			return f.password.Focus()
		case "enter":
			if f.focus == 0 {
				f.focus = 1
				f.email.Blur()
				return f.password.Focus()
			}
			return f.submit()
		}
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

func signInError(err error) string {
	if errors.Is(err, gateway.ErrInvalidCredentials) {
		return "Invalid email or password"
	}
	msg := err.Error()
	if msg == "" {
		return "Sign-in failed"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// View renders the form.
func (f *SignInForm) View(s Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Energy Admin · Sign in"))
	b.WriteByte('\n')

	emailLabel, passLabel := s.Label, s.Label
	if f.focus == 0 {
		emailLabel = s.FocusLabel
	} else {
		passLabel = s.FocusLabel
	}
	b.WriteString(emailLabel.Render("Email") + f.email.View() + "\n")
	b.WriteString(passLabel.Render("Password") + f.password.View() + "\n\n")

	switch {
	case f.busy:
		b.WriteString(s.Muted.Render("signing in…") + "\n")
	case f.err != "":
		b.WriteString(s.Error.Render(f.err) + "\n")
	}
	b.WriteString(s.Help.Render("tab switch field · enter sign in · ctrl+c quit"))
	return s.Modal.Render(b.String())
}

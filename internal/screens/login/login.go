package login

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/auth"
	"github.com/abhisek/studyplan/internal/router"
	"github.com/abhisek/studyplan/internal/screen"
	"github.com/abhisek/studyplan/internal/ui/components"
	"github.com/abhisek/studyplan/internal/ui/layout"
	"github.com/abhisek/studyplan/internal/ui/theme"
)

const (
	fieldEmail = iota
	fieldPassword
)

// loginResultMsg carries the outcome of an AuthProvider.Login call.
type loginResultMsg struct {
	Err error
}

// LoginScreen asks for an email and password before showing the app.
type LoginScreen struct {
	auth       auth.AuthProvider
	next       func() screen.Screen
	email      components.TextInput
	password   components.TextInput
	focus      int
	submitting bool
	errMsg     string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. next builds the screen shown after a
// successful login; it replaces the whole stack.
func New(a auth.AuthProvider, next func() screen.Screen) *LoginScreen {
	return &LoginScreen{
		auth:     a,
		next:     next,
		email:    components.NewTextInput("Email", "you@example.com", 254),
		password: components.NewPasswordInput("Password", "at least 6 characters"),
	}
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.email.Focus()
}

func (s *LoginScreen) Title() string {
	return "Log in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Log in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		return s.handleResult(msg)

	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "down", "up":
			// Two fields, so forward and back both flip focus.
			return s, s.setFocus(1 - s.focus)
		case "enter":
			if s.focus == fieldEmail {
				return s, s.setFocus(fieldPassword)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	if s.focus == fieldEmail {
		s.email, cmd = s.email.Update(msg)
	} else {
		s.password, cmd = s.password.Update(msg)
	}
	return s, cmd
}

func (s *LoginScreen) setFocus(f int) tea.Cmd {
	s.focus = f
	if f == fieldEmail {
		s.password.Blur()
		return s.email.Focus()
	}
	s.email.Blur()
	return s.password.Focus()
}

func (s *LoginScreen) submit() tea.Cmd {
	s.errMsg = ""
	s.email.Err = ""
	s.password.Err = ""
	s.submitting = true

	email := strings.TrimSpace(s.email.Value())
	password := s.password.Value()
	a := s.auth
	return func() tea.Msg {
		return loginResultMsg{Err: a.Login(context.Background(), email, password)}
	}
}

func (s *LoginScreen) handleResult(msg loginResultMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false
	if msg.Err == nil {
		next := s.next()
		return s, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }
	}

	var v *apperr.ValidationError
	if errors.As(msg.Err, &v) {
		switch v.Field {
		case "email":
			s.email.Err = v.Message
			return s, s.setFocus(fieldEmail)
		case "password":
			s.password.Err = v.Message
			return s, s.setFocus(fieldPassword)
		}
	}
	s.errMsg = apperr.UserMessage(msg.Err)
	return s, nil
}

func (s *LoginScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 50)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render(layout.Brand))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw - 6).Render("Plan it. Study it. Quiz it."))
	b.WriteString("\n\n")
	b.WriteString(s.email.View())
	b.WriteString("\n\n")
	b.WriteString(s.password.View())
	b.WriteString("\n\n")

	switch {
	case s.submitting:
		b.WriteString(theme.Hint.Render("Logging in..."))
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	default:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Press Enter to continue"))
	}

	return components.Centered(components.Card(b.String(), cw), width, height)
}

package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/studyplan/internal/router"
	"github.com/abhisek/studyplan/internal/screen"
	"github.com/abhisek/studyplan/internal/screens"
	"github.com/abhisek/studyplan/internal/screens/dashboard"
	"github.com/abhisek/studyplan/internal/screens/login"
	"github.com/abhisek/studyplan/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Services *screens.Services

	// Busy reports whether an AI generation is running. Optional; it
	// drives the header status.
	Busy func() bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	busy   func() bool
	width  int
	height int
}

// newAppModel creates an AppModel that opens on the dashboard when the
// user is already logged in and on the login screen otherwise.
func newAppModel(ctx context.Context, opts Options) (AppModel, error) {
	authed, err := opts.Services.Auth.IsAuthenticated(ctx)
	if err != nil {
		return AppModel{}, fmt.Errorf("read auth state: %w", err)
	}

	initial := loginScreen(opts.Services)
	if authed {
		initial = dashboardScreen(opts.Services)
	}
	return AppModel{
		router: router.New(initial),
		busy:   opts.Busy,
	}, nil
}

func loginScreen(svc *screens.Services) screen.Screen {
	return login.New(svc.Auth, func() screen.Screen { return dashboardScreen(svc) })
}

func dashboardScreen(svc *screens.Services) screen.Screen {
	return dashboard.New(svc, func() screen.Screen { return loginScreen(svc) })
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Pop()
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// status is the header's right-hand text.
func (m AppModel) status() string {
	if m.busy != nil && m.busy() {
		return "● generating"
	}
	return ""
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, opts Options) error {
	model, err := newAppModel(ctx, opts)
	if err != nil {
		return err
	}
	zap.L().Info("tui started", zap.String("screen", model.router.Active().Title()))

	p := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

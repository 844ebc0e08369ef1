package dashboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/progress"
	"github.com/abhisek/studyplan/internal/router"
	"github.com/abhisek/studyplan/internal/screen"
	"github.com/abhisek/studyplan/internal/screens"
	"github.com/abhisek/studyplan/internal/screens/plan"
	"github.com/abhisek/studyplan/internal/screens/quizscreen"
	"github.com/abhisek/studyplan/internal/screens/roadmapview"
	"github.com/abhisek/studyplan/internal/ui/components"
	"github.com/abhisek/studyplan/internal/ui/layout"
	"github.com/abhisek/studyplan/internal/ui/theme"
)

// overviewMsg carries the subject list loaded from the store.
type overviewMsg struct {
	Rows []progress.Summary
	Err  error
}

// deletedMsg reports the outcome of a subject deletion.
type deletedMsg struct {
	ID  string
	Err error
}

// logoutMsg reports the outcome of a logout.
type logoutMsg struct {
	Err error
}

// openSubjectMsg asks the dashboard to open a subject's roadmap.
type openSubjectMsg struct {
	ID string
}

// DashboardScreen lists subjects with their progress and the app's main
// actions.
type DashboardScreen struct {
	svc      *screens.Services
	onLogout func() screen.Screen

	rows    []progress.Summary
	loaded  bool
	menu    components.Menu
	errMsg  string
	confirm *progress.Summary
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyHintProvider = (*DashboardScreen)(nil)
var _ screen.Resumer = (*DashboardScreen)(nil)

// New creates a DashboardScreen. onLogout builds the screen shown after
// logging out.
func New(svc *screens.Services, onLogout func() screen.Screen) *DashboardScreen {
	d := &DashboardScreen{svc: svc, onLogout: onLogout}
	d.menu = d.buildMenu()
	return d
}

func (d *DashboardScreen) Init() tea.Cmd {
	return d.load()
}

// Resume reloads the subject list when a child screen is popped.
func (d *DashboardScreen) Resume() tea.Cmd {
	return d.load()
}

func (d *DashboardScreen) Title() string {
	return "My Subjects"
}

func (d *DashboardScreen) KeyHints() []layout.KeyHint {
	if d.confirm != nil {
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Keep"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "N", Description: "New plan"},
	}
	if d.selectedSubject() != nil {
		hints = append(hints, layout.KeyHint{Key: "D", Description: "Delete"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (d *DashboardScreen) load() tea.Cmd {
	ctrl := d.svc.Progress
	return func() tea.Msg {
		rows, err := ctrl.Overview(context.Background())
		return overviewMsg{Rows: rows, Err: err}
	}
}

func (d *DashboardScreen) buildMenu() components.Menu {
	items := make([]components.MenuItem, 0, len(d.rows)+3)
	for _, r := range d.rows {
		id := r.Subject.ID
		items = append(items, components.MenuItem{
			Label:  r.Subject.Title,
			Detail: fmt.Sprintf("%d%% · %d tasks", r.Percent, len(r.Subject.Tasks)),
			Action: func() tea.Cmd {
				return func() tea.Msg { return openSubjectMsg{ID: id} }
			},
		})
	}
	items = append(items,
		components.MenuItem{Label: "+ New study plan", Action: d.newPlan},
		components.MenuItem{Label: "Quick quiz", Action: d.quickQuiz},
		components.MenuItem{Label: "Log out", Action: d.logout},
	)
	m := components.NewMenu(items)
	if d.menu.Selected < len(items) {
		m.Selected = d.menu.Selected
	}
	return m
}

// selectedSubject returns the subject under the cursor, if the cursor is
// on a subject row.
func (d *DashboardScreen) selectedSubject() *progress.Summary {
	if d.menu.Selected < 0 || d.menu.Selected >= len(d.rows) {
		return nil
	}
	return &d.rows[d.menu.Selected]
}

func (d *DashboardScreen) newPlan() tea.Cmd {
	return router.Push(plan.New(d.svc))
}

func (d *DashboardScreen) quickQuiz() tea.Cmd {
	return router.Push(quizscreen.New(d.svc))
}

func (d *DashboardScreen) logout() tea.Cmd {
	a := d.svc.Auth
	return func() tea.Msg {
		return logoutMsg{Err: a.Logout(context.Background())}
	}
}

func (d *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewMsg:
		d.loaded = true
		if msg.Err != nil {
			d.errMsg = apperr.UserMessage(msg.Err)
			return d, nil
		}
		d.errMsg = ""
		d.rows = msg.Rows
		d.menu = d.buildMenu()
		return d, nil

	case openSubjectMsg:
		return d, router.Push(roadmapview.New(d.svc, msg.ID))

	case deletedMsg:
		if msg.Err != nil && !apperr.IsNotFound(msg.Err) {
			d.errMsg = apperr.UserMessage(msg.Err)
		}
		return d, d.load()

	case logoutMsg:
		if msg.Err != nil {
			d.errMsg = apperr.UserMessage(msg.Err)
			return d, nil
		}
		next := d.onLogout()
		return d, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }

	case tea.KeyMsg:
		return d.handleKey(msg)
	}
	return d, nil
}

func (d *DashboardScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if d.confirm != nil {
		switch msg.String() {
		case "y", "Y":
			id := d.confirm.Subject.ID
			d.confirm = nil
			ctrl := d.svc.Progress
			return d, func() tea.Msg {
				return deletedMsg{ID: id, Err: ctrl.DeleteSubject(context.Background(), id)}
			}
		case "n", "N", "esc":
			d.confirm = nil
		}
		return d, nil
	}

	switch msg.String() {
	case "n", "N":
		return d, d.newPlan()
	case "d", "D", "delete":
		if sel := d.selectedSubject(); sel != nil {
			c := *sel
			d.confirm = &c
		}
		return d, nil
	}

	var cmd tea.Cmd
	d.menu, cmd = d.menu.Update(msg)
	return d, cmd
}

func (d *DashboardScreen) View(width, height int) string {
	if d.confirm != nil {
		return components.RenderConfirm(width,
			fmt.Sprintf("Delete %q?", d.confirm.Subject.Title),
			"Its roadmap, progress and quiz results will be removed.",
			"Yes, delete", "No, keep it")
	}
	if !d.loaded {
		return components.RenderLoading(width, "", "Loading your subjects...")
	}

	cw := components.ContentWidth(width)
	var b strings.Builder

	if len(d.rows) == 0 {
		b.WriteString(theme.Subtitle.Width(cw).Render("No subjects yet. Create your first study plan!"))
		b.WriteString("\n\n")
	} else {
		for i, r := range d.rows {
			if i == d.menu.Selected {
				b.WriteString(components.NewProgressBar("", r.Percent, true, cw-4).View())
				b.WriteString("\n")
				if r.Subject.Summary != "" {
					b.WriteString(theme.Hint.Width(cw - 4).Render(r.Subject.Summary))
					b.WriteString("\n")
				}
				b.WriteString("\n")
			}
		}
	}

	b.WriteString(d.menu.View())

	if d.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(d.errMsg))
	}

	return components.Centered(components.Card(b.String(), cw), width, height)
}

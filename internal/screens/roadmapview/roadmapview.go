package roadmapview

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/progress"
	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/router"
	"github.com/abhisek/studyplan/internal/screen"
	"github.com/abhisek/studyplan/internal/screens"
	"github.com/abhisek/studyplan/internal/screens/quizscreen"
	"github.com/abhisek/studyplan/internal/ui/components"
	"github.com/abhisek/studyplan/internal/ui/layout"
	"github.com/abhisek/studyplan/internal/ui/theme"
)

// detailMsg carries a freshly loaded subject.
type detailMsg struct {
	Detail progress.Detail
	Err    error
}

// toggledMsg reports the outcome of a task toggle.
type toggledMsg struct {
	TaskID string
	Done   bool
	Err    error
}

// RoadmapScreen shows one subject's day-by-day tasks and lets the user
// tick them off or quiz themselves on a task.
type RoadmapScreen struct {
	svc       *screens.Services
	subjectID string

	detail *progress.Detail
	cursor int
	errMsg string
}

var _ screen.Screen = (*RoadmapScreen)(nil)
var _ screen.KeyHintProvider = (*RoadmapScreen)(nil)
var _ screen.Resumer = (*RoadmapScreen)(nil)

// New creates a RoadmapScreen for subjectID.
func New(svc *screens.Services, subjectID string) *RoadmapScreen {
	return &RoadmapScreen{svc: svc, subjectID: subjectID}
}

func (s *RoadmapScreen) Init() tea.Cmd {
	return s.load()
}

// Resume reloads so a quiz result saved on the screen above shows up.
func (s *RoadmapScreen) Resume() tea.Cmd {
	return s.load()
}

func (s *RoadmapScreen) Title() string {
	if s.detail == nil {
		return "Roadmap"
	}
	return s.detail.Subject.Title
}

func (s *RoadmapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space", Description: "Done/undo"},
		{Key: "Q", Description: "Quiz me"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RoadmapScreen) load() tea.Cmd {
	ctrl, id := s.svc.Progress, s.subjectID
	return func() tea.Msg {
		d, err := ctrl.Subject(context.Background(), id)
		return detailMsg{Detail: d, Err: err}
	}
}

func (s *RoadmapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case detailMsg:
		if apperr.IsNotFound(msg.Err) {
			return s, router.Pop()
		}
		if msg.Err != nil {
			s.errMsg = apperr.UserMessage(msg.Err)
			return s, nil
		}
		s.errMsg = ""
		s.detail = &msg.Detail
		if s.cursor >= len(msg.Detail.Subject.Tasks) {
			s.cursor = max(0, len(msg.Detail.Subject.Tasks)-1)
		}
		return s, nil

	case toggledMsg:
		if apperr.IsNotFound(msg.Err) {
			return s, router.Pop()
		}
		if msg.Err != nil {
			s.errMsg = apperr.UserMessage(msg.Err)
			return s, nil
		}
		return s, s.load()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *RoadmapScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.detail == nil {
		return s, nil
	}
	tasks := s.detail.Subject.Tasks

	switch msg.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(tasks)-1 {
			s.cursor++
		}
	case "space", "enter", "x":
		if len(tasks) == 0 {
			return s, nil
		}
		ctrl, sid, tid := s.svc.Progress, s.subjectID, tasks[s.cursor].ID
		return s, func() tea.Msg {
			done, err := ctrl.ToggleTask(context.Background(), sid, tid)
			return toggledMsg{TaskID: tid, Done: done, Err: err}
		}
	case "q", "Q":
		if len(tasks) == 0 {
			return s, nil
		}
		return s, router.Push(quizscreen.NewForTask(s.svc, s.detail.Subject, tasks[s.cursor]))
	}
	return s, nil
}

func (s *RoadmapScreen) View(width, height int) string {
	if s.detail == nil {
		if s.errMsg != "" {
			return components.RenderError(width, s.errMsg, "Press Esc to go back.")
		}
		return components.RenderLoading(width, "", "Loading roadmap...")
	}

	d := s.detail
	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(theme.Title.Width(cw - 6).Render(d.Subject.Title))
	b.WriteString("\n")
	if d.Subject.Summary != "" {
		b.WriteString(theme.Subtitle.Width(cw - 6).Render(d.Subject.Summary))
		b.WriteString("\n")
	}
	if d.Subject.CoverImage != "" {
		b.WriteString(theme.Hint.Width(cw - 6).Align(lipgloss.Center).Render("cover image ready (export to view)"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar("Progress", d.Percent, true, cw-6).View())
	b.WriteString("\n\n")

	if len(d.Subject.Tasks) == 0 {
		b.WriteString(theme.Hint.Render("This roadmap has no tasks."))
	} else {
		// Header, progress and footer take roughly 14 rows.
		b.WriteString(s.renderTasks(max(3, height-14), cw-6))
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	return components.Centered(components.Card(b.String(), cw), width, height)
}

// renderTasks renders a window of at most rows tasks around the cursor,
// followed by the selected task's description and last quiz result.
func (s *RoadmapScreen) renderTasks(rows, width int) string {
	d := s.detail
	tasks := d.Subject.Tasks

	start := 0
	if s.cursor >= rows {
		start = s.cursor - rows + 1
	}
	end := min(len(tasks), start+rows)

	var b strings.Builder
	for i := start; i < end; i++ {
		t := tasks[i]
		check := "[ ]"
		style := theme.Unselected
		if d.Completed.Has(t.ID) {
			check = "[✓]"
			style = theme.Done
		}
		prefix := "  "
		if i == s.cursor {
			prefix = "▸ "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s Day %-3d %s", prefix, check, t.Day, t.Label)
		if res, ok := d.Results[t.ID]; ok {
			line += "  " + resultBadge(res)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	if end < len(tasks) {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  ... %d more", len(tasks)-end)))
		b.WriteString("\n")
	}

	sel := tasks[s.cursor]
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(width).Render(sel.Description))
	if res, ok := d.Results[sel.ID]; ok {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Last quiz: %d/%d on %s",
			res.Score, res.Total, res.AttemptedAt.Local().Format("Jan 2"))))
	}
	return b.String()
}

func resultBadge(res roadmap.QuizResult) string {
	if res.Passed {
		return theme.Correct.Render(fmt.Sprintf("%d%% ✓", res.Percentage))
	}
	return theme.Incorrect.Render(fmt.Sprintf("%d%% ✗", res.Percentage))
}

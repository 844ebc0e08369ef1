package plan

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/planner"
	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/router"
	"github.com/abhisek/studyplan/internal/screen"
	"github.com/abhisek/studyplan/internal/screens"
	"github.com/abhisek/studyplan/internal/screens/roadmapview"
	"github.com/abhisek/studyplan/internal/ui/components"
	"github.com/abhisek/studyplan/internal/ui/layout"
	"github.com/abhisek/studyplan/internal/ui/theme"
)

// Form fields in tab order.
const (
	fieldSyllabus = iota
	fieldSyllabusFile
	fieldExamDate
	fieldReferenceFile
	fieldCount
)

// planDoneMsg carries the outcome of CreatePlan.
type planDoneMsg struct {
	Subject roadmap.Subject
	Err     error
}

// PlanScreen collects the syllabus, exam date and optional reference
// material and generates a new subject.
type PlanScreen struct {
	svc *screens.Services

	syllabus      textarea.Model
	syllabusFile  components.TextInput
	examDate      components.TextInput
	referenceFile components.TextInput
	focus         int

	spin       spinner.Model
	generating bool
	errMsg     string
}

var _ screen.Screen = (*PlanScreen)(nil)
var _ screen.KeyHintProvider = (*PlanScreen)(nil)

// New creates a PlanScreen.
func New(svc *screens.Services) *PlanScreen {
	ta := textarea.New()
	ta.Placeholder = "Paste your syllabus here..."
	ta.ShowLineNumbers = false
	ta.SetHeight(6)

	return &PlanScreen{
		svc:           svc,
		syllabus:      ta,
		syllabusFile:  components.NewTextInput("...or a syllabus file", "path/to/syllabus.txt", 0),
		examDate:      components.NewTextInput("Exam date", "YYYY-MM-DD", 10),
		referenceFile: components.NewTextInput("Sample paper (optional)", "path/to/paper.txt", 0),
		spin:          spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *PlanScreen) Init() tea.Cmd {
	return s.setFocus(fieldSyllabus)
}

func (s *PlanScreen) Title() string {
	return "New Study Plan"
}

func (s *PlanScreen) KeyHints() []layout.KeyHint {
	if s.generating {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Ctrl+S", Description: "Generate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PlanScreen) setFocus(f int) tea.Cmd {
	s.focus = f
	s.syllabus.Blur()
	s.syllabusFile.Blur()
	s.examDate.Blur()
	s.referenceFile.Blur()

	switch f {
	case fieldSyllabus:
		return s.syllabus.Focus()
	case fieldSyllabusFile:
		return s.syllabusFile.Focus()
	case fieldExamDate:
		return s.examDate.Focus()
	default:
		return s.referenceFile.Focus()
	}
}

func (s *PlanScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case planDoneMsg:
		return s.handleDone(msg)

	case spinner.TickMsg:
		if !s.generating {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.generating {
			return s, nil
		}
		switch msg.String() {
		case "tab":
			return s, s.setFocus((s.focus + 1) % fieldCount)
		case "shift+tab":
			return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
		case "ctrl+s":
			return s, s.submit()
		case "enter":
			switch s.focus {
			case fieldSyllabus:
				// Newline in the syllabus text.
			case fieldReferenceFile:
				return s, s.submit()
			default:
				return s, s.setFocus(s.focus + 1)
			}
		}
	}

	return s, s.updateFocused(msg)
}

func (s *PlanScreen) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case fieldSyllabus:
		s.syllabus, cmd = s.syllabus.Update(msg)
	case fieldSyllabusFile:
		s.syllabusFile, cmd = s.syllabusFile.Update(msg)
	case fieldExamDate:
		s.examDate, cmd = s.examDate.Update(msg)
	case fieldReferenceFile:
		s.referenceFile, cmd = s.referenceFile.Update(msg)
	}
	return cmd
}

// input assembles PlanInput from the form. File fields are read here;
// a syllabus file is appended to any typed syllabus text.
func (s *PlanScreen) input() (planner.PlanInput, bool) {
	s.syllabusFile.Err = ""
	s.referenceFile.Err = ""

	parts := []string{strings.TrimSpace(s.syllabus.Value())}
	if path := strings.TrimSpace(s.syllabusFile.Value()); path != "" {
		text, err := planner.ReadInputFile(path)
		if err != nil {
			s.syllabusFile.Err = fileError(err)
			return planner.PlanInput{}, false
		}
		parts = append(parts, text)
	}

	var ref string
	if path := strings.TrimSpace(s.referenceFile.Value()); path != "" {
		text, err := planner.ReadInputFile(path)
		if err != nil {
			s.referenceFile.Err = fileError(err)
			return planner.PlanInput{}, false
		}
		ref = text
	}

	return planner.PlanInput{
		Syllabus:      strings.TrimSpace(strings.Join(parts, "\n\n")),
		ExamDate:      strings.TrimSpace(s.examDate.Value()),
		ReferenceText: ref,
	}, true
}

func fileError(err error) string {
	switch {
	case errors.Is(err, planner.ErrInputTooLarge):
		return "file is too large"
	case errors.Is(err, planner.ErrNotText):
		return "only plain-text files are supported"
	}
	return err.Error()
}

func (s *PlanScreen) submit() tea.Cmd {
	s.errMsg = ""
	in, ok := s.input()
	if !ok {
		return nil
	}
	if _, err := in.Validate(); err != nil {
		return s.showError(err)
	}

	s.generating = true
	p := s.svc.Planner
	return tea.Batch(
		s.spin.Tick,
		func() tea.Msg {
			sub, err := p.CreatePlan(context.Background(), in)
			return planDoneMsg{Subject: sub, Err: err}
		},
	)
}

// showError puts a validation error next to its field, anything else in
// the form footer.
func (s *PlanScreen) showError(err error) tea.Cmd {
	var v *apperr.ValidationError
	if errors.As(err, &v) && v.Field == "exam date" {
		s.examDate.Err = v.Message
		return s.setFocus(fieldExamDate)
	}
	s.errMsg = apperr.UserMessage(err)
	return nil
}

func (s *PlanScreen) handleDone(msg planDoneMsg) (screen.Screen, tea.Cmd) {
	s.generating = false
	if msg.Err != nil {
		cmd := s.showError(msg.Err)
		if apperr.IsGeneration(msg.Err) {
			s.errMsg += " Press Ctrl+S to retry."
		}
		return s, cmd
	}
	next := roadmapview.New(s.svc, msg.Subject.ID)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *PlanScreen) View(width, height int) string {
	if s.generating {
		return components.RenderLoading(width, s.spin.View(), "Building your roadmap... this can take a minute.")
	}

	cw := components.ContentWidth(width)
	s.syllabus.SetWidth(cw - 6)

	var b strings.Builder
	label := theme.Hint
	if s.focus == fieldSyllabus {
		label = theme.Label
	}
	b.WriteString(label.Render("Syllabus"))
	b.WriteString("\n")
	b.WriteString(s.syllabus.View())
	b.WriteString("\n\n")
	b.WriteString(s.syllabusFile.View())
	b.WriteString("\n\n")
	b.WriteString(s.examDate.View())
	b.WriteString("\n\n")
	b.WriteString(s.referenceFile.View())
	b.WriteString("\n\n")

	if s.errMsg != "" {
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	} else {
		b.WriteString(theme.Hint.Render("Ctrl+S to generate your roadmap"))
	}

	return components.Centered(components.Card(b.String(), cw), width, height)
}

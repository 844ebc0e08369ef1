package quizscreen

import (
	"context"
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/planner"
	"github.com/abhisek/studyplan/internal/quiz"
	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/router"
	"github.com/abhisek/studyplan/internal/screen"
	"github.com/abhisek/studyplan/internal/screens"
	"github.com/abhisek/studyplan/internal/ui/components"
	"github.com/abhisek/studyplan/internal/ui/layout"
)

// phase is the screen's own view state on top of the engine state.
type phase int

const (
	phaseSetup phase = iota
	phaseLoading
	phaseFailed
	phaseQuestions
	phaseResults
)

// target is the roadmap task a linked quiz belongs to.
type target struct {
	subject roadmap.Subject
	task    roadmap.StudyTask
}

// QuizScreen runs one quiz session from topic entry to results.
type QuizScreen struct {
	engine *quiz.Engine
	target *target

	topic     components.TextInput
	reference components.TextInput
	setupFoc  int
	refText   string

	phase   phase
	spin    spinner.Model
	current int
	pickers []components.MultiChoice
	result  roadmap.QuizResult
	errMsg  string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)

// New creates a free-standing QuizScreen that starts by asking for a
// topic. Its result is not saved.
func New(svc *screens.Services) *QuizScreen {
	return &QuizScreen{
		engine:    svc.NewQuizEngine(),
		topic:     components.NewTextInput("Topic", "e.g. Photosynthesis", 200),
		reference: components.NewTextInput("Notes file (optional)", "path/to/notes.txt", 0),
		spin:      spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// NewForTask creates a QuizScreen for a roadmap task. Generation starts
// immediately and the result is saved against the task.
func NewForTask(svc *screens.Services, sub roadmap.Subject, task roadmap.StudyTask) *QuizScreen {
	s := New(svc)
	s.target = &target{subject: sub, task: task}
	s.phase = phaseLoading
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.target != nil {
		return s.startLoad()
	}
	return s.topic.Focus()
}

func (s *QuizScreen) Title() string {
	if s.target != nil {
		return "Quiz: " + s.target.task.Label
	}
	if t := s.engine.Topic(); t != "" {
		return "Quiz: " + t
	}
	return "Quiz"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseSetup:
		return []layout.KeyHint{
			{Key: "Tab", Description: "Next field"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseFailed:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseQuestions:
		hints := []layout.KeyHint{
			{Key: "↑↓", Description: "Option"},
			{Key: "Enter", Description: "Answer"},
			{Key: "←→", Description: "Question"},
		}
		if s.engine.AllAnswered() {
			hints = append(hints, layout.KeyHint{Key: "S", Description: "Submit"})
		}
		return hints
	case phaseResults:
		return []layout.KeyHint{
			{Key: "R", Description: "Retake"},
			{Key: "Enter", Description: "Done"},
		}
	}
	return nil
}

func (s *QuizScreen) startLoad() tea.Cmd {
	s.phase = phaseLoading
	s.errMsg = ""
	e, t := s.engine, s.target
	topic, ref := strings.TrimSpace(s.topic.Value()), s.refText
	return tea.Batch(
		s.spin.Tick,
		func() tea.Msg {
			ctx := context.Background()
			if t != nil {
				return loadedMsg{Err: e.LoadForTask(ctx, t.subject, t.task)}
			}
			return loadedMsg{Err: e.Load(ctx, topic, ref)}
		},
	)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)

	case submittedMsg:
		return s.handleSubmitted(msg)

	case spinner.TickMsg:
		if s.phase != phaseLoading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch s.phase {
		case phaseSetup:
			return s.handleSetupKey(msg)
		case phaseFailed:
			if k := msg.String(); k == "r" || k == "R" || k == "enter" {
				return s, s.startLoad()
			}
			return s, nil
		case phaseQuestions:
			return s.handleQuestionKey(msg)
		case phaseResults:
			return s.handleResultsKey(msg)
		}
		return s, nil
	}

	if s.phase == phaseSetup {
		return s, s.updateSetupInput(msg)
	}
	return s, nil
}

func (s *QuizScreen) updateSetupInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if s.setupFoc == 0 {
		s.topic, cmd = s.topic.Update(msg)
	} else {
		s.reference, cmd = s.reference.Update(msg)
	}
	return cmd
}

func (s *QuizScreen) handleSetupKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "down", "up":
		if s.setupFoc == 0 {
			s.setupFoc = 1
			s.topic.Blur()
			return s, s.reference.Focus()
		}
		s.setupFoc = 0
		s.reference.Blur()
		return s, s.topic.Focus()
	case "enter":
		return s, s.beginFromSetup()
	}
	return s, s.updateSetupInput(msg)
}

// beginFromSetup reads the optional notes file and starts generation. A
// blank topic falls back to the notes file's name.
func (s *QuizScreen) beginFromSetup() tea.Cmd {
	s.topic.Err = ""
	s.reference.Err = ""
	s.refText = ""

	if path := strings.TrimSpace(s.reference.Value()); path != "" {
		text, err := planner.ReadInputFile(path)
		if err != nil {
			s.reference.Err = readError(err)
			return nil
		}
		s.refText = text
		if strings.TrimSpace(s.topic.Value()) == "" {
			s.topic.SetValue(roadmap.TopicFromFilename(path))
		}
	}

	if strings.TrimSpace(s.topic.Value()) == "" {
		s.topic.Err = "please enter a topic"
		return nil
	}
	s.topic.Blur()
	s.reference.Blur()
	return s.startLoad()
}

func readError(err error) string {
	switch {
	case errors.Is(err, planner.ErrInputTooLarge):
		return "file is too large"
	case errors.Is(err, planner.ErrNotText):
		return "only plain-text files are supported"
	}
	return err.Error()
}

func (s *QuizScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	if errors.Is(msg.Err, quiz.ErrLoadAbandoned) {
		return s, nil
	}
	if msg.Err != nil {
		if apperr.IsValidation(msg.Err) && s.target == nil {
			s.phase = phaseSetup
			s.topic.Err = apperr.UserMessage(msg.Err)
			return s, s.topic.Focus()
		}
		s.phase = phaseFailed
		s.errMsg = apperr.UserMessage(msg.Err)
		return s, nil
	}

	qs := s.engine.Questions()
	s.pickers = make([]components.MultiChoice, len(qs))
	for i, q := range qs {
		s.pickers[i] = components.NewMultiChoice(q.Question, q.Options, q.CorrectAnswer)
	}
	s.current = 0
	s.phase = phaseQuestions
	return s, nil
}

func (s *QuizScreen) handleQuestionKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "shift+tab":
		if s.current > 0 {
			s.current--
		}
		return s, nil
	case "right", "l", "tab":
		if s.current < len(s.pickers)-1 {
			s.current++
		}
		return s, nil
	case "enter", "space":
		s.choose()
		return s, nil
	case "s", "S":
		if !s.engine.AllAnswered() {
			return s, nil
		}
		e := s.engine
		return s, func() tea.Msg {
			res, err := e.Submit(context.Background())
			return submittedMsg{Result: res, Err: err}
		}
	}

	var cmd tea.Cmd
	s.pickers[s.current], cmd = s.pickers[s.current].Update(msg)
	return s, cmd
}

// choose records the option under the cursor. The engine decides whether
// the answer may change; the picker mirrors what the engine holds.
func (s *QuizScreen) choose() {
	qs := s.engine.Questions()
	q := qs[s.current]
	p := &s.pickers[s.current]

	if _, err := s.engine.SelectAnswer(q.ID, p.Cursor); err != nil {
		s.errMsg = apperr.UserMessage(err)
		return
	}
	s.errMsg = ""
	if a, ok := s.engine.Answer(q.ID); ok {
		p.Chosen = a
		p.Locked = s.engine.Policy() == quiz.LockFirstAnswer
	}
}

func (s *QuizScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = apperr.UserMessage(msg.Err)
		return s, nil
	}
	s.result = msg.Result
	s.phase = phaseResults
	for i := range s.pickers {
		s.pickers[i].Revealed = true
	}
	return s, nil
}

func (s *QuizScreen) handleResultsKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "r", "R":
		s.engine.Reset()
		s.pickers = nil
		return s, s.startLoad()
	case "enter", "b", "B":
		s.engine.Reset()
		return s, router.Pop()
	case "left", "h":
		if s.current > 0 {
			s.current--
		}
	case "right", "l":
		if s.current < len(s.pickers)-1 {
			s.current++
		}
	}
	return s, nil
}

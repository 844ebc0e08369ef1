package quizscreen

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/ui/components"
	"github.com/abhisek/studyplan/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch s.phase {
	case phaseSetup:
		return s.renderSetup(width, height)
	case phaseLoading:
		return components.RenderLoading(width, s.spin.View(), "Writing your quiz...")
	case phaseFailed:
		return components.RenderError(width, s.errMsg, "Press R to retry or Esc to go back.")
	case phaseResults:
		return s.renderResults(width, height)
	}
	return s.renderQuestion(width, height)
}

func (s *QuizScreen) renderSetup(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render("Quick Quiz"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw - 6).Render(
		fmt.Sprintf("%d questions on any topic", roadmap.QuizSize)))
	b.WriteString("\n\n")
	b.WriteString(s.topic.View())
	b.WriteString("\n\n")
	b.WriteString(s.reference.View())
	return components.Centered(components.Card(b.String(), cw), width, height)
}

func (s *QuizScreen) renderQuestion(width, height int) string {
	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(renderDots(s.pickers, s.current))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Question %d of %d   ·   %d answered",
		s.current+1, len(s.pickers), s.engine.AnsweredCount())))
	b.WriteString("\n\n")
	b.WriteString(s.pickers[s.current].View())
	b.WriteString("\n\n")

	submit := components.NewButton("Submit (S)", true, nil)
	submit.Disabled = !s.engine.AllAnswered()
	b.WriteString(submit.View())

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}
	return components.Centered(components.Card(b.String(), cw), width, height)
}

// renderDots shows one marker per question: answered, unanswered, and
// the current one highlighted.
func renderDots(pickers []components.MultiChoice, current int) string {
	parts := make([]string, len(pickers))
	for i, p := range pickers {
		dot := "○"
		if p.Chosen >= 0 {
			dot = "●"
		}
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if i == current {
			style = theme.Selected
		}
		parts[i] = style.Render(dot)
	}
	return strings.Join(parts, " ")
}

func (s *QuizScreen) renderResults(width, height int) string {
	cw := components.ContentWidth(width)
	r := s.result

	var b strings.Builder
	verdict := theme.Correct.Render("Passed!")
	if !r.Passed {
		verdict = theme.Incorrect.Render("Not yet. Keep studying!")
	}
	b.WriteString(lipgloss.NewStyle().Width(cw - 6).Align(lipgloss.Center).Render(verdict))
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(cw - 6).Render(fmt.Sprintf("%d / %d  (%d%%)", r.Score, r.Total, r.Percentage)))
	b.WriteString("\n\n")

	for i, p := range s.pickers {
		mark := theme.Correct.Render("✓")
		if !p.IsCorrect() {
			mark = theme.Incorrect.Render("✗")
		}
		style := theme.Hint
		if i == s.current {
			style = theme.Selected
		}
		b.WriteString(fmt.Sprintf("%s %s\n", mark, style.Render(fmt.Sprintf("Q%d", i+1))))
	}
	b.WriteString("\n")
	if len(s.pickers) > 0 {
		b.WriteString(s.pickers[s.current].View())
	}

	if s.target != nil {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Result saved to your roadmap."))
	}
	return components.Centered(components.Card(b.String(), cw), width, height)
}

// Package screens holds the services shared by the TUI screens. Each
// screen lives in its own subpackage.
package screens

import (
	"context"

	"github.com/abhisek/studyplan/internal/auth"
	"github.com/abhisek/studyplan/internal/planner"
	"github.com/abhisek/studyplan/internal/progress"
	"github.com/abhisek/studyplan/internal/quiz"
	"github.com/abhisek/studyplan/internal/roadmap"
)

// PlanCreator turns planner input into a stored subject.
type PlanCreator interface {
	CreatePlan(ctx context.Context, in planner.PlanInput) (roadmap.Subject, error)
}

// Services is everything a screen may call into.
type Services struct {
	Auth     auth.AuthProvider
	Planner  PlanCreator
	Progress *progress.Controller
	Quiz     quiz.Generator
	Results  quiz.ResultStore
	Policy   quiz.AnswerPolicy
}

// NewQuizEngine returns an idle quiz engine wired to the result store.
func (s *Services) NewQuizEngine() *quiz.Engine {
	opts := []quiz.Option{quiz.WithAnswerPolicy(s.Policy)}
	if s.Results != nil {
		opts = append(opts, quiz.WithResultStore(s.Results))
	}
	return quiz.New(s.Quiz, opts...)
}

package quiz

import (
	"slices"

	"github.com/abhisek/studyplan/internal/roadmap"
)

// State returns the current lifecycle stage.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Loading reports whether a Load call is waiting on the generator.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Policy returns the configured answer policy.
func (e *Engine) Policy() AnswerPolicy {
	return e.policy
}

// Topic returns the topic of the loaded session.
func (e *Engine) Topic() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.topic
}

// Questions returns a copy of the loaded question set.
func (e *Engine) Questions() []roadmap.Question {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.questions)
}

// Answer returns the recorded option for questionID.
func (e *Engine) Answer(questionID int) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.answers[questionID]
	return a, ok
}

// AnsweredCount returns how many questions have a recorded answer.
func (e *Engine) AnsweredCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.answers)
}

// AllAnswered reports whether Submit would be accepted.
func (e *Engine) AllAnswered() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == InProgress && len(e.answers) == len(e.questions)
}

// Result returns the scored result once Submitted.
func (e *Engine) Result() (roadmap.QuizResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result == nil {
		return roadmap.QuizResult{}, false
	}
	return *e.result, true
}

// Link returns the task association of the session, if any.
func (e *Engine) Link() (Link, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.link == nil {
		return Link{}, false
	}
	return *e.link, true
}

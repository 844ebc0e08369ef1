package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/studyplan/internal/roadmap"
)

// Semantic checks that JSON schema validation cannot express.

var (
	errNoTitle = errors.New("roadmap has no title")
	errNoTasks = errors.New("roadmap has no tasks")
)

// checkRoadmap trims text fields and rejects roadmaps that cannot be
// turned into a subject.
func checkRoadmap(r *Roadmap) error {
	r.Title = strings.TrimSpace(r.Title)
	r.Summary = strings.TrimSpace(r.Summary)
	if r.Title == "" {
		return errNoTitle
	}
	if len(r.Tasks) == 0 {
		return errNoTasks
	}
	for i := range r.Tasks {
		t := &r.Tasks[i]
		t.ID = strings.TrimSpace(t.ID)
		t.Label = strings.TrimSpace(t.Label)
		t.Description = strings.TrimSpace(t.Description)
		if t.Day < 1 {
			return fmt.Errorf("task %d: day must be at least 1, got %d", i+1, t.Day)
		}
		if t.Label == "" {
			return fmt.Errorf("task %d: empty label", i+1)
		}
	}
	return nil
}

// checkQuiz validates a generated question set and returns exactly want
// questions numbered from 1. Extra questions are dropped.
func checkQuiz(qs []roadmap.Question, want int) ([]roadmap.Question, error) {
	if len(qs) < want {
		return nil, fmt.Errorf("expected %d questions, got %d", want, len(qs))
	}
	out := make([]roadmap.Question, want)
	for i := range want {
		q := qs[i]
		q.Question = strings.TrimSpace(q.Question)
		if q.Question == "" {
			return nil, fmt.Errorf("question %d: empty text", i+1)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d: need at least 2 options, got %d", i+1, len(q.Options))
		}
		if !q.ValidOption(q.CorrectAnswer) {
			return nil, fmt.Errorf("question %d: correct answer %d out of range [0, %d)", i+1, q.CorrectAnswer, len(q.Options))
		}
		q.ID = i + 1
		out[i] = q
	}
	return out, nil
}

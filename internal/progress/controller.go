// Package progress tracks task completion for subjects and keeps the
// store in step with every change.
package progress

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/store"
)

// Detail is everything the roadmap view shows for one subject.
type Detail struct {
	Subject   roadmap.Subject
	Completed roadmap.CompletedSet
	Percent   int
	Results   map[string]roadmap.QuizResult // by task ID
}

// Summary is one row of the subject list.
type Summary struct {
	Subject roadmap.Subject
	Percent int
}

// Controller mutates completed-task sets with write-through persistence.
type Controller struct {
	repo store.StudyRepo
}

// New creates a Controller backed by repo.
func New(repo store.StudyRepo) *Controller {
	return &Controller{repo: repo}
}

// ToggleTask flips the completion of taskID and persists the subject's
// full completed set. It returns whether the task is now done. Applying
// it twice restores the original set.
func (c *Controller) ToggleTask(ctx context.Context, subjectID, taskID string) (bool, error) {
	sub, err := c.repo.GetSubject(ctx, subjectID)
	if err != nil {
		return false, err
	}
	if _, ok := sub.Task(taskID); !ok {
		return false, &apperr.NotFoundError{Kind: "task", ID: taskID}
	}

	done, err := c.repo.GetSubjectProgress(ctx, subjectID)
	if err != nil {
		return false, err
	}
	now := done.Toggle(taskID)
	if err := c.repo.SaveSubjectProgress(ctx, subjectID, done); err != nil {
		return false, fmt.Errorf("save progress: %w", err)
	}

	zap.L().Debug("task toggled",
		zap.String("subject", subjectID),
		zap.String("task", taskID),
		zap.Bool("done", now))
	return now, nil
}

// Progress returns the completion percentage of one subject.
func (c *Controller) Progress(ctx context.Context, subjectID string) (int, error) {
	sub, err := c.repo.GetSubject(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	done, err := c.repo.GetSubjectProgress(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	return roadmap.ComputeProgress(sub, done), nil
}

// Subject loads a subject with its completion state and latest quiz
// results. A missing subject yields *apperr.NotFoundError.
func (c *Controller) Subject(ctx context.Context, subjectID string) (Detail, error) {
	sub, err := c.repo.GetSubject(ctx, subjectID)
	if err != nil {
		return Detail{}, err
	}
	done, err := c.repo.GetSubjectProgress(ctx, subjectID)
	if err != nil {
		return Detail{}, err
	}
	all, err := c.repo.GetQuizResults(ctx)
	if err != nil {
		return Detail{}, err
	}
	results := all[subjectID]
	if results == nil {
		results = map[string]roadmap.QuizResult{}
	}
	return Detail{
		Subject:   sub,
		Completed: done,
		Percent:   roadmap.ComputeProgress(sub, done),
		Results:   results,
	}, nil
}

// Overview lists every subject with its completion percentage.
func (c *Controller) Overview(ctx context.Context) ([]Summary, error) {
	subs, err := c.repo.GetSubjects(ctx)
	if err != nil {
		return nil, err
	}
	prog, err := c.repo.GetProgress(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, len(subs))
	for i, s := range subs {
		out[i] = Summary{Subject: s, Percent: roadmap.ComputeProgress(s, prog[s.ID])}
	}
	return out, nil
}

// DeleteSubject removes a subject together with its completed set and
// quiz results. Either all three are removed or none are.
func (c *Controller) DeleteSubject(ctx context.Context, subjectID string) error {
	if err := c.repo.DeleteSubject(ctx, subjectID); err != nil {
		return err
	}
	zap.L().Info("subject deleted", zap.String("subject", subjectID))
	return nil
}

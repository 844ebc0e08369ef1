// Package planner implements the plan-creation flow: validate the form,
// generate a roadmap and cover image, and persist the new subject.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/gateway"
	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/store"
)

// ExamDateLayout is the accepted exam date format.
const ExamDateLayout = time.DateOnly

// PlanInput is the plan-creation form.
type PlanInput struct {
	Syllabus      string
	ExamDate      string // YYYY-MM-DD
	ReferenceText string // optional sample paper or notes
}

// Validate checks that the required fields are present and well formed.
// It returns the parsed exam date.
func (in PlanInput) Validate() (time.Time, error) {
	if strings.TrimSpace(in.Syllabus) == "" || strings.TrimSpace(in.ExamDate) == "" {
		return time.Time{}, &apperr.ValidationError{Message: "please provide both a syllabus and an exam date"}
	}
	date, err := time.ParseInLocation(ExamDateLayout, strings.TrimSpace(in.ExamDate), time.Local)
	if err != nil {
		return time.Time{}, apperr.Validation("exam date", "expected YYYY-MM-DD, got %q", in.ExamDate)
	}
	return date, nil
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithIDGenerator overrides subject ID assignment.
func WithIDGenerator(next func() string) Option {
	return func(p *Planner) { p.newID = next }
}

// Planner creates subjects from generated roadmaps.
type Planner struct {
	gen   gateway.Gateway
	repo  store.StudyRepo
	now   func() time.Time
	newID func() string
}

// New creates a Planner.
func New(gen gateway.Gateway, repo store.StudyRepo, opts ...Option) *Planner {
	p := &Planner{
		gen:   gen,
		repo:  repo,
		now:   time.Now,
		newID: NewSubjectID,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// NewSubjectID returns a time-ordered unique subject ID.
func NewSubjectID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "sub_" + uuid.NewString()
	}
	return "sub_" + id.String()
}

// CreatePlan generates and persists a new subject. Nothing is stored when
// validation or roadmap generation fails. A missing cover image does not
// fail the plan.
func (p *Planner) CreatePlan(ctx context.Context, in PlanInput) (roadmap.Subject, error) {
	examDate, err := in.Validate()
	if err != nil {
		return roadmap.Subject{}, err
	}

	rm, err := p.gen.GenerateRoadmap(ctx, in.Syllabus, examDate, in.ReferenceText)
	if err != nil {
		return roadmap.Subject{}, err
	}

	sub := roadmap.Subject{
		ID:        p.newID(),
		Title:     rm.Title,
		Summary:   rm.Summary,
		Tasks:     NormalizeTaskIDs(rm.Tasks),
		CreatedAt: p.now(),
	}
	if uri, ok := p.gen.GenerateImage(ctx, rm.Title); ok {
		sub.CoverImage = uri
	}

	if err := p.repo.AddSubject(ctx, sub); err != nil {
		return roadmap.Subject{}, fmt.Errorf("save subject: %w", err)
	}

	zap.L().Info("plan created",
		zap.String("subject", sub.ID),
		zap.String("title", sub.Title),
		zap.Int("tasks", len(sub.Tasks)),
		zap.Bool("cover_image", sub.CoverImage != ""))
	return sub, nil
}

// NormalizeTaskIDs returns a copy of tasks where every ID is unique within
// the roadmap. Blank or repeated IDs become "day<N>-<k>", k counting the
// tasks seen so far on day N.
func NormalizeTaskIDs(tasks []roadmap.StudyTask) []roadmap.StudyTask {
	out := make([]roadmap.StudyTask, len(tasks))
	seen := make(map[string]bool, len(tasks))
	perDay := make(map[int]int)

	for i, t := range tasks {
		perDay[t.Day]++
		id := strings.TrimSpace(t.ID)
		if id == "" || seen[id] {
			k := perDay[t.Day]
			id = fmt.Sprintf("day%d-%d", t.Day, k)
			for seen[id] {
				k++
				id = fmt.Sprintf("day%d-%d", t.Day, k)
			}
		}
		seen[id] = true
		t.ID = id
		out[i] = t
	}
	return out
}

package store

import (
	"context"
	"time"

	"github.com/abhisek/studyplan/internal/roadmap"
)

// StudyRepo persists subjects, completed-task sets and quiz results.
//
// The Get/Save pairs mirror the logical store layout (subjects, progress,
// quiz_results). The finer-grained methods are what the controllers use
// for write-through updates.
type StudyRepo interface {
	// GetSubjects returns all subjects in creation order.
	GetSubjects(ctx context.Context) ([]roadmap.Subject, error)

	// SaveSubjects replaces the subject list. Subjects missing from subs
	// are removed together with their progress and quiz results.
	SaveSubjects(ctx context.Context, subs []roadmap.Subject) error

	// AddSubject appends a subject with an empty completed-task set.
	AddSubject(ctx context.Context, sub roadmap.Subject) error

	// GetSubject returns one subject, or a *apperr.NotFoundError.
	GetSubject(ctx context.Context, id string) (roadmap.Subject, error)

	// GetProgress returns the completed-task set of every subject.
	GetProgress(ctx context.Context) (roadmap.Progress, error)

	// SaveProgress replaces the completed-task sets of the subjects in p.
	SaveProgress(ctx context.Context, p roadmap.Progress) error

	// GetSubjectProgress returns the completed-task set of one subject.
	GetSubjectProgress(ctx context.Context, subjectID string) (roadmap.CompletedSet, error)

	// SaveSubjectProgress replaces the completed-task set of one subject.
	SaveSubjectProgress(ctx context.Context, subjectID string, done roadmap.CompletedSet) error

	// GetQuizResults returns the latest result per subject and task.
	GetQuizResults(ctx context.Context) (roadmap.QuizResults, error)

	// SaveQuizResults replaces the quiz results of the subjects in r.
	SaveQuizResults(ctx context.Context, r roadmap.QuizResults) error

	// SaveQuizResult stores the result for one task, overwriting any
	// previous attempt.
	SaveQuizResult(ctx context.Context, subjectID, taskID string, r roadmap.QuizResult) error

	// DeleteSubject removes a subject, its completed-task set and its quiz
	// results in a single transaction.
	DeleteSubject(ctx context.Context, id string) error
}

// SettingsRepo persists scalar application settings.
type SettingsRepo interface {
	GetAuthFlag(ctx context.Context) (bool, error)
	SetAuthFlag(ctx context.Context, on bool) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match (empty = any)
	From    time.Time // timestamp >= From
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a recorded LLM call.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for a purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	Succeeded    int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}

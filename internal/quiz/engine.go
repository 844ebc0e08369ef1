// Package quiz runs a single quiz session: load a generated question set,
// record one answer per question, then score and persist the result.
//
// The session moves Idle → InProgress → Submitted. Reset returns to Idle
// from either of the later states. An Engine is safe for concurrent use, so
// Load may run in a background command while the UI reads its state.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/gateway"
	"github.com/abhisek/studyplan/internal/roadmap"
)

// State is the lifecycle stage of a quiz session.
type State int

const (
	Idle State = iota
	InProgress
	Submitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case InProgress:
		return "in progress"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// AnswerPolicy decides what happens when a question is answered twice.
type AnswerPolicy int

const (
	// LockFirstAnswer keeps the first recorded answer; later selections
	// for the same question are ignored.
	LockFirstAnswer AnswerPolicy = iota

	// AllowReselect lets the latest selection win until Submit.
	AllowReselect
)

func (p AnswerPolicy) String() string {
	if p == AllowReselect {
		return "allow-reselect"
	}
	return "lock-first"
}

var (
	// ErrIncomplete is returned by Submit while a question is unanswered.
	ErrIncomplete = errors.New("every question must be answered before submitting")

	// ErrInvalidState is returned for operations not allowed in the
	// current state.
	ErrInvalidState = errors.New("invalid quiz state")

	// ErrLoadAbandoned is returned by a Load whose session was Reset
	// before the questions arrived. The questions are dropped.
	ErrLoadAbandoned = errors.New("quiz load abandoned")
)

// Generator produces question sets. *gateway.LLMGateway implements it.
type Generator interface {
	GenerateQuiz(ctx context.Context, topic, referenceText string) ([]roadmap.Question, error)
}

// ResultStore persists submitted results. store.StudyRepo implements it.
type ResultStore interface {
	SaveQuizResult(ctx context.Context, subjectID, taskID string, r roadmap.QuizResult) error
}

// Link associates a session with a roadmap task so its result is saved.
type Link struct {
	SubjectID string
	TaskID    string
}

// Option configures an Engine.
type Option func(*Engine)

// WithAnswerPolicy selects how repeated answers are handled.
func WithAnswerPolicy(p AnswerPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithResultStore enables persistence of linked sessions.
func WithResultStore(rs ResultStore) Option {
	return func(e *Engine) { e.results = rs }
}

// WithClock overrides the attempt timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is a quiz session state machine.
type Engine struct {
	gen     Generator
	results ResultStore
	policy  AnswerPolicy
	now     func() time.Time

	mu        sync.Mutex
	state     State
	loading   bool
	epoch     uint64 // bumped by Reset; stale loads are dropped
	topic     string
	link      *Link
	questions []roadmap.Question
	answers   map[int]int
	result    *roadmap.QuizResult
}

// New creates an idle Engine.
func New(gen Generator, opts ...Option) *Engine {
	e := &Engine{
		gen:    gen,
		policy: LockFirstAnswer,
		now:    time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Load requests a question set for topic and starts a free-standing
// session. On failure the engine stays Idle and the error is returned for
// the caller to offer a retry.
func (e *Engine) Load(ctx context.Context, topic, referenceText string) error {
	return e.load(ctx, topic, referenceText, nil)
}

// LoadForTask starts a session for one roadmap task. The topic and
// reference text are derived from the task and the result is saved under
// (subject, task) on Submit.
func (e *Engine) LoadForTask(ctx context.Context, sub roadmap.Subject, task roadmap.StudyTask) error {
	topic, ref := roadmap.QuizContext(sub, task)
	return e.load(ctx, topic, ref, &Link{SubjectID: sub.ID, TaskID: task.ID})
}

func (e *Engine) load(ctx context.Context, topic, referenceText string, link *Link) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return apperr.Validation("topic", "please enter a topic")
	}

	e.mu.Lock()
	if e.state != Idle {
		state := e.state
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot load while %s", ErrInvalidState, state)
	}
	if e.loading {
		e.mu.Unlock()
		return &apperr.GenerationError{Op: gateway.OpQuiz, Err: gateway.ErrInFlight}
	}
	e.loading = true
	epoch := e.epoch
	e.mu.Unlock()

	questions, err := e.gen.GenerateQuiz(ctx, topic, referenceText)
	if err == nil && len(questions) == 0 {
		err = &apperr.GenerationError{Op: gateway.OpQuiz, Err: errors.New("no questions returned")}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		zap.L().Debug("dropping abandoned quiz load", zap.String("topic", topic))
		return ErrLoadAbandoned
	}
	e.loading = false
	if err != nil {
		return err
	}

	e.state = InProgress
	e.topic = topic
	e.link = link
	e.questions = questions
	e.answers = make(map[int]int, len(questions))
	e.result = nil
	return nil
}

// SelectAnswer records option for questionID. It reports whether the
// recorded answer changed; under LockFirstAnswer a second selection for
// the same question is a no-op.
func (e *Engine) SelectAnswer(questionID, option int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != InProgress {
		return false, fmt.Errorf("%w: cannot answer while %s", ErrInvalidState, e.state)
	}
	q, ok := e.question(questionID)
	if !ok {
		return false, apperr.Validation("question", "unknown question %d", questionID)
	}
	if !q.ValidOption(option) {
		return false, apperr.Validation("option", "option %d out of range for question %d", option, questionID)
	}

	prev, answered := e.answers[questionID]
	if answered && (e.policy == LockFirstAnswer || prev == option) {
		return false, nil
	}
	e.answers[questionID] = option
	return true, nil
}

// Submit scores the session. It fails with ErrIncomplete until every
// question is answered. A linked session is persisted before the engine
// moves to Submitted; if saving fails the session stays InProgress.
func (e *Engine) Submit(ctx context.Context) (roadmap.QuizResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != InProgress {
		return roadmap.QuizResult{}, fmt.Errorf("%w: cannot submit while %s", ErrInvalidState, e.state)
	}
	if len(e.answers) < len(e.questions) {
		return roadmap.QuizResult{}, ErrIncomplete
	}

	res, err := roadmap.NewQuizResult(Score(e.questions, e.answers), len(e.questions), e.now())
	if err != nil {
		return roadmap.QuizResult{}, err
	}

	if e.link != nil && e.results != nil {
		if err := e.results.SaveQuizResult(ctx, e.link.SubjectID, e.link.TaskID, res); err != nil {
			return roadmap.QuizResult{}, fmt.Errorf("save quiz result: %w", err)
		}
	}

	zap.L().Info("quiz submitted",
		zap.String("topic", e.topic),
		zap.Int("score", res.Score),
		zap.Int("total", res.Total),
		zap.Bool("passed", res.Passed))

	e.state = Submitted
	e.result = &res
	return res, nil
}

// Reset abandons or closes the session and returns to Idle. A Load still
// waiting on the generator is abandoned. Persisted results are untouched.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.epoch++
	e.loading = false
	e.state = Idle
	e.topic = ""
	e.link = nil
	e.questions = nil
	e.answers = nil
	e.result = nil
}

// Score counts questions whose recorded answer matches the correct option.
func Score(questions []roadmap.Question, answers map[int]int) int {
	score := 0
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok && a == q.CorrectAnswer {
			score++
		}
	}
	return score
}

func (e *Engine) question(id int) (roadmap.Question, bool) {
	for _, q := range e.questions {
		if q.ID == id {
			return q, true
		}
	}
	return roadmap.Question{}, false
}

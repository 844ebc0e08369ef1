package quiz

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/gateway"
	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/store"
)

type fakeGenerator struct {
	questions []roadmap.Question
	err       error
	calls     int
	topics    []string
	refs      []string
	block     chan struct{}
}

func (f *fakeGenerator) GenerateQuiz(ctx context.Context, topic, ref string) ([]roadmap.Question, error) {
	f.calls++
	f.topics = append(f.topics, topic)
	f.refs = append(f.refs, ref)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

type recordingStore struct {
	saved map[Link]roadmap.QuizResult
	err   error
}

func (r *recordingStore) SaveQuizResult(_ context.Context, subjectID, taskID string, res roadmap.QuizResult) error {
	if r.err != nil {
		return r.err
	}
	if r.saved == nil {
		r.saved = make(map[Link]roadmap.QuizResult)
	}
	r.saved[Link{SubjectID: subjectID, TaskID: taskID}] = res
	return nil
}

var attemptAt = time.UnixMilli(1_772_400_000_000)

func twoQuestions() []roadmap.Question {
	return []roadmap.Question{
		{ID: 1, Question: "2+2?", Options: []string{"4", "5", "6"}, CorrectAnswer: 0},
		{ID: 2, Question: "Capital of France?", Options: []string{"Rome", "Berlin", "Paris"}, CorrectAnswer: 2},
	}
}

// nQuestions builds n questions whose correct answer is always option 0.
func nQuestions(n int) []roadmap.Question {
	qs := make([]roadmap.Question, n)
	for i := range qs {
		qs[i] = roadmap.Question{ID: i + 1, Question: "q", Options: []string{"right", "wrong"}, CorrectAnswer: 0}
	}
	return qs
}

func loadedEngine(t *testing.T, qs []roadmap.Question, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return attemptAt })}, opts...)
	e := New(&fakeGenerator{questions: qs}, opts...)
	if err := e.Load(context.Background(), "General knowledge", ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return e
}

func mustSelect(t *testing.T, e *Engine, qid, opt int) {
	t.Helper()
	if _, err := e.SelectAnswer(qid, opt); err != nil {
		t.Fatalf("SelectAnswer(%d, %d): %v", qid, opt, err)
	}
}

func TestLoad_TransitionsToInProgress(t *testing.T) {
	gen := &fakeGenerator{questions: twoQuestions()}
	e := New(gen)

	if e.State() != Idle {
		t.Fatalf("new engine state = %v, want idle", e.State())
	}
	if err := e.Load(context.Background(), "  Arithmetic  ", "notes"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e.State() != InProgress {
		t.Fatalf("state = %v, want in progress", e.State())
	}
	if e.AnsweredCount() != 0 {
		t.Fatalf("answered = %d, want 0", e.AnsweredCount())
	}
	if len(e.Questions()) != 2 {
		t.Fatalf("questions = %d, want 2", len(e.Questions()))
	}
	if gen.topics[0] != "Arithmetic" || gen.refs[0] != "notes" {
		t.Fatalf("generator got topic %q ref %q", gen.topics[0], gen.refs[0])
	}
	if _, ok := e.Link(); ok {
		t.Fatal("free-standing session should have no link")
	}
}

func TestLoad_RequiresTopic(t *testing.T) {
	gen := &fakeGenerator{questions: twoQuestions()}
	e := New(gen)

	err := e.Load(context.Background(), "   ", "")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generator should not be called without a topic")
	}
}

func TestLoad_FailureStaysIdle(t *testing.T) {
	genErr := &apperr.GenerationError{Op: "quiz", Err: errors.New("timeout")}
	gen := &fakeGenerator{err: genErr}
	e := New(gen)

	err := e.Load(context.Background(), "Cells", "")
	if !apperr.IsGeneration(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if e.State() != Idle || len(e.Questions()) != 0 {
		t.Fatalf("failed load left state %v with %d questions", e.State(), len(e.Questions()))
	}

	// A user-triggered retry can succeed.
	gen.err = nil
	gen.questions = twoQuestions()
	if err := e.Load(context.Background(), "Cells", ""); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if e.State() != InProgress {
		t.Fatalf("state after retry = %v", e.State())
	}
}

func TestLoad_EmptyQuestionSet(t *testing.T) {
	e := New(&fakeGenerator{})
	err := e.Load(context.Background(), "Cells", "")
	if !apperr.IsGeneration(err) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if e.State() != Idle {
		t.Fatalf("state = %v, want idle", e.State())
	}
}

func TestLoad_RejectedWhenNotIdle(t *testing.T) {
	e := loadedEngine(t, twoQuestions())
	err := e.Load(context.Background(), "Again", "")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestLoad_OverlappingCallRejected(t *testing.T) {
	gen := &fakeGenerator{questions: twoQuestions(), block: make(chan struct{})}
	e := New(gen)

	done := make(chan error, 1)
	go func() { done <- e.Load(context.Background(), "Cells", "") }()

	deadline := time.Now().Add(time.Second)
	for !e.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("first Load never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := e.Load(context.Background(), "Cells", ""); !errors.Is(err, gateway.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	} else if !apperr.IsGeneration(err) {
		t.Fatalf("expected a GenerationError, got %T", err)
	}

	close(gen.block)
	if err := <-done; err != nil {
		t.Fatalf("first Load: %v", err)
	}
	if e.Loading() || e.State() != InProgress {
		t.Fatalf("loading=%v state=%v after first Load", e.Loading(), e.State())
	}
}

func TestReset_AbandonsPendingLoad(t *testing.T) {
	gen := &fakeGenerator{questions: twoQuestions(), block: make(chan struct{})}
	e := New(gen)

	done := make(chan error, 1)
	go func() { done <- e.Load(context.Background(), "Cells", "") }()

	deadline := time.Now().Add(time.Second)
	for !e.Loading() {
		if time.Now().After(deadline) {
			t.Fatal("Load never started")
		}
		time.Sleep(time.Millisecond)
	}

	e.Reset()
	if e.Loading() {
		t.Fatal("Reset should clear the loading flag")
	}

	close(gen.block)
	if err := <-done; !errors.Is(err, ErrLoadAbandoned) {
		t.Fatalf("expected ErrLoadAbandoned, got %v", err)
	}
	if e.State() != Idle {
		t.Fatalf("late questions must be dropped, state = %v", e.State())
	}
	if len(e.Questions()) != 0 {
		t.Fatalf("expected no questions, got %d", len(e.Questions()))
	}
}

func TestScoring_Example(t *testing.T) {
	e := loadedEngine(t, twoQuestions())
	mustSelect(t, e, 1, 0)
	mustSelect(t, e, 2, 1)

	res, err := e.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Score != 1 || res.Total != 2 || res.Percentage != 50 || res.Passed {
		t.Fatalf("got %+v, want score=1 total=2 percentage=50 passed=false", res)
	}
	if !res.AttemptedAt.Equal(attemptAt) {
		t.Fatalf("attemptedAt = %v, want %v", res.AttemptedAt, attemptAt)
	}
	if e.State() != Submitted {
		t.Fatalf("state = %v, want submitted", e.State())
	}
	if got, ok := e.Result(); !ok || got != res {
		t.Fatalf("Result() = %+v, %v", got, ok)
	}
}

func TestScoring_PassBoundary(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		correct int
		pct     int
		passed  bool
	}{
		{"exactly 60", 5, 3, 60, true},
		{"59 rounds down", 22, 13, 59, false},
		{"perfect", 5, 5, 100, true},
		{"zero", 5, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := loadedEngine(t, nQuestions(tt.total))
			for id := 1; id <= tt.total; id++ {
				opt := 1
				if id <= tt.correct {
					opt = 0
				}
				mustSelect(t, e, id, opt)
			}
			res, err := e.Submit(context.Background())
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if res.Percentage != tt.pct || res.Passed != tt.passed {
				t.Fatalf("got percentage=%d passed=%v, want %d %v", res.Percentage, res.Passed, tt.pct, tt.passed)
			}
		})
	}
}

func TestSelectAnswer_LocksFirstAnswer(t *testing.T) {
	qs := []roadmap.Question{{ID: 1, Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3}}
	e := loadedEngine(t, qs)

	changed, err := e.SelectAnswer(1, 2)
	if err != nil || !changed {
		t.Fatalf("first select: changed=%v err=%v", changed, err)
	}
	changed, err = e.SelectAnswer(1, 3)
	if err != nil || changed {
		t.Fatalf("second select should be a no-op: changed=%v err=%v", changed, err)
	}
	if a, _ := e.Answer(1); a != 2 {
		t.Fatalf("recorded answer = %d, want 2", a)
	}
}

func TestSelectAnswer_AllowReselect(t *testing.T) {
	qs := []roadmap.Question{{ID: 1, Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3}}
	e := loadedEngine(t, qs, WithAnswerPolicy(AllowReselect))

	mustSelect(t, e, 1, 2)
	changed, err := e.SelectAnswer(1, 3)
	if err != nil || !changed {
		t.Fatalf("reselect: changed=%v err=%v", changed, err)
	}
	res, err := e.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Score != 1 {
		t.Fatalf("score = %d, want 1 (latest selection wins)", res.Score)
	}
}

func TestSelectAnswer_Rejections(t *testing.T) {
	e := loadedEngine(t, twoQuestions())

	if _, err := e.SelectAnswer(9, 0); !apperr.IsValidation(err) {
		t.Fatalf("unknown question: got %v", err)
	}
	if _, err := e.SelectAnswer(1, 3); !apperr.IsValidation(err) {
		t.Fatalf("option out of range: got %v", err)
	}
	if _, err := e.SelectAnswer(1, -1); !apperr.IsValidation(err) {
		t.Fatalf("negative option: got %v", err)
	}
	if e.AnsweredCount() != 0 {
		t.Fatalf("rejected selections were recorded")
	}

	idle := New(&fakeGenerator{})
	if _, err := idle.SelectAnswer(1, 0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("idle select: got %v", err)
	}
}

func TestSubmit_RequiresAllAnswers(t *testing.T) {
	e := loadedEngine(t, twoQuestions())
	mustSelect(t, e, 1, 0)

	if e.AllAnswered() {
		t.Fatal("AllAnswered with one of two answered")
	}
	if _, err := e.Submit(context.Background()); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if e.State() != InProgress {
		t.Fatalf("rejected submit changed state to %v", e.State())
	}

	mustSelect(t, e, 2, 2)
	if !e.AllAnswered() {
		t.Fatal("AllAnswered false after answering everything")
	}
	if _, err := e.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := e.Submit(context.Background()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second submit: got %v", err)
	}
	if _, err := e.SelectAnswer(1, 1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("answer after submit: got %v", err)
	}
}

func TestReset(t *testing.T) {
	rs := &recordingStore{}
	sub := roadmap.Subject{ID: "sub_1", Title: "Chemistry", Tasks: []roadmap.StudyTask{{ID: "t1", Day: 1, Label: "Acids"}}}
	e := New(&fakeGenerator{questions: twoQuestions()}, WithResultStore(rs))

	if err := e.LoadForTask(context.Background(), sub, sub.Tasks[0]); err != nil {
		t.Fatalf("LoadForTask: %v", err)
	}
	mustSelect(t, e, 1, 0)
	mustSelect(t, e, 2, 2)
	if _, err := e.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	e.Reset()
	if e.State() != Idle || len(e.Questions()) != 0 {
		t.Fatalf("reset left state %v with %d questions", e.State(), len(e.Questions()))
	}
	if _, ok := e.Result(); ok {
		t.Fatal("result survived reset")
	}
	if len(rs.saved) != 1 {
		t.Fatal("reset must not touch the persisted result")
	}

	// Abandon from InProgress.
	if err := e.Load(context.Background(), "Cells", ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	mustSelect(t, e, 1, 0)
	e.Reset()
	if e.State() != Idle || e.AnsweredCount() != 0 {
		t.Fatalf("abandon left state %v with %d answers", e.State(), e.AnsweredCount())
	}
}

func TestLoadForTask_DerivesContext(t *testing.T) {
	gen := &fakeGenerator{questions: twoQuestions()}
	sub := roadmap.Subject{ID: "sub_1", Title: "Physics", Tasks: []roadmap.StudyTask{
		{ID: "day3-1", Day: 3, Label: "Kinematics", Description: "Equations of motion"},
	}}
	e := New(gen)

	if err := e.LoadForTask(context.Background(), sub, sub.Tasks[0]); err != nil {
		t.Fatalf("LoadForTask: %v", err)
	}
	if gen.topics[0] != "Kinematics" {
		t.Fatalf("topic = %q", gen.topics[0])
	}
	want := "Context: This is for Day 3 of study for Physics. Focus: Equations of motion"
	if gen.refs[0] != want {
		t.Fatalf("reference = %q, want %q", gen.refs[0], want)
	}
	if l, ok := e.Link(); !ok || l != (Link{SubjectID: "sub_1", TaskID: "day3-1"}) {
		t.Fatalf("link = %+v, %v", l, ok)
	}
}

func TestSubmit_SaveFailureKeepsSession(t *testing.T) {
	rs := &recordingStore{err: errors.New("disk full")}
	sub := roadmap.Subject{ID: "sub_1", Title: "Chemistry", Tasks: []roadmap.StudyTask{{ID: "t1", Day: 1, Label: "Acids"}}}
	e := New(&fakeGenerator{questions: twoQuestions()}, WithResultStore(rs))

	if err := e.LoadForTask(context.Background(), sub, sub.Tasks[0]); err != nil {
		t.Fatalf("LoadForTask: %v", err)
	}
	mustSelect(t, e, 1, 0)
	mustSelect(t, e, 2, 2)

	if _, err := e.Submit(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if e.State() != InProgress {
		t.Fatalf("state = %v, want in progress", e.State())
	}

	rs.err = nil
	if _, err := e.Submit(context.Background()); err != nil {
		t.Fatalf("Submit after recovery: %v", err)
	}
}

func TestSubmit_PersistsAndOverwrites(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()
	repo := st.StudyRepo()
	ctx := context.Background()

	sub := roadmap.Subject{
		ID:        "sub_1",
		Title:     "Biology",
		CreatedAt: attemptAt,
		Tasks:     []roadmap.StudyTask{{ID: "day1-1", Day: 1, Label: "Cells", Description: "Organelles"}},
	}
	if err := repo.AddSubject(ctx, sub); err != nil {
		t.Fatalf("AddSubject: %v", err)
	}

	gen := &fakeGenerator{questions: twoQuestions()}
	e := New(gen, WithResultStore(repo), WithClock(func() time.Time { return attemptAt }))

	// First attempt: 1/2.
	if err := e.LoadForTask(ctx, sub, sub.Tasks[0]); err != nil {
		t.Fatalf("LoadForTask: %v", err)
	}
	mustSelect(t, e, 1, 0)
	mustSelect(t, e, 2, 0)
	if _, err := e.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	e.Reset()

	// Retake: 2/2 overwrites.
	if err := e.LoadForTask(ctx, sub, sub.Tasks[0]); err != nil {
		t.Fatalf("LoadForTask: %v", err)
	}
	mustSelect(t, e, 1, 0)
	mustSelect(t, e, 2, 2)
	if _, err := e.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	results, err := repo.GetQuizResults(ctx)
	if err != nil {
		t.Fatalf("GetQuizResults: %v", err)
	}
	got, ok := results["sub_1"]["day1-1"]
	if !ok {
		t.Fatal("result not persisted")
	}
	if got.Score != 2 || got.Percentage != 100 || !got.Passed {
		t.Fatalf("persisted %+v, want the retake", got)
	}
	if len(results["sub_1"]) != 1 {
		t.Fatalf("expected one result per task, got %d", len(results["sub_1"]))
	}
}

func TestSubmit_UnlinkedNotPersisted(t *testing.T) {
	rs := &recordingStore{}
	e := loadedEngine(t, twoQuestions(), WithResultStore(rs))
	mustSelect(t, e, 1, 0)
	mustSelect(t, e, 2, 2)
	if _, err := e.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(rs.saved) != 0 {
		t.Fatal("free-standing quiz should not be persisted")
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || InProgress.String() != "in progress" || Submitted.String() != "submitted" {
		t.Fatal("unexpected state names")
	}
	if LockFirstAnswer.String() != "lock-first" || AllowReselect.String() != "allow-reselect" {
		t.Fatal("unexpected policy names")
	}
}

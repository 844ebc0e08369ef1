// Package screenstest wires screens.Services over a temporary store and a
// mock LLM provider for screen tests.
package screenstest

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyplan/internal/auth"
	"github.com/abhisek/studyplan/internal/gateway"
	"github.com/abhisek/studyplan/internal/llm"
	"github.com/abhisek/studyplan/internal/planner"
	"github.com/abhisek/studyplan/internal/progress"
	"github.com/abhisek/studyplan/internal/quiz"
	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/screens"
	"github.com/abhisek/studyplan/internal/store"
)

// CreatedAt is the timestamp given to subjects made by an Env.
var CreatedAt = time.UnixMilli(1_772_000_000_000)

// Env is a ready-to-use set of services backed by real storage.
type Env struct {
	Services *screens.Services
	Store    *store.Store
	Repo     store.StudyRepo
	Mock     *llm.MockProvider
}

// New opens a store in t.TempDir and builds Services around it. The
// answer policy is LockFirstAnswer.
func New(t testing.TB) *Env {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "screens.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	gw := gateway.New(mock, gateway.DefaultConfig())
	repo := st.StudyRepo()

	return &Env{
		Services: &screens.Services{
			Auth: auth.NewLocalGate(st.SettingsRepo()),
			Planner: planner.New(gw, repo,
				planner.WithClock(func() time.Time { return CreatedAt })),
			Progress: progress.New(repo),
			Quiz:     gw,
			Results:  repo,
			Policy:   quiz.LockFirstAnswer,
		},
		Store: st,
		Repo:  repo,
		Mock:  mock,
	}
}

// AddSubject stores a subject with n tasks, one per day.
func (e *Env) AddSubject(t testing.TB, id string, n int) roadmap.Subject {
	t.Helper()
	s := roadmap.Subject{ID: id, Title: "Subject " + id, Summary: "A plan", CreatedAt: CreatedAt}
	for i := 1; i <= n; i++ {
		s.Tasks = append(s.Tasks, roadmap.StudyTask{
			ID:          fmt.Sprintf("day%d-1", i),
			Day:         i,
			Label:       fmt.Sprintf("Topic %d", i),
			Description: fmt.Sprintf("Study topic %d", i),
		})
	}
	if err := e.Repo.AddSubject(context.Background(), s); err != nil {
		t.Fatalf("add subject: %v", err)
	}
	return s
}

// QueueQuiz queues a quiz response of n questions. Question i has
// correct answer i%2.
func (e *Env) QueueQuiz(n int) {
	type q struct {
		ID            int      `json:"id"`
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correctAnswer"`
	}
	var out struct {
		Questions []q `json:"questions"`
	}
	for i := range n {
		out.Questions = append(out.Questions, q{
			ID:            i + 1,
			Question:      fmt.Sprintf("Question %d?", i+1),
			Options:       []string{"Yes", "No", "Maybe"},
			CorrectAnswer: i % 2,
		})
	}
	b, _ := json.Marshal(out)
	e.Mock.AddResponse(llm.MockResponse{Content: b})
}

// QueueRoadmap queues a roadmap response with the given task labels, one
// per day.
func (e *Env) QueueRoadmap(title string, labels ...string) {
	type task struct {
		ID          string `json:"id"`
		Day         int    `json:"day"`
		Label       string `json:"label"`
		Description string `json:"description"`
	}
	out := struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
		Tasks   []task `json:"tasks"`
	}{Title: title, Summary: "Generated plan"}
	for i, l := range labels {
		out.Tasks = append(out.Tasks, task{ID: fmt.Sprintf("day%d-1", i+1), Day: i + 1, Label: l, Description: "Read up on " + l})
	}
	b, _ := json.Marshal(out)
	e.Mock.AddResponse(llm.MockResponse{Content: b})
}

// QueueFailure queues a provider error.
func (e *Env) QueueFailure() {
	e.Mock.AddResponse(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: fmt.Errorf("service unavailable")}})
}

// Exec runs cmd and any commands it batches, returning the resulting
// messages. Spinner ticks are dropped.
func Exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, Exec(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	}
	return []tea.Msg{msg}
}

// Key builds a key press for a named key or a single character.
func Key(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "ctrl+s":
		return tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

// Type sends text one rune at a time.
func Type(update func(tea.Msg), text string) {
	for _, r := range text {
		update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

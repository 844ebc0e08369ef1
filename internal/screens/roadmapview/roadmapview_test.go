package roadmapview

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/router"
	"github.com/abhisek/studyplan/internal/screens/quizscreen"
	st "github.com/abhisek/studyplan/internal/screens/screenstest"
)

func loaded(t *testing.T, env *st.Env, id string) *RoadmapScreen {
	t.Helper()
	s := New(env.Services, id)
	for _, msg := range st.Exec(s.Init()) {
		s.Update(msg)
	}
	return s
}

func TestRoadmap_ShowsTasksAndProgress(t *testing.T) {
	env := st.New(t)
	env.AddSubject(t, "sub_a", 3)
	s := loaded(t, env, "sub_a")

	if s.detail == nil {
		t.Fatal("detail not loaded")
	}
	if s.Title() != "Subject sub_a" {
		t.Errorf("Title() = %q", s.Title())
	}
	view := s.View(100, 40)
	for _, want := range []string{"Topic 1", "Topic 3", "0%", "Study topic 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRoadmap_ToggleWritesThrough(t *testing.T) {
	env := st.New(t)
	env.AddSubject(t, "sub_a", 4)
	s := loaded(t, env, "sub_a")

	s.Update(st.Key("down"))
	_, cmd := s.Update(st.Key("space"))
	msgs := st.Exec(cmd)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d", len(msgs))
	}
	tm, ok := msgs[0].(toggledMsg)
	if !ok || !tm.Done || tm.TaskID != "day2-1" {
		t.Fatalf("unexpected toggle result %#v", msgs[0])
	}
	_, cmd = s.Update(tm)
	for _, msg := range st.Exec(cmd) {
		s.Update(msg)
	}
	if s.detail.Percent != 25 {
		t.Errorf("Percent = %d, want 25", s.detail.Percent)
	}

	prog, err := env.Repo.GetSubjectProgress(context.Background(), "sub_a")
	if err != nil {
		t.Fatal(err)
	}
	if !prog.Has("day2-1") {
		t.Error("toggle not persisted")
	}
}

func TestRoadmap_QuizForTask(t *testing.T) {
	env := st.New(t)
	env.AddSubject(t, "sub_a", 2)
	s := loaded(t, env, "sub_a")

	s.Update(st.Key("down"))
	_, cmd := s.Update(st.Key("q"))
	msgs := st.Exec(cmd)
	push, ok := msgs[0].(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msgs[0])
	}
	qs, ok := push.Screen.(*quizscreen.QuizScreen)
	if !ok {
		t.Fatalf("pushed %T", push.Screen)
	}
	if qs.Title() != "Quiz: Topic 2" {
		t.Errorf("quiz title = %q", qs.Title())
	}
}

func TestRoadmap_ShowsLastQuizResult(t *testing.T) {
	env := st.New(t)
	env.AddSubject(t, "sub_a", 2)
	res, err := roadmap.NewQuizResult(4, 5, time.Date(2030, 3, 7, 10, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Repo.SaveQuizResult(context.Background(), "sub_a", "day1-1", res); err != nil {
		t.Fatal(err)
	}

	view := loaded(t, env, "sub_a").View(100, 40)
	if !strings.Contains(view, "80%") || !strings.Contains(view, "Last quiz: 4/5") {
		t.Errorf("view missing quiz result:\n%s", view)
	}
}

func TestRoadmap_MissingSubjectPops(t *testing.T) {
	env := st.New(t)
	s := New(env.Services, "sub_gone")
	msgs := st.Exec(s.Init())
	_, cmd := s.Update(msgs[0])
	if _, ok := st.Exec(cmd)[0].(router.PopScreenMsg); !ok {
		t.Fatal("expected PopScreenMsg for a missing subject")
	}
}

func TestRoadmap_DeletedWhileOpenPopsOnToggle(t *testing.T) {
	env := st.New(t)
	env.AddSubject(t, "sub_a", 1)
	s := loaded(t, env, "sub_a")

	if err := env.Services.Progress.DeleteSubject(context.Background(), "sub_a"); err != nil {
		t.Fatal(err)
	}
	_, cmd := s.Update(st.Key("space"))
	_, cmd = s.Update(st.Exec(cmd)[0])
	if _, ok := st.Exec(cmd)[0].(router.PopScreenMsg); !ok {
		t.Fatal("expected PopScreenMsg")
	}
}

package dashboard

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyplan/internal/router"
	"github.com/abhisek/studyplan/internal/screen"
	"github.com/abhisek/studyplan/internal/screens/plan"
	"github.com/abhisek/studyplan/internal/screens/quizscreen"
	"github.com/abhisek/studyplan/internal/screens/roadmapview"
	st "github.com/abhisek/studyplan/internal/screens/screenstest"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "login" }
func (s *stubScreen) Title() string                          { return "Log in" }

func loaded(t *testing.T, env *st.Env) *DashboardScreen {
	t.Helper()
	d := New(env.Services, func() screen.Screen { return &stubScreen{} })
	for _, msg := range st.Exec(d.Init()) {
		d.Update(msg)
	}
	if !d.loaded {
		t.Fatal("dashboard did not load")
	}
	return d
}

func navMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	msgs := st.Exec(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	return msgs[0]
}

func TestDashboard_ListsSubjectsWithProgress(t *testing.T) {
	env := st.New(t)
	env.AddSubject(t, "sub_a", 4)
	_, err := env.Services.Progress.ToggleTask(context.Background(), "sub_a", "day1-1")
	if err != nil {
		t.Fatal(err)
	}

	d := loaded(t, env)
	if len(d.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(d.rows))
	}
	view := d.View(100, 30)
	if !strings.Contains(view, "Subject sub_a") {
		t.Error("view missing subject title")
	}
	if !strings.Contains(view, "25%") {
		t.Error("view missing progress")
	}
}

func TestDashboard_EmptyState(t *testing.T) {
	d := loaded(t, st.New(t))
	if !strings.Contains(d.View(100, 30), "No subjects yet") {
		t.Error("expected empty state")
	}
	// Cursor lands on "New study plan" which pushes the plan screen.
	_, cmd := d.Update(st.Key("enter"))
	push, ok := navMsg(t, cmd).(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*plan.PlanScreen); !ok {
		t.Errorf("pushed %T, want *plan.PlanScreen", push.Screen)
	}
}

func TestDashboard_OpenSubject(t *testing.T) {
	env := st.New(t)
	env.AddSubject(t, "sub_a", 2)
	d := loaded(t, env)

	_, cmd := d.Update(st.Key("enter"))
	open, ok := navMsg(t, cmd).(openSubjectMsg)
	if !ok || open.ID != "sub_a" {
		t.Fatalf("expected openSubjectMsg for sub_a, got %#v", open)
	}
	_, cmd = d.Update(open)
	push, ok := navMsg(t, cmd).(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*roadmapview.RoadmapScreen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}
}

func TestDashboard_QuickQuiz(t *testing.T) {
	d := loaded(t, st.New(t))
	d.Update(st.Key("down"))
	_, cmd := d.Update(st.Key("enter"))
	push, ok := navMsg(t, cmd).(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*quizscreen.QuizScreen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}
}

func TestDashboard_DeleteWithConfirm(t *testing.T) {
	env := st.New(t)
	env.AddSubject(t, "sub_a", 2)
	env.AddSubject(t, "sub_b", 2)
	d := loaded(t, env)

	d.Update(st.Key("d"))
	if d.confirm == nil {
		t.Fatal("expected confirm prompt")
	}
	if !strings.Contains(d.View(100, 30), "Delete") {
		t.Error("expected confirm view")
	}

	// "n" keeps the subject.
	d.Update(st.Key("n"))
	if d.confirm != nil {
		t.Fatal("confirm should be dismissed")
	}

	d.Update(st.Key("d"))
	_, cmd := d.Update(st.Key("y"))
	msg := navMsg(t, cmd)
	if del, ok := msg.(deletedMsg); !ok || del.Err != nil {
		t.Fatalf("expected successful deletedMsg, got %#v", msg)
	}
	_, cmd = d.Update(msg)
	for _, m := range st.Exec(cmd) {
		d.Update(m)
	}

	if len(d.rows) != 1 || d.rows[0].Subject.ID != "sub_b" {
		t.Fatalf("rows after delete = %+v", d.rows)
	}
	subs, err := env.Repo.GetSubjects(context.Background())
	if err != nil || len(subs) != 1 {
		t.Fatalf("stored subjects = %d, err %v", len(subs), err)
	}
}

func TestDashboard_DeleteIgnoredOffSubject(t *testing.T) {
	d := loaded(t, st.New(t))
	d.Update(st.Key("d"))
	if d.confirm != nil {
		t.Fatal("delete should need a subject under the cursor")
	}
}

func TestDashboard_Logout(t *testing.T) {
	env := st.New(t)
	ctx := context.Background()
	if err := env.Services.Auth.Login(ctx, "a@b.c", "hunter22"); err != nil {
		t.Fatal(err)
	}
	d := loaded(t, env)

	// Empty list: new plan, quick quiz, log out.
	d.Update(st.Key("down"))
	d.Update(st.Key("down"))
	_, cmd := d.Update(st.Key("enter"))
	msg := navMsg(t, cmd)
	if _, ok := msg.(logoutMsg); !ok {
		t.Fatalf("expected logoutMsg, got %T", msg)
	}
	_, cmd = d.Update(msg)
	reset, ok := navMsg(t, cmd).(router.ResetScreenMsg)
	if !ok {
		t.Fatal("expected ResetScreenMsg")
	}
	if reset.Screen.Title() != "Log in" {
		t.Errorf("reset to %q", reset.Screen.Title())
	}
	if ok, _ := env.Services.Auth.IsAuthenticated(ctx); ok {
		t.Error("still authenticated")
	}
}

func TestDashboard_ResumeReloads(t *testing.T) {
	env := st.New(t)
	d := loaded(t, env)
	env.AddSubject(t, "sub_new", 1)

	for _, msg := range st.Exec(d.Resume()) {
		d.Update(msg)
	}
	if len(d.rows) != 1 {
		t.Fatalf("rows = %d after resume, want 1", len(d.rows))
	}
}

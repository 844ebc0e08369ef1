package progress

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/roadmap"
	"github.com/abhisek/studyplan/internal/store"
)

func setup(t *testing.T) (*Controller, store.StudyRepo) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st.StudyRepo()), st.StudyRepo()
}

func subjectWithTasks(id string, n int) roadmap.Subject {
	s := roadmap.Subject{ID: id, Title: "Subject " + id, Summary: "plan", CreatedAt: time.UnixMilli(1_770_000_000_000)}
	for i := 1; i <= n; i++ {
		s.Tasks = append(s.Tasks, roadmap.StudyTask{
			ID:          fmt.Sprintf("day%d-1", i),
			Day:         i,
			Label:       fmt.Sprintf("Topic %d", i),
			Description: "Read chapter",
		})
	}
	return s
}

func TestToggleTask_IsItsOwnInverse(t *testing.T) {
	c, repo := setup(t)
	ctx := context.Background()
	sub := subjectWithTasks("sub_a", 3)
	require.NoError(t, repo.AddSubject(ctx, sub))
	require.NoError(t, repo.SaveSubjectProgress(ctx, "sub_a", roadmap.NewCompletedSet("day2-1")))

	before, err := repo.GetSubjectProgress(ctx, "sub_a")
	require.NoError(t, err)

	for _, task := range []string{"day1-1", "day2-1"} {
		first, err := c.ToggleTask(ctx, "sub_a", task)
		require.NoError(t, err)
		second, err := c.ToggleTask(ctx, "sub_a", task)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		after, err := repo.GetSubjectProgress(ctx, "sub_a")
		require.NoError(t, err)
		assert.Equal(t, before.IDs(), after.IDs(), "double toggle of %s", task)
	}
}

func TestToggleTask_WriteThrough(t *testing.T) {
	c, repo := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.AddSubject(ctx, subjectWithTasks("sub_a", 2)))

	done, err := c.ToggleTask(ctx, "sub_a", "day1-1")
	require.NoError(t, err)
	assert.True(t, done)

	// A fresh read sees the change without any explicit save.
	prog, err := repo.GetProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"day1-1"}, prog["sub_a"].IDs())
}

func TestToggleTask_NotFound(t *testing.T) {
	c, repo := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.AddSubject(ctx, subjectWithTasks("sub_a", 1)))

	_, err := c.ToggleTask(ctx, "sub_missing", "day1-1")
	assert.True(t, apperr.IsNotFound(err))

	_, err = c.ToggleTask(ctx, "sub_a", "day9-9")
	assert.True(t, apperr.IsNotFound(err))
}

func TestSubject_Detail(t *testing.T) {
	c, repo := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.AddSubject(ctx, subjectWithTasks("sub_a", 2)))
	_, err := c.ToggleTask(ctx, "sub_a", "day2-1")
	require.NoError(t, err)

	res, err := roadmap.NewQuizResult(4, 5, time.UnixMilli(1_770_000_100_000))
	require.NoError(t, err)
	require.NoError(t, repo.SaveQuizResult(ctx, "sub_a", "day1-1", res))

	d, err := c.Subject(ctx, "sub_a")
	require.NoError(t, err)
	assert.Equal(t, 50, d.Percent)
	assert.True(t, d.Completed.Has("day2-1"))
	assert.Equal(t, 80, d.Results["day1-1"].Percentage)

	_, err = c.Subject(ctx, "sub_gone")
	assert.True(t, apperr.IsNotFound(err))
}

func TestOverview(t *testing.T) {
	c, repo := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.AddSubject(ctx, subjectWithTasks("sub_a", 3)))
	require.NoError(t, repo.AddSubject(ctx, subjectWithTasks("sub_b", 0)))
	_, err := c.ToggleTask(ctx, "sub_a", "day1-1")
	require.NoError(t, err)

	rows, err := c.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "sub_a", rows[0].Subject.ID)
	assert.Equal(t, 33, rows[0].Percent)
	assert.Equal(t, 0, rows[1].Percent, "zero tasks reports 0")
}

func TestDeleteSubject_Cascades(t *testing.T) {
	c, repo := setup(t)
	ctx := context.Background()
	require.NoError(t, repo.AddSubject(ctx, subjectWithTasks("sub_a", 2)))
	require.NoError(t, repo.AddSubject(ctx, subjectWithTasks("sub_b", 2)))
	_, err := c.ToggleTask(ctx, "sub_a", "day1-1")
	require.NoError(t, err)
	res, err := roadmap.NewQuizResult(1, 2, time.UnixMilli(1_770_000_100_000))
	require.NoError(t, err)
	require.NoError(t, repo.SaveQuizResult(ctx, "sub_a", "day1-1", res))

	require.NoError(t, c.DeleteSubject(ctx, "sub_a"))

	subs, err := repo.GetSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "sub_b", subs[0].ID)

	prog, err := repo.GetProgress(ctx)
	require.NoError(t, err)
	assert.NotContains(t, prog, "sub_a")

	results, err := repo.GetQuizResults(ctx)
	require.NoError(t, err)
	assert.NotContains(t, results, "sub_a")

	assert.True(t, apperr.IsNotFound(c.DeleteSubject(ctx, "sub_a")))
}

func TestEndToEnd_FourTasks(t *testing.T) {
	c, repo := setup(t)
	ctx := context.Background()
	sub := subjectWithTasks("sub_e2e", 4)
	require.NoError(t, repo.AddSubject(ctx, sub))

	_, err := c.ToggleTask(ctx, sub.ID, sub.Tasks[0].ID)
	require.NoError(t, err)

	pct, err := c.Progress(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, pct)

	require.NoError(t, c.DeleteSubject(ctx, sub.ID))

	subs, err := repo.GetSubjects(ctx)
	require.NoError(t, err)
	for _, s := range subs {
		assert.NotEqual(t, sub.ID, s.ID)
	}
	prog, err := repo.GetProgress(ctx)
	require.NoError(t, err)
	_, ok := prog[sub.ID]
	assert.False(t, ok)
}

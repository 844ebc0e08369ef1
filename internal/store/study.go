package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/roadmap"
)

// studyRepo implements StudyRepo on the typed SQLite schema.
type studyRepo struct {
	db *sql.DB
}

func (r *studyRepo) GetSubjects(ctx context.Context) ([]roadmap.Subject, error) {
	subs, err := selectSubjects(ctx, r.db, nil)
	if err != nil {
		return nil, fmt.Errorf("get subjects: %w", err)
	}
	return subs, nil
}

func (r *studyRepo) GetSubject(ctx context.Context, id string) (roadmap.Subject, error) {
	subs, err := selectSubjects(ctx, r.db, entsql.EQ(colID, id))
	if err != nil {
		return roadmap.Subject{}, fmt.Errorf("get subject: %w", err)
	}
	if len(subs) == 0 {
		return roadmap.Subject{}, &apperr.NotFoundError{Kind: "subject", ID: id}
	}
	return subs[0], nil
}

func (r *studyRepo) AddSubject(ctx context.Context, sub roadmap.Subject) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		pos, err := nextSubjectPosition(ctx, tx)
		if err != nil {
			return err
		}
		if err := insertSubject(ctx, tx, sub, pos, false); err != nil {
			return fmt.Errorf("add subject %s: %w", sub.ID, err)
		}
		return nil
	})
}

func (r *studyRepo) SaveSubjects(ctx context.Context, subs []roadmap.Subject) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		existing, err := subjectIDs(ctx, tx)
		if err != nil {
			return err
		}
		keep := make(map[string]bool, len(subs))
		for _, s := range subs {
			keep[s.ID] = true
		}
		for _, id := range existing {
			if keep[id] {
				continue
			}
			if err := deleteSubject(ctx, tx, id); err != nil {
				return err
			}
		}
		for i, s := range subs {
			if err := insertSubject(ctx, tx, s, i, true); err != nil {
				return fmt.Errorf("save subject %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

func (r *studyRepo) GetProgress(ctx context.Context) (roadmap.Progress, error) {
	ids, err := subjectIDs(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	progress := make(roadmap.Progress, len(ids))
	for _, id := range ids {
		progress[id] = roadmap.CompletedSet{}
	}

	rows, err := query(ctx, r.db, sqlite().
		Select(colSubjectID, colTaskID).
		From(entsql.Table(completedTable)).
		OrderBy(colSubjectID, colID))
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subjectID, taskID string
		if err := rows.Scan(&subjectID, &taskID); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		set, ok := progress[subjectID]
		if !ok {
			set = roadmap.CompletedSet{}
			progress[subjectID] = set
		}
		set[taskID] = struct{}{}
	}
	return progress, rows.Err()
}

func (r *studyRepo) GetSubjectProgress(ctx context.Context, subjectID string) (roadmap.CompletedSet, error) {
	if err := requireSubject(ctx, r.db, subjectID); err != nil {
		return nil, err
	}
	rows, err := query(ctx, r.db, sqlite().
		Select(colTaskID).
		From(entsql.Table(completedTable)).
		Where(entsql.EQ(colSubjectID, subjectID)))
	if err != nil {
		return nil, fmt.Errorf("get subject progress: %w", err)
	}
	defer rows.Close()

	set := roadmap.CompletedSet{}
	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		set[taskID] = struct{}{}
	}
	return set, rows.Err()
}

func (r *studyRepo) SaveProgress(ctx context.Context, p roadmap.Progress) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for subjectID, set := range p {
			if err := requireSubject(ctx, tx, subjectID); err != nil {
				return err
			}
			if err := replaceCompleted(ctx, tx, subjectID, set); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *studyRepo) SaveSubjectProgress(ctx context.Context, subjectID string, done roadmap.CompletedSet) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := requireSubject(ctx, tx, subjectID); err != nil {
			return err
		}
		return replaceCompleted(ctx, tx, subjectID, done)
	})
}

func (r *studyRepo) GetQuizResults(ctx context.Context) (roadmap.QuizResults, error) {
	rows, err := query(ctx, r.db, sqlite().
		Select(colSubjectID, colTaskID, "score", "total", "percentage", "passed", "attempted_at").
		From(entsql.Table(quizResultsTable)).
		OrderBy(colSubjectID, colID))
	if err != nil {
		return nil, fmt.Errorf("get quiz results: %w", err)
	}
	defer rows.Close()

	results := roadmap.QuizResults{}
	for rows.Next() {
		var (
			subjectID, taskID string
			res               roadmap.QuizResult
			attemptedAt       int64
		)
		if err := rows.Scan(&subjectID, &taskID, &res.Score, &res.Total, &res.Percentage, &res.Passed, &attemptedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		res.AttemptedAt = time.UnixMilli(attemptedAt)
		if results[subjectID] == nil {
			results[subjectID] = map[string]roadmap.QuizResult{}
		}
		results[subjectID][taskID] = res
	}
	return results, rows.Err()
}

func (r *studyRepo) SaveQuizResults(ctx context.Context, results roadmap.QuizResults) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for subjectID, byTask := range results {
			if err := requireSubject(ctx, tx, subjectID); err != nil {
				return err
			}
			if err := exec(ctx, tx, sqlite().
				Delete(quizResultsTable).
				Where(entsql.EQ(colSubjectID, subjectID))); err != nil {
				return fmt.Errorf("clear quiz results: %w", err)
			}
			for taskID, res := range byTask {
				if err := upsertQuizResult(ctx, tx, subjectID, taskID, res); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *studyRepo) SaveQuizResult(ctx context.Context, subjectID, taskID string, res roadmap.QuizResult) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := requireSubject(ctx, tx, subjectID); err != nil {
			return err
		}
		return upsertQuizResult(ctx, tx, subjectID, taskID, res)
	})
}

func (r *studyRepo) DeleteSubject(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := requireSubject(ctx, tx, id); err != nil {
			return err
		}
		return deleteSubject(ctx, tx, id)
	})
}

// selectSubjects loads subjects matching where (all when nil) with their tasks.
func selectSubjects(ctx context.Context, e execer, where *entsql.Predicate) ([]roadmap.Subject, error) {
	sel := sqlite().
		Select(colID, "title", "summary", "cover_image", "created_at").
		From(entsql.Table(subjectsTable)).
		OrderBy(colPosition, "created_at")
	if where != nil {
		sel = sel.Where(where)
	}

	rows, err := query(ctx, e, sel)
	if err != nil {
		return nil, err
	}

	var (
		subs  []roadmap.Subject
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			s         roadmap.Subject
			cover     sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Summary, &cover, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		s.CoverImage = cover.String
		s.CreatedAt = time.UnixMilli(createdAt)
		s.Tasks = []roadmap.StudyTask{}
		index[s.ID] = len(subs)
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(subs) == 0 {
		return subs, nil
	}

	ids := make([]any, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.ID)
	}
	taskRows, err := query(ctx, e, sqlite().
		Select(colSubjectID, colTaskID, "day", "label", "description").
		From(entsql.Table(tasksTable)).
		Where(entsql.In(colSubjectID, ids...)).
		OrderBy(colSubjectID, colPosition))
	if err != nil {
		return nil, err
	}
	defer taskRows.Close()

	for taskRows.Next() {
		var (
			subjectID string
			t         roadmap.StudyTask
		)
		if err := taskRows.Scan(&subjectID, &t.ID, &t.Day, &t.Label, &t.Description); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if i, ok := index[subjectID]; ok {
			subs[i].Tasks = append(subs[i].Tasks, t)
		}
	}
	return subs, taskRows.Err()
}

// insertSubject writes the subject row and replaces its tasks. When
// upsert is set an existing row with the same ID is overwritten.
func insertSubject(ctx context.Context, tx *sql.Tx, s roadmap.Subject, position int, upsert bool) error {
	var cover any
	if s.CoverImage != "" {
		cover = s.CoverImage
	}
	ins := sqlite().
		Insert(subjectsTable).
		Columns(colID, "title", "summary", "cover_image", "created_at", colPosition).
		Values(s.ID, s.Title, s.Summary, cover, s.CreatedAt.UnixMilli(), position)
	if upsert {
		ins = ins.OnConflict(entsql.ConflictColumns(colID), entsql.ResolveWithNewValues())
	}
	if err := exec(ctx, tx, ins); err != nil {
		return err
	}

	if err := exec(ctx, tx, sqlite().
		Delete(tasksTable).
		Where(entsql.EQ(colSubjectID, s.ID))); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	if len(s.Tasks) == 0 {
		return nil
	}

	tasks := sqlite().
		Insert(tasksTable).
		Columns(colSubjectID, colTaskID, "day", "label", "description", colPosition)
	for i, t := range s.Tasks {
		tasks = tasks.Values(s.ID, t.ID, t.Day, t.Label, t.Description, i)
	}
	if err := exec(ctx, tx, tasks); err != nil {
		return fmt.Errorf("insert tasks: %w", err)
	}
	return nil
}

// deleteSubject removes the subject and everything keyed by it. The
// foreign keys cascade as well; the explicit deletes keep the operation
// independent of the pragma state.
func deleteSubject(ctx context.Context, tx *sql.Tx, id string) error {
	for _, table := range []string{completedTable, quizResultsTable, tasksTable} {
		if err := exec(ctx, tx, sqlite().
			Delete(table).
			Where(entsql.EQ(colSubjectID, id))); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	if err := exec(ctx, tx, sqlite().
		Delete(subjectsTable).
		Where(entsql.EQ(colID, id))); err != nil {
		return fmt.Errorf("delete subject %s: %w", id, err)
	}
	return nil
}

func replaceCompleted(ctx context.Context, tx *sql.Tx, subjectID string, done roadmap.CompletedSet) error {
	if err := exec(ctx, tx, sqlite().
		Delete(completedTable).
		Where(entsql.EQ(colSubjectID, subjectID))); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	if len(done) == 0 {
		return nil
	}
	ins := sqlite().
		Insert(completedTable).
		Columns(colSubjectID, colTaskID)
	for _, taskID := range done.IDs() {
		ins = ins.Values(subjectID, taskID)
	}
	if err := exec(ctx, tx, ins); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

func upsertQuizResult(ctx context.Context, tx *sql.Tx, subjectID, taskID string, res roadmap.QuizResult) error {
	err := exec(ctx, tx, sqlite().
		Insert(quizResultsTable).
		Columns(colSubjectID, colTaskID, "score", "total", "percentage", "passed", "attempted_at").
		Values(subjectID, taskID, res.Score, res.Total, res.Percentage, res.Passed, res.AttemptedAt.UnixMilli()).
		OnConflict(entsql.ConflictColumns(colSubjectID, colTaskID), entsql.ResolveWithNewValues()))
	if err != nil {
		return fmt.Errorf("save quiz result %s/%s: %w", subjectID, taskID, err)
	}
	return nil
}

func subjectIDs(ctx context.Context, e execer) ([]string, error) {
	rows, err := query(ctx, e, sqlite().
		Select(colID).
		From(entsql.Table(subjectsTable)).
		OrderBy(colPosition, "created_at"))
	if err != nil {
		return nil, fmt.Errorf("list subject ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func requireSubject(ctx context.Context, e execer, id string) error {
	rows, err := query(ctx, e, sqlite().
		Select(colID).
		From(entsql.Table(subjectsTable)).
		Where(entsql.EQ(colID, id)))
	if err != nil {
		return fmt.Errorf("lookup subject: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return &apperr.NotFoundError{Kind: "subject", ID: id}
	}
	return nil
}

func nextSubjectPosition(ctx context.Context, e execer) (int, error) {
	rows, err := query(ctx, e, sqlite().
		Select(entsql.Max(colPosition)).
		From(entsql.Table(subjectsTable)))
	if err != nil {
		return 0, fmt.Errorf("max position: %w", err)
	}
	defer rows.Close()

	var maxPos sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&maxPos); err != nil {
			return 0, err
		}
	}
	if !maxPos.Valid {
		return 0, rows.Err()
	}
	return int(maxPos.Int64) + 1, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/abhisek/studyplan/internal/apperr"
	"github.com/abhisek/studyplan/internal/roadmap"
)

// Document is the portable form of all persisted state. Its keys follow
// the logical store layout: subjects, progress, quiz_results, auth_flag.
type Document struct {
	Version     string              `json:"version"`
	Subjects    []roadmap.Subject   `json:"subjects"`
	Progress    map[string][]string `json:"progress"`
	QuizResults roadmap.QuizResults `json:"quiz_results"`
	AuthFlag    bool                `json:"auth_flag"`
}

// Export snapshots all persisted state into a Document.
func (s *Store) Export(ctx context.Context) (*Document, error) {
	repo := s.StudyRepo()

	subs, err := repo.GetSubjects(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := repo.GetProgress(ctx)
	if err != nil {
		return nil, err
	}
	results, err := repo.GetQuizResults(ctx)
	if err != nil {
		return nil, err
	}
	auth, err := s.SettingsRepo().GetAuthFlag(ctx)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:     SchemaVersion,
		Subjects:    subs,
		Progress:    make(map[string][]string, len(progress)),
		QuizResults: results,
		AuthFlag:    auth,
	}
	if doc.Subjects == nil {
		doc.Subjects = []roadmap.Subject{}
	}
	for id, set := range progress {
		doc.Progress[id] = set.IDs()
	}
	return doc, nil
}

// Import replaces all persisted state with doc in a single transaction.
// Documents from a newer schema version are rejected with ErrSchemaTooNew.
func (s *Store) Import(ctx context.Context, doc *Document) error {
	if err := CheckCompatible(doc.Version); err != nil {
		return err
	}
	if err := doc.validate(); err != nil {
		return err
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, table := range []string{completedTable, quizResultsTable, tasksTable, subjectsTable} {
			if err := exec(ctx, tx, sqlite().Delete(table)); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		for i, sub := range doc.Subjects {
			if err := insertSubject(ctx, tx, sub, i, false); err != nil {
				return fmt.Errorf("import subject %s: %w", sub.ID, err)
			}
		}
		for id, taskIDs := range doc.Progress {
			if err := replaceCompleted(ctx, tx, id, roadmap.NewCompletedSet(taskIDs...)); err != nil {
				return err
			}
		}
		for subjectID, byTask := range doc.QuizResults {
			for taskID, res := range byTask {
				if err := upsertQuizResult(ctx, tx, subjectID, taskID, res); err != nil {
					return err
				}
			}
		}
		return putSetting(ctx, tx, settingAuthFlag, fmt.Sprint(doc.AuthFlag))
	})
}

// validate checks references and quiz results before import.
func (d *Document) validate() error {
	known := make(map[string]bool, len(d.Subjects))
	for _, sub := range d.Subjects {
		if sub.ID == "" {
			return apperr.Validation("subjects", "subject without id")
		}
		if known[sub.ID] {
			return apperr.Validation("subjects", "duplicate subject id %q", sub.ID)
		}
		known[sub.ID] = true
	}
	for id := range d.Progress {
		if !known[id] {
			return &apperr.NotFoundError{Kind: "subject", ID: id}
		}
	}
	for id, byTask := range d.QuizResults {
		if !known[id] {
			return &apperr.NotFoundError{Kind: "subject", ID: id}
		}
		for taskID, res := range byTask {
			want, err := roadmap.NewQuizResult(res.Score, res.Total, res.AttemptedAt)
			if err != nil {
				return apperr.Validation("quiz_results", "%s/%s: %v", id, taskID, err)
			}
			if want.Percentage != res.Percentage || want.Passed != res.Passed {
				return apperr.Validation("quiz_results", "%s/%s: inconsistent percentage or pass state", id, taskID)
			}
		}
	}
	return nil
}

// WriteDocument encodes doc as indented JSON.
func WriteDocument(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadDocument decodes a Document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode export document: %w", err)
	}
	return &doc, nil
}

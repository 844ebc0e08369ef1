// Package roadmap holds the study-plan data model: subjects, their
// day-by-day tasks, completed-task sets and quiz results, plus the pure
// functions that derive progress from them.
package roadmap

import (
	"slices"
	"time"
)

// StudyTask is one scheduled day's study item within a subject.
type StudyTask struct {
	ID          string `json:"id"`
	Day         int    `json:"day"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Subject is a tracked course with its generated roadmap.
type Subject struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Tasks      []StudyTask `json:"tasks"`
	CreatedAt  time.Time   `json:"createdAt"`
	CoverImage string      `json:"coverImage,omitempty"`
}

// Task returns the task with the given ID.
func (s Subject) Task(id string) (StudyTask, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return StudyTask{}, false
}

// TaskIDs returns the subject's task IDs in roadmap order.
func (s Subject) TaskIDs() []string {
	ids := make([]string, len(s.Tasks))
	for i, t := range s.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// CompletedSet is the set of task IDs marked done for one subject.
type CompletedSet map[string]struct{}

// NewCompletedSet builds a set from the given task IDs.
func NewCompletedSet(ids ...string) CompletedSet {
	set := make(CompletedSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (c CompletedSet) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Toggle flips membership of id and reports whether it is now present.
func (c CompletedSet) Toggle(id string) bool {
	if c.Has(id) {
		delete(c, id)
		return false
	}
	c[id] = struct{}{}
	return true
}

// IDs returns the members in sorted order.
func (c CompletedSet) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clone returns an independent copy of the set.
func (c CompletedSet) Clone() CompletedSet {
	out := make(CompletedSet, len(c))
	for id := range c {
		out[id] = struct{}{}
	}
	return out
}

// Progress maps subject ID to its completed-task set.
type Progress map[string]CompletedSet

// QuizResults maps subject ID to task ID to the latest quiz result.
type QuizResults map[string]map[string]QuizResult

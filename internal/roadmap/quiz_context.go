package roadmap

import (
	"fmt"
	"path/filepath"
	"strings"
)

// QuizContext returns the quiz topic and reference text used when a quiz
// is launched from a roadmap task.
func QuizContext(s Subject, t StudyTask) (topic, reference string) {
	reference = fmt.Sprintf("Context: This is for Day %d of study for %s. Focus: %s",
		t.Day, s.Title, t.Description)
	return t.Label, reference
}

// TopicFromFilename derives a quiz topic from an uploaded file name:
// the extension is dropped and underscores become spaces.
func TopicFromFilename(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
}

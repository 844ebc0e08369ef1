package quizscreen

import "github.com/abhisek/studyplan/internal/roadmap"

// loadedMsg is sent when question generation finishes.
type loadedMsg struct {
	Err error
}

// submittedMsg is sent when the quiz has been scored and saved.
type submittedMsg struct {
	Result roadmap.QuizResult
	Err    error
}

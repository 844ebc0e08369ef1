package roadmap

// QuizSize is the number of questions requested per quiz.
const QuizSize = 5

// Question is one generated multiple-choice question. Questions live only
// for a single quiz session and are never persisted.
type Question struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// ValidOption reports whether i indexes one of the question's options.
func (q Question) ValidOption(i int) bool {
	return i >= 0 && i < len(q.Options)
}

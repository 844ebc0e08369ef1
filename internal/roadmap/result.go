package roadmap

import (
	"fmt"
	"time"
)

// PassPercentage is the minimum percentage for a passed quiz.
const PassPercentage = 60

// QuizResult is the scored outcome of a submitted quiz.
type QuizResult struct {
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	Percentage  int       `json:"percentage"`
	Passed      bool      `json:"passed"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

// NewQuizResult derives percentage and pass state from score and total.
func NewQuizResult(score, total int, at time.Time) (QuizResult, error) {
	if total <= 0 {
		return QuizResult{}, fmt.Errorf("quiz total must be positive, got %d", total)
	}
	if score < 0 || score > total {
		return QuizResult{}, fmt.Errorf("quiz score %d out of range [0, %d]", score, total)
	}
	pct := Percent(score, total)
	return QuizResult{
		Score:       score,
		Total:       total,
		Percentage:  pct,
		Passed:      pct >= PassPercentage,
		AttemptedAt: at,
	}, nil
}

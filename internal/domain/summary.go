package domain

import "math"

// Summary is the score card shown when a run completes.
type Summary struct {
	Points           int `json:"points"`
	MaxPoints        int `json:"maxPoints"`
	Percentage       int `json:"percentage"`
	Correct          int `json:"correct"`
	Wrong            int `json:"wrong"`
	Unanswered       int `json:"unanswered"`
	Questions        int `json:"questions"`
	MarksPerQuestion int `json:"marksPerQuestion"`
}

// Summarize builds the score card for a run of n questions.
func Summarize(score Score, n, marksPerQuestion int) Summary {
	maxPoints := n * marksPerQuestion
	percentage := 0
	if maxPoints > 0 {
		percentage = int(math.Round(100 * float64(score.Points) / float64(maxPoints)))
	}
	return Summary{
		Points:           score.Points,
		MaxPoints:        maxPoints,
		Percentage:       percentage,
		Correct:          score.Correct,
		Wrong:            score.Wrong,
		Unanswered:       score.Unanswered,
		Questions:        n,
		MarksPerQuestion: marksPerQuestion,
	}
}

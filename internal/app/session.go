package app

import "slide-quiz/internal/domain"

// Session is the mutable state of one run: position, shuffled option orders,
// answer records and score. The Engine owns it and serializes access.
type Session struct {
	set      domain.QuestionSet
	marks    int
	orders   [][]int
	answers  []domain.AnswerRecord
	score    domain.Score
	position int
}

func newSession(set domain.QuestionSet, perm Permuter, marksPerQuestion int) *Session {
	orders := make([][]int, set.Len())
	for i, q := range set.Questions {
		orders[i] = perm.Perm(len(q.Options))
	}
	return &Session{
		set:     set,
		marks:   marksPerQuestion,
		orders:  orders,
		answers: make([]domain.AnswerRecord, set.Len()),
	}
}

// question returns the question shown on slide i (1-based).
func (s *Session) question(i int) domain.Question {
	return s.set.Questions[i-1]
}

// displayOptions returns the option texts of slide i in display order.
func (s *Session) displayOptions(i int) []string {
	q := s.question(i)
	order := s.orders[i-1]
	options := make([]string, len(order))
	for pos, original := range order {
		options[pos] = q.Options[original]
	}
	return options
}

// positionOf returns the display position of an original option index.
func (s *Session) positionOf(i, original int) int {
	for pos, idx := range s.orders[i-1] {
		if idx == original {
			return pos
		}
	}
	return -1
}

// answer records the option shown at position on slide i. It reports false
// when the question already has a record.
func (s *Session) answer(i, position int) (domain.AnswerRecord, bool) {
	rec := &s.answers[i-1]
	if rec.Resolved {
		return *rec, false
	}
	original := s.orders[i-1][position]
	correct := original == s.question(i).Correct
	*rec = domain.AnswerRecord{
		Resolved: true,
		Option:   original,
		Position: position,
		Correct:  correct,
	}
	if correct {
		s.score.Correct++
		s.score.Points += s.marks
	} else {
		s.score.Wrong++
	}
	return *rec, true
}

// timeout records slide i as unanswered. It reports false when the question
// already has a record.
func (s *Session) timeout(i int) bool {
	rec := &s.answers[i-1]
	if rec.Resolved {
		return false
	}
	*rec = domain.AnswerRecord{
		Resolved: true,
		Option:   domain.Unanswered,
		Position: -1,
		TimedOut: true,
	}
	s.score.Wrong++
	s.score.Unanswered++
	return true
}

func (s *Session) summary() domain.Summary {
	return domain.Summarize(s.score, s.set.Len(), s.marks)
}

func (s *Session) snapshotOrders() [][]int {
	out := make([][]int, len(s.orders))
	for i, order := range s.orders {
		out[i] = append([]int(nil), order...)
	}
	return out
}

package domain

// Question models a multiple-choice item with exactly one correct option.
// Field names follow the quiz-data documents the runner was built around.
type Question struct {
	Prompt  string   `json:"question" yaml:"question" validate:"required"`
	Options []string `json:"answers" yaml:"answers" validate:"min=2,dive,required"`
	Correct int      `json:"correctAnswer" yaml:"correctAnswer" validate:"gte=0"`
}

// QuestionSet is the ordered list of questions for one topic.
type QuestionSet struct {
	Topic     string     `json:"topic" yaml:"topic"`
	Questions []Question `json:"questions" yaml:"questions" validate:"required,min=1,dive"`
}

// Len returns the number of questions in the set.
func (s QuestionSet) Len() int {
	return len(s.Questions)
}

// Unanswered is recorded as the chosen option when a question times out.
const Unanswered = -1

// AnswerRecord is the outcome of one question. The zero value means the
// question has not been reached yet.
type AnswerRecord struct {
	Resolved bool `json:"resolved"`
	Option   int  `json:"option"`   // original option index, or Unanswered
	Position int  `json:"position"` // display position, -1 on timeout
	TimedOut bool `json:"timedOut"`
	Correct  bool `json:"correct"`
}

// Score holds the running counters of a quiz run.
type Score struct {
	Points     int `json:"points"`
	Correct    int `json:"correct"`
	Wrong      int `json:"wrong"`
	Unanswered int `json:"unanswered"` // timeouts, also counted in Wrong
}

// MarkState is the visual state applied to a displayed option.
type MarkState int

const (
	MarkSelected MarkState = iota
	MarkCorrect
	MarkIncorrect
)

func (m MarkState) String() string {
	switch m {
	case MarkSelected:
		return "selected"
	case MarkCorrect:
		return "correct"
	case MarkIncorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// MarshalText lets MarkState travel as a string in JSON payloads.
func (m MarkState) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTopicNotFound is returned when no question set exists for a topic.
	ErrTopicNotFound = errors.New("quiz topic not found")
	// ErrMalformedQuestionSet indicates the question document could not be used.
	ErrMalformedQuestionSet = errors.New("malformed question set")
	// ErrNoQuestionSet is returned when a run is started before a successful load.
	ErrNoQuestionSet = errors.New("no question set loaded")
	// ErrNoActiveQuestion is returned for selections outside an open question.
	ErrNoActiveQuestion = errors.New("no question awaiting an answer")
	// ErrAlreadyResolved is returned for a second selection on the same question.
	ErrAlreadyResolved = errors.New("question already resolved")
	// ErrInvalidOption indicates a display position outside the option list.
	ErrInvalidOption = errors.New("option position out of range")
	// ErrRunClosed is returned once an engine has been shut down.
	ErrRunClosed = errors.New("quiz run closed")
	// ErrRunNotFound is returned when a run ID is not registered.
	ErrRunNotFound = errors.New("quiz run not found")
)

// LoadError reports a failed question set load. The run stays on the landing
// slide when one is returned.
type LoadError struct {
	Topic string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load quiz %q: %v", e.Topic, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps err for topic unless it already is a LoadError.
func NewLoadError(topic string, err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	return &LoadError{Topic: topic, Err: err}
}

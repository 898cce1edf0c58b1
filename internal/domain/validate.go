package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var questionValidator = newQuestionValidator()

func newQuestionValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		q := sl.Current().Interface().(Question)
		if q.Correct >= len(q.Options) {
			sl.ReportError(q.Correct, "Correct", "correctAnswer", "option_index", "")
		}
	}, Question{})
	return v
}

// Validate reports whether the set can be played: at least one question, each
// with a prompt, two or more non-empty options and a correct index inside the
// option list.
func (s QuestionSet) Validate() error {
	err := questionValidator.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrMalformedQuestionSet, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %v", ErrMalformedQuestionSet, err)
}

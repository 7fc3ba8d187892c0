package quiz

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Question set validation errors, reported at the ingestion boundary.
var (
	ErrEmptyQuestionSet = errors.New("question set is empty")
	ErrTooFewOptions    = errors.New("question needs at least two options")
	ErrAnswerNotOption  = errors.New("correct answer is not one of the options")
)

// Question is a single multiple-choice item. Questions are generated by the
// analysis collaborator and are immutable for the lifetime of a session.
type Question struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
	Answer       string    `json:"answer"`
}

// ValidateQuestions checks the structural invariants of a question set:
// non-empty, every question has at least two options, and every correct
// answer is a member of its own options. Option strings are compared
// verbatim, with no trimming or case folding.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return ErrEmptyQuestionSet
	}

	for i, q := range questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d (%s): %w", i, q.ID, ErrTooFewOptions)
		}
		if !containsOption(q.Options, q.Answer) {
			return fmt.Errorf("question %d (%s): %w", i, q.ID, ErrAnswerNotOption)
		}
	}
	return nil
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty is the authoring-assigned difficulty tier of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Option labels for the four answer choices.
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// ValidOptionLabel reports whether label is one of A-D.
func ValidOptionLabel(label string) bool {
	switch label {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Default and bounds for the per-question time allotment (seconds).
const (
	DefaultQuestionSeconds = 60
	MinQuestionSeconds     = 30
	MaxQuestionSeconds     = 300
)

// Question represents a single exam item. The engine only reads questions;
// authoring happens in an external collaborator.
type Question struct {
	ID               uuid.UUID  `json:"id"`
	Stem             string     `json:"stem"`
	OptionA          string     `json:"option_a"`
	OptionB          string     `json:"option_b"`
	OptionC          string     `json:"option_c"`
	OptionD          string     `json:"option_d"`
	CorrectOption    string     `json:"correct_option"`
	Explanation      *string    `json:"explanation,omitempty"`
	Category         *string    `json:"category,omitempty"`
	Difficulty       Difficulty `json:"difficulty"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
	Active           bool       `json:"active"`
	CourseID         *uuid.UUID `json:"course_id,omitempty"`
	Grade            *Grade     `json:"grade,omitempty"`
	BankID           *uuid.UUID `json:"bank_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Option returns the option text for a given label, or "" for an unknown label.
func (q *Question) Option(label string) string {
	switch label {
	case OptionA:
		return q.OptionA
	case OptionB:
		return q.OptionB
	case OptionC:
		return q.OptionC
	case OptionD:
		return q.OptionD
	}
	return ""
}

// QuestionForLearner is a question as delivered to a learner taking an exam:
// no correct option, no explanation.
type QuestionForLearner struct {
	ID               uuid.UUID `json:"id"`
	Stem             string    `json:"stem"`
	OptionA          string    `json:"option_a"`
	OptionB          string    `json:"option_b"`
	OptionC          string    `json:"option_c"`
	OptionD          string    `json:"option_d"`
	Category         *string   `json:"category,omitempty"`
	TimeLimitSeconds int       `json:"time_limit_seconds"`
}

// ForLearner strips grading fields from a question.
func (q *Question) ForLearner() QuestionForLearner {
	return QuestionForLearner{
		ID:               q.ID,
		Stem:             q.Stem,
		OptionA:          q.OptionA,
		OptionB:          q.OptionB,
		OptionC:          q.OptionC,
		OptionD:          q.OptionD,
		Category:         q.Category,
		TimeLimitSeconds: q.TimeLimitSeconds,
	}
}

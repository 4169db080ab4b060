package model

import "github.com/google/uuid"

// ExamAnswer is the durable record of one question's outcome within a
// completed session. Rows are created in bulk at submission and are
// immutable afterward; one row exists per (session, question), including
// unanswered questions.
type ExamAnswer struct {
	SessionID   uuid.UUID `json:"session_id"`
	QuestionID  uuid.UUID `json:"question_id"`
	ChosenLabel *string   `json:"chosen_label,omitempty"`
	IsCorrect   bool      `json:"is_correct"`
}

// ReviewItem is one entry of the post-exam review: the question joined with
// the learner's outcome.
type ReviewItem struct {
	QuestionID    uuid.UUID `json:"question_id"`
	Stem          string    `json:"stem"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	ChosenLabel   *string   `json:"chosen_label,omitempty"`
	CorrectOption string    `json:"correct_option"`
	IsCorrect     bool      `json:"is_correct"`
	Explanation   *string   `json:"explanation,omitempty"`
	Category      *string   `json:"category,omitempty"`
}

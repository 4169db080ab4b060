package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states. Transitions are forward-only:
// IN_PROGRESS → COMPLETED, exactly once. Abandoned sessions simply never
// transition; there is no persisted abandoned state.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
)

// Scope selects which question pool a session draws from: a course ID,
// ScopeGeneral for questions with no owning course, or ScopeAll for every
// eligible question.
type Scope string

const (
	ScopeAll     Scope = ""
	ScopeGeneral Scope = "general"
)

// CourseID returns the course UUID for a course-bound scope.
func (s Scope) CourseID() (uuid.UUID, bool) {
	if s == ScopeAll || s == ScopeGeneral {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(string(s))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// ExamSession represents one timed attempt, from start to completion or
// abandonment. Every start creates a fresh session; sessions are never
// reused or resumed.
type ExamSession struct {
	ID             uuid.UUID     `json:"id"`
	LearnerID      int           `json:"learner_id"`
	LearnerEmail   string        `json:"learner_email"`
	Scope          Scope         `json:"scope"`
	StartedAt      time.Time     `json:"started_at"`
	TotalQuestions int           `json:"total_questions"`
	Status         SessionStatus `json:"status"`
	FinishedAt     *time.Time    `json:"finished_at,omitempty"`
	ElapsedMinutes *int          `json:"elapsed_minutes,omitempty"`
	CorrectCount   *int          `json:"correct_count,omitempty"`
	ScorePercent   *float64      `json:"score_percent,omitempty"`
}

// StartExamRequest is the payload for starting a new exam session.
type StartExamRequest struct {
	Scope string `json:"scope" binding:"omitempty,max=64"`
}

// CaptureAnswerRequest is the payload for capturing one answer selection.
// The label is not validated against the question here; validation happens
// at scoring time.
type CaptureAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Label      string `json:"label" binding:"required,min=1,max=4"`
}

// ToggleFlagRequest is the payload for toggling a question's review flag.
type ToggleFlagRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
}

// SessionState is the reload view of an in-progress session: captured
// answers, review flags, and the remaining seconds of the fixed budget.
type SessionState struct {
	SessionID        uuid.UUID         `json:"session_id"`
	Status           SessionStatus     `json:"status"`
	TotalQuestions   int               `json:"total_questions"`
	CapturedAnswers  map[string]string `json:"captured_answers"`
	FlaggedQuestions map[string]bool   `json:"flagged_questions"`
	RemainingSeconds float64           `json:"remaining_seconds"`
}

// ExamPaper is the learner-facing session payload: the ordered question set
// plus display-only pacing estimates.
type ExamPaper struct {
	SessionID        uuid.UUID            `json:"session_id"`
	Questions        []QuestionForLearner `json:"questions"`
	PerQuestionSecs  []int                `json:"per_question_seconds"`
	AvgQuestionSecs  float64              `json:"avg_question_seconds"`
	BudgetMinutes    int                  `json:"budget_minutes"`
	RemainingSeconds float64              `json:"remaining_seconds"`
	TotalQuestions   int                  `json:"total_questions"`
}

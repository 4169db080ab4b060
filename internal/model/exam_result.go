package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamResult is the durable, queryable outcome of one completed session.
// Created atomically with the session's completion; read-only afterward.
// CorrectCount + IncorrectCount always equals TotalQuestions, and Passed is
// true exactly when ScorePercent meets the configured threshold.
type ExamResult struct {
	SessionID      uuid.UUID `json:"session_id"`
	LearnerID      int       `json:"learner_id"`
	LearnerEmail   string    `json:"learner_email"`
	TotalQuestions int       `json:"total_questions"`
	CorrectCount   int       `json:"correct_count"`
	IncorrectCount int       `json:"incorrect_count"`
	ScorePercent   float64   `json:"score_percent"`
	Passed         bool      `json:"passed"`
	ElapsedMinutes int       `json:"elapsed_minutes"`
	CompletedAt    time.Time `json:"completed_at"`
}

// CategoryStat is one bucket of the per-category performance breakdown,
// derived on demand from answers joined with question categories. Questions
// without a category fall into the "" bucket.
type CategoryStat struct {
	Category string `json:"category"`
	Total    int    `json:"total"`
	Correct  int    `json:"correct"`
}

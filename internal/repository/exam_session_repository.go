package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/scoring"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamSessionRepository handles exam session data access.
type ExamSessionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSessionRepository creates a new ExamSessionRepository.
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{pool: pool}
}

const sessionColumns = `id, learner_id, learner_email, scope, started_at, total_questions,
	 status, finished_at, elapsed_minutes, correct_count, score_percent`

func scanSession(row interface{ Scan(...any) error }, s *model.ExamSession) error {
	return row.Scan(
		&s.ID, &s.LearnerID, &s.LearnerEmail, &s.Scope, &s.StartedAt, &s.TotalQuestions,
		&s.Status, &s.FinishedAt, &s.ElapsedMinutes, &s.CorrectCount, &s.ScorePercent,
	)
}

// Create inserts a new exam session. Every start is a fresh, independent
// attempt; there is no conflict check against existing in-progress sessions.
func (r *ExamSessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (learner_id, learner_email, scope, total_questions, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, started_at`,
		s.LearnerID, s.LearnerEmail, s.Scope, s.TotalQuestions, model.SessionStatusInProgress,
	).Scan(&s.ID, &s.StartedAt)
}

// GetByID retrieves a session.
func (r *ExamSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id,
	), s)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CompleteWithResult commits a submission: inserts all answer rows, flips the
// session to COMPLETED, and creates the result row — atomically. The session
// update is guarded on status so a concurrent double submit loses the race
// and reports pgx.ErrNoRows.
func (r *ExamSessionRepository) CompleteWithResult(
	ctx context.Context,
	sessionID uuid.UUID,
	outcomes []scoring.Outcome,
	result *model.ExamResult,
) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	// Forward-only transition, exactly once.
	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET status = $1, finished_at = $2, elapsed_minutes = $3,
		     correct_count = $4, score_percent = $5
		 WHERE id = $6 AND status = $7
		 RETURNING id`,
		model.SessionStatusCompleted, now, result.ElapsedMinutes,
		result.CorrectCount, result.ScorePercent,
		sessionID, model.SessionStatusInProgress,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range outcomes {
		batch.Queue(
			`INSERT INTO exam_answers (session_id, question_id, chosen_label, is_correct)
			 VALUES ($1, $2, $3, $4)`,
			sessionID, outcomes[i].QuestionID, outcomes[i].ChosenLabel, outcomes[i].IsCorrect,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert answers: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO exam_results (session_id, learner_id, learner_email, total_questions,
		 correct_count, incorrect_count, score_percent, passed, elapsed_minutes, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING completed_at`,
		sessionID, result.LearnerID, result.LearnerEmail, result.TotalQuestions,
		result.CorrectCount, result.IncorrectCount, result.ScorePercent, result.Passed,
		result.ElapsedMinutes, now,
	).Scan(&result.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	return tx.Commit(ctx)
}

// ListOverdue retrieves in-progress sessions started before the cutoff.
// Used by the reaper sweep.
func (r *ExamSessionRepository) ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions
		 WHERE status = $1 AND started_at < $2
		 ORDER BY started_at
		 LIMIT $3`,
		model.SessionStatusInProgress, cutoff, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		var s model.ExamSession
		if err := scanSession(rows, &s); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

package repository

import (
	"context"
	"fmt"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultFilter narrows the staff results listing.
type ResultFilter struct {
	Grade  *model.Grade
	Passed *bool
	Scope  *model.Scope
}

// ResultRow combines a result with learner display data for staff listings.
type ResultRow struct {
	model.ExamResult
	LearnerName  string      `json:"learner_name"`
	LearnerGrade model.Grade `json:"learner_grade"`
}

const resultColumns = `session_id, learner_id, learner_email, total_questions, correct_count,
	 incorrect_count, score_percent, passed, elapsed_minutes, completed_at`

// ExamResultRepository reads persisted exam results. Rows are written only
// inside the submission commit.
type ExamResultRepository struct {
	pool *pgxpool.Pool
}

// NewExamResultRepository creates a new ExamResultRepository.
func NewExamResultRepository(pool *pgxpool.Pool) *ExamResultRepository {
	return &ExamResultRepository{pool: pool}
}

func scanResult(row interface{ Scan(...any) error }, res *model.ExamResult) error {
	return row.Scan(
		&res.SessionID, &res.LearnerID, &res.LearnerEmail, &res.TotalQuestions, &res.CorrectCount,
		&res.IncorrectCount, &res.ScorePercent, &res.Passed, &res.ElapsedMinutes, &res.CompletedAt,
	)
}

// GetBySession retrieves the result for a session, if the session completed.
func (r *ExamResultRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	err := scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM exam_results WHERE session_id = $1`, sessionID,
	), res)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByLearner retrieves a learner's own results, newest first.
func (r *ExamResultRepository) ListByLearner(ctx context.Context, learnerID int) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM exam_results
		 WHERE learner_id = $1
		 ORDER BY completed_at DESC`, learnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		var res model.ExamResult
		if err := scanResult(rows, &res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// List retrieves results across learners with optional filters and
// pagination, for the instructor surface.
func (r *ExamResultRepository) List(ctx context.Context, page, perPage int, filter ResultFilter) ([]ResultRow, int64, error) {
	offset := (page - 1) * perPage

	baseQuery := `
		FROM exam_results res
		JOIN exam_sessions s ON s.id = res.session_id
		JOIN learners l ON l.id = res.learner_id
		WHERE TRUE
	`
	args := []any{}

	if filter.Grade != nil {
		args = append(args, *filter.Grade)
		baseQuery += fmt.Sprintf(" AND l.grade = $%d", len(args))
	}
	if filter.Passed != nil {
		args = append(args, *filter.Passed)
		baseQuery += fmt.Sprintf(" AND res.passed = $%d", len(args))
	}
	if filter.Scope != nil {
		args = append(args, *filter.Scope)
		baseQuery += fmt.Sprintf(" AND s.scope = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT res.session_id, res.learner_id, res.learner_email, res.total_questions,
		       res.correct_count, res.incorrect_count, res.score_percent, res.passed,
		       res.elapsed_minutes, res.completed_at, l.name, l.grade
		` + baseQuery + `
		ORDER BY res.completed_at DESC
		LIMIT $` + fmt.Sprintf("%d", len(args)+1) + ` OFFSET $` + fmt.Sprintf("%d", len(args)+2)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []ResultRow
	for rows.Next() {
		var row ResultRow
		if err := rows.Scan(
			&row.SessionID, &row.LearnerID, &row.LearnerEmail, &row.TotalQuestions,
			&row.CorrectCount, &row.IncorrectCount, &row.ScorePercent, &row.Passed,
			&row.ElapsedMinutes, &row.CompletedAt, &row.LearnerName, &row.LearnerGrade,
		); err != nil {
			return nil, 0, err
		}
		results = append(results, row)
	}

	return results, total, rows.Err()
}

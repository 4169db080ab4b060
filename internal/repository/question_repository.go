package repository

import (
	"context"
	"fmt"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const questionColumns = `id, stem, option_a, option_b, option_c, option_d, correct_option,
	 explanation, category, difficulty, time_limit_seconds, active, course_id, grade, bank_id, created_at`

// QuestionRepository handles read access to the question pool. Authoring is
// an external collaborator; the engine never mutates questions.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row interface{ Scan(...any) error }, q *model.Question) error {
	return row.Scan(
		&q.ID, &q.Stem, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption,
		&q.Explanation, &q.Category, &q.Difficulty, &q.TimeLimitSeconds, &q.Active,
		&q.CourseID, &q.Grade, &q.BankID, &q.CreatedAt,
	)
}

// ListEligible retrieves the active questions matching the learner's grade
// and the requested scope. A question with NULL grade is visible to every
// grade; grade == nil applies no grade filter (staff tooling).
// Ordering is stable (created_at, id) so per-session shuffles are
// reproducible from the same seed.
func (r *QuestionRepository) ListEligible(ctx context.Context, grade *model.Grade, scope model.Scope) ([]model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE active = TRUE`
	args := []any{}

	if grade != nil {
		args = append(args, *grade)
		query += fmt.Sprintf(" AND (grade IS NULL OR grade = $%d)", len(args))
	}

	switch scope {
	case model.ScopeAll:
		// No course filter.
	case model.ScopeGeneral:
		query += " AND course_id IS NULL"
	default:
		courseID, ok := scope.CourseID()
		if !ok {
			return nil, fmt.Errorf("invalid scope %q", scope)
		}
		args = append(args, courseID)
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}

	query += " ORDER BY created_at, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ListByIDs retrieves questions by ID. The result preserves the order of the
// ids argument; missing IDs are skipped.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]model.Question, len(ids))
	for rows.Next() {
		var q model.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, err
		}
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	questions := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// Create inserts a new question. Used by the seeder, not the engine.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (stem, option_a, option_b, option_c, option_d, correct_option,
		 explanation, category, difficulty, time_limit_seconds, active, course_id, grade, bank_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at`,
		q.Stem, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption,
		q.Explanation, q.Category, q.Difficulty, q.TimeLimitSeconds, q.Active,
		q.CourseID, q.Grade, q.BankID,
	).Scan(&q.ID, &q.CreatedAt)
}

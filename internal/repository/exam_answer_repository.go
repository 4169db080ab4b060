package repository

import (
	"context"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExamAnswerRepository reads persisted answer rows. Rows are written only
// inside the submission commit (see ExamSessionRepository.CompleteWithResult)
// and are immutable afterward.
type ExamAnswerRepository struct {
	pool *pgxpool.Pool
}

// NewExamAnswerRepository creates a new ExamAnswerRepository.
func NewExamAnswerRepository(pool *pgxpool.Pool) *ExamAnswerRepository {
	return &ExamAnswerRepository{pool: pool}
}

// ListReviewBySession retrieves the per-question review for a completed
// session: each answer row joined with its question. Read-only, no
// recomputation.
func (r *ExamAnswerRepository) ListReviewBySession(ctx context.Context, sessionID uuid.UUID) ([]model.ReviewItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.question_id, q.stem, q.option_a, q.option_b, q.option_c, q.option_d,
		        a.chosen_label, q.correct_option, a.is_correct, q.explanation, q.category
		 FROM exam_answers a
		 JOIN questions q ON q.id = a.question_id
		 WHERE a.session_id = $1
		 ORDER BY q.created_at, q.id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.ReviewItem
	for rows.Next() {
		var it model.ReviewItem
		if err := rows.Scan(
			&it.QuestionID, &it.Stem, &it.OptionA, &it.OptionB, &it.OptionC, &it.OptionD,
			&it.ChosenLabel, &it.CorrectOption, &it.IsCorrect, &it.Explanation, &it.Category,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

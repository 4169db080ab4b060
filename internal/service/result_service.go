package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/repository"
	"github.com/careprep/careprep-backend/internal/scoring"
	"github.com/google/uuid"
)

// ErrResultNotFound covers a missing result and a result owned by another
// learner, indistinguishably.
var ErrResultNotFound = errors.New("exam result not found")

// ResultStore is the persistence contract for committed results.
type ResultStore interface {
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*model.ExamResult, error)
	ListByLearner(ctx context.Context, learnerID int) ([]model.ExamResult, error)
	List(ctx context.Context, page, perPage int, filter repository.ResultFilter) ([]repository.ResultRow, int64, error)
}

// ReviewStore loads the per-question review rows for a completed session.
type ReviewStore interface {
	ListReviewBySession(ctx context.Context, sessionID uuid.UUID) ([]model.ReviewItem, error)
}

// ResultDetail is a committed result enriched with its category breakdown.
type ResultDetail struct {
	Result     *model.ExamResult    `json:"result"`
	Categories []model.CategoryStat `json:"categories"`
}

// ResultService serves committed results: learner history, per-session
// detail and review, and the staff-facing result listing.
type ResultService struct {
	results ResultStore
	reviews ReviewStore
}

// NewResultService creates a new ResultService.
func NewResultService(results ResultStore, reviews ReviewStore) *ResultService {
	return &ResultService{results: results, reviews: reviews}
}

// GetDetail returns one result with its category breakdown, owner-scoped.
// Pass learnerID 0 to skip the ownership check (staff access).
func (s *ResultService) GetDetail(ctx context.Context, learnerID int, sessionID uuid.UUID) (*ResultDetail, error) {
	result, err := s.ownedResult(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}

	items, err := s.reviews.ListReviewBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load review rows: %w", err)
	}

	return &ResultDetail{
		Result:     result,
		Categories: scoring.Breakdown(items),
	}, nil
}

// GetReview returns the per-question review for a completed session,
// owner-scoped. Correct answers and explanations are only ever exposed here,
// after completion.
func (s *ResultService) GetReview(ctx context.Context, learnerID int, sessionID uuid.UUID) ([]model.ReviewItem, error) {
	if _, err := s.ownedResult(ctx, learnerID, sessionID); err != nil {
		return nil, err
	}

	items, err := s.reviews.ListReviewBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load review rows: %w", err)
	}
	return items, nil
}

// ListForLearner returns the learner's completed attempts, newest first.
func (s *ResultService) ListForLearner(ctx context.Context, learnerID int) ([]model.ExamResult, error) {
	results, err := s.results.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list learner results: %w", err)
	}
	return results, nil
}

// List is the staff view: paginated results across all learners with
// optional grade, pass, and scope filters.
func (s *ResultService) List(ctx context.Context, page, perPage int, filter repository.ResultFilter) ([]repository.ResultRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	rows, total, err := s.results.List(ctx, page, perPage, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}
	return rows, total, nil
}

func (s *ResultService) ownedResult(ctx context.Context, learnerID int, sessionID uuid.UUID) (*model.ExamResult, error) {
	result, err := s.results.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResultNotFound, err)
	}
	if learnerID != 0 && result.LearnerID != learnerID {
		return nil, ErrResultNotFound
	}
	return result, nil
}

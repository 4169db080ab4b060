package service

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
)

// Domain errors of the exam engine.
var (
	ErrNoQuestionsAvailable = errors.New("no eligible questions for this selection")
	ErrInvalidScope         = errors.New("invalid exam scope")
)

// QuestionSource is the read contract the resolver needs from the store.
type QuestionSource interface {
	ListEligible(ctx context.Context, grade *model.Grade, scope model.Scope) ([]model.Question, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error)
}

// Pool is an eligible question set plus display-only pacing estimates.
// Session timing uses the fixed overall budget, never these allotments.
type Pool struct {
	Questions       []model.Question
	PerQuestionSecs []int
	AvgSeconds      float64
}

// PoolService resolves the eligible question pool for a learner and scope.
type PoolService struct {
	questions QuestionSource
}

// NewPoolService creates a new PoolService.
func NewPoolService(questions QuestionSource) *PoolService {
	return &PoolService{questions: questions}
}

// ParseScope validates a raw scope string from the API: empty, "general", or
// a course UUID.
func ParseScope(raw string) (model.Scope, error) {
	if raw == "" {
		return model.ScopeAll, nil
	}
	if raw == string(model.ScopeGeneral) {
		return model.ScopeGeneral, nil
	}
	if _, err := uuid.Parse(raw); err != nil {
		return model.ScopeAll, ErrInvalidScope
	}
	return model.Scope(raw), nil
}

// Resolve returns the eligible, active question set for a grade and scope.
// An empty result is not an error here; callers decide whether "no exam
// available" is fatal (session start does, display estimates do not).
func (s *PoolService) Resolve(ctx context.Context, grade *model.Grade, scope model.Scope) (*Pool, error) {
	questions, err := s.questions.ListEligible(ctx, grade, scope)
	if err != nil {
		return nil, fmt.Errorf("list eligible questions: %w", err)
	}

	pool := &Pool{
		Questions:       questions,
		PerQuestionSecs: make([]int, len(questions)),
	}
	sum := 0
	for i := range questions {
		pool.PerQuestionSecs[i] = questions[i].TimeLimitSeconds
		sum += questions[i].TimeLimitSeconds
	}
	if len(questions) > 0 {
		pool.AvgSeconds = float64(sum) / float64(len(questions))
	}
	return pool, nil
}

// ShuffleForSession reorders the pool in place with a seed derived from the
// session ID. The same session always produces the same order, so jumping to
// question N stays stable across reloads within one session, while distinct
// sessions see distinct orders.
func (s *PoolService) ShuffleForSession(pool *Pool, sessionID uuid.UUID) {
	seed := int64(binary.BigEndian.Uint64(sessionID[:8]))
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pool.Questions), func(i, j int) {
		pool.Questions[i], pool.Questions[j] = pool.Questions[j], pool.Questions[i]
		pool.PerQuestionSecs[i], pool.PerQuestionSecs[j] = pool.PerQuestionSecs[j], pool.PerQuestionSecs[i]
	})
}

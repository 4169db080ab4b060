package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/repository"
	"github.com/careprep/careprep-backend/internal/scoring"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeQuestionSource serves a fixed question slice with the same filtering
// semantics as the SQL store.
type fakeQuestionSource struct {
	items []model.Question
}

func (f *fakeQuestionSource) ListEligible(_ context.Context, grade *model.Grade, scope model.Scope) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.items {
		if !q.Active {
			continue
		}
		if grade != nil && q.Grade != nil && *q.Grade != *grade {
			continue
		}
		switch {
		case scope == model.ScopeAll:
		case scope == model.ScopeGeneral:
			if q.CourseID != nil {
				continue
			}
		default:
			courseID, _ := scope.CourseID()
			if q.CourseID == nil || *q.CourseID != courseID {
				continue
			}
		}
		out = append(out, q)
	}
	return out, nil
}

func (f *fakeQuestionSource) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Question, error) {
	byID := make(map[uuid.UUID]model.Question, len(f.items))
	for _, q := range f.items {
		byID[q.ID] = q
	}
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("question %s not found", id)
		}
		out = append(out, q)
	}
	return out, nil
}

// fakeSessionStore keeps sessions in memory and mimics the guarded
// completion transition, including the no-rows signal on a lost race.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.ExamSession
	results  map[uuid.UUID]*model.ExamResult
	answers  map[uuid.UUID][]scoring.Outcome
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions: map[uuid.UUID]*model.ExamSession{},
		results:  map[uuid.UUID]*model.ExamResult{},
		answers:  map[uuid.UUID][]scoring.Outcome{},
	}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.ExamSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	s.StartedAt = time.Now()
	clone := *s
	f.sessions[s.ID] = &clone
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionStore) CompleteWithResult(_ context.Context, sessionID uuid.UUID, outcomes []scoring.Outcome, result *model.ExamResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionStatusInProgress {
		return fmt.Errorf("complete session: %w", pgx.ErrNoRows)
	}
	now := time.Now()
	s.Status = model.SessionStatusCompleted
	s.FinishedAt = &now
	result.CompletedAt = now
	f.answers[sessionID] = outcomes
	clone := *result
	f.results[sessionID] = &clone
	return nil
}

func (f *fakeSessionStore) ListOverdue(_ context.Context, cutoff time.Time, limit int) ([]model.ExamSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ExamSession
	for _, s := range f.sessions {
		if s.Status == model.SessionStatusInProgress && s.StartedAt.Before(cutoff) {
			out = append(out, *s)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// fakeLearnerDirectory resolves learners from a fixed map.
type fakeLearnerDirectory struct {
	learners map[int]*model.Learner
}

func (f *fakeLearnerDirectory) GetByID(_ context.Context, id int) (*model.Learner, error) {
	l, ok := f.learners[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return l, nil
}

// fakeResultStore serves fixed results and records paging parameters.
type fakeResultStore struct {
	bySession map[uuid.UUID]*model.ExamResult
	byLearner map[int][]model.ExamResult

	lastPage    int
	lastPerPage int
}

func (f *fakeResultStore) GetBySession(_ context.Context, sessionID uuid.UUID) (*model.ExamResult, error) {
	r, ok := f.bySession[sessionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (f *fakeResultStore) ListByLearner(_ context.Context, learnerID int) ([]model.ExamResult, error) {
	return f.byLearner[learnerID], nil
}

func (f *fakeResultStore) List(_ context.Context, page, perPage int, _ repository.ResultFilter) ([]repository.ResultRow, int64, error) {
	f.lastPage = page
	f.lastPerPage = perPage
	return nil, 0, nil
}

// fakeReviewStore serves fixed review rows.
type fakeReviewStore struct {
	items map[uuid.UUID][]model.ReviewItem
}

func (f *fakeReviewStore) ListReviewBySession(_ context.Context, sessionID uuid.UUID) ([]model.ReviewItem, error) {
	return f.items[sessionID], nil
}

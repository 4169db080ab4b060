package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/careprep/careprep-backend/internal/capture"
	"github.com/careprep/careprep-backend/internal/config"
	"github.com/careprep/careprep-backend/internal/model"
	"github.com/careprep/careprep-backend/internal/scoring"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Session lifecycle errors.
var (
	// ErrSessionNotFound covers both a genuinely missing session and a
	// session owned by another learner. The two are indistinguishable to
	// callers so that session existence never leaks.
	ErrSessionNotFound = errors.New("exam session not found")
	// ErrSessionCompleted is returned when submit is called on a session
	// that is no longer in progress. A double submit is a programming
	// error, never a silent re-score.
	ErrSessionCompleted = errors.New("exam session already completed")
)

// SessionStore is the persistence contract for exam sessions.
type SessionStore interface {
	Create(ctx context.Context, s *model.ExamSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	// CompleteWithResult must commit the answers batch, the session
	// transition, and the result row atomically, and must fail when the
	// session is not IN_PROGRESS anymore.
	CompleteWithResult(ctx context.Context, sessionID uuid.UUID, outcomes []scoring.Outcome, result *model.ExamResult) error
	ListOverdue(ctx context.Context, cutoff time.Time, limit int) ([]model.ExamSession, error)
}

// LearnerDirectory resolves learner identity for order rebuilds.
type LearnerDirectory interface {
	GetByID(ctx context.Context, id int) (*model.Learner, error)
}

// SessionService drives the exam session lifecycle: start, in-progress
// state, and the single submission commit (manual, timeout, and reaper all
// share one path).
type SessionService struct {
	sessions SessionStore
	learners LearnerDirectory
	pool     *PoolService
	state    capture.Store
	cfg      *config.Config
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessions SessionStore,
	learners LearnerDirectory,
	pool *PoolService,
	state capture.Store,
	cfg *config.Config,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		learners: learners,
		pool:     pool,
		state:    state,
		cfg:      cfg,
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// Start resolves the eligible pool and creates a new session. An empty pool
// fails with ErrNoQuestionsAvailable and creates no session row. Retakes are
// independent attempts: an existing in-progress session is never reused.
func (s *SessionService) Start(ctx context.Context, learnerID int, email string, grade *model.Grade, rawScope string) (*model.ExamSession, *model.ExamPaper, error) {
	scope, err := ParseScope(rawScope)
	if err != nil {
		return nil, nil, err
	}

	pool, err := s.pool.Resolve(ctx, grade, scope)
	if err != nil {
		return nil, nil, err
	}
	if len(pool.Questions) == 0 {
		return nil, nil, ErrNoQuestionsAvailable
	}

	session := &model.ExamSession{
		LearnerID:      learnerID,
		LearnerEmail:   email,
		Scope:          scope,
		TotalQuestions: len(pool.Questions),
		Status:         model.SessionStatusInProgress,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	// Order is seeded by the session ID, so it can be rebuilt identically
	// if the cached copy is ever evicted.
	s.pool.ShuffleForSession(pool, session.ID)

	ids := make([]uuid.UUID, len(pool.Questions))
	for i := range pool.Questions {
		ids[i] = pool.Questions[i].ID
	}
	if err := s.state.SaveOrder(ctx, session.ID, ids); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Failed to cache question order")
	}
	if err := s.state.SaveStart(ctx, session.ID, session.StartedAt); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Failed to cache start time")
	}

	return session, s.buildPaper(ctx, session, pool), nil
}

// GetPaper returns the learner-facing question payload for an in-progress
// session. Requires ownership; completed sessions serve no paper.
func (s *SessionService) GetPaper(ctx context.Context, learnerID int, sessionID uuid.UUID) (*model.ExamPaper, error) {
	session, err := s.ownedSession(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrSessionCompleted
	}

	questions, err := s.sessionQuestions(ctx, session)
	if err != nil {
		return nil, err
	}

	pool := &Pool{Questions: questions, PerQuestionSecs: make([]int, len(questions))}
	sum := 0
	for i := range questions {
		pool.PerQuestionSecs[i] = questions[i].TimeLimitSeconds
		sum += questions[i].TimeLimitSeconds
	}
	if len(questions) > 0 {
		pool.AvgSeconds = float64(sum) / float64(len(questions))
	}

	return s.buildPaper(ctx, session, pool), nil
}

// GetState returns the reload view of a session: captured answers, flags,
// and remaining budget seconds.
func (s *SessionService) GetState(ctx context.Context, learnerID int, sessionID uuid.UUID) (*model.SessionState, error) {
	session, err := s.ownedSession(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.state.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("snapshot answers: %w", err)
	}
	flags, err := s.state.Flags(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read flags: %w", err)
	}

	return &model.SessionState{
		SessionID:        session.ID,
		Status:           session.Status,
		TotalQuestions:   session.TotalQuestions,
		CapturedAnswers:  answers,
		FlaggedQuestions: flags,
		RemainingSeconds: s.Remaining(ctx, session).Seconds(),
	}, nil
}

// CaptureAnswer upserts the learner's working selection for one question.
// The label is stored as sent; validation against the question happens only
// at scoring time. Capture never blocks navigation — failures are cheap for
// the client to retry.
func (s *SessionService) CaptureAnswer(ctx context.Context, learnerID int, sessionID, questionID uuid.UUID, label string) error {
	session, err := s.ownedSession(ctx, learnerID, sessionID)
	if err != nil {
		return err
	}
	if session.Status != model.SessionStatusInProgress {
		return ErrSessionCompleted
	}
	if err := s.state.SetAnswer(ctx, sessionID, questionID, label); err != nil {
		return fmt.Errorf("capture answer: %w", err)
	}
	return nil
}

// ToggleFlag flips the review flag for one question and returns the new
// value. Flags never affect scoring.
func (s *SessionService) ToggleFlag(ctx context.Context, learnerID int, sessionID, questionID uuid.UUID) (bool, error) {
	session, err := s.ownedSession(ctx, learnerID, sessionID)
	if err != nil {
		return false, err
	}
	if session.Status != model.SessionStatusInProgress {
		return false, ErrSessionCompleted
	}
	flagged, err := s.state.ToggleFlag(ctx, sessionID, questionID)
	if err != nil {
		return false, fmt.Errorf("toggle flag: %w", err)
	}
	return flagged, nil
}

// Submit scores the session from its final capture snapshot and commits
// answers, session completion, and the result as one unit. A failed commit
// keeps the session in progress and the capture intact so the learner can
// retry without losing answers.
func (s *SessionService) Submit(ctx context.Context, learnerID int, sessionID uuid.UUID) (*model.ExamResult, error) {
	session, err := s.ownedSession(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, session, false)
}

// ForceSubmit is the timeout path: identical in effect to a manual submit,
// scoring whatever has been captured so far. Used by the countdown stream at
// zero and by the reaper sweep.
func (s *SessionService) ForceSubmit(ctx context.Context, sessionID uuid.UUID) (*model.ExamResult, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return s.submit(ctx, session, true)
}

// Remaining computes how much of the fixed budget is left. The start instant
// comes from the working-state cache with a database fallback that heals the
// cache on a miss.
func (s *SessionService) Remaining(ctx context.Context, session *model.ExamSession) time.Duration {
	start, err := s.state.Start(ctx, session.ID)
	if err != nil {
		// Cache miss or Redis trouble: the session row is the source of
		// truth. Heal the cache for the next call.
		start = session.StartedAt
		if errors.Is(err, capture.ErrNotFound) {
			if healErr := s.state.SaveStart(ctx, session.ID, start); healErr != nil {
				s.log.Warn().Err(healErr).Str("session_id", session.ID.String()).Msg("Failed to heal start cache")
			}
		}
	}

	remaining := s.cfg.ExamBudget - time.Since(start)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// SweepOverdue force-submits in-progress sessions whose wall-clock age
// exceeds the budget plus grace. Returns how many sessions were closed.
func (s *SessionService) SweepOverdue(ctx context.Context, limit int) (int, error) {
	cutoff := time.Now().Add(-(s.cfg.ExamBudget + s.cfg.ReaperGrace))
	overdue, err := s.sessions.ListOverdue(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list overdue: %w", err)
	}

	closed := 0
	for i := range overdue {
		if _, err := s.submit(ctx, &overdue[i], true); err != nil {
			// Lost races with a concurrent manual submit are fine.
			if errors.Is(err, ErrSessionCompleted) {
				continue
			}
			s.log.Error().Err(err).Str("session_id", overdue[i].ID.String()).Msg("Reap submit failed")
			continue
		}
		closed++
	}
	return closed, nil
}

// Session returns a session, enforcing ownership.
func (s *SessionService) Session(ctx context.Context, learnerID int, sessionID uuid.UUID) (*model.ExamSession, error) {
	return s.ownedSession(ctx, learnerID, sessionID)
}

func (s *SessionService) ownedSession(ctx context.Context, learnerID int, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	if session.LearnerID != learnerID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) submit(ctx context.Context, session *model.ExamSession, forced bool) (*model.ExamResult, error) {
	if session.Status != model.SessionStatusInProgress {
		return nil, ErrSessionCompleted
	}

	questions, err := s.sessionQuestions(ctx, session)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.state.Snapshot(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("snapshot answers: %w", err)
	}

	// Server-side budget check: a client that reports late (or never) can
	// not bank more than the fixed budget.
	elapsed := time.Since(session.StartedAt)
	if elapsed > s.cfg.ExamBudget {
		elapsed = s.cfg.ExamBudget
	}
	elapsedMinutes := int(math.Round(elapsed.Minutes()))

	outcomes, summary, err := scoring.Score(questions, snapshot, s.cfg.PassThreshold)
	if err != nil {
		return nil, fmt.Errorf("score session: %w", err)
	}

	result := &model.ExamResult{
		SessionID:      session.ID,
		LearnerID:      session.LearnerID,
		LearnerEmail:   session.LearnerEmail,
		TotalQuestions: summary.TotalQuestions,
		CorrectCount:   summary.CorrectCount,
		IncorrectCount: summary.IncorrectCount,
		ScorePercent:   summary.ScorePercent,
		Passed:         summary.Passed,
		ElapsedMinutes: elapsedMinutes,
	}

	if err := s.sessions.CompleteWithResult(ctx, session.ID, outcomes, result); err != nil {
		// The guarded transition reports no rows when another submit won.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionCompleted
		}
		return nil, fmt.Errorf("commit submission: %w", err)
	}

	// The capture is only discarded once the commit stands.
	if err := s.state.Clear(ctx, session.ID); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Failed to clear session state")
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Int("learner_id", session.LearnerID).
		Float64("score", result.ScorePercent).
		Bool("passed", result.Passed).
		Bool("forced", forced).
		Msg("Session submitted")

	return result, nil
}

// sessionQuestions loads the session's ordered question set. On cache miss
// the order is rebuilt deterministically: same eligibility query, same
// session-seeded shuffle.
func (s *SessionService) sessionQuestions(ctx context.Context, session *model.ExamSession) ([]model.Question, error) {
	ids, err := s.state.Order(ctx, session.ID)
	if err == nil {
		questions, err := s.pool.questions.ListByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load session questions: %w", err)
		}
		return questions, nil
	}
	if !errors.Is(err, capture.ErrNotFound) {
		return nil, fmt.Errorf("load question order: %w", err)
	}

	learner, err := s.learners.GetByID(ctx, session.LearnerID)
	if err != nil {
		return nil, fmt.Errorf("resolve learner for order rebuild: %w", err)
	}

	pool, err := s.pool.Resolve(ctx, &learner.Grade, session.Scope)
	if err != nil {
		return nil, err
	}
	if len(pool.Questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}
	s.pool.ShuffleForSession(pool, session.ID)

	rebuilt := make([]uuid.UUID, len(pool.Questions))
	for i := range pool.Questions {
		rebuilt[i] = pool.Questions[i].ID
	}
	if err := s.state.SaveOrder(ctx, session.ID, rebuilt); err != nil {
		s.log.Warn().Err(err).Str("session_id", session.ID.String()).Msg("Failed to heal order cache")
	}

	return pool.Questions, nil
}

func (s *SessionService) buildPaper(ctx context.Context, session *model.ExamSession, pool *Pool) *model.ExamPaper {
	paper := &model.ExamPaper{
		SessionID:        session.ID,
		Questions:        make([]model.QuestionForLearner, len(pool.Questions)),
		PerQuestionSecs:  pool.PerQuestionSecs,
		AvgQuestionSecs:  pool.AvgSeconds,
		BudgetMinutes:    int(s.cfg.ExamBudget.Minutes()),
		RemainingSeconds: s.Remaining(ctx, session).Seconds(),
		TotalQuestions:   session.TotalQuestions,
	}
	for i := range pool.Questions {
		paper.Questions[i] = pool.Questions[i].ForLearner()
	}
	return paper
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/careprep/careprep-backend/internal/capture"
	"github.com/careprep/careprep-backend/internal/config"
	"github.com/careprep/careprep-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const testLearnerID = 1

func newSessionHarness(t *testing.T, questions []model.Question) (*SessionService, *fakeSessionStore, *capture.MemoryStore) {
	t.Helper()
	store := newFakeSessionStore()
	state := capture.NewMemoryStore()
	learners := &fakeLearnerDirectory{learners: map[int]*model.Learner{
		testLearnerID: {ID: testLearnerID, Email: "nina@example.com", Name: "Nina", Grade: model.GradeStarter},
	}}
	cfg := &config.Config{
		ExamBudget:    2 * time.Hour,
		PassThreshold: 75,
		ReaperGrace:   10 * time.Minute,
	}
	svc := NewSessionService(store, learners, NewPoolService(&fakeQuestionSource{items: questions}), state, cfg, zerolog.Nop())
	return svc, store, state
}

func fourQuestions() []model.Question {
	return []model.Question{
		makeQuestion("A", nil, nil, true),
		makeQuestion("B", nil, nil, true),
		makeQuestion("C", nil, nil, true),
		makeQuestion("D", nil, nil, true),
	}
}

func TestStartEmptyPoolCreatesNoSession(t *testing.T) {
	svc, store, _ := newSessionHarness(t, nil)

	_, _, err := svc.Start(context.Background(), testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if !errors.Is(err, ErrNoQuestionsAvailable) {
		t.Fatalf("Start() error = %v, want ErrNoQuestionsAvailable", err)
	}
	if len(store.sessions) != 0 {
		t.Errorf("empty pool still created %d session(s)", len(store.sessions))
	}
}

func TestStartInvalidScope(t *testing.T) {
	svc, _, _ := newSessionHarness(t, fourQuestions())

	_, _, err := svc.Start(context.Background(), testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "bogus")
	if !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("Start() error = %v, want ErrInvalidScope", err)
	}
}

func TestStartDeliversPaperWithoutAnswers(t *testing.T) {
	svc, _, state := newSessionHarness(t, fourQuestions())

	session, paper, err := svc.Start(context.Background(), testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.Status != model.SessionStatusInProgress {
		t.Errorf("session status = %s, want IN_PROGRESS", session.Status)
	}
	if paper.TotalQuestions != 4 || len(paper.Questions) != 4 {
		t.Fatalf("paper has %d/%d questions, want 4", paper.TotalQuestions, len(paper.Questions))
	}
	if paper.RemainingSeconds <= 0 || paper.RemainingSeconds > (2*time.Hour).Seconds() {
		t.Errorf("RemainingSeconds = %f, want within (0, 7200]", paper.RemainingSeconds)
	}

	order, err := state.Order(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Order() error = %v", err)
	}
	for i, q := range paper.Questions {
		if order[i] != q.ID {
			t.Errorf("cached order[%d] = %s, paper has %s", i, order[i], q.ID)
		}
	}
}

func TestEachStartIsAFreshSession(t *testing.T) {
	svc, store, _ := newSessionHarness(t, fourQuestions())

	first, _, err := svc.Start(context.Background(), testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	second, _, err := svc.Start(context.Background(), testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("second start reused the first session")
	}
	if len(store.sessions) != 2 {
		t.Errorf("have %d sessions, want 2", len(store.sessions))
	}
}

func TestSubmitScoresFinalSnapshot(t *testing.T) {
	questions := fourQuestions()
	svc, store, state := newSessionHarness(t, questions)
	ctx := context.Background()

	session, paper, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Answer three of four correctly, leave one untouched. The learner
	// changes an answer once along the way; only the final choice counts.
	correctByID := make(map[uuid.UUID]string, len(questions))
	for _, q := range questions {
		correctByID[q.ID] = q.CorrectOption
	}
	if err := svc.CaptureAnswer(ctx, testLearnerID, session.ID, paper.Questions[0].ID, "B"); err != nil {
		t.Fatalf("CaptureAnswer() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		id := paper.Questions[i].ID
		if err := svc.CaptureAnswer(ctx, testLearnerID, session.ID, id, correctByID[id]); err != nil {
			t.Fatalf("CaptureAnswer() error = %v", err)
		}
	}

	result, err := svc.Submit(ctx, testLearnerID, session.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.TotalQuestions != 4 || result.CorrectCount != 3 || result.IncorrectCount != 1 {
		t.Errorf("result = %d/%d/%d, want total 4 correct 3 incorrect 1",
			result.TotalQuestions, result.CorrectCount, result.IncorrectCount)
	}
	if result.ScorePercent != 75 {
		t.Errorf("ScorePercent = %f, want 75", result.ScorePercent)
	}
	if !result.Passed {
		t.Error("score at threshold should pass")
	}

	if store.sessions[session.ID].Status != model.SessionStatusCompleted {
		t.Error("session not marked completed")
	}
	if len(store.answers[session.ID]) != 4 {
		t.Errorf("persisted %d answer rows, want 4", len(store.answers[session.ID]))
	}

	// Working state is discarded once the commit stands.
	if _, err := state.Order(ctx, session.ID); !errors.Is(err, capture.ErrNotFound) {
		t.Errorf("order still cached after submit, err = %v", err)
	}
	snap, _ := state.Snapshot(ctx, session.ID)
	if len(snap) != 0 {
		t.Errorf("capture still holds %d answers after submit", len(snap))
	}
}

func TestSubmitTwice(t *testing.T) {
	svc, _, _ := newSessionHarness(t, fourQuestions())
	ctx := context.Background()

	session, _, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := svc.Submit(ctx, testLearnerID, session.ID); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if _, err := svc.Submit(ctx, testLearnerID, session.ID); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("second Submit() error = %v, want ErrSessionCompleted", err)
	}
}

func TestForcedSubmitScoresUnansweredAsIncorrect(t *testing.T) {
	svc, _, _ := newSessionHarness(t, fourQuestions())
	ctx := context.Background()

	session, _, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	result, err := svc.ForceSubmit(ctx, session.ID)
	if err != nil {
		t.Fatalf("ForceSubmit() error = %v", err)
	}
	if result.TotalQuestions != 4 || result.CorrectCount != 0 || result.IncorrectCount != 4 {
		t.Errorf("result = %d/%d/%d, want total 4 correct 0 incorrect 4",
			result.TotalQuestions, result.CorrectCount, result.IncorrectCount)
	}
	if result.ScorePercent != 0 || result.Passed {
		t.Errorf("score = %f passed = %v, want 0 and false", result.ScorePercent, result.Passed)
	}
}

func TestSessionOwnership(t *testing.T) {
	svc, _, _ := newSessionHarness(t, fourQuestions())
	ctx := context.Background()

	session, _, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	const intruder = 99
	if _, err := svc.GetState(ctx, intruder, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetState() by non-owner error = %v, want ErrSessionNotFound", err)
	}
	if err := svc.CaptureAnswer(ctx, intruder, session.ID, uuid.New(), "A"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("CaptureAnswer() by non-owner error = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.Submit(ctx, intruder, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Submit() by non-owner error = %v, want ErrSessionNotFound", err)
	}
	if _, err := svc.GetState(ctx, testLearnerID, uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetState() for unknown session error = %v, want ErrSessionNotFound", err)
	}
}

func TestSubmitRebuildsOrderAfterCacheLoss(t *testing.T) {
	questions := fourQuestions()
	svc, store, state := newSessionHarness(t, questions)
	ctx := context.Background()

	session, paper, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	firstOrder := make([]uuid.UUID, len(paper.Questions))
	for i, q := range paper.Questions {
		firstOrder[i] = q.ID
	}

	// Simulate eviction of the whole working set.
	if err := state.Clear(ctx, session.ID); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	result, err := svc.Submit(ctx, testLearnerID, session.ID)
	if err != nil {
		t.Fatalf("Submit() after cache loss error = %v", err)
	}
	if result.TotalQuestions != 4 {
		t.Errorf("TotalQuestions = %d, want 4", result.TotalQuestions)
	}

	// The rebuilt order must be the one the learner saw.
	outcomes := store.answers[session.ID]
	if len(outcomes) != len(firstOrder) {
		t.Fatalf("persisted %d outcomes, want %d", len(outcomes), len(firstOrder))
	}
	for i := range outcomes {
		if outcomes[i].QuestionID != firstOrder[i] {
			t.Errorf("rebuilt order diverged at %d", i)
		}
	}
}

func TestCaptureAfterCompletion(t *testing.T) {
	svc, _, _ := newSessionHarness(t, fourQuestions())
	ctx := context.Background()

	session, paper, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := svc.Submit(ctx, testLearnerID, session.ID); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if err := svc.CaptureAnswer(ctx, testLearnerID, session.ID, paper.Questions[0].ID, "A"); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("CaptureAnswer() after completion error = %v, want ErrSessionCompleted", err)
	}
	if _, err := svc.ToggleFlag(ctx, testLearnerID, session.ID, paper.Questions[0].ID); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("ToggleFlag() after completion error = %v, want ErrSessionCompleted", err)
	}
	if _, err := svc.GetPaper(ctx, testLearnerID, session.ID); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("GetPaper() after completion error = %v, want ErrSessionCompleted", err)
	}
}

func TestGetStateReflectsCapture(t *testing.T) {
	svc, _, _ := newSessionHarness(t, fourQuestions())
	ctx := context.Background()

	session, paper, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := svc.CaptureAnswer(ctx, testLearnerID, session.ID, paper.Questions[0].ID, "A"); err != nil {
		t.Fatalf("CaptureAnswer() error = %v", err)
	}
	if _, err := svc.ToggleFlag(ctx, testLearnerID, session.ID, paper.Questions[1].ID); err != nil {
		t.Fatalf("ToggleFlag() error = %v", err)
	}

	state, err := svc.GetState(ctx, testLearnerID, session.ID)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if got := state.CapturedAnswers[paper.Questions[0].ID.String()]; got != "A" {
		t.Errorf("captured answer = %q, want A", got)
	}
	if !state.FlaggedQuestions[paper.Questions[1].ID.String()] {
		t.Error("flag not reflected in state")
	}
	if state.RemainingSeconds <= 0 || state.RemainingSeconds > (2*time.Hour).Seconds() {
		t.Errorf("RemainingSeconds = %f, want within (0, 7200]", state.RemainingSeconds)
	}
}

func TestSweepOverdue(t *testing.T) {
	svc, store, _ := newSessionHarness(t, fourQuestions())
	ctx := context.Background()

	stale, _, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	fresh, _, err := svc.Start(ctx, testLearnerID, "nina@example.com", gradePtr(model.GradeStarter), "")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Age the first session past budget plus grace.
	store.sessions[stale.ID].StartedAt = time.Now().Add(-3 * time.Hour)

	closed, err := svc.SweepOverdue(ctx, 10)
	if err != nil {
		t.Fatalf("SweepOverdue() error = %v", err)
	}
	if closed != 1 {
		t.Fatalf("SweepOverdue() closed %d, want 1", closed)
	}
	if store.sessions[stale.ID].Status != model.SessionStatusCompleted {
		t.Error("stale session not completed")
	}
	if store.sessions[fresh.ID].Status != model.SessionStatusInProgress {
		t.Error("fresh session should stay in progress")
	}
}

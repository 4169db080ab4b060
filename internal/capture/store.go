// Package capture holds a learner's transient, in-session working state:
// answer selections, review flags, the shuffled question order, and the
// session start instant. Nothing here is the system of record — captured
// selections materialize into persisted rows only at submission, and the
// whole working set is discarded if the session is abandoned.
package capture

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session has no working state, e.g. after
// eviction or for a session that was never started on this backend.
var ErrNotFound = errors.New("capture: session state not found")

// Store is the session working-state contract. SetAnswer upserts
// unconditionally and never validates the label against the question's
// options; capture's job is capture, not judgment.
type Store interface {
	// SaveStart records when the session's countdown began.
	SaveStart(ctx context.Context, sessionID uuid.UUID, start time.Time) error
	// Start returns the recorded start instant, or ErrNotFound.
	Start(ctx context.Context, sessionID uuid.UUID) (time.Time, error)

	// SaveOrder records the session's shuffled question order.
	SaveOrder(ctx context.Context, sessionID uuid.UUID, questionIDs []uuid.UUID) error
	// Order returns the recorded question order, or ErrNotFound.
	Order(ctx context.Context, sessionID uuid.UUID) ([]uuid.UUID, error)

	// SetAnswer upserts the learner's choice for a question, overwriting
	// any prior choice.
	SetAnswer(ctx context.Context, sessionID, questionID uuid.UUID, label string) error
	// ToggleFlag flips a question's review flag and returns the new value.
	// Flags are independent of answer state and never affect scoring.
	ToggleFlag(ctx context.Context, sessionID, questionID uuid.UUID) (bool, error)

	// Snapshot returns all captured answers keyed by question ID string.
	// Questions never answered are simply absent.
	Snapshot(ctx context.Context, sessionID uuid.UUID) (map[string]string, error)
	// Flags returns the set of currently flagged question IDs.
	Flags(ctx context.Context, sessionID uuid.UUID) (map[string]bool, error)

	// Clear drops all working state for a session. Called only after the
	// submission commit succeeds, so a failed submit keeps the capture
	// intact for retry.
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

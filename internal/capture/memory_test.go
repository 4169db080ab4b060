package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryStoreAnswerUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session := uuid.New()
	question := uuid.New()

	if err := store.SetAnswer(ctx, session, question, "A"); err != nil {
		t.Fatalf("SetAnswer: %v", err)
	}
	// Later selection overwrites the earlier one.
	if err := store.SetAnswer(ctx, session, question, "C"); err != nil {
		t.Fatalf("SetAnswer overwrite: %v", err)
	}

	snap, err := store.Snapshot(ctx, session)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap) != 1 {
		t.Fatalf("snapshot has %d entries, want 1", len(snap))
	}
	if got := snap[question.String()]; got != "C" {
		t.Errorf("snapshot label = %q, want %q", got, "C")
	}
}

func TestMemoryStoreFlagToggle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session := uuid.New()
	question := uuid.New()

	on, err := store.ToggleFlag(ctx, session, question)
	if err != nil || !on {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", on, err)
	}
	off, err := store.ToggleFlag(ctx, session, question)
	if err != nil || off {
		t.Fatalf("second toggle = (%v, %v), want (false, nil)", off, err)
	}

	// Flags are independent of answers.
	snap, _ := store.Snapshot(ctx, session)
	if len(snap) != 0 {
		t.Errorf("flag toggling leaked into answers: %v", snap)
	}
}

func TestMemoryStoreStartAndOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session := uuid.New()

	if _, err := store.Start(ctx, session); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Start on empty store = %v, want ErrNotFound", err)
	}

	started := time.Now().Truncate(time.Second)
	if err := store.SaveStart(ctx, session, started); err != nil {
		t.Fatalf("SaveStart: %v", err)
	}
	got, err := store.Start(ctx, session)
	if err != nil || !got.Equal(started) {
		t.Fatalf("Start = (%v, %v), want (%v, nil)", got, err, started)
	}

	order := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	if err := store.SaveOrder(ctx, session, order); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	gotOrder, err := store.Order(ctx, session)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	for i := range order {
		if gotOrder[i] != order[i] {
			t.Fatalf("order[%d] = %s, want %s", i, gotOrder[i], order[i])
		}
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	session := uuid.New()

	_ = store.SaveStart(ctx, session, time.Now())
	_ = store.SetAnswer(ctx, session, uuid.New(), "B")
	_, _ = store.ToggleFlag(ctx, session, uuid.New())

	if err := store.Clear(ctx, session); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if _, err := store.Start(ctx, session); !errors.Is(err, ErrNotFound) {
		t.Errorf("start survived Clear")
	}
	snap, _ := store.Snapshot(ctx, session)
	if len(snap) != 0 {
		t.Errorf("answers survived Clear: %v", snap)
	}
	flags, _ := store.Flags(ctx, session)
	if len(flags) != 0 {
		t.Errorf("flags survived Clear: %v", flags)
	}
}

package capture

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by unit tests and single-process
// development setups without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	starts  map[uuid.UUID]time.Time
	orders  map[uuid.UUID][]uuid.UUID
	answers map[uuid.UUID]map[string]string
	flags   map[uuid.UUID]map[string]bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		starts:  map[uuid.UUID]time.Time{},
		orders:  map[uuid.UUID][]uuid.UUID{},
		answers: map[uuid.UUID]map[string]string{},
		flags:   map[uuid.UUID]map[string]bool{},
	}
}

func (s *MemoryStore) SaveStart(_ context.Context, sessionID uuid.UUID, start time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts[sessionID] = start
	return nil
}

func (s *MemoryStore) Start(_ context.Context, sessionID uuid.UUID) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, ok := s.starts[sessionID]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	return start, nil
}

func (s *MemoryStore) SaveOrder(_ context.Context, sessionID uuid.UUID, questionIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, len(questionIDs))
	copy(ids, questionIDs)
	s.orders[sessionID] = ids
	return nil
}

func (s *MemoryStore) Order(_ context.Context, sessionID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids, ok := s.orders[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out, nil
}

func (s *MemoryStore) SetAnswer(_ context.Context, sessionID, questionID uuid.UUID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.answers[sessionID]
	if !ok {
		m = map[string]string{}
		s.answers[sessionID] = m
	}
	m[questionID.String()] = label
	return nil
}

func (s *MemoryStore) ToggleFlag(_ context.Context, sessionID, questionID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.flags[sessionID]
	if !ok {
		m = map[string]bool{}
		s.flags[sessionID] = m
	}
	field := questionID.String()
	if m[field] {
		delete(m, field)
		return false, nil
	}
	m[field] = true
	return true, nil
}

func (s *MemoryStore) Snapshot(_ context.Context, sessionID uuid.UUID) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[string]string, len(s.answers[sessionID]))
	for k, v := range s.answers[sessionID] {
		snap[k] = v
	}
	return snap, nil
}

func (s *MemoryStore) Flags(_ context.Context, sessionID uuid.UUID) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := make(map[string]bool, len(s.flags[sessionID]))
	for k, v := range s.flags[sessionID] {
		flags[k] = v
	}
	return flags, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.starts, sessionID)
	delete(s.orders, sessionID)
	delete(s.answers, sessionID)
	delete(s.flags, sessionID)
	return nil
}

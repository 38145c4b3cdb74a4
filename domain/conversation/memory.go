package conversation

import (
	"context"
	"sync"
)

// MemoryStore keeps conversation states in process memory.
type MemoryStore struct {
	states map[int64]State
	mu     sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[int64]State),
	}
}

// Get returns the user's state, idle when none is stored.
func (s *MemoryStore) Get(_ context.Context, userID int64) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, found := s.states[userID]
	if !found {
		return StateIdle, nil
	}
	return state, nil
}

// Set stores the user's state.
func (s *MemoryStore) Set(_ context.Context, userID int64, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == StateIdle {
		delete(s.states, userID)
		return nil
	}
	s.states[userID] = state
	return nil
}

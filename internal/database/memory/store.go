// Package memory provides in-process repository implementations. The default
// backend for development and tests; state does not survive a restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/thad75/questday/internal/domain"
)

// Store holds quest states and player progress keyed by user id.
type Store struct {
	mu       sync.RWMutex
	states   map[string]*domain.QuestSystemState
	progress map[string]domain.PlayerProgress
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		states:   make(map[string]*domain.QuestSystemState),
		progress: make(map[string]domain.PlayerProgress),
	}
}

// GetState returns a deep copy of the user's state.
func (s *Store) GetState(ctx context.Context, userID string) (*domain.QuestSystemState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return state.Clone(), nil
}

// SaveState stores a deep copy so later caller mutations cannot leak in.
func (s *Store) SaveState(ctx context.Context, userID string, state *domain.QuestSystemState) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = state.Clone()
	return nil
}

// DeleteState removes the user's state. Deleting a missing state is not an
// error.
func (s *Store) DeleteState(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, userID)
	return nil
}

// GetProgress returns the user's progress, or a fresh level-1 record.
func (s *Store) GetProgress(ctx context.Context, userID string) (domain.PlayerProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[userID]
	if !ok {
		return domain.NewPlayerProgress(), nil
	}
	return p, nil
}

// SaveProgress stores the user's progress.
func (s *Store) SaveProgress(ctx context.Context, userID string, progress domain.PlayerProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress[userID] = progress
	return nil
}

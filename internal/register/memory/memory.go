// Package memory is an in-process register used in tests and in local
// development without Google credentials.
package memory

import (
	"context"
	"sync"

	"mouvements/internal/core"
	"mouvements/internal/register"
)

type Store struct {
	mu        sync.Mutex
	movements map[int64]core.Movement
}

var _ register.Writer = (*Store)(nil)

func New() *Store {
	return &Store{movements: make(map[int64]core.Movement)}
}

func (s *Store) UpsertMovement(_ context.Context, m core.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements[m.ID] = m
	return nil
}

func (s *Store) DeleteMovement(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.movements, id)
	return nil
}

// Get returns the mirrored movement, if present.
func (s *Store) Get(id int64) (core.Movement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movements[id]
	return m, ok
}

// Len returns the number of mirrored movements.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

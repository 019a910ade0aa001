package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/alphaflow-lab/alphaflow/internal/types"
	"github.com/alphaflow-lab/alphaflow/pkg/errors"
)

// SessionStore holds uploaded price series keyed by session id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*types.Series
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*types.Series),
	}
}

// Put stores a series under a fresh session id and returns the id.
func (s *SessionStore) Put(series *types.Series) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = series

	return id
}

// Get returns the series stored under id.
func (s *SessionStore) Get(id string) (*types.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.sessions[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}

	return series, nil
}

// Delete removes the session with the given id.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return errors.Newf(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}

	delete(s.sessions, id)

	return nil
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

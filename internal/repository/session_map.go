package repo

import (
	"context"
	"sync"
)

// SessionMapStorage mirrors RedisSessionStorage for tests and local runs.
type SessionMapStorage struct {
	mu       sync.RWMutex
	sessions map[string]string
}

func NewSessionMapStorage() *SessionMapStorage {
	return &SessionMapStorage{sessions: make(map[string]string)}
}

func (s *SessionMapStorage) GetUserIdBySession(_ context.Context, sessionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[sessionID]
	return userID, ok
}

func (s *SessionMapStorage) StoreSession(_ context.Context, sessionID string, userID string) error {
	s.mu.Lock()
	s.sessions[sessionID] = userID
	s.mu.Unlock()
	return nil
}

func (s *SessionMapStorage) DeleteSession(_ context.Context, sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	return true
}

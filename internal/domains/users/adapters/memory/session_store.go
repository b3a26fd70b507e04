package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/ventrest-api/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

type session struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]session{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *SessionStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *SessionStore) Save(_ context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *SessionStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.sessions[token]
	return ok && s.now().Before(stored.expiresAt), nil
}

func (s *SessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) DeleteForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, stored := range s.sessions {
		if stored.userID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var purged int64
	for token, stored := range s.sessions {
		if !now.Before(stored.expiresAt) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}

package sessions

import (
	"context"
	"sync"
	"time"

	"vocabdrill/internal/models"
)

// MemoryStore keeps practice sessions in process memory.
// Idle sessions are removed by Sweep.
type MemoryStore struct {
	sessions map[int64]*models.PracticeSession
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*models.PracticeSession),
		now:      time.Now,
	}
}

// Get returns a copy of the user's session, or nil if there is none
func (s *MemoryStore) Get(_ context.Context, userID int64) (*models.PracticeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

// Save stores a copy of the session
func (s *MemoryStore) Save(_ context.Context, session *models.PracticeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.UserID] = session.Clone()
	return nil
}

// Delete removes the user's session
func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

// Sweep removes sessions not updated within idle and returns how many it removed
func (s *MemoryStore) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for userID, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed
}

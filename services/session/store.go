package session

import (
	"sync"
	"time"

	"voicetable/models"

	"github.com/google/uuid"
)

// MemorySessionStore keeps sessions in a mutex-guarded map for the lifetime of
// the process. Clock and id generation are injectable so tests can pin both.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session

	Now   func() time.Time
	NewID func() string
}

// NewMemorySessionStore returns a store backed by time.Now and uuid ids.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.Session),
		Now:      time.Now,
		NewID:    func() string { return uuid.New().String() },
	}
}

// Create allocates a fresh session in the WELCOME state.
func (s *MemorySessionStore) Create() *models.Session {
	sess := &models.Session{
		ID:             s.NewID(),
		State:          models.StateWelcome,
		StartTimestamp: s.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get looks up a session by id.
func (s *MemorySessionStore) Get(id string) (*models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Delete removes a session. The dialogue never calls this itself; it exists so
// the transport may evict on disconnect if an eviction policy is ever adopted.
func (s *MemorySessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

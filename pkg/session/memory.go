package session

import (
	"context"
	"sync"
)

// MemoryStore holds the session in process memory. Used by tests and by
// callers that do not want credentials to outlive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	session Session
	present bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = s
	m.present = true
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.present || m.session.AccessToken == "" {
		return Session{}, false
	}
	return m.session, true
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = Session{}
	m.present = false
	return nil
}

func (m *MemoryStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.Load(ctx)
	return ok
}

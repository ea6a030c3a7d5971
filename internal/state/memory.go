package state

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	sessions map[string]*Session
	current  map[string]string
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		current:  make(map[string]string),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.current[s.UserID]; ok {
		delete(m.sessions, old)
	}
	m.sessions[s.ID] = copySession(s)
	m.current[s.UserID] = s.ID
	return nil
}

func (m *MemoryStore) Current(ctx context.Context, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.current[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return m.get(id)
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(sessionID)
}

func (m *MemoryStore) get(sessionID string) (*Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNoSession
	}
	return copySession(s), nil
}

func (m *MemoryStore) UpdateItem(ctx context.Context, sessionID string, item ItemState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNoSession
	}
	if item.Index < 0 || item.Index >= len(s.Items) {
		return fmt.Errorf("item index %d out of range", item.Index)
	}
	s.Items[item.Index] = item
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.current[userID]; ok {
		delete(m.sessions, id)
		delete(m.current, userID)
	}
	return nil
}

// copySession detaches the item slice so callers never share it with the store
func copySession(s *Session) *Session {
	c := *s
	c.Items = append([]ItemState(nil), s.Items...)
	return &c
}

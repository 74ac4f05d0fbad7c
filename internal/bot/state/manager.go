package state

import (
	"context"
	"sync"
)

// Manager keeps conversations in process memory
type Manager struct {
	conversations map[int64]Conversation
	mu            sync.RWMutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		conversations: make(map[int64]Conversation),
	}
}

// Get returns the user's conversation, Idle when none is stored
func (m *Manager) Get(_ context.Context, userID int64) (Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, exists := m.conversations[userID]
	if !exists {
		return Idle(), nil
	}
	return conv, nil
}

// Set replaces the user's conversation. Storing Idle drops the entry.
func (m *Manager) Set(ctx context.Context, userID int64, conv Conversation) error {
	if conv.IsIdle() {
		return m.Clear(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[userID] = conv
	return nil
}

// Clear resets the user to Idle
func (m *Manager) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, userID)
	return nil
}

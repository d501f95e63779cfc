package session

import (
	"context"
	"sync"
)

// Manager holds the active session and replaces it on restart.
type Manager struct {
	opts Options

	mu      sync.RWMutex
	current *Session
}

// NewManager starts the first session.
func NewManager(ctx context.Context, opts Options) (*Manager, error) {
	s, err := New(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Manager{opts: opts, current: s}, nil
}

// Current returns the active session.
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Restart discards the active session and starts a new one with an empty
// cart, a zero discount and a fresh invoice number.
func (m *Manager) Restart(ctx context.Context) (*Session, error) {
	s, err := New(ctx, m.opts)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s, nil
}

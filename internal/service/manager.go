package service

import (
	"sync"

	"catalog-picker/internal/models"
	"catalog-picker/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager owns the open sessions
type Manager struct {
	deps   SessionDeps
	logger *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager sharing deps across sessions
func NewManager(deps SessionDeps) *Manager {
	return &Manager{
		deps:     deps,
		logger:   util.Named("sessions"),
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session with a generated id
func (m *Manager) Create() *Session {
	return m.Open(uuid.New().String())
}

// Open returns the session with id, creating it if needed
func (m *Manager) Open(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := NewSession(id, m.deps)
	m.sessions[id] = s
	util.ActiveSessions.Inc()
	m.logger.Info("Session opened", zap.String("session_id", id))
	return s
}

// Get returns an open session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return s, nil
}

// Close removes a session and stops its background work
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Close()
	util.ActiveSessions.Dec()
	m.logger.Info("Session closed", zap.String("session_id", id))
	return true
}

// CloseAll closes every session
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		util.ActiveSessions.Dec()
	}
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

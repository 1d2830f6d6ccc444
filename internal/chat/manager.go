package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Manager keeps the open sessions. Sessions never share state; the
// manager only indexes them.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	replier  *Replier
	defaults []SessionOption
	newID    func() string
}

type ManagerOption func(*Manager)

// WithSessionDefaults applies opts to every session the manager creates.
func WithSessionDefaults(opts ...SessionOption) ManagerOption {
	return func(m *Manager) { m.defaults = append(m.defaults, opts...) }
}

// WithManagerListener receives the exchanges of every session.
func WithManagerListener(l Listener) ManagerOption {
	return WithSessionDefaults(WithListener(l))
}

func WithSessionIDs(f func() string) ManagerOption {
	return func(m *Manager) { m.newID = f }
}

func NewManager(replier *Replier, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		replier:  replier,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) Replier() *Replier { return m.replier }

func (m *Manager) Create(channel string, opts ...SessionOption) *Session {
	s, _ := m.GetOrCreate(m.newID(), channel, opts...)
	return s
}

// GetOrCreate returns the session stored under key, creating it when absent.
func (m *Manager) GetOrCreate(key, channel string, opts ...SessionOption) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s, false
	}
	all := make([]SessionOption, 0, len(m.defaults)+len(opts))
	all = append(all, m.defaults...)
	all = append(all, opts...)
	s := NewSession(key, channel, m.replier, all...)
	m.sessions[key] = s
	return s, true
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close ends the session and cancels its pending reply.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

package listener

import (
	"context"
	"log/slog"
	"sync"
)

// SessionManager tracks the live websocket sessions so they can be closed
// together on shutdown.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: map[string]*session{},
	}
}

func (m *SessionManager) add(s *session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.id] = s
	m.wg.Add(1)
}

// remove drops s from the registry and returns how many sessions its user
// still has open. Removing and counting under one lock means exactly one of
// a user's closing sessions sees zero.
func (m *SessionManager) remove(s *session) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, s.id)
	return m.count(s.userId)
}

// done marks a session's handler as finished.
func (m *SessionManager) done() {
	m.wg.Done()
}

// Count returns the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Sessions returns the session count per user.
func (m *SessionManager) Sessions(userId string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.count(userId)
}

func (m *SessionManager) count(userId string) int {
	n := 0
	for _, s := range m.sessions {
		if s.userId == userId {
			n++
		}
	}
	return n
}

// CloseAll closes every session and waits for their handlers to finish.
func (m *SessionManager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	open := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	for _, s := range open {
		s.close()
	}
	m.wg.Wait()
	slog.InfoContext(ctx, "closed websocket sessions", "count", len(open))
}

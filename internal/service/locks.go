package service

import "sync"

// sessionLocks serializes send_message turns per session id. Distinct
// sessions never block one another; entries are kept for the process
// lifetime, which is fine at request-scale session counts.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lock acquires the session's mutex and returns its release func.
func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

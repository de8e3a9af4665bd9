package server

import (
	"context"
	"sync"
	"time"

	"trade-bridge/src/logger"
)

// -----------------------------------------------------------------------------
// SessionRegistry tracks every connected session and tears down the ones
// that go silent past the heartbeat timeout.
// -----------------------------------------------------------------------------

const (
	heartbeatTimeout = 30 * time.Second
	sweepInterval    = 10 * time.Second
)

type SessionRegistry struct {
	Logger *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// -----------------------------------------------------------------------------

func NewSessionRegistry(log *logger.Logger) *SessionRegistry {
	return &SessionRegistry{
		Logger:   log,
		sessions: make(map[string]*Session),
	}
}

// -----------------------------------------------------------------------------

func (r *SessionRegistry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Remove detaches a session by id. Returns false if it was already gone.
func (r *SessionRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// -----------------------------------------------------------------------------

func (r *SessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// -----------------------------------------------------------------------------

// Run sweeps for sessions past the heartbeat timeout. Closing the connection
// unwinds the session's readPump, which handles the rest of the teardown.
func (r *SessionRegistry) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// -----------------------------------------------------------------------------

func (r *SessionRegistry) sweep() {
	r.mu.RLock()
	var stale []*Session
	for _, s := range r.sessions {
		if s.idleFor() > heartbeatTimeout {
			stale = append(stale, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range stale {
		r.Logger.Warning("Session %s missed heartbeat (%s idle), closing", s.id, s.idleFor().Round(time.Second))
		s.close()
	}
}

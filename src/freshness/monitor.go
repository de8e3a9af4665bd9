package freshness

import (
	"sync"
	"time"

	"trade-bridge/src/logger"
	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// Monitor owns the connectivity state machine. Every successful broker read
// advances lastSuccess; failed reads only trigger a recomputation. Staleness
// is also recomputed lazily on State() so a silent upstream degrades without
// needing a background timer.
//
//	Disconnected -> Connecting   on handshake
//	Connecting   -> Connected    on first successful read
//	Connected    -> Stale        when now - lastSuccess > maxAge
//	Stale        -> Connected    on a successful read before the hard limit
//	any          -> Disconnected on close, fatal error, or age > 5*maxAge
// -----------------------------------------------------------------------------

const hardDisconnectFactor = 5

type Monitor struct {
	mu          sync.Mutex
	state       models.ConnectivityState
	lastSuccess time.Time
	maxAge      time.Duration
	logger      *logger.Logger

	now func() time.Time // swapped in tests
}

// -----------------------------------------------------------------------------

func NewMonitor(maxAge time.Duration, log *logger.Logger) *Monitor {
	return &Monitor{
		state:  models.StateDisconnected,
		maxAge: maxAge,
		logger: log,
		now:    time.Now,
	}
}

// -----------------------------------------------------------------------------

// MarkHandshake records that the underlying source completed a handshake
// attempt but has not yet produced data.
func (m *Monitor) MarkHandshake() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == models.StateDisconnected {
		m.transition(models.StateConnecting)
	}
}

// -----------------------------------------------------------------------------

// MarkSuccess records a successful read and advances lastSuccess.
func (m *Monitor) MarkSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastSuccess = m.now()
	if m.state != models.StateConnected {
		m.transition(models.StateConnected)
	}
}

// -----------------------------------------------------------------------------

// MarkFailure records a failed read. lastSuccess does not advance; the state
// is recomputed from the current age.
func (m *Monitor) MarkFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recompute()
}

// -----------------------------------------------------------------------------

// MarkClosed records an explicit close or unrecoverable error.
func (m *Monitor) MarkClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != models.StateDisconnected {
		m.transition(models.StateDisconnected)
	}
}

// -----------------------------------------------------------------------------

// State returns an immutable snapshot, recomputing staleness first.
func (m *Monitor) State() models.MConnectivitySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recompute()
	return models.MConnectivitySnapshot{State: m.state, LastUpdate: m.lastSuccess}
}

// -----------------------------------------------------------------------------

// recompute applies the age thresholds. Callers hold m.mu.
func (m *Monitor) recompute() {
	if m.state != models.StateConnected && m.state != models.StateStale {
		return
	}
	if m.lastSuccess.IsZero() {
		return
	}

	age := m.now().Sub(m.lastSuccess)
	switch {
	case age > hardDisconnectFactor*m.maxAge:
		// Downstream consumers must treat the source as unusable, not
		// merely delayed.
		m.transition(models.StateDisconnected)
	case age > m.maxAge:
		if m.state == models.StateConnected {
			m.transition(models.StateStale)
		}
	}
}

// -----------------------------------------------------------------------------

func (m *Monitor) transition(next models.ConnectivityState) {
	prev := m.state
	m.state = next
	if m.logger != nil {
		m.logger.Info("connectivity %s -> %s", prev, next)
	}
}

package models

import "time"

// -----------------------------------------------------------------------------
// Connectivity State
// -----------------------------------------------------------------------------

// ConnectivityState describes how trustworthy the broker source currently is.
// Exactly one value holds at any instant; owned by the freshness monitor.
type ConnectivityState string

const (
	StateDisconnected ConnectivityState = "disconnected"
	StateConnecting   ConnectivityState = "connecting"
	StateConnected    ConnectivityState = "connected"
	StateStale        ConnectivityState = "stale"
)

// -----------------------------------------------------------------------------

// MConnectivitySnapshot is an immutable per-read view of the monitor.
type MConnectivitySnapshot struct {
	State      ConnectivityState `json:"state"`
	LastUpdate time.Time         `json:"last_update"`
}

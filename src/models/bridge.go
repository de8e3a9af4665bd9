package models

// -----------------------------------------------------------------------------
// Bridge File Contract
// -----------------------------------------------------------------------------

// MBridgeFile is the structured document an external terminal process
// rewrites periodically. The file is considered fresh iff its modification
// time is within the configured max age.
type MBridgeFile struct {
	Timestamp int64          `json:"timestamp"` // unix seconds, writer clock
	Account   MBridgeAccount `json:"account"`
	Tick      MBridgeTick    `json:"tick"`
}

type MBridgeAccount struct {
	Login    string  `json:"login"`
	Balance  float64 `json:"balance"`
	Equity   float64 `json:"equity"`
	Margin   float64 `json:"margin"`
	Profit   float64 `json:"profit"`
	Currency string  `json:"currency"`
}

type MBridgeTick struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Time   int64   `json:"time"` // unix seconds
}

// -----------------------------------------------------------------------------

// MBridgeCommand is one pending instruction written for (or polled by) the
// external bridge process. Effects are asynchronous: the poll interval is
// part of the request latency.
type MBridgeCommand struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Params    map[string]string `json:"params,omitempty"`
	CreatedAt int64             `json:"created_at"`
}

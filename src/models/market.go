package models

import "time"

// -----------------------------------------------------------------------------
// Market Data Structures
// -----------------------------------------------------------------------------

// MAccountSnapshot is a point-in-time view of the trading account.
// Immutable once created; newer snapshots supersede older ones.
type MAccountSnapshot struct {
	Login      string    `json:"login,omitempty"`
	Balance    float64   `json:"balance"`
	Equity     float64   `json:"equity"`
	Margin     float64   `json:"margin"`
	FreeMargin float64   `json:"free_margin"`
	Profit     float64   `json:"profit"`
	Currency   string    `json:"currency"`
	CapturedAt time.Time `json:"captured_at"`
}

// -----------------------------------------------------------------------------

// MTickSample is a single bid/ask observation. Invariant: Ask >= Bid.
type MTickSample struct {
	Symbol     string    `json:"symbol"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
	CapturedAt time.Time `json:"time"`
}

// Spread returns ask minus bid in price units.
func (t MTickSample) Spread() float64 {
	return t.Ask - t.Bid
}

// -----------------------------------------------------------------------------

// MSymbolInfo carries broker-reported instrument metadata.
type MSymbolInfo struct {
	Symbol  string  `json:"symbol"`
	Point   float64 `json:"point"`
	Digits  int     `json:"digits"`
	MinLot  float64 `json:"min_lot"`
	MaxLot  float64 `json:"max_lot"`
	LotStep float64 `json:"lot_step"`
}

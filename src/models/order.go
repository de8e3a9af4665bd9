package models

import "time"

// -----------------------------------------------------------------------------
// Order Structures
// -----------------------------------------------------------------------------

type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// -----------------------------------------------------------------------------

// RejectReason values surfaced on MOrderResult. The four business rejections
// (spread, hours, daily limit, parameters) are final; SourceUnavailable and
// Timeout may be retried by the caller after backoff. Ambiguous means the
// order was sent but the response was lost: reconcile manually, never resend.
const (
	ReasonSourceUnavailable   = "SOURCE_UNAVAILABLE"
	ReasonTimeout             = "TIMEOUT"
	ReasonStaleData           = "STALE_DATA"
	ReasonSpreadTooWide       = "SPREAD_TOO_WIDE"
	ReasonOutsideTradingHours = "OUTSIDE_TRADING_HOURS"
	ReasonDailyLimitReached   = "DAILY_LIMIT_REACHED"
	ReasonInvalidParameters   = "INVALID_PARAMETERS"
	ReasonUnsupported         = "UNSUPPORTED"
	ReasonAmbiguous           = "AMBIGUOUS"
	ReasonBrokerRejected      = "BROKER_REJECTED"
)

// -----------------------------------------------------------------------------

// MOrderRequest is created once per manual or strategy trigger and consumed
// exactly once by the admission gate. Never mutated after creation.
type MOrderRequest struct {
	ID             string    `json:"id"`
	Side           OrderSide `json:"side"`
	Symbol         string    `json:"symbol"`
	Volume         float64   `json:"volume"`
	ReferencePrice float64   `json:"reference_price"`
	StopLossPips   float64   `json:"stop_loss_pips"`
	TakeProfitPips float64   `json:"take_profit_pips"`
	StopLoss       float64   `json:"stop_loss,omitempty"`   // concrete level, set by the gate
	TakeProfit     float64   `json:"take_profit,omitempty"` // concrete level, set by the gate
	Comment        string    `json:"comment,omitempty"`
	RequestedAt    time.Time `json:"requested_at"`
}

// -----------------------------------------------------------------------------

// MOrderResult is the terminal outcome of an order request.
type MOrderResult struct {
	Accepted    bool    `json:"accepted"`
	Ticket      int64   `json:"ticket,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	FilledPrice float64 `json:"filled_price,omitempty"`
}

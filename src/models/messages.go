package models

// -----------------------------------------------------------------------------
// Client Wire Messages
// -----------------------------------------------------------------------------

// Inbound command types accepted on the client websocket.
const (
	CmdSubscribe        = "subscribe"
	CmdStartTrading     = "start_trading"
	CmdStopTrading      = "stop_trading"
	CmdPlaceOrder       = "place_order"
	CmdUpdateParameters = "update_parameters"
)

// Outbound message types.
const (
	MsgAccountStatus = "account_status"
	MsgCandleClose   = "candle_close"
	MsgOrderResult   = "order_result"
	MsgCommandResult = "command_result"
)

// -----------------------------------------------------------------------------

// MClientCommand is a single inbound message from a client session.
// Fields beyond Type are populated depending on the command.
type MClientCommand struct {
	Type      string `json:"type"`
	Symbol    string `json:"symbol,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`

	// place_order
	Side           string  `json:"side,omitempty"`
	Volume         float64 `json:"volume,omitempty"`
	StopLossPips   float64 `json:"stop_loss_pips,omitempty"`
	TakeProfitPips float64 `json:"take_profit_pips,omitempty"`
	Comment        string  `json:"comment,omitempty"`

	// update_parameters carries the full replacement set
	Parameters *MTradingParameters `json:"parameters,omitempty"`
}

// -----------------------------------------------------------------------------

// MStatusUpdate is the periodic account/tick broadcast sent to every session.
type MStatusUpdate struct {
	Type    string            `json:"type"` // account_status
	Account *MAccountSnapshot `json:"account,omitempty"`
	Tick    *MTickSample      `json:"tick,omitempty"`
	State   ConnectivityState `json:"state"`
}

// -----------------------------------------------------------------------------

// MCandleClose is delivered only to sessions subscribed to the matching
// symbol and timeframe.
type MCandleClose struct {
	Type   string  `json:"type"` // candle_close
	Symbol string  `json:"symbol"`
	Candle MCandle `json:"candle"`
}

// -----------------------------------------------------------------------------

// MOrderResultMessage relays an order outcome to the requesting session only.
type MOrderResultMessage struct {
	Type        string  `json:"type"` // order_result
	RequestID   string  `json:"request_id,omitempty"`
	Accepted    bool    `json:"accepted"`
	Ticket      int64   `json:"ticket,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	FilledPrice float64 `json:"filled_price,omitempty"`
}

// -----------------------------------------------------------------------------

// MCommandResult acknowledges start/stop/update commands.
type MCommandResult struct {
	Type    string `json:"type"` // command_result
	Command string `json:"command"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

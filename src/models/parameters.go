package models

// -----------------------------------------------------------------------------

// MTradingParameters is the mutable per-account trading configuration.
// It is always published as a complete value: readers receive a copy and
// writers swap the whole struct, so a half-updated set is never observed.
type MTradingParameters struct {
	RiskPercent     float64 `json:"risk_percent" yaml:"risk_percent"`
	MaxDailyTrades  int     `json:"max_daily_trades" yaml:"max_daily_trades"`
	StopLossPips    float64 `json:"stop_loss_pips" yaml:"stop_loss_pips"`
	TakeProfitPips  float64 `json:"take_profit_pips" yaml:"take_profit_pips"`
	MaxSpreadPips   float64 `json:"max_spread_pips" yaml:"max_spread_pips"`
	TradingStart    string  `json:"trading_start" yaml:"trading_start"` // "HH:MM"
	TradingEnd      string  `json:"trading_end" yaml:"trading_end"`     // "HH:MM", window is [start, end)
	LotSize         float64 `json:"lot_size" yaml:"lot_size"`
	StrategyEnabled bool    `json:"strategy_enabled" yaml:"strategy_enabled"`
}

// -----------------------------------------------------------------------------

// DefaultTradingParameters mirrors the stock bot settings: 2% risk, 10 trades
// per day, 50/100 pip SL/TP, 5 pip max spread, trading around the clock.
func DefaultTradingParameters() MTradingParameters {
	return MTradingParameters{
		RiskPercent:     2.0,
		MaxDailyTrades:  10,
		StopLossPips:    50,
		TakeProfitPips:  100,
		MaxSpreadPips:   5.0,
		TradingStart:    "00:00",
		TradingEnd:      "23:59",
		LotSize:         0.01,
		StrategyEnabled: false,
	}
}

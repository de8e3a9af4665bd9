package decider

import (
	"trade-bridge/src/interfaces"
	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// FlatDecider never signals. It is the stock decider wired at startup: the
// engine machinery (bar history, gate submission) stays fully exercised while
// the actual signal function is supplied from outside, by swapping in any
// ISignalDecider implementation.
// -----------------------------------------------------------------------------

type FlatDecider struct{}

// -----------------------------------------------------------------------------

func NewFlatDecider() *FlatDecider {
	return &FlatDecider{}
}

// -----------------------------------------------------------------------------

// Decide always stays flat.
func (FlatDecider) Decide(candles []models.MCandle) models.OrderSide {
	return interfaces.SignalNone
}

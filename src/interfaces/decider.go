package interfaces

import "trade-bridge/src/models"

// -----------------------------------------------------------------------------
// ISignalDecider is the external strategy decision function: given recent
// market data it yields a directional signal. The indicator math behind a
// real decider lives outside this system; the engine only consumes the
// result through the admission gate.
// -----------------------------------------------------------------------------

// SignalNone means no trade; otherwise the decider returns the side to open.
const SignalNone models.OrderSide = ""

type ISignalDecider interface {

	// Decide inspects candles (oldest first, last bar possibly forming) and
	// returns SideBuy, SideSell, or SignalNone.
	Decide(candles []models.MCandle) models.OrderSide
}

package engine

import (
	"context"
	"sync"
	"time"

	"trade-bridge/src/gate"
	"trade-bridge/src/interfaces"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"
	"trade-bridge/src/utils"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Engine is the automated strategy loop. Closed bars arrive from the stream
// hub, accumulate in a ring, and are handed to the decider; when the decider
// signals and the strategy is enabled, the engine submits through the same
// admission gate as a manual order. OnCandleClose never blocks its caller:
// bars queue into a small channel and trading happens on the engine's own
// goroutine.
// -----------------------------------------------------------------------------

const (
	historySize   = 200
	submitTimeout = 15 * time.Second
)

type Engine struct {
	Logger *logger.Logger

	gate    *gate.Gate
	decider interfaces.ISignalDecider
	symbol  string

	ring    *utils.CandleRing
	candles chan models.MCandle
}

// -----------------------------------------------------------------------------

func NewEngine(g *gate.Gate, d interfaces.ISignalDecider, symbol string, log *logger.Logger) *Engine {
	return &Engine{
		Logger:  log,
		gate:    g,
		decider: d,
		symbol:  symbol,
		ring:    utils.NewCandleRing(historySize),
		candles: make(chan models.MCandle, 16),
	}
}

// -----------------------------------------------------------------------------

// OnCandleClose is the hub hook. Non-blocking: if the engine is behind, the
// oldest queued bar is dropped in favor of the newest.
func (e *Engine) OnCandleClose(c models.MCandle) {
	select {
	case e.candles <- c:
		return
	default:
	}

	select {
	case <-e.candles:
	default:
	}
	select {
	case e.candles <- c:
	default:
	}
}

// -----------------------------------------------------------------------------

// Run consumes closed bars until ctx is cancelled.
func (e *Engine) Run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-e.candles:
			e.onBar(ctx, c)
		}
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) onBar(ctx context.Context, c models.MCandle) {
	e.ring.Append(c)

	params := e.gate.Params().Get()
	if !params.StrategyEnabled {
		return
	}
	if e.decider == nil {
		return
	}

	signal := e.decider.Decide(e.ring.GetAll())
	if signal == interfaces.SignalNone {
		return
	}

	req := models.MOrderRequest{
		ID:             uuid.New().String(),
		Side:           signal,
		Symbol:         e.symbol,
		Volume:         params.LotSize,
		StopLossPips:   params.StopLossPips,
		TakeProfitPips: params.TakeProfitPips,
		Comment:        "strategy",
	}

	submitCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	result, err := e.gate.Submit(submitCtx, req)
	if err != nil {
		e.Logger.Warning("Strategy order refused: %v", err)
		return
	}
	if result.Accepted {
		e.Logger.Info("Strategy order filled: %s %s ticket %d @ %.2f",
			signal, e.symbol, result.Ticket, result.FilledPrice)
	} else {
		e.Logger.Warning("Strategy order rejected by broker: %s", result.Reason)
	}
}

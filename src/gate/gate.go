package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trade-bridge/src/brokererr"
	"trade-bridge/src/freshness"
	"trade-bridge/src/interfaces"
	"trade-bridge/src/logger"
	"trade-bridge/src/models"
	"trade-bridge/src/utils"
)

// -----------------------------------------------------------------------------
// Gate is the admission control in front of order submission. Every request
// runs through one serialized critical section per account: connectivity,
// trading window, spread, daily limit and parameter sanity are checked in
// that order, then the order is forwarded and the daily counter incremented
// only when the broker accepts. Serialization guarantees two concurrent
// requests can never both consume the last slot of the day.
// -----------------------------------------------------------------------------

// pipFactor converts broker points to standard pips (1 pip = 10 points on
// 2-digit metals and 5-digit FX quotes).
const pipFactor = 10.0

type Gate struct {
	Logger *logger.Logger

	source   interfaces.IBrokerSource
	monitor  *freshness.Monitor
	params   *ParamStore
	counter  *DailyTradeCounter
	calendar *utils.SessionCalendar // nil for 24h OTC instruments

	mu  sync.Mutex
	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewGate(source interfaces.IBrokerSource, monitor *freshness.Monitor, params *ParamStore, calendar *utils.SessionCalendar, log *logger.Logger) *Gate {
	return &Gate{
		Logger:   log,
		source:   source,
		monitor:  monitor,
		params:   params,
		counter:  NewDailyTradeCounter(),
		calendar: calendar,
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// Params exposes the shared parameter store.
func (g *Gate) Params() *ParamStore {
	return g.params
}

// -----------------------------------------------------------------------------

// TradesToday returns the current daily counter value.
func (g *Gate) TradesToday() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter.Count(g.now())
}

// -----------------------------------------------------------------------------

// ResetDailyCounter starts a fresh counting window, used by the maintenance
// rollover job.
func (g *Gate) ResetDailyCounter() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter.Reset(g.now())
}

// -----------------------------------------------------------------------------

// Submit runs the admission checks and forwards the order. Rejections come
// back as errors carrying the reason kind; the returned result is only valid
// when err is nil.
func (g *Gate) Submit(ctx context.Context, req models.MOrderRequest) (models.MOrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	params := g.params.Get()

	// 1. Connectivity
	if state := g.monitor.State().State; state != models.StateConnected {
		return models.MOrderResult{}, fmt.Errorf("%w: source is %s", brokererr.ErrSourceUnavailable, state)
	}

	// 2. Trading window and venue session
	window, err := newWindow(params)
	if err != nil {
		return models.MOrderResult{}, fmt.Errorf("%w: %v", brokererr.ErrInvalidParameters, err)
	}
	if !window.Contains(now) {
		return models.MOrderResult{}, fmt.Errorf("%w: %s outside [%s, %s)",
			brokererr.ErrOutsideTradingHours, now.Format("15:04:05"), params.TradingStart, params.TradingEnd)
	}
	if g.calendar != nil && !g.calendar.IsOpen(now) {
		return models.MOrderResult{}, fmt.Errorf("%w: venue closed", brokererr.ErrOutsideTradingHours)
	}

	// 3. Spread
	tick, err := g.source.GetTick(ctx, req.Symbol)
	if err != nil {
		return models.MOrderResult{}, err
	}
	info, err := g.source.GetSymbolInfo(ctx, req.Symbol)
	if err != nil {
		return models.MOrderResult{}, err
	}
	if info.Point <= 0 {
		return models.MOrderResult{}, fmt.Errorf("%w: symbol %s reports non-positive point", brokererr.ErrInvalidParameters, req.Symbol)
	}

	spreadPips := tick.Spread() / (info.Point * pipFactor)
	if spreadPips > params.MaxSpreadPips {
		return models.MOrderResult{}, fmt.Errorf("%w: %.1f > %.1f pips",
			brokererr.ErrSpreadTooWide, spreadPips, params.MaxSpreadPips)
	}

	// 4. Daily limit
	if g.counter.Count(now) >= params.MaxDailyTrades {
		return models.MOrderResult{}, fmt.Errorf("%w: %d/%d",
			brokererr.ErrDailyLimitReached, g.counter.Count(now), params.MaxDailyTrades)
	}

	// 5. Parameter sanity
	if req.Volume <= 0 || req.Volume < info.MinLot || req.Volume > info.MaxLot {
		return models.MOrderResult{}, fmt.Errorf("%w: volume %.2f outside [%.2f, %.2f]",
			brokererr.ErrInvalidParameters, req.Volume, info.MinLot, info.MaxLot)
	}
	if req.StopLossPips <= 0 || req.TakeProfitPips <= 0 {
		return models.MOrderResult{}, fmt.Errorf("%w: stop distances must be positive", brokererr.ErrInvalidParameters)
	}
	if req.Side != models.SideBuy && req.Side != models.SideSell {
		return models.MOrderResult{}, fmt.Errorf("%w: unknown side %q", brokererr.ErrInvalidParameters, req.Side)
	}

	// Price the order off the side's quote and resolve stop distances to
	// absolute levels.
	final := req
	final.RequestedAt = now
	if final.Side == models.SideBuy {
		final.ReferencePrice = tick.Ask
		final.StopLoss = tick.Ask - final.StopLossPips*info.Point
		final.TakeProfit = tick.Ask + final.TakeProfitPips*info.Point
	} else {
		final.ReferencePrice = tick.Bid
		final.StopLoss = tick.Bid + final.StopLossPips*info.Point
		final.TakeProfit = tick.Bid - final.TakeProfitPips*info.Point
	}

	result, err := g.source.SubmitOrder(ctx, final)
	if err != nil {
		// Rejected orders are business decisions and ambiguous outcomes
		// must never be resent; both surface verbatim to the caller.
		return models.MOrderResult{}, err
	}

	if result.Accepted {
		g.counter.Increment(now)
		if g.Logger != nil {
			g.Logger.Info("Order accepted: %s %s %.2f lots @ %.2f (ticket %d, %d/%d today)",
				final.Side, final.Symbol, final.Volume, result.FilledPrice,
				result.Ticket, g.counter.Count(now), params.MaxDailyTrades)
		}
	} else if g.Logger != nil {
		g.Logger.Warning("Order rejected by broker: %s", result.Reason)
	}

	return result, nil
}

// -----------------------------------------------------------------------------

func newWindow(p models.MTradingParameters) (utils.TradingWindow, error) {
	return utils.NewTradingWindow(p.TradingStart, p.TradingEnd)
}

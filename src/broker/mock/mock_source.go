package mock

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"trade-bridge/src/logger"
	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// MockSource simulates a broker terminal. Prices follow a seeded random walk,
// account fields stay at their simulated defaults and every order fills at
// the current quote. Used for development and as the fallback when no real
// terminal is reachable.
// -----------------------------------------------------------------------------

const (
	simulatedBalance = 10000.0
	simulatedPoint   = 0.01
	simulatedMinLot  = 0.01
	simulatedMaxLot  = 100.0
)

type MockSource struct {
	Logger *logger.Logger

	mu         sync.Mutex
	rng        *rand.Rand
	symbol     string
	bid        float64
	spread     float64
	balance    float64
	profit     float64
	nextTicket int64
	closed     bool
}

// -----------------------------------------------------------------------------

func NewMockSource(symbol string, seed int64, log *logger.Logger) *MockSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &MockSource{
		Logger:     log,
		rng:        rand.New(rand.NewSource(seed)),
		symbol:     symbol,
		bid:        2385.40,
		spread:     0.50,
		balance:    simulatedBalance,
		nextTicket: 100000,
	}
}

// -----------------------------------------------------------------------------

func (s *MockSource) Name() string {
	return "mock"
}

// -----------------------------------------------------------------------------

func (s *MockSource) GetAccount(ctx context.Context) (models.MAccountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.MAccountSnapshot{}, context.Canceled
	}

	return models.MAccountSnapshot{
		Login:      "12345678",
		Balance:    s.balance,
		Equity:     s.balance + s.profit,
		Margin:     0,
		FreeMargin: s.balance + s.profit,
		Profit:     s.profit,
		Currency:   "USD",
		CapturedAt: time.Now().UTC(),
	}, nil
}

// -----------------------------------------------------------------------------

func (s *MockSource) GetTick(ctx context.Context, symbol string) (models.MTickSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.MTickSample{}, context.Canceled
	}

	s.step()
	return models.MTickSample{
		Symbol:     symbol,
		Bid:        s.bid,
		Ask:        s.bid + s.spread,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// -----------------------------------------------------------------------------

func (s *MockSource) GetSymbolInfo(ctx context.Context, symbol string) (models.MSymbolInfo, error) {
	return models.MSymbolInfo{
		Symbol:  symbol,
		Point:   simulatedPoint,
		Digits:  2,
		MinLot:  simulatedMinLot,
		MaxLot:  simulatedMaxLot,
		LotStep: 0.01,
	}, nil
}

// -----------------------------------------------------------------------------

// GetCandles synthesizes count bars ending at the current walk position.
// Each bar is one step of the same walk so consecutive calls stay coherent.
func (s *MockSource) GetCandles(ctx context.Context, symbol, timeframe string, count int) ([]models.MCandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, context.Canceled
	}

	dur, ok := models.TimeframeDuration(timeframe)
	if !ok {
		dur = time.Minute
	}
	if count <= 0 {
		count = 1
	}

	now := time.Now().UTC().Truncate(dur)
	candles := make([]models.MCandle, count)
	price := s.bid

	// Walk backwards so the most recent bar closes at the live price.
	for i := count - 1; i >= 0; i-- {
		open := price + (s.rng.Float64()-0.5)*s.spread*4
		high := maxOf(open, price) + s.rng.Float64()*s.spread
		low := minOf(open, price) - s.rng.Float64()*s.spread

		candles[i] = models.MCandle{
			OpenTime:  now.Add(-time.Duration(count-1-i) * dur),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Timeframe: timeframe,
		}
		price = open
	}

	return candles, nil
}

// -----------------------------------------------------------------------------

// SubmitOrder always fills at the side's current quote.
func (s *MockSource) SubmitOrder(ctx context.Context, req models.MOrderRequest) (models.MOrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.MOrderResult{}, context.Canceled
	}

	filled := s.bid
	if req.Side == models.SideBuy {
		filled = s.bid + s.spread
	}

	ticket := s.nextTicket
	s.nextTicket++

	if s.Logger != nil {
		s.Logger.Info("Simulated fill: %s %s %.2f lots @ %.2f (ticket %d)",
			req.Side, req.Symbol, req.Volume, filled, ticket)
	}

	return models.MOrderResult{
		Accepted:    true,
		Ticket:      ticket,
		FilledPrice: filled,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *MockSource) SubmitCommand(ctx context.Context, name string, params map[string]string) error {
	if s.Logger != nil {
		s.Logger.Info("Simulated command: %s %v", name, params)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// -----------------------------------------------------------------------------

// step advances the random walk by one tick. Callers hold s.mu.
func (s *MockSource) step() {
	s.bid += (s.rng.Float64() - 0.5) * 2 * simulatedPoint * 10
	if s.bid < simulatedPoint {
		s.bid = simulatedPoint
	}

	// Spread wobbles a little around its base but never collapses.
	s.spread = 0.50 + (s.rng.Float64()-0.5)*0.10
	s.profit += (s.rng.Float64() - 0.5) * 2
}

// -----------------------------------------------------------------------------

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

package gate

import (
	"fmt"
	"sync"
	"sync/atomic"

	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// ParamStore is the single shared TradingParameters instance for the account.
// Updates swap the whole set atomically, so a reader sees either the old or
// the new configuration, never a mix.
// -----------------------------------------------------------------------------

type ParamStore struct {
	// mu serializes writers; readers go straight through the pointer.
	mu      sync.Mutex
	current atomic.Pointer[models.MTradingParameters]
}

// -----------------------------------------------------------------------------

func NewParamStore(initial models.MTradingParameters) *ParamStore {
	s := &ParamStore{}
	s.current.Store(&initial)
	return s
}

// -----------------------------------------------------------------------------

// Get returns a copy of the current parameter set.
func (s *ParamStore) Get() models.MTradingParameters {
	return *s.current.Load()
}

// -----------------------------------------------------------------------------

// Set validates and publishes a full replacement parameter set.
func (s *ParamStore) Set(p models.MTradingParameters) error {
	if err := validateParameters(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Store(&p)
	return nil
}

// -----------------------------------------------------------------------------

// SetStrategyEnabled flips only the strategy flag, keeping the rest of the
// set intact. The read-modify-write runs under the writer lock so a
// concurrent Set is never overwritten with stale values.
func (s *ParamStore) SetStrategyEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *s.current.Load()
	p.StrategyEnabled = enabled
	s.current.Store(&p)
}

// -----------------------------------------------------------------------------

func validateParameters(p models.MTradingParameters) error {
	if p.RiskPercent <= 0 || p.RiskPercent > 100 {
		return fmt.Errorf("risk percent must be in (0, 100], got %f", p.RiskPercent)
	}
	if p.MaxDailyTrades <= 0 {
		return fmt.Errorf("max daily trades must be positive, got %d", p.MaxDailyTrades)
	}
	if p.StopLossPips <= 0 || p.TakeProfitPips <= 0 {
		return fmt.Errorf("stop loss and take profit distances must be positive")
	}
	if p.MaxSpreadPips <= 0 {
		return fmt.Errorf("max spread must be positive, got %f", p.MaxSpreadPips)
	}
	if p.LotSize <= 0 {
		return fmt.Errorf("lot size must be positive, got %f", p.LotSize)
	}
	if _, err := newWindow(p); err != nil {
		return err
	}
	return nil
}

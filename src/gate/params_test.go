package gate

import (
	"sync"
	"testing"

	"trade-bridge/src/models"
)

func TestSetRejectsInvalidParameters(t *testing.T) {
	store := NewParamStore(models.DefaultTradingParameters())

	bad := models.DefaultTradingParameters()
	bad.RiskPercent = -1

	if err := store.Set(bad); err == nil {
		t.Fatal("Expected negative risk to be rejected")
	}
	if got := store.Get(); got.RiskPercent != 2.0 {
		t.Errorf("Rejected set must not change the store, got %+v", got)
	}
}

func TestSetStrategyEnabledPreservesRest(t *testing.T) {
	initial := models.DefaultTradingParameters()
	initial.MaxDailyTrades = 7
	store := NewParamStore(initial)

	store.SetStrategyEnabled(true)

	got := store.Get()
	if !got.StrategyEnabled {
		t.Error("Expected strategy flag flipped on")
	}
	if got.MaxDailyTrades != 7 {
		t.Errorf("Expected the rest of the set untouched, got %+v", got)
	}
}

// A flag flip racing a full replacement must not resurrect the old set.
func TestConcurrentFlagFlipDoesNotLoseUpdate(t *testing.T) {
	update := models.DefaultTradingParameters()
	update.MaxDailyTrades = 42

	for round := 0; round < 200; round++ {
		store := NewParamStore(models.DefaultTradingParameters())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := store.Set(update); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			store.SetStrategyEnabled(true)
		}()
		wg.Wait()

		if got := store.Get(); got.MaxDailyTrades != 42 {
			t.Fatalf("Round %d: full update lost, got %+v", round, got)
		}
	}
}

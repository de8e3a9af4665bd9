package decider

import (
	"testing"
	"time"

	"trade-bridge/src/interfaces"
	"trade-bridge/src/models"
)

func TestFlatDeciderNeverSignals(t *testing.T) {
	d := NewFlatDecider()

	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	series := make([]models.MCandle, 50)
	for i := range series {
		series[i] = models.MCandle{
			OpenTime:  start.Add(time.Duration(i) * 5 * time.Minute),
			Close:     2385.0 + float64(i%7),
			Timeframe: "M5",
		}
	}

	if got := d.Decide(nil); got != interfaces.SignalNone {
		t.Errorf("Expected no signal on empty history, got %q", got)
	}
	if got := d.Decide(series); got != interfaces.SignalNone {
		t.Errorf("Expected flat decider to never signal, got %q", got)
	}
}

package mock

import (
	"context"
	"testing"

	"trade-bridge/src/models"
)

func TestTickHasPositiveSpread(t *testing.T) {
	s := NewMockSource("XAUUSD", 42, nil)
	defer s.Close()

	for i := 0; i < 100; i++ {
		tick, err := s.GetTick(context.Background(), "XAUUSD")
		if err != nil {
			t.Fatalf("GetTick failed: %v", err)
		}
		if tick.Ask <= tick.Bid {
			t.Fatalf("Expected ask > bid, got bid=%f ask=%f", tick.Bid, tick.Ask)
		}
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	a := NewMockSource("XAUUSD", 7, nil)
	b := NewMockSource("XAUUSD", 7, nil)

	for i := 0; i < 10; i++ {
		ta, _ := a.GetTick(context.Background(), "XAUUSD")
		tb, _ := b.GetTick(context.Background(), "XAUUSD")
		if ta.Bid != tb.Bid || ta.Ask != tb.Ask {
			t.Fatalf("Same seed diverged at step %d: %v vs %v", i, ta, tb)
		}
	}
}

func TestAccountDefaults(t *testing.T) {
	s := NewMockSource("XAUUSD", 1, nil)

	acc, err := s.GetAccount(context.Background())
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acc.Balance != 10000.0 {
		t.Errorf("Expected balance 10000, got %f", acc.Balance)
	}
	if acc.Currency != "USD" {
		t.Errorf("Expected USD, got %s", acc.Currency)
	}
}

func TestSymbolInfoBounds(t *testing.T) {
	s := NewMockSource("XAUUSD", 1, nil)

	info, err := s.GetSymbolInfo(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatalf("GetSymbolInfo failed: %v", err)
	}
	if info.Point != 0.01 {
		t.Errorf("Expected point 0.01, got %f", info.Point)
	}
	if info.MinLot != 0.01 || info.MaxLot != 100.0 {
		t.Errorf("Unexpected lot bounds: %f / %f", info.MinLot, info.MaxLot)
	}
}

func TestOrdersAlwaysFillWithUniqueTickets(t *testing.T) {
	s := NewMockSource("XAUUSD", 1, nil)

	seen := make(map[int64]bool)
	for i := 0; i < 5; i++ {
		res, err := s.SubmitOrder(context.Background(), models.MOrderRequest{
			Side:   models.SideBuy,
			Symbol: "XAUUSD",
			Volume: 0.01,
		})
		if err != nil {
			t.Fatalf("SubmitOrder failed: %v", err)
		}
		if !res.Accepted {
			t.Fatal("Expected simulated order to be accepted")
		}
		if seen[res.Ticket] {
			t.Fatalf("Duplicate ticket %d", res.Ticket)
		}
		seen[res.Ticket] = true
	}
}

func TestCandlesOldestFirstAndCoherent(t *testing.T) {
	s := NewMockSource("XAUUSD", 3, nil)

	candles, err := s.GetCandles(context.Background(), "XAUUSD", "M5", 20)
	if err != nil {
		t.Fatalf("GetCandles failed: %v", err)
	}
	if len(candles) != 20 {
		t.Fatalf("Expected 20 candles, got %d", len(candles))
	}

	for i := 1; i < len(candles); i++ {
		if !candles[i].OpenTime.After(candles[i-1].OpenTime) {
			t.Errorf("Candles not in ascending time order at index %d", i)
		}
	}
	for i, c := range candles {
		if c.High < c.Low || c.High < c.Close || c.Low > c.Open {
			t.Errorf("Incoherent OHLC at index %d: %+v", i, c)
		}
	}
}

func TestClosedSourceRejectsReads(t *testing.T) {
	s := NewMockSource("XAUUSD", 1, nil)
	s.Close()

	if _, err := s.GetTick(context.Background(), "XAUUSD"); err == nil {
		t.Error("Expected error from closed source")
	}
}

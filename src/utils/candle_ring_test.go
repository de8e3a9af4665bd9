package utils

import (
	"testing"
	"time"

	"trade-bridge/src/models"
)

func ringBar(i int, close float64) models.MCandle {
	return models.MCandle{
		Timeframe: "M5",
		OpenTime:  time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC).Add(time.Duration(i) * 5 * time.Minute),
		Close:     close,
	}
}

func TestAppendAndLatest(t *testing.T) {
	ring := NewCandleRing(10)

	for i := 0; i < 3; i++ {
		ring.Append(ringBar(i, 2385.0+float64(i)))
	}

	if ring.Size() != 3 {
		t.Fatalf("Expected size 3, got %d", ring.Size())
	}

	latest := ring.GetLatest(2)
	if len(latest) != 2 {
		t.Fatalf("Expected 2 bars, got %d", len(latest))
	}
	if latest[0].Close != 2386.0 || latest[1].Close != 2387.0 {
		t.Errorf("Expected oldest-first ordering, got closes %v and %v", latest[0].Close, latest[1].Close)
	}
}

func TestSameOpenTimeReplacesInPlace(t *testing.T) {
	ring := NewCandleRing(10)

	ring.Append(ringBar(0, 2385.0))
	// Same bar, still forming: a later snapshot must not grow the ring.
	ring.Append(ringBar(0, 2386.5))

	if ring.Size() != 1 {
		t.Fatalf("Expected the forming bar to replace in place, size is %d", ring.Size())
	}
	if got := ring.GetLatest(1)[0].Close; got != 2386.5 {
		t.Errorf("Expected updated close 2386.5, got %v", got)
	}
}

func TestWraparoundKeepsNewest(t *testing.T) {
	ring := NewCandleRing(5)

	for i := 0; i < 8; i++ {
		ring.Append(ringBar(i, float64(i)))
	}

	if ring.Size() != 5 {
		t.Fatalf("Expected size capped at 5, got %d", ring.Size())
	}

	all := ring.GetAll()
	for i, bar := range all {
		want := float64(i + 3) // bars 0..2 were evicted
		if bar.Close != want {
			t.Errorf("Bar %d: expected close %v, got %v", i, want, bar.Close)
		}
	}
}

func TestGetLatestMoreThanStored(t *testing.T) {
	ring := NewCandleRing(5)
	ring.Append(ringBar(0, 1))
	ring.Append(ringBar(1, 2))

	got := ring.GetLatest(50)
	if len(got) != 2 {
		t.Errorf("Expected all 2 stored bars, got %d", len(got))
	}
}

func TestClear(t *testing.T) {
	ring := NewCandleRing(5)
	ring.Append(ringBar(0, 1))
	ring.Clear()

	if ring.Size() != 0 || len(ring.GetAll()) != 0 {
		t.Error("Expected an empty ring after Clear")
	}
}

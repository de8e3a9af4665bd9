package utils

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// TradingWindow is the daily [start, end) interval during which the
// admission gate allows orders. Times are "HH:MM" wall-clock.
// -----------------------------------------------------------------------------

type TradingWindow struct {
	startMin int // minutes since midnight, inclusive
	endMin   int // minutes since midnight, exclusive
}

// -----------------------------------------------------------------------------

func NewTradingWindow(start, end string) (TradingWindow, error) {
	s, err := parseClock(start)
	if err != nil {
		return TradingWindow{}, fmt.Errorf("invalid trading start %q: %w", start, err)
	}
	e, err := parseClock(end)
	if err != nil {
		return TradingWindow{}, fmt.Errorf("invalid trading end %q: %w", end, err)
	}
	return TradingWindow{startMin: s, endMin: e}, nil
}

// -----------------------------------------------------------------------------

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// -----------------------------------------------------------------------------

// Contains reports whether t falls inside the window. The end minute is
// exclusive: with end "23:59", a request at 23:59:30 is outside. Windows
// where start > end wrap across midnight.
func (w TradingWindow) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()

	if w.startMin == w.endMin {
		// Degenerate window: never open.
		return false
	}
	if w.startMin < w.endMin {
		return m >= w.startMin && m < w.endMin
	}
	// Overnight window, e.g. 22:00 -> 06:00
	return m >= w.startMin || m < w.endMin
}

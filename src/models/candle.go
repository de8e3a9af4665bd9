package models

import "time"

// -----------------------------------------------------------------------------

// MCandle is one OHLC bar for a timeframe. Historical bars are immutable once
// their time bucket closes; the most recent bar may still be forming.
type MCandle struct {
	OpenTime  time.Time `json:"open_time"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Timeframe string    `json:"timeframe"` // e.g. "M15", "H1"
}

// -----------------------------------------------------------------------------

// TimeframeDuration maps MT-style timeframe names to bar lengths.
// Returns false for unknown timeframes.
func TimeframeDuration(timeframe string) (time.Duration, bool) {
	switch timeframe {
	case "M1":
		return time.Minute, true
	case "M5":
		return 5 * time.Minute, true
	case "M15":
		return 15 * time.Minute, true
	case "M30":
		return 30 * time.Minute, true
	case "H1":
		return time.Hour, true
	case "H4":
		return 4 * time.Hour, true
	case "D1":
		return 24 * time.Hour, true
	}
	return 0, false
}

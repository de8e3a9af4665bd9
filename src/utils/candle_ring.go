package utils

import (
	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// CandleRing is a fixed-size circular buffer of OHLC bars.
// True ring buffer - no resizing allowed!
// -----------------------------------------------------------------------------

type CandleRing struct {
	data     []models.MCandle
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewCandleRing creates a new buffer with fixed capacity
func NewCandleRing(capacity int) *CandleRing {
	if capacity <= 0 {
		capacity = 200 // enough history for any reasonable decider
	}

	return &CandleRing{
		data:     make([]models.MCandle, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a bar. A bar with the same OpenTime as the newest entry
// replaces it in place (the live bar is still forming).
func (cr *CandleRing) Append(candle models.MCandle) {
	if cr.size > 0 {
		lastIdx := (cr.index - 1 + cr.capacity) % cr.capacity
		if cr.data[lastIdx].OpenTime.Equal(candle.OpenTime) {
			cr.data[lastIdx] = candle
			return
		}
	}

	cr.data[cr.index] = candle
	cr.index = (cr.index + 1) % cr.capacity

	// Size never exceeds capacity
	if cr.size < cr.capacity {
		cr.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n newest bars, oldest first.
func (cr *CandleRing) GetLatest(n int) []models.MCandle {
	if cr.size == 0 || n <= 0 {
		return []models.MCandle{}
	}

	count := n
	if n > cr.size {
		count = cr.size
	}

	result := make([]models.MCandle, count)
	startIdx := (cr.index - count + cr.capacity) % cr.capacity

	for i := 0; i < count; i++ {
		result[i] = cr.data[(startIdx+i)%cr.capacity]
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all bars in insertion order (oldest to newest)
func (cr *CandleRing) GetAll() []models.MCandle {
	return cr.GetLatest(cr.size)
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (cr *CandleRing) Size() int {
	return cr.size
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (cr *CandleRing) Clear() {
	cr.index = 0
	cr.size = 0
}

package gate

import "time"

// -----------------------------------------------------------------------------
// DailyTradeCounter counts accepted orders per calendar day. Not safe for
// concurrent use on its own; the gate's critical section serializes access.
// -----------------------------------------------------------------------------

type DailyTradeCounter struct {
	count          int
	windowStartDay string // "2006-01-02"
}

// -----------------------------------------------------------------------------

func NewDailyTradeCounter() *DailyTradeCounter {
	return &DailyTradeCounter{}
}

// -----------------------------------------------------------------------------

// Count returns today's count, resetting first if the day rolled over.
func (c *DailyTradeCounter) Count(now time.Time) int {
	c.rollover(now)
	return c.count
}

// -----------------------------------------------------------------------------

// Increment records one accepted order for the day containing now.
func (c *DailyTradeCounter) Increment(now time.Time) {
	c.rollover(now)
	c.count++
}

// -----------------------------------------------------------------------------

// Reset zeroes the counter for the day containing now.
func (c *DailyTradeCounter) Reset(now time.Time) {
	c.windowStartDay = dayKey(now)
	c.count = 0
}

// -----------------------------------------------------------------------------

func (c *DailyTradeCounter) rollover(now time.Time) {
	day := dayKey(now)
	if c.windowStartDay != day {
		c.windowStartDay = day
		c.count = 0
	}
}

// -----------------------------------------------------------------------------

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

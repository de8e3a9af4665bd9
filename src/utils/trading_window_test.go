package utils

import (
	"testing"
	"time"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2025, 6, 2, hour, min, sec, 0, time.UTC)
}

func TestEndMinuteIsExclusive(t *testing.T) {
	w, err := NewTradingWindow("00:00", "23:59")
	if err != nil {
		t.Fatalf("NewTradingWindow failed: %v", err)
	}

	if !w.Contains(at(12, 0, 0)) {
		t.Error("Noon should be inside the window")
	}
	if !w.Contains(at(23, 58, 59)) {
		t.Error("23:58:59 should be inside the window")
	}
	if w.Contains(at(23, 59, 30)) {
		t.Error("23:59:30 should be outside the window, the end minute is exclusive")
	}
}

func TestStartIsInclusive(t *testing.T) {
	w, _ := NewTradingWindow("08:00", "17:00")

	if !w.Contains(at(8, 0, 0)) {
		t.Error("08:00:00 should be inside the window")
	}
	if w.Contains(at(7, 59, 59)) {
		t.Error("07:59:59 should be outside the window")
	}
	if w.Contains(at(17, 0, 0)) {
		t.Error("17:00:00 should be outside the window")
	}
}

func TestOvernightWindowWraps(t *testing.T) {
	w, _ := NewTradingWindow("22:00", "06:00")

	if !w.Contains(at(23, 30, 0)) {
		t.Error("23:30 should be inside an overnight window")
	}
	if !w.Contains(at(3, 0, 0)) {
		t.Error("03:00 should be inside an overnight window")
	}
	if w.Contains(at(12, 0, 0)) {
		t.Error("Noon should be outside an overnight window")
	}
}

func TestDegenerateWindowNeverOpen(t *testing.T) {
	w, _ := NewTradingWindow("09:00", "09:00")

	if w.Contains(at(9, 0, 0)) || w.Contains(at(12, 0, 0)) {
		t.Error("A zero-length window should never be open")
	}
}

func TestRejectsMalformedClock(t *testing.T) {
	if _, err := NewTradingWindow("9am", "17:00"); err == nil {
		t.Error("Expected error for malformed start")
	}
	if _, err := NewTradingWindow("09:00", "25:99"); err == nil {
		t.Error("Expected error for malformed end")
	}
}

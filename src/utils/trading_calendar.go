package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------
// Exchange session calendars. OTC instruments such as XAUUSD trade around
// the clock and get no calendar; exchange-listed symbols (Yahoo-style
// suffixes) map to their venue's MIC so the admission gate can refuse orders
// while the venue is closed.
// -----------------------------------------------------------------------------

type SessionCalendar struct {
	Calendar *calendar.Calendar
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

var suffixToMIC = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".MI": "xmil",
	".MC": "xmad",
	".SW": "xswx",
	".TO": "xtse",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".SS": "xshg",
	".SZ": "xshe",
	".US": "xnys",
}

// -----------------------------------------------------------------------------

// SessionCalendarFor returns the venue calendar for an exchange-listed
// symbol, or nil for symbols without a venue suffix (treated as 24h OTC).
func SessionCalendarFor(symbol string) *SessionCalendar {
	var mic string
	for suffix, m := range suffixToMIC {
		if strings.HasSuffix(symbol, suffix) {
			mic = m
			break
		}
	}
	if mic == "" {
		return nil
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		return nil
	}
	return &SessionCalendar{Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

// IsOpen reports whether the venue is open at t (holidays included).
func (sc *SessionCalendar) IsOpen(t time.Time) bool {
	if sc.Timezone != nil {
		t = t.In(sc.Timezone)
	}
	return sc.Calendar.IsOpen(t)
}

package brokererr

import (
	"errors"
	"time"

	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// Error Kinds
// -----------------------------------------------------------------------------

var (
	// ErrSourceUnavailable: no connectivity to the broker source.
	ErrSourceUnavailable = errors.New("broker source unavailable")

	// ErrTimeout: an upstream call exceeded its deadline. Retryable.
	ErrTimeout = errors.New("broker call timed out")

	// ErrStaleData: data older than the freshness threshold. Surfaced, not
	// retried automatically.
	ErrStaleData = errors.New("broker data is stale")

	// Business rejections. Final decisions, never retried.
	ErrSpreadTooWide       = errors.New("spread exceeds maximum")
	ErrOutsideTradingHours = errors.New("outside trading hours")
	ErrDailyLimitReached   = errors.New("daily trade limit reached")
	ErrInvalidParameters   = errors.New("invalid order parameters")

	// ErrUnsupported: operation not implemented by the active source variant.
	ErrUnsupported = errors.New("operation not supported by this source")

	// ErrAmbiguous: the order was sent but the response was lost; the broker
	// may have executed it. Requires manual reconciliation, never a resend.
	ErrAmbiguous = errors.New("order outcome ambiguous")
)

// -----------------------------------------------------------------------------

// Reason maps an error to its wire reason code for MOrderResult.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return models.ReasonSourceUnavailable
	case errors.Is(err, ErrTimeout):
		return models.ReasonTimeout
	case errors.Is(err, ErrStaleData):
		return models.ReasonStaleData
	case errors.Is(err, ErrSpreadTooWide):
		return models.ReasonSpreadTooWide
	case errors.Is(err, ErrOutsideTradingHours):
		return models.ReasonOutsideTradingHours
	case errors.Is(err, ErrDailyLimitReached):
		return models.ReasonDailyLimitReached
	case errors.Is(err, ErrInvalidParameters):
		return models.ReasonInvalidParameters
	case errors.Is(err, ErrUnsupported):
		return models.ReasonUnsupported
	case errors.Is(err, ErrAmbiguous):
		return models.ReasonAmbiguous
	}
	return models.ReasonBrokerRejected
}

// -----------------------------------------------------------------------------

// Retryable reports whether the caller may retry after backoff. Business
// rejections are decisions, not faults, so they are excluded; so is
// ErrAmbiguous, where a retry could double a position.
func Retryable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrTimeout)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts fn up to maxRetries times with exponential
// backoff, stopping early on non-retryable errors.
func RetryWithBackoff(maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if !Retryable(err) || attempt == maxRetries-1 {
			break
		}

		time.Sleep(baseDelay * (1 << attempt))
	}

	return lastErr
}

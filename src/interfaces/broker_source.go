package interfaces

import (
	"context"

	"trade-bridge/src/models"
)

// -----------------------------------------------------------------------------
// IBrokerSource abstracts over the ways of reaching the broker terminal
// (live connection, bridge file relay, or a synthetic mock). The rest of the
// system never inspects which variant is active except through observed
// latency and the freshness monitor.
// -----------------------------------------------------------------------------

type IBrokerSource interface {

	// Name returns the variant identifier ("live", "file", "mock").
	Name() string

	// -----------------------------------------------------------------------------

	// GetAccount retrieves the current account snapshot.
	GetAccount(ctx context.Context) (models.MAccountSnapshot, error)

	// -----------------------------------------------------------------------------

	// GetTick retrieves the latest bid/ask sample for a symbol.
	GetTick(ctx context.Context, symbol string) (models.MTickSample, error)

	// -----------------------------------------------------------------------------

	// GetSymbolInfo retrieves instrument metadata (point size, lot bounds).
	GetSymbolInfo(ctx context.Context, symbol string) (models.MSymbolInfo, error)

	// -----------------------------------------------------------------------------

	// GetCandles returns up to count most recent bars, oldest first.
	// The last bar may still be forming.
	GetCandles(ctx context.Context, symbol, timeframe string, count int) ([]models.MCandle, error)

	// -----------------------------------------------------------------------------

	// SubmitOrder sends a fully resolved order request to the broker.
	// Variants that cannot deliver writes return brokererr.ErrUnsupported.
	SubmitOrder(ctx context.Context, req models.MOrderRequest) (models.MOrderResult, error)

	// -----------------------------------------------------------------------------

	// SubmitCommand queues a named command for the broker side. Effects may
	// be asynchronous (the file variant writes a command file that an
	// external process polls).
	SubmitCommand(ctx context.Context, name string, params map[string]string) error

	// -----------------------------------------------------------------------------

	// Close releases the underlying connection or handles.
	Close() error
}

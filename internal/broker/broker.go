// Package broker defines the port interfaces the engine needs from the
// terminal side: market data and order execution. Concrete adapters
// (internal/bridge) satisfy both.
package broker

import (
	"context"
	"errors"

	"goldbot/internal/model"
)

var (
	// ErrDataUnavailable is returned when the market data source is
	// unreachable or returns an empty result. The engine degrades to a
	// neutral signal instead of faulting the cycle.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrGatewayUnavailable is returned when the execution gateway cannot
	// be reached. Position state is then unknown and the engine fails
	// closed: no new entries.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
)

// MarketData provides candle history, current quotes, and the account view.
type MarketData interface {
	// Candles returns up to count most recent bars for symbol/timeframe,
	// ordered by time ascending.
	Candles(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.Candle, error)

	// Quote returns the current bid/ask for symbol.
	Quote(ctx context.Context, symbol string) (model.Quote, error)

	// Account returns the current account snapshot.
	Account(ctx context.Context) (model.AccountSnapshot, error)
}

// Gateway lists open positions and executes orders. It is the single source
// of truth for position state; the engine holds no position cache.
type Gateway interface {
	// Positions returns all open positions, optionally filtered by symbol
	// (empty string means all symbols).
	Positions(ctx context.Context, symbol string) ([]model.Position, error)

	// SubmitOrder sends a market order to the terminal. A non-nil error
	// means the gateway could not be reached; a business decline arrives
	// as an OrderResult with Accepted=false.
	SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderResult, error)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"goldbot/internal/broker"
	"goldbot/internal/model"
)

// ErrPartialFlatten indicates that one or more positions failed to close
// during FlattenAll. The full per-ticket manifest is always returned
// alongside it; nothing is silently swallowed.
var ErrPartialFlatten = errors.New("one or more positions failed to close")

// Flattener closes every open position, invoked only on explicit operator
// command, never automatically.
type Flattener struct {
	gateway broker.Gateway
	market  broker.MarketData
	builder *OrderBuilder
	logger  *zap.Logger
}

// NewFlattener creates a flattening engine.
func NewFlattener(gw broker.Gateway, md broker.MarketData, builder *OrderBuilder, logger *zap.Logger) *Flattener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flattener{gateway: gw, market: md, builder: builder, logger: logger}
}

// FlattenAll closes all open positions, optionally filtered by symbol.
// Each close is independent: a fresh quote is fetched for that position's
// symbol (positions may span instruments), a closing order with inverse side
// and exact volume is submitted, and a CloseOutcome is recorded per ticket.
// Closes run concurrently but the manifest is complete before returning —
// a failure on one ticket never aborts the others.
//
// On partial failure the manifest is returned together with
// ErrPartialFlatten; listing failure returns a nil manifest and the listing
// error.
func (f *Flattener) FlattenAll(ctx context.Context, symbol string) ([]model.CloseOutcome, error) {
	positions, err := f.gateway.Positions(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("flatten: listing positions: %w", err)
	}
	if len(positions) == 0 {
		return []model.CloseOutcome{}, nil
	}

	outcomes := make([]model.CloseOutcome, len(positions))
	var wg sync.WaitGroup
	for i, pos := range positions {
		wg.Add(1)
		go func(i int, pos model.Position) {
			defer wg.Done()
			outcomes[i] = f.closeOne(ctx, pos)
		}(i, pos)
	}
	wg.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Ticket < outcomes[j].Ticket })

	failed := 0
	for _, out := range outcomes {
		if !out.Succeeded {
			failed++
		}
	}
	f.logger.Info("flatten_complete",
		zap.Int("positions", len(outcomes)),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return outcomes, fmt.Errorf("flatten: %d of %d closes failed: %w",
			failed, len(outcomes), ErrPartialFlatten)
	}
	return outcomes, nil
}

// closeOne closes a single position and never returns an error; every
// failure mode becomes a failed outcome in the manifest.
func (f *Flattener) closeOne(ctx context.Context, pos model.Position) model.CloseOutcome {
	quote, err := f.market.Quote(ctx, pos.Symbol)
	if err != nil {
		return model.CloseOutcome{
			Ticket: pos.Ticket,
			Detail: fmt.Sprintf("quote %s: %v", pos.Symbol, err),
		}
	}

	req := f.builder.BuildClose(pos, quote)
	result, err := f.gateway.SubmitOrder(ctx, req)
	if err != nil {
		return model.CloseOutcome{
			Ticket: pos.Ticket,
			Detail: fmt.Sprintf("submit close: %v", err),
		}
	}
	if !result.Accepted || result.Retcode != model.RetcodeDone {
		return model.CloseOutcome{
			Ticket: pos.Ticket,
			Detail: fmt.Sprintf("close declined: retcode=%d %s", result.Retcode, result.Detail),
		}
	}

	f.logger.Info("position_closed",
		zap.Int64("ticket", pos.Ticket),
		zap.String("symbol", pos.Symbol),
		zap.Float64("volume", pos.Volume),
	)
	return model.CloseOutcome{Ticket: pos.Ticket, Succeeded: true}
}

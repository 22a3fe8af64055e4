package engine

import (
	"context"
	"fmt"

	"goldbot/internal/broker"
	"goldbot/internal/model"
)

// Tracker answers "does this strategy currently own an open position" by
// querying the gateway fresh on every call. It deliberately has no cache
// field: stale position state is the most dangerous failure mode here, since
// it can produce duplicate or missed entries. The gateway stays the single
// source of truth.
type Tracker struct {
	gateway broker.Gateway
}

// NewTracker creates a position tracker over the given gateway.
func NewTracker(gw broker.Gateway) *Tracker {
	return &Tracker{gateway: gw}
}

// HasOpenPosition reports whether a position opened by this strategy
// (matched by symbol and magic) is currently open. When the gateway cannot
// be reached the error wraps broker.ErrGatewayUnavailable and callers must
// treat the state as unknown: suppress new entries, never assume flat.
func (t *Tracker) HasOpenPosition(ctx context.Context, symbol string, magic int) (bool, error) {
	positions, err := t.gateway.Positions(ctx, symbol)
	if err != nil {
		return false, fmt.Errorf("listing positions for %s: %w", symbol, err)
	}
	for _, pos := range positions {
		if pos.Magic == magic {
			return true, nil
		}
	}
	return false, nil
}

// ListOpenPositions returns all open positions, optionally filtered by
// symbol (empty string means all).
func (t *Tracker) ListOpenPositions(ctx context.Context, symbol string) ([]model.Position, error) {
	positions, err := t.gateway.Positions(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("listing positions: %w", err)
	}
	return positions, nil
}

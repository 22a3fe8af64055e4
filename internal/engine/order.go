package engine

import (
	"errors"
	"fmt"

	"goldbot/internal/model"
)

// ErrInvalidSignal is returned when the order builder is asked to build an
// entry for SignalNone. The orchestrator never calls it in that case; the
// error exists so a misuse fails loudly instead of producing a broken order.
var ErrInvalidSignal = errors.New("cannot build order for empty signal")

// Risk holds the protective distances and trade size for entry orders.
// Distances are expressed in instrument price units, not points, and are
// resolved once at startup from configuration.
type Risk struct {
	StopLossDistance   float64
	TakeProfitDistance float64
	Volume             float64
}

// OrderBuilder constructs fully specified entry orders. Every entry carries
// both a stop loss and a take profit computed from the requested price.
type OrderBuilder struct {
	symbol     string
	magic      int
	fillPolicy model.FillPolicy
	risk       Risk
}

// NewOrderBuilder creates a builder for one instrument and owner tag.
func NewOrderBuilder(symbol string, magic int, fill model.FillPolicy, risk Risk) *OrderBuilder {
	return &OrderBuilder{
		symbol:     symbol,
		magic:      magic,
		fillPolicy: fill,
		risk:       risk,
	}
}

// BuildEntry constructs a market entry order from a signal and a fresh
// quote. Buys enter at the ask with SL below and TP above; sells enter at
// the bid with SL above and TP below.
func (b *OrderBuilder) BuildEntry(signal model.Signal, quote model.Quote) (model.OrderRequest, error) {
	var side model.Side
	var price, sl, tp float64

	switch signal {
	case model.SignalBuy:
		side = model.SideBuy
		price = quote.Ask
		sl = price - b.risk.StopLossDistance
		tp = price + b.risk.TakeProfitDistance
	case model.SignalSell:
		side = model.SideSell
		price = quote.Bid
		sl = price + b.risk.StopLossDistance
		tp = price - b.risk.TakeProfitDistance
	default:
		return model.OrderRequest{}, fmt.Errorf("building entry: %w", ErrInvalidSignal)
	}

	return model.OrderRequest{
		Symbol:     b.symbol,
		Side:       side,
		Volume:     b.risk.Volume,
		Price:      price,
		StopLoss:   sl,
		TakeProfit: tp,
		Magic:      b.magic,
		Comment:    "auto " + string(side) + " sl/tp",
		FillPolicy: b.fillPolicy,
	}, nil
}

// BuildClose constructs the closing order for an open position: inverse
// side, exact position volume, price from a fresh quote for that position's
// symbol (bid closes a long, ask closes a short).
func (b *OrderBuilder) BuildClose(pos model.Position, quote model.Quote) model.OrderRequest {
	price := quote.Bid
	if pos.Side == model.SideSell {
		price = quote.Ask
	}
	return model.OrderRequest{
		Symbol:       pos.Symbol,
		Side:         pos.Side.Inverse(),
		Volume:       pos.Volume,
		Price:        price,
		Magic:        b.magic,
		Comment:      "close " + string(pos.Side),
		FillPolicy:   b.fillPolicy,
		ClosesTicket: pos.Ticket,
	}
}

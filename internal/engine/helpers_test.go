package engine

import (
	"context"
	"sync"
	"time"

	"goldbot/internal/broker"
	"goldbot/internal/model"
)

// fakeMarket is a scripted broker.MarketData for engine tests.
type fakeMarket struct {
	mu         sync.Mutex
	candles    []model.Candle
	candleErr  error
	quotes     map[string]model.Quote
	quoteErr   error
	account    model.AccountSnapshot
	accountErr error
	quoteCalls []string
	// blockCandles, when set, parks Candles until the channel is closed.
	blockCandles chan struct{}
}

func (f *fakeMarket) Candles(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.Candle, error) {
	if f.blockCandles != nil {
		<-f.blockCandles
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.candleErr != nil {
		return nil, f.candleErr
	}
	return f.candles, nil
}

func (f *fakeMarket) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls = append(f.quoteCalls, symbol)
	if f.quoteErr != nil {
		return model.Quote{}, f.quoteErr
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return model.Quote{}, broker.ErrDataUnavailable
	}
	return q, nil
}

func (f *fakeMarket) Account(ctx context.Context) (model.AccountSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accountErr != nil {
		return model.AccountSnapshot{}, f.accountErr
	}
	return f.account, nil
}

// fakeGateway is a scripted broker.Gateway. Submitted entry orders become
// open positions so single-position sequences can be exercised end to end.
type fakeGateway struct {
	mu           sync.Mutex
	positions    []model.Position
	positionsErr error
	submitErr    error
	// rejectTickets lists ClosesTicket values whose close the gateway declines.
	rejectTickets map[int64]bool
	rejectEntry   *model.OrderResult
	nextTicket    int64
	submitted     []model.OrderRequest
}

func (f *fakeGateway) Positions(ctx context.Context, symbol string) ([]model.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.positionsErr != nil {
		return nil, f.positionsErr
	}
	out := make([]model.Position, 0, len(f.positions))
	for _, pos := range f.positions {
		if symbol != "" && pos.Symbol != symbol {
			continue
		}
		out = append(out, pos)
	}
	return out, nil
}

func (f *fakeGateway) SubmitOrder(ctx context.Context, req model.OrderRequest) (model.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return model.OrderResult{}, f.submitErr
	}
	f.submitted = append(f.submitted, req)

	if req.ClosesTicket != 0 {
		if f.rejectTickets[req.ClosesTicket] {
			return model.OrderResult{
				Accepted: false,
				Retcode:  model.RetcodeReject,
				Detail:   "close rejected",
			}, nil
		}
		for i, pos := range f.positions {
			if pos.Ticket == req.ClosesTicket {
				f.positions = append(f.positions[:i], f.positions[i+1:]...)
				break
			}
		}
		return model.OrderResult{Accepted: true, Retcode: model.RetcodeDone}, nil
	}

	if f.rejectEntry != nil {
		return *f.rejectEntry, nil
	}

	f.nextTicket++
	f.positions = append(f.positions, model.Position{
		Ticket:     f.nextTicket,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Volume:     req.Volume,
		OpenPrice:  req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Magic:      req.Magic,
		OpenTime:   time.Now(),
	})
	return model.OrderResult{Accepted: true, Retcode: model.RetcodeDone, Ticket: f.nextTicket}, nil
}

func (f *fakeGateway) submittedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

// oversoldCandles builds a series whose last `period` deltas are all
// negative, driving RSI to 0 (< oversold).
func oversoldCandles(period int) []model.Candle {
	candles := make([]model.Candle, period+1)
	price := 2100.0
	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = model.Candle{
			Time:  base.Add(time.Duration(i) * time.Minute),
			Open:  price,
			High:  price + 0.5,
			Low:   price - 1.5,
			Close: price,
		}
		price -= 1.0
	}
	return candles
}

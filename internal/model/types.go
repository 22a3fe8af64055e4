// Package model defines shared data types used across all GOLDBOT modules.
package model

import "time"

// Side represents a trading direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Inverse returns the opposite direction, used when closing a position.
func (s Side) Inverse() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Signal is the trade intent derived from the oscillator.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = "NONE"
)

// Timeframe identifies a candle aggregation period in terminal notation.
type Timeframe string

const (
	TimeframeM1  Timeframe = "M1"
	TimeframeM5  Timeframe = "M5"
	TimeframeM15 Timeframe = "M15"
	TimeframeH1  Timeframe = "H1"
)

// FillPolicy is the terminal's rule for how a market order may be executed.
type FillPolicy string

const (
	FillFOK    FillPolicy = "FOK" // fill-or-kill
	FillIOC    FillPolicy = "IOC" // immediate-or-cancel
	FillReturn FillPolicy = "RETURN"
)

// Terminal trade retcodes (MT5 numbering).
const (
	RetcodeDone           uint32 = 10009
	RetcodeReject         uint32 = 10006
	RetcodeInvalidVolume  uint32 = 10014
	RetcodeMarketClosed   uint32 = 10018
	RetcodePositionClosed uint32 = 10036
)

// Candle is one OHLC bar. Immutable once produced; series are ordered by
// Time ascending.
type Candle struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// Quote is the current bid/ask for a symbol. Ephemeral, never persisted.
type Quote struct {
	Symbol string    `json:"symbol"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	Time   time.Time `json:"time"`
}

// AccountSnapshot is a read-only view of the trading account, refreshed
// from the gateway every cycle.
type AccountSnapshot struct {
	Balance        float64   `json:"balance"`
	Equity         float64   `json:"equity"`
	FreeMargin     float64   `json:"freeMargin"`
	FloatingProfit float64   `json:"floatingProfit"`
	Time           time.Time `json:"time"`
}

// Position is an open position as reported by the gateway. The gateway is
// the only writer: the engine never mutates a Position, it re-reads gateway
// state and issues closing requests by ticket.
type Position struct {
	Ticket     int64     `json:"ticket"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Volume     float64   `json:"volume"`
	OpenPrice  float64   `json:"openPrice"`
	StopLoss   float64   `json:"stopLoss"`
	TakeProfit float64   `json:"takeProfit"`
	Profit     float64   `json:"profit"`
	Magic      int       `json:"magic"`
	OpenTime   time.Time `json:"openTime"`
	Comment    string    `json:"comment"`
}

// OrderRequest is a fully specified market order. Constructed fresh per
// submission and never reused. ClosesTicket is zero for entries; for a
// closing order it names the position being closed.
type OrderRequest struct {
	Symbol       string     `json:"symbol"`
	Side         Side       `json:"side"`
	Volume       float64    `json:"volume"`
	Price        float64    `json:"price"`
	StopLoss     float64    `json:"stopLoss"`
	TakeProfit   float64    `json:"takeProfit"`
	Magic        int        `json:"magic"`
	Comment      string     `json:"comment"`
	FillPolicy   FillPolicy `json:"fillPolicy"`
	ClosesTicket int64      `json:"closesTicket,omitempty"`
}

// OrderResult is the gateway's verdict on a submitted order.
type OrderResult struct {
	Accepted bool   `json:"accepted"`
	Retcode  uint32 `json:"retcode"`
	Ticket   int64  `json:"ticket,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// CloseOutcome records the result of closing one position during a flatten.
type CloseOutcome struct {
	Ticket    int64  `json:"ticket"`
	Succeeded bool   `json:"succeeded"`
	Detail    string `json:"detail,omitempty"`
}

// APIResponse is the standard REST API response envelope.
type APIResponse struct {
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

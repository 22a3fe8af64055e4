package engine

import "goldbot/internal/model"

// Thresholds holds the oscillator bands that map an RSI value to a trade
// intent. Values come from configuration, resolved once at startup.
type Thresholds struct {
	Oversold   float64
	Overbought float64
}

// DefaultThresholds are the classic 30/70 RSI bands.
var DefaultThresholds = Thresholds{Oversold: 30, Overbought: 70}

// Classify maps an RSI value to a signal. The comparisons are strict:
// a value sitting exactly on a band classifies as None, which prevents
// duplicate signals when the oscillator rides the boundary.
func Classify(rsi float64, th Thresholds) model.Signal {
	switch {
	case rsi < th.Oversold:
		return model.SignalBuy
	case rsi > th.Overbought:
		return model.SignalSell
	default:
		return model.SignalNone
	}
}

// Package indicator implements the momentum oscillator the strategy trades on.
package indicator

import (
	"errors"
	"fmt"

	"goldbot/internal/model"
)

// ErrInsufficientData is returned when the candle series is shorter than
// period+1 bars. Callers substitute the neutral value instead of faulting.
var ErrInsufficientData = errors.New("insufficient candle data")

// NeutralRSI is the value substituted when the series cannot support the
// calculation.
const NeutralRSI = 50.0

// RSI computes the Relative Strength Index over the last `period`
// close-to-close deltas of the series. Average gain and average loss are the
// plain rolling mean of positive and negated negative deltas; RSI is
// 100 - 100/(1 + avgGain/avgLoss). If the average loss is exactly zero the
// result is 100 (strictly overbought), not a division fault.
//
// The function is pure: identical input always yields identical output.
func RSI(candles []model.Candle, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("rsi period must be positive, got %d", period)
	}
	if len(candles) < period+1 {
		return 0, fmt.Errorf("rsi(%d) needs %d candles, have %d: %w",
			period, period+1, len(candles), ErrInsufficientData)
	}

	gains := 0.0
	losses := 0.0
	n := len(candles)
	for i := n - period; i < n; i++ {
		delta := candles[i].Close - candles[i-1].Close
		if delta > 0 {
			gains += delta
		} else {
			losses += -delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

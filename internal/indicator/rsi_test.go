package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"goldbot/internal/model"
)

func seriesFromCloses(closes []float64) []model.Candle {
	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{
			Time:  base.Add(time.Duration(i) * time.Minute),
			Open:  c,
			High:  c + 0.25,
			Low:   c - 0.25,
			Close: c,
		}
	}
	return candles
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.6f, want %.6f (tol=%.0e, diff=%.6f)",
			label, got, want, tol, math.Abs(got-want))
	}
}

func TestRSI_ReferenceSeries(t *testing.T) {
	// Hand-calculated for period 14:
	// deltas: .25 .25 -.75 .75 .5 .5 .5 .25 -.5 .75 -.5 .75 .75 -1.5
	// gains sum = 5.25, losses sum = 3.25
	// RS = 5.25/3.25, RSI = 100 - 100/(1+RS) = 61.764706
	closes := []float64{44, 44.25, 44.5, 43.75, 44.5, 45, 45.5, 46, 46.25, 45.75, 46.5, 46, 46.75, 47.5, 46}

	rsi, err := RSI(seriesFromCloses(closes), 14)
	if err != nil {
		t.Fatalf("RSI returned error: %v", err)
	}
	assertClose(t, "RSI(14) reference", rsi, 61.764706, 1e-6)
}

func TestRSI_InsufficientData(t *testing.T) {
	closes := []float64{44, 44.25, 44.5, 43.75, 44.5}

	_, err := RSI(seriesFromCloses(closes), 14)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("want ErrInsufficientData, got %v", err)
	}
}

func TestRSI_ExactMinimumLength(t *testing.T) {
	// period+1 candles is the minimum viable series.
	closes := []float64{100, 101, 102, 101}

	rsi, err := RSI(seriesFromCloses(closes), 3)
	if err != nil {
		t.Fatalf("RSI returned error: %v", err)
	}
	// gains = 2, losses = 1 → RS = 2, RSI = 100 - 100/3
	assertClose(t, "RSI(3)", rsi, 66.666667, 1e-6)
}

func TestRSI_ZeroLossIsHundred(t *testing.T) {
	// Monotonically rising closes: average loss is exactly zero.
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 2000 + float64(i)*0.5
	}

	rsi, err := RSI(seriesFromCloses(closes), 14)
	if err != nil {
		t.Fatalf("RSI returned error: %v", err)
	}
	if rsi != 100 {
		t.Errorf("zero-loss RSI: got %.6f, want 100", rsi)
	}
}

func TestRSI_ZeroGainIsZero(t *testing.T) {
	closes := make([]float64, 15)
	for i := range closes {
		closes[i] = 2000 - float64(i)*0.5
	}

	rsi, err := RSI(seriesFromCloses(closes), 14)
	if err != nil {
		t.Fatalf("RSI returned error: %v", err)
	}
	assertClose(t, "zero-gain RSI", rsi, 0, 1e-9)
}

func TestRSI_Pure(t *testing.T) {
	closes := []float64{44, 44.25, 44.5, 43.75, 44.5, 45, 45.5, 46, 46.25, 45.75, 46.5, 46, 46.75, 47.5, 46}
	series := seriesFromCloses(closes)

	first, err := RSI(series, 14)
	if err != nil {
		t.Fatalf("RSI returned error: %v", err)
	}
	second, err := RSI(series, 14)
	if err != nil {
		t.Fatalf("RSI returned error: %v", err)
	}
	if first != second {
		t.Errorf("identical input produced different output: %.10f vs %.10f", first, second)
	}
}

func TestRSI_InvalidPeriod(t *testing.T) {
	if _, err := RSI(seriesFromCloses([]float64{1, 2}), 0); err == nil {
		t.Fatal("want error for period 0, got nil")
	}
}

func TestRSI_UsesOnlyLastPeriodDeltas(t *testing.T) {
	closes := []float64{44, 44.25, 44.5, 43.75, 44.5, 45, 45.5, 46, 46.25, 45.75, 46.5, 46, 46.75, 47.5, 46}
	want, err := RSI(seriesFromCloses(closes), 14)
	if err != nil {
		t.Fatalf("RSI returned error: %v", err)
	}

	// Prepending history must not change a window-bounded calculation.
	padded := append([]float64{10, 90, 10, 90}, closes...)
	got, err := RSI(seriesFromCloses(padded), 14)
	if err != nil {
		t.Fatalf("RSI returned error: %v", err)
	}
	assertClose(t, "windowed RSI", got, want, 1e-9)
}

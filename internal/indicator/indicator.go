// Package indicator computes moving averages and volatility measures with
// explicit as-of cutoffs so callers cannot read past the decision bar.
package indicator

import (
	"errors"
	"math"

	"fx-backtest-lab/internal/domain"
)

// ErrInsufficientHistory is returned when the series is shorter than the
// requested window. Callers treat it as "no signal", never as fatal.
var ErrInsufficientHistory = errors.New("insufficient history for indicator window")

// Closes extracts close prices from a bar slice.
func Closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Close
	}
	return out
}

// validUpTo collects the non-NaN values in values[0 .. asOf] in order.
// Gap bars carry NaN closes; they are skipped, never averaged.
func validUpTo(values []float64, asOf int) []float64 {
	out := make([]float64, 0, asOf+1)
	for i := 0; i <= asOf; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		out = append(out, values[i])
	}
	return out
}

// SMAAt returns the simple moving average of the last period non-NaN
// values in values[0 .. asOf].
func SMAAt(values []float64, period, asOf int) (float64, error) {
	if period <= 0 || asOf < 0 || asOf >= len(values) {
		return 0, ErrInsufficientHistory
	}
	sum, n := 0.0, 0
	for i := asOf; i >= 0 && n < period; i-- {
		if math.IsNaN(values[i]) {
			continue
		}
		sum += values[i]
		n++
	}
	if n < period {
		return 0, ErrInsufficientHistory
	}
	return sum / float64(period), nil
}

// EMAAt returns the exponential moving average over the non-NaN values in
// values[0 .. asOf], seeded with the SMA of the first period of them.
func EMAAt(values []float64, period, asOf int) (float64, error) {
	if period <= 0 || asOf < 0 || asOf >= len(values) {
		return 0, ErrInsufficientHistory
	}
	valid := validUpTo(values, asOf)
	if len(valid) < period {
		return 0, ErrInsufficientHistory
	}

	seed := 0.0
	for _, v := range valid[:period] {
		seed += v
	}
	ema := seed / float64(period)

	k := 2.0 / (float64(period) + 1.0)
	for _, v := range valid[period:] {
		ema = v*k + ema*(1.0-k)
	}
	return ema, nil
}

// TrueRange returns the true range of cur given the previous bar.
// With no previous bar, pass prev == nil and the high-low span is used.
func TrueRange(prev *domain.Bar, cur *domain.Bar) float64 {
	hl := cur.High - cur.Low
	if prev == nil {
		return hl
	}
	hc := math.Abs(cur.High - prev.Close)
	lc := math.Abs(cur.Low - prev.Close)
	return math.Max(hl, math.Max(hc, lc))
}

// ATRAt returns the Wilder-smoothed Average True Range over the non-gap
// bars in bars[0 .. asOf]. True ranges span gaps to the previous tradeable
// bar; period+1 non-gap bars are needed.
func ATRAt(bars []domain.Bar, period, asOf int) (float64, error) {
	if period <= 0 || asOf < 0 || asOf >= len(bars) {
		return 0, ErrInsufficientHistory
	}

	valid := make([]*domain.Bar, 0, asOf+1)
	for i := 0; i <= asOf; i++ {
		if bars[i].IsGap() {
			continue
		}
		valid = append(valid, &bars[i])
	}
	if len(valid) < period+1 {
		return 0, ErrInsufficientHistory
	}

	// Seed with the mean of the first period true ranges.
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += TrueRange(valid[i-1], valid[i])
	}
	atr := sum / float64(period)

	// Wilder smoothing for the remaining bars up to asOf.
	for i := period + 1; i < len(valid); i++ {
		tr := TrueRange(valid[i-1], valid[i])
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return atr, nil
}

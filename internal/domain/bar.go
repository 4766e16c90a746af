package domain

import (
	"errors"
	"fmt"
	"math"
)

// Bar represents one OHLCV record for a fixed time interval.
// Bars are immutable once loaded; the series slice owns them.
type Bar struct {
	TimestampMs int64   // Unix timestamp in milliseconds (bar open time)
	Open        float64 // open price
	High        float64 // high price
	Low         float64 // low price
	Close       float64 // close price
	Volume      float64 // traded volume (non-negative)
}

// IsGap reports whether the bar carries no usable prices.
// A gap bar has every OHLC field NaN; it is skipped for new entries
// but open positions are still marked against the last valid price.
func (b *Bar) IsGap() bool {
	return math.IsNaN(b.Open) && math.IsNaN(b.High) &&
		math.IsNaN(b.Low) && math.IsNaN(b.Close)
}

// EquityPoint is one sample of the running equity curve.
type EquityPoint struct {
	TimestampMs int64
	Equity      float64
}

// Series validation errors.
var (
	ErrEmptySeries        = errors.New("price series is empty")
	ErrNonMonotonicSeries = errors.New("price series timestamps are not strictly increasing")
	ErrInvalidPrice       = errors.New("price is not a positive finite number")
	ErrOHLCOrdering       = errors.New("bar violates OHLC ordering")
	ErrNegativeVolume     = errors.New("bar has negative volume")
)

// ValidateSeries checks a price series before any simulation work starts.
// Timestamps must be strictly increasing and unique. Every non-gap bar must
// have positive finite prices with high >= max(open, close) and
// low <= min(open, close), and non-negative volume. A bar with all four
// OHLC fields NaN is accepted as a data gap; partial NaN is malformed input.
func ValidateSeries(bars []Bar) error {
	if len(bars) == 0 {
		return ErrEmptySeries
	}

	var prevTs int64
	for i := range bars {
		b := &bars[i]
		if i > 0 && b.TimestampMs <= prevTs {
			return fmt.Errorf("%w: bar %d (ts=%d, prev=%d)", ErrNonMonotonicSeries, i, b.TimestampMs, prevTs)
		}
		prevTs = b.TimestampMs

		if b.IsGap() {
			continue
		}

		for _, p := range [4]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
				return fmt.Errorf("%w: bar %d (ts=%d)", ErrInvalidPrice, i, b.TimestampMs)
			}
		}
		if b.High < math.Max(b.Open, b.Close) || b.Low > math.Min(b.Open, b.Close) {
			return fmt.Errorf("%w: bar %d (ts=%d)", ErrOHLCOrdering, i, b.TimestampMs)
		}
		if b.Volume < 0 || math.IsNaN(b.Volume) {
			return fmt.Errorf("%w: bar %d (ts=%d)", ErrNegativeVolume, i, b.TimestampMs)
		}
	}

	return nil
}

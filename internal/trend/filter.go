// Package trend compares signal direction against the higher-timeframe trend.
package trend

import (
	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/indicator"
	"fx-backtest-lab/internal/lookup"
)

// Alignment is the verdict of the higher-timeframe trend comparison.
type Alignment string

// Alignment constants.
const (
	Aligned Alignment = "ALIGNED"
	Opposed Alignment = "OPPOSED"
	Unknown Alignment = "UNKNOWN" // no HTF series or not enough history
)

// Filter computes trend alignment from two EMAs on the HTF series.
type Filter struct {
	FastPeriod int
	SlowPeriod int
}

// NewFilter creates a trend filter. Periods must satisfy 0 < fast < slow;
// config validation enforces that before a filter is built.
func NewFilter(fastPeriod, slowPeriod int) Filter {
	return Filter{FastPeriod: fastPeriod, SlowPeriod: slowPeriod}
}

// Alignment compares a signal direction against the HTF trend as of asOfMs.
// Only HTF bars with timestamp <= asOfMs are read. With no series or not
// enough history the verdict is Unknown and policy is left to the caller:
// required-alignment strategies reject Unknown, optional ones pass it
// through at half credit.
func (f Filter) Alignment(dir domain.Direction, htf []domain.Bar, asOfMs int64) Alignment {
	if dir == domain.DirectionNone || len(htf) == 0 {
		return Unknown
	}

	asOf := lookup.IndexAtOrBefore(htf, asOfMs)
	if asOf < 0 {
		return Unknown
	}

	closes := indicator.Closes(htf)
	fast, err := indicator.EMAAt(closes, f.FastPeriod, asOf)
	if err != nil {
		return Unknown
	}
	slow, err := indicator.EMAAt(closes, f.SlowPeriod, asOf)
	if err != nil {
		return Unknown
	}

	trendUp := fast > slow
	if (dir == domain.DirectionLong) == trendUp && fast != slow {
		return Aligned
	}
	if fast == slow {
		return Unknown
	}
	return Opposed
}

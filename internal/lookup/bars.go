// Package lookup provides as-of lookups over bar series.
package lookup

import (
	"errors"

	"fx-backtest-lab/internal/domain"
)

// ErrNoPrice is returned when no valid price exists at or before the target.
var ErrNoPrice = errors.New("no valid price at or before target")

// CloseAt returns the close of the last non-gap bar with index <= asOf.
// Used to mark open positions when the current bar is a data gap.
func CloseAt(bars []domain.Bar, asOf int) (float64, error) {
	if asOf >= len(bars) {
		asOf = len(bars) - 1
	}
	for i := asOf; i >= 0; i-- {
		if !bars[i].IsGap() {
			return bars[i].Close, nil
		}
	}
	return 0, ErrNoPrice
}

// IndexAtOrBefore returns the index of the last bar with
// TimestampMs <= tsMs, or -1 if every bar is later.
func IndexAtOrBefore(bars []domain.Bar, tsMs int64) int {
	// Bars are strictly increasing; binary search for the cutoff.
	lo, hi := 0, len(bars)-1
	idx := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if bars[mid].TimestampMs <= tsMs {
			idx = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return idx
}

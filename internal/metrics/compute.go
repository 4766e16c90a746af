package metrics

import (
	"math"
	"sort"

	"fx-backtest-lab/internal/domain"
)

// Compute turns a closed-trade list and equity curve into a RunAggregate.
// Trades are sorted by EntryTimeMs ASC, TradeID ASC before any
// order-dependent statistic so reruns are byte-identical.
func Compute(trades []*domain.ClosedTrade, curve []domain.EquityPoint, rejectedSignals int, initialEquity, annualizationFactor float64) *domain.RunAggregate {
	agg := &domain.RunAggregate{
		RejectedSignals: rejectedSignals,
	}
	agg.QualityHistogram.Rejected = rejectedSignals

	n := len(trades)
	if n == 0 {
		agg.MaxDrawdown, agg.MaxDrawdownPct = maxDrawdown(curve)
		return agg
	}

	sorted := make([]*domain.ClosedTrade, n)
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EntryTimeMs != sorted[j].EntryTimeMs {
			return sorted[i].EntryTimeMs < sorted[j].EntryTimeMs
		}
		return sorted[i].TradeID < sorted[j].TradeID
	})

	agg.RunID = sorted[0].RunID
	agg.Instrument = sorted[0].Instrument
	agg.StrategyID = sorted[0].StrategyID
	agg.TotalTrades = n

	var grossProfit, grossLoss, net float64
	var holdSum int64
	returns := make([]float64, n)
	for i, t := range sorted {
		net += t.ProfitLoss
		holdSum += t.HoldDurationMs
		returns[i] = t.ReturnPct
		if t.ProfitLoss > 0 {
			agg.Wins++
			grossProfit += t.ProfitLoss
		} else {
			agg.Losses++
			grossLoss += -t.ProfitLoss
		}
		bandCount(&agg.QualityHistogram, t.QualityTotal)
	}

	agg.WinRate = float64(agg.Wins) / float64(n)
	agg.NetProfit = net
	if initialEquity > 0 {
		agg.TotalReturnPct = net / initialEquity
	}
	agg.AvgHoldDurationMs = holdSum / int64(n)

	// Profit factor is undefined with no losing trades; report nil rather
	// than an infinity that breaks serialization downstream.
	if grossLoss > 0 {
		pf := grossProfit / grossLoss
		agg.ProfitFactor = &pf
	}

	agg.MaxDrawdown, agg.MaxDrawdownPct = maxDrawdown(curve)
	agg.Sharpe = sharpe(returns, annualizationFactor)
	agg.Sortino = sortino(returns, annualizationFactor)

	return agg
}

// EquityFromTrades rebuilds a coarse equity curve from realized trades in
// exit-time order. Used when aggregating from storage, where the per-bar
// curve was not persisted.
func EquityFromTrades(trades []*domain.ClosedTrade, initialEquity float64) []domain.EquityPoint {
	sorted := make([]*domain.ClosedTrade, len(trades))
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].ExitTimeMs != sorted[j].ExitTimeMs {
			return sorted[i].ExitTimeMs < sorted[j].ExitTimeMs
		}
		return sorted[i].TradeID < sorted[j].TradeID
	})

	curve := make([]domain.EquityPoint, 0, len(sorted)+1)
	eq := initialEquity
	for _, t := range sorted {
		eq += t.ProfitLoss
		curve = append(curve, domain.EquityPoint{TimestampMs: t.ExitTimeMs, Equity: eq})
	}
	return curve
}

// maxDrawdown walks the equity curve and returns the worst peak-to-trough
// fall, absolute and relative to the peak.
func maxDrawdown(curve []domain.EquityPoint) (float64, float64) {
	if len(curve) == 0 {
		return 0, 0
	}

	peak := curve[0].Equity
	maxAbs, maxPct := 0.0, 0.0
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		dd := peak - p.Equity
		if dd > maxAbs {
			maxAbs = dd
			if peak > 0 {
				maxPct = dd / peak
			}
		}
	}
	return maxAbs, maxPct
}

// sharpe computes the per-trade Sharpe ratio. An annualization factor of 0
// disables scaling rather than guessing a bar interval.
func sharpe(returns []float64, factor float64) float64 {
	mean, sd := meanStddev(returns)
	if sd == 0 {
		return 0
	}
	s := mean / sd
	if factor > 0 {
		s *= math.Sqrt(factor)
	}
	return s
}

// sortino is sharpe with the deviation taken over negative returns only.
// With no losing trades the ratio is undefined and reported as 0.
func sortino(returns []float64, factor float64) float64 {
	mean, _ := meanStddev(returns)

	var sumSq float64
	var downs int
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
			downs++
		}
	}
	if downs == 0 {
		return 0
	}
	dd := math.Sqrt(sumSq / float64(downs))
	if dd == 0 {
		return 0
	}
	s := mean / dd
	if factor > 0 {
		s *= math.Sqrt(factor)
	}
	return s
}

// meanStddev returns the mean and sample standard deviation (n-1).
func meanStddev(values []float64) (float64, float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	if n < 2 {
		return mean, 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return mean, math.Sqrt(sumSq / float64(n-1))
}

func bandCount(h *domain.QualityHistogram, total float64) {
	switch {
	case total >= 80:
		h.Band80To100++
	case total >= 60:
		h.Band60To80++
	case total >= 40:
		h.Band40To60++
	default:
		// Sub-threshold signals never become trades; counted via rejects.
	}
}

package strategy

import (
	"fmt"
	"math"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/indicator"
)

// EMAMomentum signals in the direction of the fast/slow EMA spread on the
// primary series. Strength is the normalized EMA separation; the entry
// style tag is advisory (the planner validates the actual trigger).
type EMAMomentum struct {
	FastPeriod int
	SlowPeriod int
}

// NewEMAMomentum creates the signal source. Periods must satisfy
// 0 < fast < slow; config validation enforces that upstream.
func NewEMAMomentum(fastPeriod, slowPeriod int) *EMAMomentum {
	return &EMAMomentum{FastPeriod: fastPeriod, SlowPeriod: slowPeriod}
}

// ID returns the identifier including parameters.
func (s *EMAMomentum) ID() string {
	return fmt.Sprintf("EMA_MOMENTUM_%d_%d", s.FastPeriod, s.SlowPeriod)
}

// Evaluate computes the signal for bar i from bars[0..i] only.
func (s *EMAMomentum) Evaluate(bars []domain.Bar, i int) domain.Signal {
	none := domain.Signal{Direction: domain.DirectionNone, EntryStyle: domain.EntryStyleNone}
	if i < 0 || i >= len(bars) || bars[i].IsGap() {
		return none
	}

	closes := indicator.Closes(bars)
	fast, err := indicator.EMAAt(closes, s.FastPeriod, i)
	if err != nil {
		return none
	}
	slow, err := indicator.EMAAt(closes, s.SlowPeriod, i)
	if err != nil {
		return none
	}
	if fast == slow {
		return none
	}

	dir := domain.DirectionLong
	if fast < slow {
		dir = domain.DirectionShort
	}

	// Strength: EMA separation relative to price, saturating at 1% spread.
	strength := math.Abs(fast-slow) / bars[i].Close / 0.01
	if strength > 1 {
		strength = 1
	}

	// Advisory style: near the fast EMA looks like a pullback, an extended
	// close looks like a breakout attempt.
	style := domain.EntryStyleBreakout
	if math.Abs(bars[i].Close-fast)/fast < 0.002 {
		style = domain.EntryStylePullback
	}

	return domain.Signal{Direction: dir, Strength: strength, EntryStyle: style}
}

// FromConfig builds the signal source named by the strategy config.
func FromConfig(cfg domain.StrategyConfig) SignalSource {
	return NewEMAMomentum(cfg.SignalFastPeriod, cfg.SignalSlowPeriod)
}

var _ SignalSource = (*EMAMomentum)(nil)

// Package planner detects entry triggers and computes stop/target levels.
package planner

import (
	"errors"
	"fmt"
	"math"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/indicator"
)

// Planner errors.
var (
	// ErrNoTrigger means no entry trigger confirmed on the current bar.
	// The slot stays pending; this is not a rejection of the signal.
	ErrNoTrigger = errors.New("no entry trigger on current bar")

	// ErrDegenerateStop means the stop distance computed to zero, negative
	// or NaN. The entry is rejected and logged as a skipped signal.
	ErrDegenerateStop = errors.New("degenerate stop distance")
)

// Plan holds the levels fixed at entry. They are never recomputed.
type Plan struct {
	Style       string // PULLBACK | BREAKOUT
	EntryPrice  float64
	StopPrice   float64
	TargetPrice float64
	StopDist    float64
}

// Planner evaluates triggers and stop/target rules for one strategy config.
type Planner struct {
	cfg domain.StrategyConfig
}

// FromConfig builds a planner. The config must already be validated.
func FromConfig(cfg domain.StrategyConfig) *Planner {
	return &Planner{cfg: cfg}
}

// Detect checks whether bar i confirms an entry trigger for the direction.
// Pullback is preferred over breakout when both hold. Only bars up to and
// including i are read.
func (p *Planner) Detect(bars []domain.Bar, i int, dir domain.Direction) (string, bool) {
	if p.detectPullback(bars, i, dir) {
		return domain.EntryStylePullback, true
	}
	if p.detectBreakout(bars, i, dir) {
		return domain.EntryStyleBreakout, true
	}
	return domain.EntryStyleNone, false
}

// detectPullback requires a prior impulse in the signal direction of at
// least ImpulseMinPct, followed by a retrace of the close to within
// PullbackBandPct of the reference moving average.
func (p *Planner) detectPullback(bars []domain.Bar, i int, dir domain.Direction) bool {
	closes := indicator.Closes(bars)
	ma, err := indicator.SMAAt(closes, p.cfg.PullbackMAPeriod, i)
	if err != nil {
		return false
	}

	cur := bars[i].Close
	if math.Abs(cur-ma)/ma > p.cfg.PullbackBandPct/100 {
		return false
	}

	// Impulse scan over the lookback window before the retrace.
	start := i - p.cfg.ImpulseLookback
	if start < 0 {
		return false
	}
	hi, lo := math.Inf(-1), math.Inf(1)
	for j := start; j < i; j++ {
		if bars[j].IsGap() {
			continue
		}
		hi = math.Max(hi, bars[j].High)
		lo = math.Min(lo, bars[j].Low)
	}
	if math.IsInf(hi, -1) || math.IsInf(lo, 1) || lo <= 0 {
		return false
	}
	if (hi-lo)/lo < p.cfg.ImpulseMinPct/100 {
		return false
	}

	// The impulse must have extended beyond the MA in the trade direction.
	if dir == domain.DirectionLong {
		return hi > ma
	}
	return lo < ma
}

// detectBreakout requires the close to clear the recent range boundary by
// at least BreakoutMinPct.
func (p *Planner) detectBreakout(bars []domain.Bar, i int, dir domain.Direction) bool {
	start := i - p.cfg.BreakoutLookback
	if start < 0 {
		return false
	}
	hi, lo := math.Inf(-1), math.Inf(1)
	for j := start; j < i; j++ {
		if bars[j].IsGap() {
			continue
		}
		hi = math.Max(hi, bars[j].High)
		lo = math.Min(lo, bars[j].Low)
	}
	if math.IsInf(hi, -1) || math.IsInf(lo, 1) {
		return false
	}

	cur := bars[i].Close
	if dir == domain.DirectionLong {
		return cur >= hi*(1+p.cfg.BreakoutMinPct/100)
	}
	return cur <= lo*(1-p.cfg.BreakoutMinPct/100)
}

// Levels computes entry, stop and target for a confirmed trigger at bar i.
// The entry price is the bar close adjusted by half the spread in the
// adverse direction: buyer pays the ask, seller receives the bid.
func (p *Planner) Levels(bars []domain.Bar, i int, dir domain.Direction, style string, spread float64) (*Plan, error) {
	ref := bars[i].Close
	entry := ref + dir.Sign()*spread/2

	stopDist, targetDist, err := p.distances(bars, i, entry)
	if err != nil {
		return nil, err
	}
	if !(stopDist > 0) || !(targetDist > 0) {
		return nil, fmt.Errorf("%w: stop=%.6g target=%.6g", ErrDegenerateStop, stopDist, targetDist)
	}

	return &Plan{
		Style:       style,
		EntryPrice:  entry,
		StopPrice:   entry - dir.Sign()*stopDist,
		TargetPrice: entry + dir.Sign()*targetDist,
		StopDist:    stopDist,
	}, nil
}

// distances returns (stop, target) distances per the configured rule.
func (p *Planner) distances(bars []domain.Bar, i int, entry float64) (float64, float64, error) {
	switch p.cfg.StopRule {
	case domain.StopRulePercent:
		return entry * *p.cfg.StopPct / 100, entry * *p.cfg.TargetPct / 100, nil
	case domain.StopRulePip:
		return *p.cfg.StopPips * p.cfg.PipSize, *p.cfg.TargetPips * p.cfg.PipSize, nil
	case domain.StopRuleATR:
		atr, err := indicator.ATRAt(bars, *p.cfg.ATRPeriod, i)
		if err != nil {
			return 0, 0, err // insufficient history, caller skips
		}
		return atr * *p.cfg.StopATRMultiple, atr * *p.cfg.TargetATRMultiple, nil
	default:
		// Unreachable after config validation.
		return 0, 0, fmt.Errorf("%w: stop rule %q", domain.ErrInvalidConfig, p.cfg.StopRule)
	}
}

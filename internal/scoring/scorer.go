// Package scoring combines trend alignment, technical strength, entry
// timing and market condition into the 0-100 quality score that gates
// trade admission and sizing.
package scoring

import (
	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/trend"
)

// Component weights. Each contributes up to 25 points; news adds a signed
// adjustment capped at +/- 10 before the total clamp.
const (
	trendWeight     = 25.0
	technicalWeight = 25.0
	timingWeight    = 25.0
	conditionWeight = 25.0

	breakoutTimingCredit = 15.0 // plain breakout gets partial timing credit
	unknownTrendCredit   = 12.5 // half credit when HTF data is absent
)

// Context carries the per-bar inputs the scorer needs besides the signal.
type Context struct {
	Alignment      trend.Alignment
	SessionQuality float64 // [0, 1], from the session gate
	VolRatio       float64 // current TR / ATR
	NewsAdjustment float64 // signed, already capped at +/- 10
}

// Scorer computes quality scores. RequireTrend decides the Unknown policy:
// with RequireTrend the caller rejects Unknown before scoring, so the
// half-credit branch only applies to optional-alignment strategies.
type Scorer struct {
	RequireTrend bool
}

// Score computes the quality score for a signal in context.
func (s Scorer) Score(sig domain.Signal, ctx Context) domain.QualityScore {
	q := domain.QualityScore{
		TrendComponent:     trendComponent(ctx.Alignment),
		TechnicalComponent: technicalWeight * clamp01(sig.Strength),
		TimingComponent:    timingComponent(sig.EntryStyle),
		ConditionComponent: conditionWeight * clamp01(ctx.SessionQuality) * volRegime(ctx.VolRatio),
		NewsAdjustment:     clampNews(ctx.NewsAdjustment),
	}

	total := q.TrendComponent + q.TechnicalComponent + q.TimingComponent +
		q.ConditionComponent + q.NewsAdjustment
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	q.Total = total
	q.SizeMultiplier = SizeMultiplier(total)
	return q
}

// SizeMultiplier is the step function from total score to position sizing.
// >=80 -> 1.0, >=60 -> 0.75, >=40 -> 0.5, below -> 0 (reject).
func SizeMultiplier(total float64) float64 {
	switch {
	case total >= domain.ScoreFullSize:
		return 1.0
	case total >= domain.ScoreReducedSize:
		return 0.75
	case total >= domain.ScoreMinimumSize:
		return 0.5
	default:
		return 0
	}
}

func trendComponent(a trend.Alignment) float64 {
	switch a {
	case trend.Aligned:
		return trendWeight
	case trend.Unknown:
		return unknownTrendCredit
	default:
		return 0
	}
}

func timingComponent(style string) float64 {
	switch style {
	case domain.EntryStylePullback:
		return timingWeight
	case domain.EntryStyleBreakout:
		return breakoutTimingCredit
	default:
		return 0 // chasing gets nothing
	}
}

// volRegime scores the volatility half of the condition component.
// Normal volatility (ratio in [0.5, 2.0]) gets full credit; dead or
// violent tape scales down, never below zero.
func volRegime(ratio float64) float64 {
	switch {
	case ratio != ratio: // NaN, no ATR yet
		return 1.0
	case ratio <= 0:
		return 0
	case ratio < 0.5:
		return ratio / 0.5
	case ratio <= 2.0:
		return 1.0
	case ratio < 4.0:
		return 1.0 - (ratio-2.0)/2.0
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampNews(v float64) float64 {
	if v != v {
		return 0
	}
	if v > 10 {
		return 10
	}
	if v < -10 {
		return -10
	}
	return v
}

// Package simulation walks a price series bar-by-bar through the gates,
// filters and planner, and maintains the trade ledger.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"fx-backtest-lab/internal/costs"
	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/indicator"
	"fx-backtest-lab/internal/lookup"
	"fx-backtest-lab/internal/news"
	"fx-backtest-lab/internal/planner"
	"fx-backtest-lab/internal/scoring"
	"fx-backtest-lab/internal/session"
	"fx-backtest-lab/internal/strategy"
	"fx-backtest-lab/internal/trend"
)

// Skip reason keys reported per run.
const (
	SkipSessionDisabled     = "session_disabled"
	SkipNewsBlackout        = "news_blackout"
	SkipTrendUnaligned      = "trend_unaligned"
	SkipLowScore            = "low_score"
	SkipEntrySpacing        = "entry_spacing"
	SkipMaxPositions        = "max_positions"
	SkipNoTrigger           = "no_trigger"
	SkipInsufficientHistory = "insufficient_history"
	SkipDegenerateStop      = "degenerate_stop"
	SkipGapBar              = "gap_bar"
)

// Input is one instrument's already-fetched data for a run. The runner
// never performs I/O; acquisition belongs to external collaborators.
type Input struct {
	RunID      string
	Instrument string
	Currencies []string // currencies the instrument is exposed to, e.g. EUR, USD

	Bars    []domain.Bar      // primary series, strictly time-ordered
	HTFBars []domain.Bar      // optional higher-timeframe series
	News    []domain.NewsEvent // optional calendar
}

// Result is the complete, internally consistent output of one run.
type Result struct {
	Instrument      string
	StrategyID      string
	Trades          []*domain.ClosedTrade // entry-time order
	EquityCurve     []domain.EquityPoint
	FinalEquity     float64
	BarsProcessed   int
	RejectedSignals int            // signals scored below the admission threshold
	Skips           map[string]int // reason -> count
}

// pendingEntry tracks an approved signal waiting for a trigger.
type pendingEntry struct {
	sig      domain.Signal
	barsLeft int
}

// Runner executes one strategy config over one instrument, deterministically
// and single-threaded. Every component call at bar t reads only data with
// timestamp <= t.
type Runner struct {
	cfg     domain.StrategyConfig
	model   costs.Model
	signals strategy.SignalSource
	plan    *planner.Planner
	trendF  trend.Filter
	policy  session.Policy
	scorer  scoring.Scorer
}

// NewRunner validates both configs and wires the components.
// Configuration inconsistencies are fatal here, before any bar is processed.
func NewRunner(cfg domain.StrategyConfig, costCfg costs.Config, signals strategy.SignalSource) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := costCfg.Validate(); err != nil {
		return nil, err
	}
	if signals == nil {
		signals = strategy.FromConfig(cfg)
	}
	return &Runner{
		cfg:     cfg,
		model:   costs.NewModel(costCfg),
		signals: signals,
		plan:    planner.FromConfig(cfg),
		trendF:  trend.NewFilter(cfg.TrendFastPeriod, cfg.TrendSlowPeriod),
		policy:  session.NewPolicy(cfg.EnabledSessions),
		scorer:  scoring.Scorer{RequireTrend: cfg.RequireTrendAlignment},
	}, nil
}

// Run walks the series. It either returns a complete result set or an
// error before any bar is processed; it never returns a half-populated
// ledger.
func (r *Runner) Run(ctx context.Context, input Input) (*Result, error) {
	if err := domain.ValidateSeries(input.Bars); err != nil {
		return nil, fmt.Errorf("primary series: %w", err)
	}
	if len(input.HTFBars) > 0 {
		if err := domain.ValidateSeries(input.HTFBars); err != nil {
			return nil, fmt.Errorf("higher timeframe series: %w", err)
		}
	}
	if !r.cfg.InstrumentEnabled(input.Instrument) {
		return nil, fmt.Errorf("%w: instrument %s not enabled", domain.ErrInvalidConfig, input.Instrument)
	}
	_ = ctx // the run is not cancellable mid-flight; it completes or fails fast

	gate := news.NewGate(input.News, r.cfg.NewsPreWindowMinutes, r.cfg.NewsPostWindowMinutes)
	ledger := NewLedger(input.RunID, input.Instrument, r.cfg.StrategyID, r.cfg.InitialEquity)

	res := &Result{
		Instrument: input.Instrument,
		StrategyID: r.cfg.StrategyID,
		Skips:      make(map[string]int),
	}

	var pending *pendingEntry

	bars := input.Bars
	for i := range bars {
		bar := &bars[i]
		tsMs := bar.TimestampMs
		res.BarsProcessed++

		markPrice, markErr := lookup.CloseAt(bars, i)

		// Exits first: positions opened on earlier bars resolve against
		// this bar before any new entry is considered.
		r.resolveExits(ledger, bars, i, gate, input.Currencies)

		if pending != nil {
			pending.barsLeft--
			if pending.barsLeft < 0 {
				pending = nil
			}
		}

		if bar.IsGap() {
			res.Skips[SkipGapBar]++
			if markErr == nil {
				ledger.Mark(tsMs, markPrice)
			}
			continue
		}

		pending = r.evaluateEntry(ledger, bars, i, input, gate, pending, res)

		ledger.Mark(tsMs, markPrice)
	}

	// End of data: force-close survivors at the last valid price.
	if markPrice, err := lookup.CloseAt(bars, len(bars)-1); err == nil {
		lastTs := bars[len(bars)-1].TimestampMs
		for _, pos := range append([]*domain.Position(nil), ledger.OpenPositions()...) {
			ledger.Close(pos, lastTs, markPrice, domain.ExitReasonEndOfData)
		}
	}

	res.Trades = ledger.Trades()
	res.EquityCurve = ledger.Curve()
	res.FinalEquity = ledger.Equity()
	return res, nil
}

// resolveExits closes open positions whose stop or target is crossed by
// bar i, then applies reversal exits. On gap bars the last valid price
// serves as the mark for both bounds.
func (r *Runner) resolveExits(ledger *Ledger, bars []domain.Bar, i int, gate *news.Gate, currencies []string) {
	bar := &bars[i]
	tsMs := bar.TimestampMs

	high, low := bar.High, bar.Low
	if bar.IsGap() {
		last, err := lookup.CloseAt(bars, i)
		if err != nil {
			return
		}
		high, low = last, last
	}

	for _, pos := range append([]*domain.Position(nil), ledger.OpenPositions()...) {
		stopHit, targetHit := touched(pos, high, low)

		switch {
		case stopHit && targetHit:
			// Same-bar touch of both levels: policy decides. Stop-first is
			// the conservative default.
			if r.cfg.StopTargetPolicy == domain.TargetFirst {
				ledger.Close(pos, tsMs, pos.TargetPrice, domain.ExitReasonTarget)
			} else {
				ledger.Close(pos, tsMs, pos.StopPrice, domain.ExitReasonStop)
			}
		case stopHit:
			ledger.Close(pos, tsMs, pos.StopPrice, domain.ExitReasonStop)
		case targetHit:
			ledger.Close(pos, tsMs, pos.TargetPrice, domain.ExitReasonTarget)
		}
	}

	if !r.cfg.AllowReversalExit || bar.IsGap() {
		return
	}

	sig := r.signals.Evaluate(bars, i)
	if sig.Direction == domain.DirectionNone {
		return
	}
	for _, pos := range append([]*domain.Position(nil), ledger.OpenPositions()...) {
		if sig.Direction != pos.Direction.Opposite() {
			continue
		}
		// Exit at the close adjusted by half the current spread in the
		// adverse direction; no favorable slippage inside a blackout.
		tag := session.Classify(tsMs, r.cfg.SessionHours)
		blackout := gate.InBlackout(tsMs, currencies)
		spread := r.model.Spread(tag, r.volRatio(bars, i), blackout)
		exitPrice := bar.Close - pos.Direction.Sign()*spread/2
		ledger.Close(pos, tsMs, exitPrice, domain.ExitReasonReversal)
	}
}

// evaluateEntry runs the gate chain for bar i and opens a position when
// everything passes. Returns the new pending-entry state.
func (r *Runner) evaluateEntry(ledger *Ledger, bars []domain.Bar, i int, input Input, gate *news.Gate, pending *pendingEntry, res *Result) *pendingEntry {
	bar := &bars[i]
	tsMs := bar.TimestampMs

	tag := session.Classify(tsMs, r.cfg.SessionHours)
	if !r.policy.Allows(tag) {
		res.Skips[SkipSessionDisabled]++
		return pending
	}

	if gate.InBlackout(tsMs, input.Currencies) {
		res.Skips[SkipNewsBlackout]++
		return pending
	}

	sig := r.signals.Evaluate(bars, i)
	if sig.Direction == domain.DirectionNone {
		if pending != nil {
			sig = pending.sig // approved earlier, still waiting for a trigger
		} else {
			return nil
		}
	}

	alignment := r.trendF.Alignment(sig.Direction, input.HTFBars, tsMs)
	if r.cfg.RequireTrendAlignment && alignment != trend.Aligned {
		res.Skips[SkipTrendUnaligned]++
		return nil
	}

	style, ok := r.plan.Detect(bars, i, sig.Direction)
	if !ok {
		res.Skips[SkipNoTrigger]++
		if pending == nil {
			return &pendingEntry{sig: sig, barsLeft: r.cfg.PendingEntryBars}
		}
		return pending
	}
	sig.EntryStyle = style // planner-validated style supersedes the advisory tag

	volRatio := r.volRatio(bars, i)
	score := r.scorer.Score(sig, scoring.Context{
		Alignment:      alignment,
		SessionQuality: session.Quality(tag),
		VolRatio:       volRatio,
		NewsAdjustment: gate.Sentiment(tsMs, input.Currencies, sig.Direction, r.cfg.NewsDecayHorizonMs),
	})
	if score.Total < r.cfg.MinQualityScore || score.SizeMultiplier == 0 {
		res.RejectedSignals++
		res.Skips[SkipLowScore]++
		return nil
	}

	if last := ledger.LastEntryMs(); last != 0 && tsMs-last < r.cfg.MinEntrySpacingMs {
		res.Skips[SkipEntrySpacing]++
		return nil
	}
	if ledger.OpenCount() >= r.cfg.MaxConcurrentPositions {
		res.Skips[SkipMaxPositions]++
		return nil
	}

	spread := r.model.Spread(tag, volRatio, false)
	plan, err := r.plan.Levels(bars, i, sig.Direction, style, spread)
	if err != nil {
		switch {
		case errors.Is(err, indicator.ErrInsufficientHistory):
			res.Skips[SkipInsufficientHistory]++
		case errors.Is(err, planner.ErrDegenerateStop):
			res.Skips[SkipDegenerateStop]++
		default:
			res.Skips[SkipDegenerateStop]++
		}
		return nil
	}

	size := ledger.Equity() * r.cfg.RiskPerTradeFraction / plan.StopDist * score.SizeMultiplier
	ledger.Open(&domain.Position{
		Instrument:  input.Instrument,
		Direction:   sig.Direction,
		EntryTimeMs: tsMs,
		EntryPrice:  plan.EntryPrice,
		StopPrice:   plan.StopPrice,
		TargetPrice: plan.TargetPrice,
		Size:        size,
		Quality:     score,
	})
	return nil
}

// volRatio is the current true range over the ATR, NaN when the ATR
// window has not filled yet (the scorer and cost model treat NaN as
// neutral).
func (r *Runner) volRatio(bars []domain.Bar, i int) float64 {
	period := 14
	if r.cfg.ATRPeriod != nil {
		period = *r.cfg.ATRPeriod
	}
	atr, err := indicator.ATRAt(bars, period, i)
	if err != nil || atr == 0 {
		return math.NaN()
	}
	var prev *domain.Bar
	if i > 0 {
		prev = &bars[i-1]
	}
	return indicator.TrueRange(prev, &bars[i]) / atr
}

// touched reports whether bar extremes cross the position's stop/target.
func touched(pos *domain.Position, high, low float64) (stopHit, targetHit bool) {
	if pos.Direction == domain.DirectionLong {
		return low <= pos.StopPrice, high >= pos.TargetPrice
	}
	return high >= pos.StopPrice, low <= pos.TargetPrice
}

// Package orchestrator provides end-to-end backtest orchestration.
// It coordinates: data loading → simulation → persistence → aggregation
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"fx-backtest-lab/internal/config"
	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/metrics"
	"fx-backtest-lab/internal/observability"
	"fx-backtest-lab/internal/simulation"
	"fx-backtest-lab/internal/storage"
)

// Orchestrator coordinates a multi-instrument backtest run.
// Flow: load series → simulate per instrument → persist trades → aggregate
type Orchestrator struct {
	barStore   storage.BarStore
	newsStore  storage.NewsEventStore
	tradeStore storage.ClosedTradeStore
	aggStore   storage.AggregateStore

	cfg     config.Run
	verbose bool
	logger  *log.Logger
}

// Options for creating an Orchestrator.
type Options struct {
	// Required stores
	BarStore   storage.BarStore
	TradeStore storage.ClosedTradeStore
	AggStore   storage.AggregateStore

	// Optional; a nil news store runs without a calendar.
	NewsStore storage.NewsEventStore

	Config  config.Run
	Verbose bool
	Logger  *log.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		barStore:   opts.BarStore,
		newsStore:  opts.NewsStore,
		tradeStore: opts.TradeStore,
		aggStore:   opts.AggStore,
		cfg:        opts.Config,
		verbose:    opts.Verbose,
		logger:     logger,
	}
}

// InstrumentResult pairs one instrument's simulation output with its
// computed aggregate.
type InstrumentResult struct {
	Instrument string
	Simulation *simulation.Result
	Aggregate  *domain.RunAggregate
}

// RunResult contains results from one orchestrated run, in config
// instrument order regardless of worker count.
type RunResult struct {
	RunID       string
	Instruments []*InstrumentResult
	Errors      []string
}

// Run executes the configured backtest across all instruments.
// Phases:
//  1. Validate configuration
//  2. Simulate each instrument (Workers instruments in parallel)
//  3. Persist closed trades
//  4. Compute and persist aggregates
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	result := &RunResult{RunID: runID}

	o.log("Run %s: simulating %d instruments (%d workers)...",
		runID, len(o.cfg.Instruments), o.cfg.Workers)

	// Phase 2: simulate. Each worker owns a disjoint slice of the
	// instrument list; results land at fixed indices so merge order does
	// not depend on scheduling.
	slots := make([]*InstrumentResult, len(o.cfg.Instruments))
	errs := make([]error, len(o.cfg.Instruments))

	var wg sync.WaitGroup
	sem := make(chan struct{}, o.cfg.Workers)
	for i := range o.cfg.Instruments {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			slots[idx], errs[idx] = o.runInstrument(ctx, runID, o.cfg.Instruments[idx])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("simulate %s: %v", o.cfg.Instruments[i].Symbol, err))
			continue
		}
		result.Instruments = append(result.Instruments, slots[i])
	}

	// Phases 3 and 4: persist sequentially in instrument order so reruns
	// write identical sequences.
	for _, ir := range result.Instruments {
		if o.tradeStore != nil {
			if err := o.tradeStore.InsertBulk(ctx, ir.Simulation.Trades); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("persist trades %s: %v", ir.Instrument, err))
			}
		}
		if o.aggStore != nil {
			if err := o.aggStore.Insert(ctx, ir.Aggregate); err != nil {
				result.Errors = append(result.Errors,
					fmt.Sprintf("persist aggregate %s: %v", ir.Instrument, err))
			}
		}
	}

	o.log("Run %s completed: %d instruments, %d errors",
		runID, len(result.Instruments), len(result.Errors))
	return result, nil
}

// runInstrument loads one instrument's data, simulates it and computes
// the aggregate over the full per-bar equity curve.
func (o *Orchestrator) runInstrument(ctx context.Context, runID string, in config.InstrumentConfig) (*InstrumentResult, error) {
	start := time.Now()

	bars, err := o.barStore.GetSeries(ctx, in.Symbol, in.Timeframe)
	if err != nil {
		observability.RecordRun(in.Symbol, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		observability.RecordRun(in.Symbol, "error", time.Since(start).Seconds())
		return nil, domain.ErrEmptySeries
	}

	var htf []domain.Bar
	if in.HTF != "" && in.HTF != in.Timeframe {
		htf, err = o.barStore.GetSeries(ctx, in.Symbol, in.HTF)
		if err != nil {
			observability.RecordRun(in.Symbol, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("load htf bars: %w", err)
		}
	}

	var events []domain.NewsEvent
	if o.newsStore != nil {
		first, last := bars[0].TimestampMs, bars[len(bars)-1].TimestampMs
		pad := int64(o.cfg.Strategy.NewsPreWindowMinutes+o.cfg.Strategy.NewsPostWindowMinutes) * 60_000
		events, err = o.newsStore.GetByTimeRange(ctx, first-pad, last+pad)
		if err != nil {
			observability.RecordRun(in.Symbol, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("load news events: %w", err)
		}
	}

	runner, err := simulation.NewRunner(o.cfg.Strategy, o.cfg.Costs, nil)
	if err != nil {
		return nil, err
	}

	simRes, err := runner.Run(ctx, simulation.Input{
		RunID:      runID,
		Instrument: in.Symbol,
		Currencies: in.Currencies,
		Bars:       bars,
		HTFBars:    htf,
		News:       events,
	})
	if err != nil {
		observability.RecordRun(in.Symbol, "error", time.Since(start).Seconds())
		return nil, err
	}

	agg := metrics.Compute(simRes.Trades, simRes.EquityCurve, simRes.RejectedSignals,
		o.cfg.Strategy.InitialEquity, o.cfg.Strategy.AnnualizationFactor)
	agg.RunID = runID
	agg.Instrument = in.Symbol
	agg.StrategyID = o.cfg.Strategy.StrategyID

	observability.RecordBarsProcessed(simRes.BarsProcessed)
	for reason, n := range simRes.Skips {
		observability.RecordSignalsSkipped(reason, n)
	}
	for _, t := range simRes.Trades {
		observability.RecordTradeOpened(in.Symbol)
		observability.RecordTradeClosed(in.Symbol, t.ExitReason)
	}
	observability.RecordRun(in.Symbol, "success", time.Since(start).Seconds())

	o.log("  %s: %d bars, %d trades, final equity %.2f",
		in.Symbol, simRes.BarsProcessed, len(simRes.Trades), simRes.FinalEquity)

	return &InstrumentResult{
		Instrument: in.Symbol,
		Simulation: simRes,
		Aggregate:  agg,
	}, nil
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf("[orchestrator] "+format, args...)
	}
}

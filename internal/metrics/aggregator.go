// Package metrics turns closed-trade ledgers into performance statistics.
package metrics

import (
	"context"
	"fmt"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/storage"
)

// Aggregator recomputes and persists per-instrument aggregates for runs
// whose trades were already stored.
type Aggregator struct {
	tradeStore storage.ClosedTradeStore
	aggStore   storage.AggregateStore
}

// NewAggregator creates an aggregator over the given stores.
func NewAggregator(tradeStore storage.ClosedTradeStore, aggStore storage.AggregateStore) *Aggregator {
	return &Aggregator{tradeStore: tradeStore, aggStore: aggStore}
}

// Aggregate loads a run's trades for one instrument, computes the
// aggregate over an equity curve rebuilt from realized trades, persists it
// and returns it. The per-bar curve is not persisted, so drawdown here is
// the realized (trade-close) drawdown.
func (a *Aggregator) Aggregate(ctx context.Context, runID, instrument string, rejectedSignals int, initialEquity, annualizationFactor float64) (*domain.RunAggregate, error) {
	trades, err := a.tradeStore.GetByRun(ctx, runID, instrument)
	if err != nil {
		return nil, fmt.Errorf("load trades for run %s: %w", runID, err)
	}

	curve := EquityFromTrades(trades, initialEquity)
	agg := Compute(trades, curve, rejectedSignals, initialEquity, annualizationFactor)
	agg.RunID = runID
	agg.Instrument = instrument

	if a.aggStore != nil {
		if err := a.aggStore.Insert(ctx, agg); err != nil {
			return nil, fmt.Errorf("persist aggregate: %w", err)
		}
	}
	return agg, nil
}

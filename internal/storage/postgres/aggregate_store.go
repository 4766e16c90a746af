package postgres

import (
	"context"
	"fmt"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/storage"
)

// AggregateStore implements storage.AggregateStore using PostgreSQL.
type AggregateStore struct {
	pool *Pool
}

// NewAggregateStore creates a new AggregateStore.
func NewAggregateStore(pool *Pool) *AggregateStore {
	return &AggregateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AggregateStore = (*AggregateStore)(nil)

// Insert adds a new aggregate. Returns ErrDuplicateKey if (run_id, instrument) exists.
func (s *AggregateStore) Insert(ctx context.Context, a *domain.RunAggregate) error {
	query := `
		INSERT INTO run_aggregates (
			run_id, instrument, strategy_id,
			total_trades, wins, losses, win_rate, rejected_signals,
			net_profit, total_return_pct, profit_factor, max_drawdown, max_drawdown_pct,
			sharpe, sortino, avg_hold_duration_ms,
			band_80_100, band_60_80, band_40_60, band_rejected
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13,
			$14, $15, $16,
			$17, $18, $19, $20
		)
	`

	_, err := s.pool.Exec(ctx, query,
		a.RunID, a.Instrument, a.StrategyID,
		a.TotalTrades, a.Wins, a.Losses, a.WinRate, a.RejectedSignals,
		a.NetProfit, a.TotalReturnPct, a.ProfitFactor, a.MaxDrawdown, a.MaxDrawdownPct,
		a.Sharpe, a.Sortino, a.AvgHoldDurationMs,
		a.QualityHistogram.Band80To100, a.QualityHistogram.Band60To80,
		a.QualityHistogram.Band40To60, a.QualityHistogram.Rejected,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run aggregate: %w", err)
	}
	return nil
}

// GetByRunID retrieves all aggregates for a run, ordered by instrument ASC.
func (s *AggregateStore) GetByRunID(ctx context.Context, runID string) ([]*domain.RunAggregate, error) {
	query := `
		SELECT
			run_id, instrument, strategy_id,
			total_trades, wins, losses, win_rate, rejected_signals,
			net_profit, total_return_pct, profit_factor, max_drawdown, max_drawdown_pct,
			sharpe, sortino, avg_hold_duration_ms,
			band_80_100, band_60_80, band_40_60, band_rejected
		FROM run_aggregates
		WHERE run_id = $1
		ORDER BY instrument ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get run aggregates by run id: %w", err)
	}
	defer rows.Close()

	var aggs []*domain.RunAggregate
	for rows.Next() {
		var a domain.RunAggregate

		err := rows.Scan(
			&a.RunID, &a.Instrument, &a.StrategyID,
			&a.TotalTrades, &a.Wins, &a.Losses, &a.WinRate, &a.RejectedSignals,
			&a.NetProfit, &a.TotalReturnPct, &a.ProfitFactor, &a.MaxDrawdown, &a.MaxDrawdownPct,
			&a.Sharpe, &a.Sortino, &a.AvgHoldDurationMs,
			&a.QualityHistogram.Band80To100, &a.QualityHistogram.Band60To80,
			&a.QualityHistogram.Band40To60, &a.QualityHistogram.Rejected,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run aggregate row: %w", err)
		}

		aggs = append(aggs, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run aggregate rows: %w", err)
	}

	return aggs, nil
}

package storage

import (
	"context"

	"fx-backtest-lab/internal/domain"
)

// BarStore provides access to price bar series, keyed by instrument and
// timeframe ("1h", "4h", ...).
type BarStore interface {
	// InsertBulk adds multiple bars. Fails entire batch on duplicate
	// (instrument, timeframe, timestamp_ms).
	InsertBulk(ctx context.Context, instrument, timeframe string, bars []domain.Bar) error

	// GetSeries retrieves all bars for an instrument/timeframe, ordered by
	// timestamp ASC.
	GetSeries(ctx context.Context, instrument, timeframe string) ([]domain.Bar, error)

	// GetByTimeRange retrieves bars within [start, end] (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, instrument, timeframe string, start, end int64) ([]domain.Bar, error)
}

// NewsEventStore provides access to the scheduled event calendar.
type NewsEventStore interface {
	// InsertBulk adds multiple events. Fails entire batch on duplicate
	// (timestamp_ms, label, currency).
	InsertBulk(ctx context.Context, events []domain.NewsEvent) error

	// GetByTimeRange retrieves events within [start, end] (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]domain.NewsEvent, error)

	// GetByCurrency retrieves all events for a currency, ordered by
	// timestamp ASC.
	GetByCurrency(ctx context.Context, currency string) ([]domain.NewsEvent, error)
}

// ClosedTradeStore provides access to closed_trades storage.
type ClosedTradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.ClosedTrade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.ClosedTrade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.ClosedTrade, error)

	// GetByRun retrieves all trades for a run and instrument, ordered by
	// entry_time_ms ASC, trade_id ASC.
	GetByRun(ctx context.Context, runID, instrument string) ([]*domain.ClosedTrade, error)

	// GetByRunID retrieves all trades for a run across instruments,
	// ordered by entry_time_ms ASC, trade_id ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.ClosedTrade, error)
}

// AggregateStore provides access to run_aggregates storage.
type AggregateStore interface {
	// Insert adds a new aggregate. Returns ErrDuplicateKey if
	// (run_id, instrument) exists.
	Insert(ctx context.Context, a *domain.RunAggregate) error

	// GetByRunID retrieves all aggregates for a run, ordered by instrument ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.RunAggregate, error)
}

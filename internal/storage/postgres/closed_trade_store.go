package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/storage"
)

// ClosedTradeStore implements storage.ClosedTradeStore using PostgreSQL.
type ClosedTradeStore struct {
	pool *Pool
}

// NewClosedTradeStore creates a new ClosedTradeStore.
func NewClosedTradeStore(pool *Pool) *ClosedTradeStore {
	return &ClosedTradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClosedTradeStore = (*ClosedTradeStore)(nil)

const closedTradeColumns = `
	trade_id, run_id, instrument, strategy_id,
	direction, entry_time_ms, entry_price, stop_price, target_price, size,
	exit_time_ms, exit_price, exit_reason,
	profit_loss, return_pct, quality_total, size_multiplier, hold_duration_ms
`

const insertClosedTradeQuery = `
	INSERT INTO closed_trades (
		trade_id, run_id, instrument, strategy_id,
		direction, entry_time_ms, entry_price, stop_price, target_price, size,
		exit_time_ms, exit_price, exit_reason,
		profit_loss, return_pct, quality_total, size_multiplier, hold_duration_ms
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9, $10,
		$11, $12, $13,
		$14, $15, $16, $17, $18
	)
`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *ClosedTradeStore) Insert(ctx context.Context, t *domain.ClosedTrade) error {
	_, err := s.pool.Exec(ctx, insertClosedTradeQuery,
		t.TradeID, t.RunID, t.Instrument, t.StrategyID,
		string(t.Direction), t.EntryTimeMs, t.EntryPrice, t.StopPrice, t.TargetPrice, t.Size,
		t.ExitTimeMs, t.ExitPrice, t.ExitReason,
		t.ProfitLoss, t.ReturnPct, t.QualityTotal, t.SizeMultiplier, t.HoldDurationMs,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert closed trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *ClosedTradeStore) InsertBulk(ctx context.Context, trades []*domain.ClosedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		_, err := tx.Exec(ctx, insertClosedTradeQuery,
			t.TradeID, t.RunID, t.Instrument, t.StrategyID,
			string(t.Direction), t.EntryTimeMs, t.EntryPrice, t.StopPrice, t.TargetPrice, t.Size,
			t.ExitTimeMs, t.ExitPrice, t.ExitReason,
			t.ProfitLoss, t.ReturnPct, t.QualityTotal, t.SizeMultiplier, t.HoldDurationMs,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert closed trade in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *ClosedTradeStore) GetByID(ctx context.Context, tradeID string) (*domain.ClosedTrade, error) {
	query := `
		SELECT ` + closedTradeColumns + `
		FROM closed_trades
		WHERE trade_id = $1
	`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanClosedTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get closed trade by id: %w", err)
	}
	return t, nil
}

// GetByRun retrieves all trades for a run and instrument.
func (s *ClosedTradeStore) GetByRun(ctx context.Context, runID, instrument string) ([]*domain.ClosedTrade, error) {
	query := `
		SELECT ` + closedTradeColumns + `
		FROM closed_trades
		WHERE run_id = $1 AND instrument = $2
		ORDER BY entry_time_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID, instrument)
	if err != nil {
		return nil, fmt.Errorf("get closed trades by run: %w", err)
	}
	defer rows.Close()

	return scanClosedTrades(rows)
}

// GetByRunID retrieves all trades for a run across instruments.
func (s *ClosedTradeStore) GetByRunID(ctx context.Context, runID string) ([]*domain.ClosedTrade, error) {
	query := `
		SELECT ` + closedTradeColumns + `
		FROM closed_trades
		WHERE run_id = $1
		ORDER BY entry_time_ms ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get closed trades by run id: %w", err)
	}
	defer rows.Close()

	return scanClosedTrades(rows)
}

// scanClosedTrade scans a single row into a ClosedTrade.
func scanClosedTrade(row pgx.Row) (*domain.ClosedTrade, error) {
	var t domain.ClosedTrade
	var direction string

	err := row.Scan(
		&t.TradeID, &t.RunID, &t.Instrument, &t.StrategyID,
		&direction, &t.EntryTimeMs, &t.EntryPrice, &t.StopPrice, &t.TargetPrice, &t.Size,
		&t.ExitTimeMs, &t.ExitPrice, &t.ExitReason,
		&t.ProfitLoss, &t.ReturnPct, &t.QualityTotal, &t.SizeMultiplier, &t.HoldDurationMs,
	)
	if err != nil {
		return nil, err
	}
	t.Direction = domain.Direction(direction)

	return &t, nil
}

// scanClosedTrades scans multiple rows into a slice of ClosedTrade.
func scanClosedTrades(rows pgx.Rows) ([]*domain.ClosedTrade, error) {
	var trades []*domain.ClosedTrade

	for rows.Next() {
		t, err := scanClosedTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan closed trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closed trade rows: %w", err)
	}

	return trades, nil
}

package clickhouse

import (
	"context"
	"fmt"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/storage"
)

// NewsEventStore implements storage.NewsEventStore using ClickHouse.
type NewsEventStore struct {
	conn *Conn
}

// NewNewsEventStore creates a new NewsEventStore.
func NewNewsEventStore(conn *Conn) *NewsEventStore {
	return &NewsEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.NewsEventStore = (*NewsEventStore)(nil)

// InsertBulk adds multiple events. Fails entire batch on duplicate
// (timestamp_ms, label, currency).
func (s *NewsEventStore) InsertBulk(ctx context.Context, events []domain.NewsEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Check for intra-batch duplicates
	type key struct {
		timestampMs int64
		label       string
		currency    string
	}
	seen := make(map[key]struct{})
	for _, e := range events {
		k := key{e.TimestampMs, e.Label, e.Currency}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, e := range events {
		exists, err := s.exists(ctx, e.TimestampMs, e.Label, e.Currency)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO news_events (
			timestamp_ms, label, impact, currency, sentiment
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		err = batch.Append(
			uint64(e.TimestampMs), e.Label, e.Impact, e.Currency, e.Sentiment,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive), ordered by timestamp ASC.
func (s *NewsEventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]domain.NewsEvent, error) {
	query := `
		SELECT timestamp_ms, label, impact, currency, sentiment
		FROM news_events
		WHERE timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query news events by time range: %w", err)
	}
	defer rows.Close()

	return scanNewsEvents(rows)
}

// GetByCurrency retrieves all events for a currency, ordered by timestamp ASC.
func (s *NewsEventStore) GetByCurrency(ctx context.Context, currency string) ([]domain.NewsEvent, error) {
	query := `
		SELECT timestamp_ms, label, impact, currency, sentiment
		FROM news_events
		WHERE currency = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, currency)
	if err != nil {
		return nil, fmt.Errorf("query news events by currency: %w", err)
	}
	defer rows.Close()

	return scanNewsEvents(rows)
}

// exists checks if an event with the given key exists.
func (s *NewsEventStore) exists(ctx context.Context, timestampMs int64, label, currency string) (bool, error) {
	query := `
		SELECT count(*) FROM news_events
		WHERE timestamp_ms = ? AND label = ? AND currency = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, uint64(timestampMs), label, currency).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanNewsEvents scans multiple rows.
func scanNewsEvents(rows chRows) ([]domain.NewsEvent, error) {
	var events []domain.NewsEvent

	for rows.Next() {
		var e domain.NewsEvent
		var timestampMs uint64

		err := rows.Scan(&timestampMs, &e.Label, &e.Impact, &e.Currency, &e.Sentiment)
		if err != nil {
			return nil, fmt.Errorf("scan news event row: %w", err)
		}

		e.TimestampMs = int64(timestampMs)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news event rows: %w", err)
	}

	return events, nil
}

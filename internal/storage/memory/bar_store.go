package memory

import (
	"context"
	"sort"
	"sync"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/storage"
)

type seriesKey struct {
	instrument string
	timeframe  string
}

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[seriesKey][]domain.Bar
}

// NewBarStore creates a new in-memory bar store.
func NewBarStore() *BarStore {
	return &BarStore{data: make(map[seriesKey][]domain.Bar)}
}

// InsertBulk adds multiple bars. Fails entire batch on duplicate
// (instrument, timeframe, timestamp_ms).
func (s *BarStore) InsertBulk(_ context.Context, instrument, timeframe string, bars []domain.Bar) error {
	if instrument == "" || timeframe == "" {
		return storage.ErrInvalidInput
	}
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := seriesKey{instrument, timeframe}
	existing := make(map[int64]struct{}, len(s.data[key]))
	for _, b := range s.data[key] {
		existing[b.TimestampMs] = struct{}{}
	}
	batch := make(map[int64]struct{}, len(bars))
	for _, b := range bars {
		if _, ok := existing[b.TimestampMs]; ok {
			return storage.ErrDuplicateKey
		}
		if _, ok := batch[b.TimestampMs]; ok {
			return storage.ErrDuplicateKey
		}
		batch[b.TimestampMs] = struct{}{}
	}

	merged := append(append([]domain.Bar(nil), s.data[key]...), bars...)
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].TimestampMs < merged[j].TimestampMs
	})
	s.data[key] = merged
	return nil
}

// GetSeries retrieves all bars for an instrument/timeframe, ordered by timestamp ASC.
func (s *BarStore) GetSeries(_ context.Context, instrument, timeframe string) ([]domain.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.data[seriesKey{instrument, timeframe}]
	return append([]domain.Bar(nil), series...), nil
}

// GetByTimeRange retrieves bars within [start, end] (inclusive).
func (s *BarStore) GetByTimeRange(_ context.Context, instrument, timeframe string, start, end int64) ([]domain.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Bar
	for _, b := range s.data[seriesKey{instrument, timeframe}] {
		if b.TimestampMs >= start && b.TimestampMs <= end {
			out = append(out, b)
		}
	}
	return out, nil
}

var _ storage.BarStore = (*BarStore)(nil)

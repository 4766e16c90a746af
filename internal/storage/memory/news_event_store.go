package memory

import (
	"context"
	"sort"
	"sync"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/storage"
)

type eventKey struct {
	timestampMs int64
	label       string
	currency    string
}

// NewsEventStore is an in-memory implementation of storage.NewsEventStore.
type NewsEventStore struct {
	mu   sync.RWMutex
	data []domain.NewsEvent
	keys map[eventKey]struct{}
}

// NewNewsEventStore creates a new in-memory news event store.
func NewNewsEventStore() *NewsEventStore {
	return &NewsEventStore{keys: make(map[eventKey]struct{})}
}

// InsertBulk adds multiple events. Fails entire batch on any duplicate.
func (s *NewsEventStore) InsertBulk(_ context.Context, events []domain.NewsEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[eventKey]struct{}, len(events))
	for _, e := range events {
		k := eventKey{e.TimestampMs, e.Label, e.Currency}
		if _, ok := s.keys[k]; ok {
			return storage.ErrDuplicateKey
		}
		if _, ok := batch[k]; ok {
			return storage.ErrDuplicateKey
		}
		batch[k] = struct{}{}
	}

	for _, e := range events {
		s.keys[eventKey{e.TimestampMs, e.Label, e.Currency}] = struct{}{}
		s.data = append(s.data, e)
	}
	sort.Slice(s.data, func(i, j int) bool {
		return s.data[i].TimestampMs < s.data[j].TimestampMs
	})
	return nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive).
func (s *NewsEventStore) GetByTimeRange(_ context.Context, start, end int64) ([]domain.NewsEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.NewsEvent
	for _, e := range s.data {
		if e.TimestampMs >= start && e.TimestampMs <= end {
			out = append(out, e)
		}
	}
	return out, nil
}

// GetByCurrency retrieves all events for a currency, ordered by timestamp ASC.
func (s *NewsEventStore) GetByCurrency(_ context.Context, currency string) ([]domain.NewsEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.NewsEvent
	for _, e := range s.data {
		if e.Currency == currency {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ storage.NewsEventStore = (*NewsEventStore)(nil)

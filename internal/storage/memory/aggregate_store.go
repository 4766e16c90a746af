package memory

import (
	"context"
	"sort"
	"sync"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/storage"
)

type aggregateKey struct {
	runID      string
	instrument string
}

// AggregateStore is an in-memory implementation of storage.AggregateStore.
type AggregateStore struct {
	mu   sync.RWMutex
	data map[aggregateKey]*domain.RunAggregate
}

// NewAggregateStore creates a new in-memory aggregate store.
func NewAggregateStore() *AggregateStore {
	return &AggregateStore{data: make(map[aggregateKey]*domain.RunAggregate)}
}

// Insert adds a new aggregate. Returns ErrDuplicateKey if (run_id, instrument) exists.
func (s *AggregateStore) Insert(_ context.Context, a *domain.RunAggregate) error {
	if a == nil || a.RunID == "" || a.Instrument == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := aggregateKey{a.RunID, a.Instrument}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *a
	if a.ProfitFactor != nil {
		pf := *a.ProfitFactor
		cp.ProfitFactor = &pf
	}
	s.data[key] = &cp
	return nil
}

// GetByRunID retrieves all aggregates for a run, ordered by instrument ASC.
func (s *AggregateStore) GetByRunID(_ context.Context, runID string) ([]*domain.RunAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunAggregate
	for key, a := range s.data {
		if key.runID == runID {
			cp := *a
			if a.ProfitFactor != nil {
				pf := *a.ProfitFactor
				cp.ProfitFactor = &pf
			}
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Instrument < result[j].Instrument
	})
	return result, nil
}

var _ storage.AggregateStore = (*AggregateStore)(nil)

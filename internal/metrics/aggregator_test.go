package metrics

import (
	"context"
	"errors"
	"testing"

	"fx-backtest-lab/internal/storage"
	"fx-backtest-lab/internal/storage/memory"
)

func TestAggregator_Aggregate(t *testing.T) {
	ctx := context.Background()
	tradeStore := memory.NewClosedTradeStore()
	aggStore := memory.NewAggregateStore()

	if err := tradeStore.Insert(ctx, makeTrade("t1", 1000, 2000, 100, 0.01, 85)); err != nil {
		t.Fatalf("insert t1: %v", err)
	}
	if err := tradeStore.Insert(ctx, makeTrade("t2", 3000, 6000, -50, -0.005, 65)); err != nil {
		t.Fatalf("insert t2: %v", err)
	}

	agg, err := NewAggregator(tradeStore, aggStore).Aggregate(ctx, "run1", "EURUSD", 3, 10_000, 252)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if agg.RunID != "run1" || agg.Instrument != "EURUSD" {
		t.Errorf("identity mismatch: %+v", agg)
	}
	if agg.TotalTrades != 2 || agg.Wins != 1 || agg.Losses != 1 {
		t.Errorf("counts mismatch: %+v", agg)
	}
	if agg.NetProfit != 50 {
		t.Errorf("net profit = %f, want 50", agg.NetProfit)
	}
	if agg.RejectedSignals != 3 {
		t.Errorf("rejected = %d, want 3", agg.RejectedSignals)
	}

	stored, err := aggStore.GetByRunID(ctx, "run1")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(stored) != 1 || stored[0].NetProfit != 50 {
		t.Errorf("aggregate not persisted correctly: %+v", stored)
	}
}

func TestAggregator_EmptyRun(t *testing.T) {
	ctx := context.Background()
	a := NewAggregator(memory.NewClosedTradeStore(), memory.NewAggregateStore())

	agg, err := a.Aggregate(ctx, "run1", "EURUSD", 0, 10_000, 252)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if agg.TotalTrades != 0 {
		t.Errorf("total trades = %d, want 0", agg.TotalTrades)
	}
}

func TestAggregator_DuplicateAggregate(t *testing.T) {
	ctx := context.Background()
	a := NewAggregator(memory.NewClosedTradeStore(), memory.NewAggregateStore())

	if _, err := a.Aggregate(ctx, "run1", "EURUSD", 0, 10_000, 252); err != nil {
		t.Fatalf("first Aggregate failed: %v", err)
	}
	// Aggregates are append-only per (run, instrument).
	if _, err := a.Aggregate(ctx, "run1", "EURUSD", 0, 10_000, 252); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestAggregator_NilAggregateStore(t *testing.T) {
	ctx := context.Background()
	a := NewAggregator(memory.NewClosedTradeStore(), nil)

	if _, err := a.Aggregate(ctx, "run1", "EURUSD", 0, 10_000, 252); err != nil {
		t.Fatalf("Aggregate without a store should compute only: %v", err)
	}
}

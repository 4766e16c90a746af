package reporting

import (
	"context"
	"sort"
	"time"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/storage"
)

// Generator produces reports from stored run data.
type Generator struct {
	tradeStore storage.ClosedTradeStore
	aggStore   storage.AggregateStore
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(tradeStore storage.ClosedTradeStore, aggStore storage.AggregateStore) *Generator {
	return &Generator{
		tradeStore: tradeStore,
		aggStore:   aggStore,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete report for one run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	aggs, err := g.aggStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	trades, err := g.tradeStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt:     g.now(),
		RunID:           runID,
		InstrumentCount: len(aggs),
		DataSummary:     generateDataSummary(aggs, trades),
		InstrumentRows:  generateInstrumentRows(aggs),
		QualityRows:     generateQualityRows(aggs),
		ExitRows:        generateExitRows(trades),
	}
	return report, nil
}

// generateDataSummary folds aggregates and trades into the run totals.
func generateDataSummary(aggs []*domain.RunAggregate, trades []*domain.ClosedTrade) DataSummary {
	var s DataSummary
	for _, a := range aggs {
		s.TotalTrades += a.TotalTrades
		s.TotalWins += a.Wins
		s.TotalLosses += a.Losses
		s.RejectedSignals += a.RejectedSignals
		s.NetProfit += a.NetProfit
	}
	for i, t := range trades {
		if i == 0 || t.EntryTimeMs < s.DateRangeStart {
			s.DateRangeStart = t.EntryTimeMs
		}
		if t.ExitTimeMs > s.DateRangeEnd {
			s.DateRangeEnd = t.ExitTimeMs
		}
	}
	return s
}

// generateInstrumentRows builds sorted per-instrument rows.
func generateInstrumentRows(aggs []*domain.RunAggregate) []InstrumentRow {
	rows := make([]InstrumentRow, len(aggs))
	for i, a := range aggs {
		rows[i] = InstrumentRow{
			Instrument:        a.Instrument,
			StrategyID:        a.StrategyID,
			TotalTrades:       a.TotalTrades,
			Wins:              a.Wins,
			Losses:            a.Losses,
			WinRate:           a.WinRate,
			NetProfit:         a.NetProfit,
			TotalReturnPct:    a.TotalReturnPct,
			ProfitFactor:      a.ProfitFactor,
			MaxDrawdown:       a.MaxDrawdown,
			MaxDrawdownPct:    a.MaxDrawdownPct,
			Sharpe:            a.Sharpe,
			Sortino:           a.Sortino,
			AvgHoldDurationMs: a.AvgHoldDurationMs,
			RejectedSignals:   a.RejectedSignals,
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Instrument < rows[j].Instrument
	})
	return rows
}

// generateQualityRows builds sorted quality histogram rows.
func generateQualityRows(aggs []*domain.RunAggregate) []QualityRow {
	rows := make([]QualityRow, len(aggs))
	for i, a := range aggs {
		rows[i] = QualityRow{
			Instrument:  a.Instrument,
			Band80To100: a.QualityHistogram.Band80To100,
			Band60To80:  a.QualityHistogram.Band60To80,
			Band40To60:  a.QualityHistogram.Band40To60,
			Rejected:    a.QualityHistogram.Rejected,
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Instrument < rows[j].Instrument
	})
	return rows
}

// generateExitRows counts exits by reason per instrument.
func generateExitRows(trades []*domain.ClosedTrade) []ExitRow {
	byInstrument := make(map[string]*ExitRow)
	for _, t := range trades {
		row := byInstrument[t.Instrument]
		if row == nil {
			row = &ExitRow{Instrument: t.Instrument}
			byInstrument[t.Instrument] = row
		}
		switch t.ExitReason {
		case domain.ExitReasonStop:
			row.Stops++
		case domain.ExitReasonTarget:
			row.Targets++
		case domain.ExitReasonReversal:
			row.Reversals++
		case domain.ExitReasonEndOfData:
			row.EndOfData++
		}
	}

	rows := make([]ExitRow, 0, len(byInstrument))
	for _, row := range byInstrument {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Instrument < rows[j].Instrument
	})
	return rows
}

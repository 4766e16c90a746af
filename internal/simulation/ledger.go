package simulation

import (
	"sort"

	"fx-backtest-lab/internal/domain"
	"fx-backtest-lab/internal/idhash"
)

// Ledger owns the open positions and the closed-trade list for one
// instrument. Only the simulation runner mutates it; positions are
// exclusively owned until closed and trades are append-only afterwards.
type Ledger struct {
	instrument string
	strategyID string
	runID      string

	open        []*domain.Position
	closed      []*domain.ClosedTrade
	lastEntryMs int64 // 0 = no entry yet
	equity      float64
	curve       []domain.EquityPoint
}

// NewLedger creates a ledger starting from the initial account equity.
func NewLedger(runID, instrument, strategyID string, initialEquity float64) *Ledger {
	return &Ledger{
		instrument: instrument,
		strategyID: strategyID,
		runID:      runID,
		equity:     initialEquity,
	}
}

// OpenCount returns the number of live positions.
func (l *Ledger) OpenCount() int { return len(l.open) }

// Equity returns realized equity (closed trades only).
func (l *Ledger) Equity() float64 { return l.equity }

// LastEntryMs returns the entry time of the most recent open, 0 if none.
func (l *Ledger) LastEntryMs() int64 { return l.lastEntryMs }

// OpenPositions returns the live positions. Callers must not mutate them.
func (l *Ledger) OpenPositions() []*domain.Position { return l.open }

// Open records a new position and the spacing timestamp.
func (l *Ledger) Open(pos *domain.Position) {
	l.open = append(l.open, pos)
	l.lastEntryMs = pos.EntryTimeMs
}

// Close realizes a position at the given price and appends the trade.
// The exit timestamp is always >= the entry timestamp.
func (l *Ledger) Close(pos *domain.Position, exitTimeMs int64, exitPrice float64, reason string) *domain.ClosedTrade {
	pnl := (exitPrice - pos.EntryPrice) * pos.Direction.Sign() * pos.Size
	exposure := pos.EntryPrice * pos.Size

	returnPct := 0.0
	if exposure != 0 {
		returnPct = pnl / exposure
	}

	trade := &domain.ClosedTrade{
		TradeID:        idhash.ComputeTradeID(l.instrument, l.strategyID, pos.EntryTimeMs, string(pos.Direction)),
		RunID:          l.runID,
		Instrument:     l.instrument,
		StrategyID:     l.strategyID,
		Direction:      pos.Direction,
		EntryTimeMs:    pos.EntryTimeMs,
		EntryPrice:     pos.EntryPrice,
		StopPrice:      pos.StopPrice,
		TargetPrice:    pos.TargetPrice,
		Size:           pos.Size,
		ExitTimeMs:     exitTimeMs,
		ExitPrice:      exitPrice,
		ExitReason:     reason,
		ProfitLoss:     pnl,
		ReturnPct:      returnPct,
		QualityTotal:   pos.Quality.Total,
		SizeMultiplier: pos.Quality.SizeMultiplier,
		HoldDurationMs: exitTimeMs - pos.EntryTimeMs,
	}

	l.equity += pnl
	l.closed = append(l.closed, trade)

	for i, p := range l.open {
		if p == pos {
			l.open = append(l.open[:i], l.open[i+1:]...)
			break
		}
	}
	return trade
}

// Mark appends an equity curve point: realized equity plus the unrealized
// value of open positions at the mark price.
func (l *Ledger) Mark(tsMs int64, markPrice float64) {
	eq := l.equity
	for _, p := range l.open {
		eq += (markPrice - p.EntryPrice) * p.Direction.Sign() * p.Size
	}
	l.curve = append(l.curve, domain.EquityPoint{TimestampMs: tsMs, Equity: eq})
}

// Trades returns the closed trades sorted by entry time, trade ID.
func (l *Ledger) Trades() []*domain.ClosedTrade {
	out := make([]*domain.ClosedTrade, len(l.closed))
	copy(out, l.closed)
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntryTimeMs != out[j].EntryTimeMs {
			return out[i].EntryTimeMs < out[j].EntryTimeMs
		}
		return out[i].TradeID < out[j].TradeID
	})
	return out
}

// Curve returns the equity curve in bar order.
func (l *Ledger) Curve() []domain.EquityPoint { return l.curve }

package domain

// Position is a live trade owned exclusively by the ledger until closed.
// Entry price, stop and target are fixed at open and never recomputed.
type Position struct {
	Instrument  string
	Direction   Direction
	EntryTimeMs int64
	EntryPrice  float64 // post-spread
	StopPrice   float64
	TargetPrice float64
	Size        float64 // units
	Quality     QualityScore
}

// Exit reason codes.
const (
	ExitReasonStop      = "STOP"
	ExitReasonTarget    = "TARGET"
	ExitReasonReversal  = "REVERSAL"
	ExitReasonEndOfData = "END_OF_DATA"
)

// ClosedTrade is a position plus its exit. Append-only once created;
// the ledger is the sole owner.
type ClosedTrade struct {
	TradeID    string // deterministic hash
	RunID      string // backtest run identifier
	Instrument string
	StrategyID string

	Direction   Direction
	EntryTimeMs int64
	EntryPrice  float64
	StopPrice   float64
	TargetPrice float64
	Size        float64

	ExitTimeMs int64
	ExitPrice  float64
	ExitReason string // STOP | TARGET | REVERSAL | END_OF_DATA

	ProfitLoss     float64 // realized, in account currency
	ReturnPct      float64 // profit/loss relative to entry exposure
	QualityTotal   float64
	SizeMultiplier float64
	HoldDurationMs int64
}

// RunAggregate holds the performance statistics for one (run, instrument)
// pair, computed by the metrics package over the closed-trade ledger.
type RunAggregate struct {
	RunID      string
	Instrument string
	StrategyID string

	// Counts
	TotalTrades     int
	Wins            int
	Losses          int
	WinRate         float64
	RejectedSignals int

	// Returns
	NetProfit      float64
	TotalReturnPct float64  // net profit / initial equity
	ProfitFactor   *float64 // nil when there are no losing trades
	MaxDrawdown    float64  // peak-to-trough on the equity curve
	MaxDrawdownPct float64  // relative to the peak at the trough

	// Risk-adjusted
	Sharpe  float64
	Sortino float64

	// Durations
	AvgHoldDurationMs int64

	// Quality distribution of accepted trades
	QualityHistogram QualityHistogram
}

// QualityHistogram counts trades by the score band they entered with.
type QualityHistogram struct {
	Band80To100 int // [80, 100]
	Band60To80  int // [60, 80)
	Band40To60  int // [40, 60)
	Rejected    int // signals scored below 40 (never entered)
}

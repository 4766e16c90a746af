package reporting

import "time"

// Report is the rendered summary of one backtest run.
type Report struct {
	// Metadata
	GeneratedAt     time.Time
	RunID           string
	InstrumentCount int

	// Data Summary
	DataSummary DataSummary

	// Per-instrument performance (sorted by instrument)
	InstrumentRows []InstrumentRow

	// Quality score distribution across accepted trades
	QualityRows []QualityRow

	// Exit reason breakdown
	ExitRows []ExitRow
}

// DataSummary describes the run as a whole.
type DataSummary struct {
	TotalTrades     int
	TotalWins       int
	TotalLosses     int
	RejectedSignals int
	NetProfit       float64
	DateRangeStart  int64 // Unix ms, first entry
	DateRangeEnd    int64 // Unix ms, last exit
}

// InstrumentRow is one row in the per-instrument performance table.
type InstrumentRow struct {
	Instrument        string
	StrategyID        string
	TotalTrades       int
	Wins              int
	Losses            int
	WinRate           float64
	NetProfit         float64
	TotalReturnPct    float64
	ProfitFactor      *float64 // nil when no losing trades
	MaxDrawdown       float64
	MaxDrawdownPct    float64
	Sharpe            float64
	Sortino           float64
	AvgHoldDurationMs int64
	RejectedSignals   int
}

// QualityRow is one score band of the quality histogram.
type QualityRow struct {
	Instrument  string
	Band80To100 int
	Band60To80  int
	Band40To60  int
	Rejected    int
}

// ExitRow counts exits by reason for one instrument.
type ExitRow struct {
	Instrument string
	Stops      int
	Targets    int
	Reversals  int
	EndOfData  int
}

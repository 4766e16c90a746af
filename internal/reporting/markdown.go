package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s | Instruments: %d\n\n", r.RunID, r.InstrumentCount))

	// Data Summary
	sb.WriteString("## Run Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.DataSummary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Wins | %d |\n", r.DataSummary.TotalWins))
	sb.WriteString(fmt.Sprintf("| Losses | %d |\n", r.DataSummary.TotalLosses))
	sb.WriteString(fmt.Sprintf("| Rejected Signals | %d |\n", r.DataSummary.RejectedSignals))
	sb.WriteString(fmt.Sprintf("| Net Profit | %.2f |\n", r.DataSummary.NetProfit))
	sb.WriteString(fmt.Sprintf("| First Entry (ms) | %d |\n", r.DataSummary.DateRangeStart))
	sb.WriteString(fmt.Sprintf("| Last Exit (ms) | %d |\n", r.DataSummary.DateRangeEnd))
	sb.WriteString("\n")

	// Per-instrument performance
	sb.WriteString("## Instrument Performance\n\n")
	if len(r.InstrumentRows) > 0 {
		sb.WriteString("| Instrument | Strategy | Trades | WinRate | NetProfit | Return% | PF | MaxDD% | Sharpe | Sortino | AvgHold | Rejected |\n")
		sb.WriteString("|------------|----------|--------|---------|-----------|---------|----|--------|--------|---------|---------|----------|\n")
		for _, m := range r.InstrumentRows {
			pf := "n/a"
			if m.ProfitFactor != nil {
				pf = fmt.Sprintf("%.2f", *m.ProfitFactor)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %.4f | %.2f | %.4f | %s | %.4f | %.4f | %.4f | %s | %d |\n",
				m.Instrument, m.StrategyID, m.TotalTrades, m.WinRate,
				m.NetProfit, m.TotalReturnPct, pf, m.MaxDrawdownPct,
				m.Sharpe, m.Sortino, formatDuration(m.AvgHoldDurationMs), m.RejectedSignals))
		}
	} else {
		sb.WriteString("No instrument results available.\n")
	}
	sb.WriteString("\n")

	// Quality distribution
	sb.WriteString("## Quality Score Distribution\n\n")
	if len(r.QualityRows) > 0 {
		sb.WriteString("| Instrument | 80-100 | 60-80 | 40-60 | Rejected |\n")
		sb.WriteString("|------------|--------|-------|-------|----------|\n")
		for _, q := range r.QualityRows {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
				q.Instrument, q.Band80To100, q.Band60To80, q.Band40To60, q.Rejected))
		}
	} else {
		sb.WriteString("No quality data available.\n")
	}
	sb.WriteString("\n")

	// Exit breakdown
	sb.WriteString("## Exit Reasons\n\n")
	if len(r.ExitRows) > 0 {
		sb.WriteString("| Instrument | Stops | Targets | Reversals | EndOfData |\n")
		sb.WriteString("|------------|-------|---------|-----------|----------|\n")
		for _, e := range r.ExitRows {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
				e.Instrument, e.Stops, e.Targets, e.Reversals, e.EndOfData))
		}
	} else {
		sb.WriteString("No closed trades.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// formatDuration renders a millisecond duration as h/m/s.
func formatDuration(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

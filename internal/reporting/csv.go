package reporting

import (
	"fmt"
	"strings"

	"fx-backtest-lab/internal/domain"
)

// RenderCSV renders per-instrument aggregates as CSV string.
func RenderCSV(rows []InstrumentRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("instrument,strategy_id,total_trades,wins,losses,win_rate,")
	sb.WriteString("net_profit,total_return_pct,profit_factor,max_drawdown,max_drawdown_pct,")
	sb.WriteString("sharpe,sortino,avg_hold_duration_ms,rejected_signals\n")

	// Rows
	for _, m := range rows {
		pf := ""
		if m.ProfitFactor != nil {
			pf = fmt.Sprintf("%.6f", *m.ProfitFactor)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%d,%d,%.6f,%.6f,%.6f,%s,%.6f,%.6f,%.6f,%.6f,%d,%d\n",
			m.Instrument,
			m.StrategyID,
			m.TotalTrades,
			m.Wins,
			m.Losses,
			m.WinRate,
			m.NetProfit,
			m.TotalReturnPct,
			pf,
			m.MaxDrawdown,
			m.MaxDrawdownPct,
			m.Sharpe,
			m.Sortino,
			m.AvgHoldDurationMs,
			m.RejectedSignals,
		))
	}

	return sb.String()
}

// RenderTradesCSV renders closed trades as CSV string, one row per trade.
func RenderTradesCSV(trades []*domain.ClosedTrade) string {
	var sb strings.Builder

	sb.WriteString("trade_id,run_id,instrument,strategy_id,direction,")
	sb.WriteString("entry_time_ms,entry_price,stop_price,target_price,size,")
	sb.WriteString("exit_time_ms,exit_price,exit_reason,profit_loss,return_pct,")
	sb.WriteString("quality_total,size_multiplier,hold_duration_ms\n")

	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%d,%.6f,%.6f,%.6f,%.6f,%d,%.6f,%s,%.6f,%.6f,%.2f,%.2f,%d\n",
			t.TradeID,
			t.RunID,
			t.Instrument,
			t.StrategyID,
			t.Direction,
			t.EntryTimeMs,
			t.EntryPrice,
			t.StopPrice,
			t.TargetPrice,
			t.Size,
			t.ExitTimeMs,
			t.ExitPrice,
			t.ExitReason,
			t.ProfitLoss,
			t.ReturnPct,
			t.QualityTotal,
			t.SizeMultiplier,
			t.HoldDurationMs,
		))
	}

	return sb.String()
}

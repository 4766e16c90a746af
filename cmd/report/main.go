// Package main renders the report for a stored backtest run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"fx-backtest-lab/internal/reporting"
	pgstore "fx-backtest-lab/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	runID := flag.String("run-id", "", "Run identifier to report on (required)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	outputDir := flag.String("output-dir", "", "Optional directory to also write REPORT.md and AGGREGATES.csv")
	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *runID == "" {
		logger.Fatal("--run-id is required")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	tradeStore := pgstore.NewClosedTradeStore(pool)
	aggStore := pgstore.NewAggregateStore(pool)

	gen := reporting.NewGenerator(tradeStore, aggStore)
	report, err := gen.Generate(ctx, *runID)
	if err != nil {
		logger.Fatalf("Failed to generate report: %v", err)
	}
	if report.InstrumentCount == 0 {
		logger.Fatalf("No aggregates found for run %s", *runID)
	}

	printSummary(report)
	printInstrumentTable(report)
	printQualityTable(report)
	printExitTable(report)

	if *outputDir != "" {
		if err := writeFiles(report, *outputDir); err != nil {
			logger.Fatalf("Failed to write report files: %v", err)
		}
		fmt.Printf("\nWritten:\n  - %s/REPORT.md\n  - %s/AGGREGATES.csv\n", *outputDir, *outputDir)
	}
}

func printSummary(r *reporting.Report) {
	fmt.Printf("Run %s — %d instruments\n", r.RunID, r.InstrumentCount)
	fmt.Printf("Trades: %d (W:%d L:%d, rejected signals: %d), net profit: %.2f\n\n",
		r.DataSummary.TotalTrades, r.DataSummary.TotalWins, r.DataSummary.TotalLosses,
		r.DataSummary.RejectedSignals, r.DataSummary.NetProfit)
}

func printInstrumentTable(r *reporting.Report) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Instrument", "Strategy", "Trades", "WinRate", "NetProfit", "PF", "MaxDD%", "Sharpe", "Sortino")
	for _, m := range r.InstrumentRows {
		pf := "n/a"
		if m.ProfitFactor != nil {
			pf = fmt.Sprintf("%.2f", *m.ProfitFactor)
		}
		table.Append(
			m.Instrument,
			m.StrategyID,
			fmt.Sprintf("%d", m.TotalTrades),
			fmt.Sprintf("%.2f%%", m.WinRate*100),
			fmt.Sprintf("%.2f", m.NetProfit),
			pf,
			fmt.Sprintf("%.2f%%", m.MaxDrawdownPct*100),
			fmt.Sprintf("%.3f", m.Sharpe),
			fmt.Sprintf("%.3f", m.Sortino),
		)
	}
	table.Render()
}

func printQualityTable(r *reporting.Report) {
	fmt.Println("\nQuality score distribution:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Instrument", "80-100", "60-80", "40-60", "Rejected")
	for _, q := range r.QualityRows {
		table.Append(
			q.Instrument,
			fmt.Sprintf("%d", q.Band80To100),
			fmt.Sprintf("%d", q.Band60To80),
			fmt.Sprintf("%d", q.Band40To60),
			fmt.Sprintf("%d", q.Rejected),
		)
	}
	table.Render()
}

func printExitTable(r *reporting.Report) {
	fmt.Println("\nExit reasons:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Instrument", "Stops", "Targets", "Reversals", "EndOfData")
	for _, e := range r.ExitRows {
		table.Append(
			e.Instrument,
			fmt.Sprintf("%d", e.Stops),
			fmt.Sprintf("%d", e.Targets),
			fmt.Sprintf("%d", e.Reversals),
			fmt.Sprintf("%d", e.EndOfData),
		)
	}
	table.Render()
}

func writeFiles(report *reporting.Report, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	files := map[string]string{
		"REPORT.md":      reporting.RenderMarkdown(report),
		"AGGREGATES.csv": reporting.RenderCSV(report.InstrumentRows),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

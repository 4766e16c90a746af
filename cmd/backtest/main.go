// Package main runs a full backtest: load data → simulate → persist → report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"fx-backtest-lab/internal/config"
	"fx-backtest-lab/internal/feed"
	"fx-backtest-lab/internal/observability"
	"fx-backtest-lab/internal/orchestrator"
	"fx-backtest-lab/internal/reporting"
	"fx-backtest-lab/internal/storage"
	chstore "fx-backtest-lab/internal/storage/clickhouse"
	"fx-backtest-lab/internal/storage/memory"
	"fx-backtest-lab/internal/storage/migrations"
	pgstore "fx-backtest-lab/internal/storage/postgres"
)

func main() {
	// Load .env file if exists; system env vars win.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to YAML run configuration (required)")
	barsDir := flag.String("bars-dir", "", "Directory with <SYMBOL>_<TIMEFRAME>.csv bar files")
	newsCSV := flag.String("news-csv", "", "Optional news calendar CSV")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	verbose := flag.Bool("verbose", false, "Verbose logging")
	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *configPath == "" {
		logger.Fatal("--config is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling run...", sig)
		cancel()
	}()

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Serving metrics on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	if *barsDir != "" {
		if err := loadBars(ctx, stores.bars, *cfg, *barsDir, logger); err != nil {
			logger.Fatalf("Failed to load bars: %v", err)
		}
	}
	if *newsCSV != "" {
		if err := loadNews(ctx, stores.news, *newsCSV, logger); err != nil {
			logger.Fatalf("Failed to load news: %v", err)
		}
	}

	orch := orchestrator.New(orchestrator.Options{
		BarStore:   stores.bars,
		NewsStore:  stores.news,
		TradeStore: stores.trades,
		AggStore:   stores.aggregates,
		Config:     *cfg,
		Verbose:    *verbose,
		Logger:     logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		logger.Fatalf("Run failed: %v", err)
	}
	for _, e := range result.Errors {
		logger.Printf("Run warning: %s", e)
	}

	if err := writeReports(ctx, stores, result.RunID, *outputDir); err != nil {
		logger.Fatalf("Failed to write reports: %v", err)
	}

	fmt.Printf("Run %s completed: %d instruments\n", result.RunID, len(result.Instruments))
	fmt.Printf("  - %s/REPORT.md\n", *outputDir)
	fmt.Printf("  - %s/AGGREGATES.csv\n", *outputDir)
	fmt.Printf("  - %s/TRADES.csv\n", *outputDir)
}

// allStores holds the storage implementations for one run.
type allStores struct {
	bars       storage.BarStore
	news       storage.NewsEventStore
	trades     storage.ClosedTradeStore
	aggregates storage.AggregateStore
}

// createStores creates all required stores and applies migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			bars:       memory.NewBarStore(),
			news:       memory.NewNewsEventStore(),
			trades:     memory.NewClosedTradeStore(),
			aggregates: memory.NewAggregateStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	stores := &allStores{
		bars:       chstore.NewBarStore(chConn),
		news:       chstore.NewNewsEventStore(chConn),
		trades:     pgstore.NewClosedTradeStore(pool),
		aggregates: pgstore.NewAggregateStore(pool),
	}
	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// loadBars loads every configured instrument/timeframe series from CSV.
// Already-loaded series are skipped.
func loadBars(ctx context.Context, store storage.BarStore, cfg config.Run, dir string, logger *log.Logger) error {
	type series struct{ symbol, timeframe string }
	var wanted []series
	for _, in := range cfg.Instruments {
		wanted = append(wanted, series{in.Symbol, in.Timeframe})
		if in.HTF != "" && in.HTF != in.Timeframe {
			wanted = append(wanted, series{in.Symbol, in.HTF})
		}
	}

	for _, s := range wanted {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", s.symbol, s.timeframe))
		bars, err := feed.LoadBarsCSV(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		err = store.InsertBulk(ctx, s.symbol, s.timeframe, bars)
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Printf("Series %s/%s already loaded, skipping", s.symbol, s.timeframe)
			continue
		}
		if err != nil {
			return fmt.Errorf("store %s/%s: %w", s.symbol, s.timeframe, err)
		}
		logger.Printf("Loaded %d bars for %s/%s", len(bars), s.symbol, s.timeframe)
	}
	return nil
}

// loadNews loads the calendar CSV. An already-loaded calendar is skipped.
func loadNews(ctx context.Context, store storage.NewsEventStore, path string, logger *log.Logger) error {
	events, err := feed.LoadNewsCSV(path)
	if err != nil {
		return err
	}
	err = store.InsertBulk(ctx, events)
	if errors.Is(err, storage.ErrDuplicateKey) {
		logger.Printf("News calendar already loaded, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("store news events: %w", err)
	}
	logger.Printf("Loaded %d news events", len(events))
	return nil
}

// writeReports renders the run report to the output directory.
func writeReports(ctx context.Context, stores *allStores, runID, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	gen := reporting.NewGenerator(stores.trades, stores.aggregates)
	report, err := gen.Generate(ctx, runID)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	trades, err := stores.trades.GetByRunID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load trades for report: %w", err)
	}

	files := map[string]string{
		"REPORT.md":      reporting.RenderMarkdown(report),
		"AGGREGATES.csv": reporting.RenderCSV(report.InstrumentRows),
		"TRADES.csv":     reporting.RenderTradesCSV(trades),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(outputDir, name), []byte(content), 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	observability.RecordReportGenerated()
	return nil
}

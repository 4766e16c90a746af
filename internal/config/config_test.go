package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fx-backtest-lab/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
instruments:
  - symbol: EURUSD
    timeframe: 1h
    htf: 4h
    currencies: [EUR, USD]
  - symbol: GBPUSD
    timeframe: 1h
    htf: 4h
    currencies: [GBP, USD]
workers: 2
strategy:
  min_quality_score: 55
costs:
  base_spread: 0.0002
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Instruments) != 2 {
		t.Fatalf("instruments = %d, want 2", len(cfg.Instruments))
	}
	if cfg.Instruments[0].Symbol != "EURUSD" || cfg.Instruments[0].HTF != "4h" {
		t.Errorf("instrument mismatch: %+v", cfg.Instruments[0])
	}
	if len(cfg.Instruments[1].Currencies) != 2 || cfg.Instruments[1].Currencies[0] != "GBP" {
		t.Errorf("currencies mismatch: %v", cfg.Instruments[1].Currencies)
	}
	if cfg.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Workers)
	}
	if cfg.Strategy.MinQualityScore != 55 {
		t.Errorf("min quality score = %f, want 55", cfg.Strategy.MinQualityScore)
	}
	if cfg.Costs.BaseSpread != 0.0002 {
		t.Errorf("base spread = %f, want 0.0002", cfg.Costs.BaseSpread)
	}

	// Fields absent from the file keep their defaults.
	if cfg.Strategy.SignalFastPeriod != 9 || cfg.Strategy.SignalSlowPeriod != 21 {
		t.Errorf("strategy defaults lost: fast=%d slow=%d",
			cfg.Strategy.SignalFastPeriod, cfg.Strategy.SignalSlowPeriod)
	}
	if cfg.Strategy.InitialEquity != 10_000 {
		t.Errorf("initial equity default lost: %f", cfg.Strategy.InitialEquity)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, `
instruments:
  - symbol: EURUSD
    timeframe: 1h
    htf: 4h
turbo_mode: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("unknown field should fail strict decoding")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	// Parses fine but fails validation: no instruments.
	path := writeConfig(t, `workers: 4`)
	if _, err := Load(path); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Run {
		cfg := Default()
		cfg.Instruments = []InstrumentConfig{
			{Symbol: "EURUSD", Timeframe: "1h", HTF: "4h", Currencies: []string{"EUR", "USD"}},
		}
		return cfg
	}

	baseline := base()
	if err := baseline.Validate(); err != nil {
		t.Fatalf("baseline should validate: %v", err)
	}

	cfg := base()
	cfg.Instruments = nil
	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("no instruments: expected ErrInvalidConfig, got %v", err)
	}

	cfg = base()
	cfg.Instruments = append(cfg.Instruments, cfg.Instruments[0])
	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("duplicate symbol: expected ErrInvalidConfig, got %v", err)
	}

	cfg = base()
	cfg.Instruments[0].HTF = ""
	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("missing htf: expected ErrInvalidConfig, got %v", err)
	}

	cfg = base()
	cfg.Workers = 0
	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("zero workers: expected ErrInvalidConfig, got %v", err)
	}

	cfg = base()
	cfg.Strategy.SignalFastPeriod = 0
	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("bad strategy: expected ErrInvalidConfig, got %v", err)
	}

	cfg = base()
	cfg.Costs.NewsMultiplier = 0
	if err := cfg.Validate(); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("bad costs: expected ErrInvalidConfig, got %v", err)
	}
}

// Package config loads backtest run configuration from YAML files.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fx-backtest-lab/internal/costs"
	"fx-backtest-lab/internal/domain"
)

// Run is the full configuration for one backtest run.
type Run struct {
	// Instruments to backtest; each needs a bar series in the bar store.
	Instruments []InstrumentConfig `yaml:"instruments"`

	Strategy domain.StrategyConfig `yaml:"strategy"`
	Costs    costs.Config          `yaml:"costs"`

	// Workers is the number of instruments simulated concurrently.
	Workers int `yaml:"workers"`
}

// InstrumentConfig binds an instrument to its data and the currencies its
// news gate listens to.
type InstrumentConfig struct {
	Symbol     string   `yaml:"symbol"`     // e.g. "EURUSD"
	Timeframe  string   `yaml:"timeframe"`  // signal timeframe, e.g. "1h"
	HTF        string   `yaml:"htf"`        // trend timeframe, e.g. "4h"
	Currencies []string `yaml:"currencies"` // e.g. ["EUR", "USD"]
}

// Default returns a Run with every default applied and no instruments.
func Default() Run {
	return Run{
		Strategy: domain.DefaultStrategyConfig(),
		Costs:    costs.DefaultConfig(),
		Workers:  1,
	}
}

// Load reads a YAML file on top of defaults and validates the result.
// Unknown fields are fatal.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the run configuration. Any error is fatal before the
// first bar is processed.
func (r *Run) Validate() error {
	if len(r.Instruments) == 0 {
		return fmt.Errorf("%w: at least one instrument is required", domain.ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(r.Instruments))
	for i, in := range r.Instruments {
		if in.Symbol == "" {
			return fmt.Errorf("%w: instruments[%d].symbol is required", domain.ErrInvalidConfig, i)
		}
		if _, dup := seen[in.Symbol]; dup {
			return fmt.Errorf("%w: duplicate instrument %q", domain.ErrInvalidConfig, in.Symbol)
		}
		seen[in.Symbol] = struct{}{}
		if in.Timeframe == "" || in.HTF == "" {
			return fmt.Errorf("%w: instrument %q needs timeframe and htf", domain.ErrInvalidConfig, in.Symbol)
		}
	}
	if r.Workers <= 0 {
		return fmt.Errorf("%w: workers must be >= 1", domain.ErrInvalidConfig)
	}
	if err := r.Strategy.Validate(); err != nil {
		return err
	}
	return r.Costs.Validate()
}

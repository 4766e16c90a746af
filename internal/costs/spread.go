// Package costs models the effective bid/ask spread for a given session,
// volatility and news context.
package costs

import (
	"fmt"

	"fx-backtest-lab/internal/domain"
)

// Config holds the spread model parameters.
type Config struct {
	BaseSpread float64 `yaml:"base_spread"` // in price units, e.g. 0.00012 for EURUSD

	// Session multipliers; the overlap session is cheapest, thin sessions widest.
	SessionMultipliers map[domain.SessionTag]float64 `yaml:"session_multipliers"`

	// Volatility ratio (current TR / ATR) clamp band.
	VolFloor float64 `yaml:"vol_floor"`
	VolCeil  float64 `yaml:"vol_ceil"`

	// Multiplier applied while a news blackout is active.
	NewsMultiplier float64 `yaml:"news_multiplier"`
}

// DefaultConfig returns the standard spread model.
func DefaultConfig() Config {
	return Config{
		BaseSpread: 0.00012,
		SessionMultipliers: map[domain.SessionTag]float64{
			domain.SessionOverlap: 0.9,
			domain.SessionLondon:  1.0,
			domain.SessionNewYork: 1.1,
			domain.SessionAsian:   1.4,
		},
		VolFloor:       0.5,
		VolCeil:        3.0,
		NewsMultiplier: 5.0,
	}
}

// Validate checks the model parameters.
func (c Config) Validate() error {
	if c.BaseSpread < 0 {
		return fmt.Errorf("%w: base_spread must be >= 0", domain.ErrInvalidConfig)
	}
	if c.VolFloor <= 0 || c.VolCeil < c.VolFloor {
		return fmt.Errorf("%w: volatility clamp band must satisfy 0 < floor <= ceil", domain.ErrInvalidConfig)
	}
	if c.NewsMultiplier < 1 {
		return fmt.Errorf("%w: news_multiplier must be >= 1", domain.ErrInvalidConfig)
	}
	for tag, m := range c.SessionMultipliers {
		if m <= 0 {
			return fmt.Errorf("%w: session multiplier for %s must be positive", domain.ErrInvalidConfig, tag)
		}
	}
	return nil
}

// Model computes spreads. Pure; no side effects.
type Model struct {
	cfg Config
}

// NewModel creates a spread model from a validated config.
func NewModel(cfg Config) Model {
	return Model{cfg: cfg}
}

// Spread returns the effective spread for the given context.
// base * session multiplier * clamped volatility ratio * news multiplier.
// The result is non-negative and non-decreasing in each multiplier.
func (m Model) Spread(tag domain.SessionTag, volRatio float64, newsActive bool) float64 {
	spread := m.cfg.BaseSpread

	if mult, ok := m.cfg.SessionMultipliers[tag]; ok {
		spread *= mult
	}

	spread *= clamp(volRatio, m.cfg.VolFloor, m.cfg.VolCeil)

	if newsActive {
		spread *= m.cfg.NewsMultiplier
	}

	if spread < 0 {
		return 0
	}
	return spread
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN ratio falls back to neutral
		return 1
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig wraps every configuration validation failure.
// Configuration inconsistencies are fatal before any bar is processed.
var ErrInvalidConfig = errors.New("invalid strategy config")

// Stop/target rule selection.
const (
	StopRulePercent = "PERCENT" // fixed percentage of entry price
	StopRulePip     = "PIP"     // fixed pip/point distance
	StopRuleATR     = "ATR"     // ATR(period) * multiplier
)

// Stop/target precedence when a single bar touches both levels.
const (
	StopFirst   = "STOP_FIRST" // conservative default
	TargetFirst = "TARGET_FIRST"
)

// StrategyConfig enumerates every recognized strategy option.
// Validated once at startup; unknown or out-of-range values are fatal.
type StrategyConfig struct {
	StrategyID  string   `yaml:"strategy_id"`
	Instruments []string `yaml:"instruments"` // per-instrument enable list

	// Signal generation
	SignalFastPeriod int `yaml:"signal_fast_period"`
	SignalSlowPeriod int `yaml:"signal_slow_period"`

	// Admission
	MinQualityScore       float64 `yaml:"min_quality_score"`
	RequireTrendAlignment bool    `yaml:"require_trend_alignment"`
	TrendFastPeriod       int     `yaml:"trend_fast_period"`
	TrendSlowPeriod       int     `yaml:"trend_slow_period"`

	// Entry triggers
	PullbackMAPeriod int     `yaml:"pullback_ma_period"`
	PullbackBandPct  float64 `yaml:"pullback_band_pct"`  // band around the reference MA
	ImpulseMinPct    float64 `yaml:"impulse_min_pct"`    // minimum prior impulse move
	ImpulseLookback  int     `yaml:"impulse_lookback"`   // bars to scan for the impulse
	BreakoutLookback int     `yaml:"breakout_lookback"`  // range window for breakouts
	BreakoutMinPct   float64 `yaml:"breakout_min_pct"`   // move beyond the range boundary
	PendingEntryBars int     `yaml:"pending_entry_bars"` // bars an approved signal waits for a trigger

	// Stop/target
	StopRule          string   `yaml:"stop_rule"` // PERCENT | PIP | ATR
	StopPct           *float64 `yaml:"stop_pct"`
	TargetPct         *float64 `yaml:"target_pct"`
	StopPips          *float64 `yaml:"stop_pips"`
	TargetPips        *float64 `yaml:"target_pips"`
	PipSize           float64  `yaml:"pip_size"`
	ATRPeriod         *int     `yaml:"atr_period"`
	StopATRMultiple   *float64 `yaml:"stop_atr_multiple"`
	TargetATRMultiple *float64 `yaml:"target_atr_multiple"`
	StopTargetPolicy  string   `yaml:"stop_target_policy"` // STOP_FIRST | TARGET_FIRST
	AllowReversalExit bool     `yaml:"allow_reversal_exit"`

	// Ledger limits
	MinEntrySpacingMs      int64 `yaml:"min_entry_spacing_ms"`
	MaxConcurrentPositions int   `yaml:"max_concurrent_positions"`

	// Sessions
	EnabledSessions []SessionTag `yaml:"enabled_sessions"`
	SessionHours    SessionHours `yaml:"session_hours"`

	// News
	NewsPreWindowMinutes  int   `yaml:"news_pre_window_minutes"`
	NewsPostWindowMinutes int   `yaml:"news_post_window_minutes"`
	NewsDecayHorizonMs    int64 `yaml:"news_decay_horizon_ms"`

	// Account
	InitialEquity        float64 `yaml:"initial_equity"`
	RiskPerTradeFraction float64 `yaml:"risk_per_trade_fraction"`

	// Metrics
	AnnualizationFactor float64 `yaml:"annualization_factor"`
}

// DefaultStrategyConfig returns a config with every default applied.
// Callers override fields and must still run Validate.
func DefaultStrategyConfig() StrategyConfig {
	stopATR := 1.5
	targetATR := 4.5
	atrPeriod := 14
	return StrategyConfig{
		StrategyID:             "ema_pullback",
		SignalFastPeriod:       9,
		SignalSlowPeriod:       21,
		MinQualityScore:        40,
		TrendFastPeriod:        20,
		TrendSlowPeriod:        50,
		PullbackMAPeriod:       20,
		PullbackBandPct:        0.15,
		ImpulseMinPct:          0.5,
		ImpulseLookback:        10,
		BreakoutLookback:       20,
		BreakoutMinPct:         0.2,
		PendingEntryBars:       3,
		StopRule:               StopRuleATR,
		ATRPeriod:              &atrPeriod,
		StopATRMultiple:        &stopATR,
		TargetATRMultiple:      &targetATR,
		PipSize:                0.0001,
		StopTargetPolicy:       StopFirst,
		AllowReversalExit:      true,
		MinEntrySpacingMs:      4 * 60 * 60 * 1000,
		MaxConcurrentPositions: 1,
		EnabledSessions:        []SessionTag{SessionLondon, SessionOverlap, SessionNewYork},
		SessionHours:           DefaultSessionHours(),
		NewsPreWindowMinutes:   30,
		NewsPostWindowMinutes:  30,
		NewsDecayHorizonMs:     24 * 60 * 60 * 1000,
		InitialEquity:          10_000,
		RiskPerTradeFraction:   0.01,
		AnnualizationFactor:    252,
	}
}

// Validate checks internal consistency. Any error here is fatal and is
// reported before the first bar is processed.
func (c *StrategyConfig) Validate() error {
	if c.StrategyID == "" {
		return fmt.Errorf("%w: strategy_id is required", ErrInvalidConfig)
	}
	if c.SignalFastPeriod <= 0 || c.SignalSlowPeriod <= 0 || c.SignalFastPeriod >= c.SignalSlowPeriod {
		return fmt.Errorf("%w: signal periods must satisfy 0 < fast < slow", ErrInvalidConfig)
	}
	if c.MinQualityScore < 0 || c.MinQualityScore > 100 {
		return fmt.Errorf("%w: min_quality_score must be in [0, 100]", ErrInvalidConfig)
	}
	if c.TrendFastPeriod <= 0 || c.TrendSlowPeriod <= 0 || c.TrendFastPeriod >= c.TrendSlowPeriod {
		return fmt.Errorf("%w: trend periods must satisfy 0 < fast < slow", ErrInvalidConfig)
	}
	if c.PullbackMAPeriod <= 0 || c.PullbackBandPct <= 0 || c.ImpulseMinPct <= 0 || c.ImpulseLookback <= 0 {
		return fmt.Errorf("%w: pullback trigger parameters must be positive", ErrInvalidConfig)
	}
	if c.BreakoutLookback <= 0 || c.BreakoutMinPct <= 0 {
		return fmt.Errorf("%w: breakout trigger parameters must be positive", ErrInvalidConfig)
	}
	if c.PendingEntryBars < 0 {
		return fmt.Errorf("%w: pending_entry_bars must be >= 0", ErrInvalidConfig)
	}

	switch c.StopRule {
	case StopRulePercent:
		if c.StopPct == nil || c.TargetPct == nil {
			return fmt.Errorf("%w: PERCENT stop rule requires stop_pct and target_pct", ErrInvalidConfig)
		}
		if *c.StopPct <= 0 || *c.TargetPct <= 0 {
			return fmt.Errorf("%w: stop_pct and target_pct must be positive", ErrInvalidConfig)
		}
	case StopRulePip:
		if c.StopPips == nil || c.TargetPips == nil {
			return fmt.Errorf("%w: PIP stop rule requires stop_pips and target_pips", ErrInvalidConfig)
		}
		if *c.StopPips <= 0 || *c.TargetPips <= 0 || c.PipSize <= 0 {
			return fmt.Errorf("%w: stop_pips, target_pips and pip_size must be positive", ErrInvalidConfig)
		}
	case StopRuleATR:
		if c.ATRPeriod == nil {
			return fmt.Errorf("%w: ATR stop rule requires atr_period", ErrInvalidConfig)
		}
		if c.StopATRMultiple == nil || c.TargetATRMultiple == nil {
			return fmt.Errorf("%w: ATR stop rule requires stop_atr_multiple and target_atr_multiple", ErrInvalidConfig)
		}
		if *c.ATRPeriod <= 0 || *c.StopATRMultiple <= 0 || *c.TargetATRMultiple <= 0 {
			return fmt.Errorf("%w: ATR parameters must be positive", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown stop rule %q", ErrInvalidConfig, c.StopRule)
	}

	switch c.StopTargetPolicy {
	case StopFirst, TargetFirst:
	default:
		return fmt.Errorf("%w: unknown stop/target policy %q", ErrInvalidConfig, c.StopTargetPolicy)
	}

	if c.MinEntrySpacingMs < 0 {
		return fmt.Errorf("%w: min_entry_spacing_ms must be >= 0", ErrInvalidConfig)
	}
	if c.MaxConcurrentPositions <= 0 {
		return fmt.Errorf("%w: max_concurrent_positions must be >= 1", ErrInvalidConfig)
	}

	if len(c.EnabledSessions) == 0 {
		return fmt.Errorf("%w: at least one session must be enabled", ErrInvalidConfig)
	}
	for _, tag := range c.EnabledSessions {
		switch tag {
		case SessionAsian, SessionLondon, SessionOverlap, SessionNewYork:
		default:
			return fmt.Errorf("%w: unknown session tag %q", ErrInvalidConfig, tag)
		}
	}
	if err := c.SessionHours.Validate(); err != nil {
		return err
	}

	if c.NewsPreWindowMinutes < 0 || c.NewsPostWindowMinutes < 0 || c.NewsDecayHorizonMs < 0 {
		return fmt.Errorf("%w: news windows must be >= 0", ErrInvalidConfig)
	}

	if c.InitialEquity <= 0 || math.IsNaN(c.InitialEquity) {
		return fmt.Errorf("%w: initial_equity must be positive", ErrInvalidConfig)
	}
	if c.RiskPerTradeFraction <= 0 || c.RiskPerTradeFraction > 1 {
		return fmt.Errorf("%w: risk_per_trade_fraction must be in (0, 1]", ErrInvalidConfig)
	}
	if c.AnnualizationFactor < 0 {
		return fmt.Errorf("%w: annualization_factor must be >= 0", ErrInvalidConfig)
	}

	return nil
}

// InstrumentEnabled reports whether the instrument is traded by this config.
// An empty Instruments list enables every instrument.
func (c *StrategyConfig) InstrumentEnabled(instrument string) bool {
	if len(c.Instruments) == 0 {
		return true
	}
	for _, in := range c.Instruments {
		if in == instrument {
			return true
		}
	}
	return false
}

// Package strategy produces per-bar trade signals for the simulation loop.
package strategy

import (
	"fx-backtest-lab/internal/domain"
)

// SignalSource evaluates one bar and returns a signal. Implementations
// must only read bars[0..i]; the simulation loop relies on that to keep
// the run free of look-ahead.
type SignalSource interface {
	// Evaluate returns the signal for bar i. A direction of NONE means no
	// opinion; insufficient history also reports NONE, never an error.
	Evaluate(bars []domain.Bar, i int) domain.Signal

	// ID returns the signal source identifier (includes parameters).
	ID() string
}

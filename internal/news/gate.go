// Package news suppresses trading around scheduled high-impact events and
// converts event sentiment into a decaying score adjustment.
package news

import (
	"sort"

	"fx-backtest-lab/internal/domain"
)

// Gate evaluates a timestamp against a fixed event calendar.
// Events are copied and sorted at construction; the gate never mutates them.
type Gate struct {
	events []domain.NewsEvent
	preMs  int64
	postMs int64
}

// NewGate creates a gate with the given blackout window (minutes either
// side of each high-impact event).
func NewGate(events []domain.NewsEvent, preMinutes, postMinutes int) *Gate {
	sorted := make([]domain.NewsEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TimestampMs < sorted[j].TimestampMs
	})
	return &Gate{
		events: sorted,
		preMs:  int64(preMinutes) * 60_000,
		postMs: int64(postMinutes) * 60_000,
	}
}

// InBlackout reports whether tsMs falls within
// [event - pre, event + post] for any high-impact event affecting one of
// the instrument's currencies. While true, no new positions open and no
// favorable slippage applies; open positions still mark to market.
func (g *Gate) InBlackout(tsMs int64, currencies []string) bool {
	for i := range g.events {
		ev := &g.events[i]
		if ev.TimestampMs-g.preMs > tsMs {
			break // events are sorted; the rest start later
		}
		if ev.Impact != domain.ImpactHigh {
			continue
		}
		if tsMs >= ev.TimestampMs-g.preMs && tsMs <= ev.TimestampMs+g.postMs {
			if affectsAny(ev.Currency, currencies) {
				return true
			}
		}
	}
	return false
}

// Sentiment returns the signed score adjustment for a direction at tsMs.
// Each relevant event contributes sentiment * direction sign * 10 points,
// decaying linearly to zero over horizonMs after the event. The sum is
// capped at +/- 10 before the caller clamps the total score.
func (g *Gate) Sentiment(tsMs int64, currencies []string, dir domain.Direction, horizonMs int64) float64 {
	if horizonMs <= 0 || dir == domain.DirectionNone {
		return 0
	}

	adj := 0.0
	for i := range g.events {
		ev := &g.events[i]
		if ev.TimestampMs > tsMs {
			break
		}
		age := tsMs - ev.TimestampMs
		if age >= horizonMs || ev.Sentiment == 0 {
			continue
		}
		if !affectsAny(ev.Currency, currencies) {
			continue
		}
		decay := 1.0 - float64(age)/float64(horizonMs)
		adj += ev.Sentiment * dir.Sign() * 10.0 * decay
	}

	if adj > 10 {
		return 10
	}
	if adj < -10 {
		return -10
	}
	return adj
}

func affectsAny(eventCurrency string, currencies []string) bool {
	if eventCurrency == "" {
		return true
	}
	for _, c := range currencies {
		if c == eventCurrency {
			return true
		}
	}
	return false
}

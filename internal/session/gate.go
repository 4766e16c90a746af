// Package session classifies timestamps into trading sessions and applies
// per-session enable policy.
package session

import (
	"time"

	"fx-backtest-lab/internal/domain"
)

// Classify maps a timestamp to its session using the configured UTC hour
// boundaries. Hours outside [LondonStart, NewYorkEnd) are Asian.
func Classify(tsMs int64, hours domain.SessionHours) domain.SessionTag {
	hour := time.UnixMilli(tsMs).UTC().Hour()
	switch {
	case hour >= hours.LondonStart && hour < hours.OverlapStart:
		return domain.SessionLondon
	case hour >= hours.OverlapStart && hour < hours.NewYorkStart:
		return domain.SessionOverlap
	case hour >= hours.NewYorkStart && hour < hours.NewYorkEnd:
		return domain.SessionNewYork
	default:
		return domain.SessionAsian
	}
}

// Policy restricts trading to an enabled subset of sessions.
type Policy struct {
	enabled map[domain.SessionTag]bool
}

// NewPolicy builds a policy from the enabled session list.
func NewPolicy(tags []domain.SessionTag) Policy {
	enabled := make(map[domain.SessionTag]bool, len(tags))
	for _, tag := range tags {
		enabled[tag] = true
	}
	return Policy{enabled: enabled}
}

// Allows reports whether trading is enabled in the given session.
func (p Policy) Allows(tag domain.SessionTag) bool {
	return p.enabled[tag]
}

// Quality returns the relative liquidity quality of a session in [0, 1],
// used as the session half of the market-condition score component.
// Overlap is the most liquid window; Asian the thinnest.
func Quality(tag domain.SessionTag) float64 {
	switch tag {
	case domain.SessionOverlap:
		return 1.0
	case domain.SessionLondon:
		return 0.9
	case domain.SessionNewYork:
		return 0.8
	case domain.SessionAsian:
		return 0.5
	default:
		return 0
	}
}

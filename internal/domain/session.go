package domain

import "fmt"

// SessionTag classifies a timestamp into a trading session.
type SessionTag string

// Session constants.
const (
	SessionAsian   SessionTag = "ASIAN"
	SessionLondon  SessionTag = "LONDON"
	SessionOverlap SessionTag = "OVERLAP"
	SessionNewYork SessionTag = "NEW_YORK"
)

// SessionHours holds the UTC hour boundaries between sessions.
// The day is split as: [NewYorkEnd..LondonStart) and [0..LondonStart) Asian,
// [LondonStart..OverlapStart) London, [OverlapStart..NewYorkStart) Overlap,
// [NewYorkStart..NewYorkEnd) New York, [NewYorkEnd..24) Asian again.
type SessionHours struct {
	LondonStart  int `yaml:"london_start"`
	OverlapStart int `yaml:"overlap_start"`
	NewYorkStart int `yaml:"new_york_start"`
	NewYorkEnd   int `yaml:"new_york_end"`
}

// DefaultSessionHours are the standard UTC boundaries.
func DefaultSessionHours() SessionHours {
	return SessionHours{
		LondonStart:  7,
		OverlapStart: 12,
		NewYorkStart: 16,
		NewYorkEnd:   21,
	}
}

// Validate checks the boundaries are ordered within a single UTC day.
func (h SessionHours) Validate() error {
	if h.LondonStart < 0 || h.NewYorkEnd > 24 ||
		h.LondonStart >= h.OverlapStart ||
		h.OverlapStart >= h.NewYorkStart ||
		h.NewYorkStart >= h.NewYorkEnd {
		return fmt.Errorf("%w: session hours must satisfy 0 <= london < overlap < newyork < end <= 24", ErrInvalidConfig)
	}
	return nil
}

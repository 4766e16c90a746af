package domain

// Impact tiers for scheduled news events.
const (
	ImpactLow    = "LOW"
	ImpactMedium = "MEDIUM"
	ImpactHigh   = "HIGH"
)

// NewsEvent is a scheduled calendar event supplied externally.
// Immutable once loaded.
type NewsEvent struct {
	TimestampMs int64
	Label       string
	Impact      string  // LOW | MEDIUM | HIGH
	Currency    string  // affected currency, e.g. "USD"
	Sentiment   float64 // optional directional sentiment in [-1, 1]; 0 if unknown
}

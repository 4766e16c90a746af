package news

import (
	"math"
	"testing"

	"fx-backtest-lab/internal/domain"
)

const minuteMs = 60_000

func TestInBlackout_Window(t *testing.T) {
	eventTs := int64(10_000_000)
	gate := NewGate([]domain.NewsEvent{
		{TimestampMs: eventTs, Label: "NFP", Impact: domain.ImpactHigh, Currency: "USD"},
	}, 30, 30)

	currencies := []string{"EUR", "USD"}
	window := int64(30 * minuteMs)

	cases := []struct {
		name string
		tsMs int64
		want bool
	}{
		{"well before", eventTs - window - 1, false},
		{"window open boundary", eventTs - window, true},
		{"at event", eventTs, true},
		{"window close boundary", eventTs + window, true},
		{"just after", eventTs + window + 1, false},
	}
	for _, tc := range cases {
		if got := gate.InBlackout(tc.tsMs, currencies); got != tc.want {
			t.Errorf("%s: InBlackout = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInBlackout_ImpactAndCurrency(t *testing.T) {
	eventTs := int64(10_000_000)

	// Low and medium impact events never trigger a blackout.
	gate := NewGate([]domain.NewsEvent{
		{TimestampMs: eventTs, Impact: domain.ImpactLow, Currency: "USD"},
		{TimestampMs: eventTs, Impact: domain.ImpactMedium, Currency: "USD"},
	}, 30, 30)
	if gate.InBlackout(eventTs, []string{"USD"}) {
		t.Error("low/medium impact should not black out")
	}

	// A high-impact event for an unrelated currency is ignored.
	gate = NewGate([]domain.NewsEvent{
		{TimestampMs: eventTs, Impact: domain.ImpactHigh, Currency: "JPY"},
	}, 30, 30)
	if gate.InBlackout(eventTs, []string{"EUR", "USD"}) {
		t.Error("unrelated currency should not black out")
	}

	// An event without a currency affects every instrument.
	gate = NewGate([]domain.NewsEvent{
		{TimestampMs: eventTs, Impact: domain.ImpactHigh, Currency: ""},
	}, 30, 30)
	if !gate.InBlackout(eventTs, []string{"EUR", "USD"}) {
		t.Error("currency-less event should black out everything")
	}
}

func TestInBlackout_UnsortedInput(t *testing.T) {
	// The gate sorts at construction; later events must still match.
	gate := NewGate([]domain.NewsEvent{
		{TimestampMs: 20_000_000, Impact: domain.ImpactHigh, Currency: "USD"},
		{TimestampMs: 10_000_000, Impact: domain.ImpactHigh, Currency: "USD"},
	}, 30, 30)

	if !gate.InBlackout(20_000_000, []string{"USD"}) {
		t.Error("second event should black out after sorting")
	}
	if gate.InBlackout(15_000_000, []string{"USD"}) {
		t.Error("midpoint between events should be clear")
	}
}

func TestSentiment_Decay(t *testing.T) {
	eventTs := int64(10_000_000)
	horizon := int64(1_000_000)
	gate := NewGate([]domain.NewsEvent{
		{TimestampMs: eventTs, Impact: domain.ImpactHigh, Currency: "USD", Sentiment: 1.0},
	}, 30, 30)
	currencies := []string{"USD"}

	// Fresh event: full contribution.
	if got := gate.Sentiment(eventTs, currencies, domain.DirectionLong, horizon); got != 10 {
		t.Errorf("fresh sentiment = %f, want 10", got)
	}
	// Half the horizon elapsed: half the contribution.
	got := gate.Sentiment(eventTs+horizon/2, currencies, domain.DirectionLong, horizon)
	if math.Abs(got-5) > 1e-9 {
		t.Errorf("half-decayed sentiment = %f, want 5", got)
	}
	// Fully decayed.
	if got := gate.Sentiment(eventTs+horizon, currencies, domain.DirectionLong, horizon); got != 0 {
		t.Errorf("expired sentiment = %f, want 0", got)
	}
	// Positive sentiment hurts a short.
	got = gate.Sentiment(eventTs+horizon/2, currencies, domain.DirectionShort, horizon)
	if math.Abs(got+5) > 1e-9 {
		t.Errorf("short sentiment = %f, want -5", got)
	}
}

func TestSentiment_CapAndEdgeCases(t *testing.T) {
	eventTs := int64(10_000_000)
	horizon := int64(1_000_000)

	// Two fresh strong events sum past the cap.
	gate := NewGate([]domain.NewsEvent{
		{TimestampMs: eventTs, Impact: domain.ImpactHigh, Currency: "USD", Sentiment: 1.0},
		{TimestampMs: eventTs, Impact: domain.ImpactHigh, Currency: "USD", Sentiment: 0.8},
	}, 30, 30)
	if got := gate.Sentiment(eventTs, []string{"USD"}, domain.DirectionLong, horizon); got != 10 {
		t.Errorf("capped sentiment = %f, want 10", got)
	}
	if got := gate.Sentiment(eventTs, []string{"USD"}, domain.DirectionShort, horizon); got != -10 {
		t.Errorf("capped short sentiment = %f, want -10", got)
	}

	// No horizon or no direction disables the adjustment.
	if got := gate.Sentiment(eventTs, []string{"USD"}, domain.DirectionLong, 0); got != 0 {
		t.Errorf("zero horizon sentiment = %f, want 0", got)
	}
	if got := gate.Sentiment(eventTs, []string{"USD"}, domain.DirectionNone, horizon); got != 0 {
		t.Errorf("no-direction sentiment = %f, want 0", got)
	}

	// Future events contribute nothing.
	if got := gate.Sentiment(eventTs-1, []string{"USD"}, domain.DirectionLong, horizon); got != 0 {
		t.Errorf("future event sentiment = %f, want 0", got)
	}
}

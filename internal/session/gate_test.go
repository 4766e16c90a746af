package session

import (
	"testing"
	"time"

	"fx-backtest-lab/internal/domain"
)

func tsAtHour(hour int) int64 {
	return time.Date(2026, time.March, 3, hour, 30, 0, 0, time.UTC).UnixMilli()
}

func TestClassify(t *testing.T) {
	hours := domain.DefaultSessionHours()

	cases := []struct {
		hour int
		want domain.SessionTag
	}{
		{0, domain.SessionAsian},
		{6, domain.SessionAsian},
		{7, domain.SessionLondon},
		{11, domain.SessionLondon},
		{12, domain.SessionOverlap},
		{15, domain.SessionOverlap},
		{16, domain.SessionNewYork},
		{20, domain.SessionNewYork},
		{21, domain.SessionAsian},
		{23, domain.SessionAsian},
	}
	for _, tc := range cases {
		if got := Classify(tsAtHour(tc.hour), hours); got != tc.want {
			t.Errorf("hour %d: got %s, want %s", tc.hour, got, tc.want)
		}
	}
}

func TestPolicyAllows(t *testing.T) {
	policy := NewPolicy([]domain.SessionTag{domain.SessionLondon, domain.SessionOverlap})

	if !policy.Allows(domain.SessionLondon) {
		t.Error("London should be allowed")
	}
	if !policy.Allows(domain.SessionOverlap) {
		t.Error("Overlap should be allowed")
	}
	if policy.Allows(domain.SessionAsian) {
		t.Error("Asian should not be allowed")
	}
	if policy.Allows(domain.SessionNewYork) {
		t.Error("New York should not be allowed")
	}
}

func TestQuality(t *testing.T) {
	cases := []struct {
		tag  domain.SessionTag
		want float64
	}{
		{domain.SessionOverlap, 1.0},
		{domain.SessionLondon, 0.9},
		{domain.SessionNewYork, 0.8},
		{domain.SessionAsian, 0.5},
		{domain.SessionTag("UNKNOWN"), 0},
	}
	for _, tc := range cases {
		if got := Quality(tc.tag); got != tc.want {
			t.Errorf("Quality(%s) = %f, want %f", tc.tag, got, tc.want)
		}
	}
}

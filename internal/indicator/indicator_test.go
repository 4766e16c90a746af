package indicator

import (
	"errors"
	"math"
	"testing"

	"fx-backtest-lab/internal/domain"
)

func TestSMAAt(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	got, err := SMAAt(values, 3, 4)
	if err != nil {
		t.Fatalf("SMAAt failed: %v", err)
	}
	if got != 4 {
		t.Errorf("SMA mismatch: got %f, want 4", got)
	}

	got, err = SMAAt(values, 5, 4)
	if err != nil {
		t.Fatalf("SMAAt full window failed: %v", err)
	}
	if got != 3 {
		t.Errorf("SMA mismatch: got %f, want 3", got)
	}
}

func TestSMAAt_InsufficientHistory(t *testing.T) {
	values := []float64{1, 2, 3}

	cases := []struct {
		name   string
		period int
		asOf   int
	}{
		{"window longer than history", 4, 2},
		{"asOf before window fills", 3, 1},
		{"negative asOf", 2, -1},
		{"asOf past end", 2, 3},
		{"zero period", 0, 2},
	}
	for _, tc := range cases {
		if _, err := SMAAt(values, tc.period, tc.asOf); !errors.Is(err, ErrInsufficientHistory) {
			t.Errorf("%s: expected ErrInsufficientHistory, got %v", tc.name, err)
		}
	}
}

func TestEMAAt(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	// Seed SMA(1,2,3) = 2, k = 0.5: ema(3) = 3, ema(4) = 4.
	got, err := EMAAt(values, 3, 4)
	if err != nil {
		t.Fatalf("EMAAt failed: %v", err)
	}
	if math.Abs(got-4) > 1e-12 {
		t.Errorf("EMA mismatch: got %f, want 4", got)
	}

	// At the seed index the EMA equals the seed SMA.
	got, err = EMAAt(values, 3, 2)
	if err != nil {
		t.Fatalf("EMAAt at seed failed: %v", err)
	}
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("EMA seed mismatch: got %f, want 2", got)
	}
}

func TestEMAAt_InsufficientHistory(t *testing.T) {
	values := []float64{1, 2, 3}
	if _, err := EMAAt(values, 4, 2); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestSMAAt_SkipsGapValues(t *testing.T) {
	// The NaN from a gap bar drops out of the window instead of averaging.
	values := []float64{2, 4, math.NaN(), 6, 8}

	got, err := SMAAt(values, 3, 4)
	if err != nil {
		t.Fatalf("SMAAt failed: %v", err)
	}
	if got != 6 {
		t.Errorf("SMA over gap: got %f, want 6", got)
	}

	// Gaps shrink the usable history.
	if _, err := SMAAt(values, 4, 4); errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("four valid values should fill a period-4 window: %v", err)
	}
	if _, err := SMAAt(values, 5, 4); !errors.Is(err, ErrInsufficientHistory) {
		t.Error("expected ErrInsufficientHistory with only four valid values")
	}
}

func TestEMAAt_SkipsGapValues(t *testing.T) {
	// A gap mid-series must not poison the recurrence: the result equals
	// the EMA of the same series with the gap removed.
	withGap := []float64{1, 2, 3, math.NaN(), 4, 5}
	clean := []float64{1, 2, 3, 4, 5}

	got, err := EMAAt(withGap, 3, 5)
	if err != nil {
		t.Fatalf("EMAAt over gap failed: %v", err)
	}
	want, err := EMAAt(clean, 3, 4)
	if err != nil {
		t.Fatalf("EMAAt clean failed: %v", err)
	}
	if math.IsNaN(got) {
		t.Fatal("EMA over gap is NaN")
	}
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("EMA over gap: got %f, want %f", got, want)
	}

	if _, err := EMAAt([]float64{math.NaN(), 1, math.NaN()}, 2, 2); !errors.Is(err, ErrInsufficientHistory) {
		t.Error("expected ErrInsufficientHistory when gaps leave too few values")
	}
}

func TestTrueRange(t *testing.T) {
	cur := &domain.Bar{High: 11, Low: 9, Close: 10}

	if got := TrueRange(nil, cur); got != 2 {
		t.Errorf("no-prev TR mismatch: got %f, want 2", got)
	}

	// Previous close inside the range: high-low still dominates.
	prev := &domain.Bar{Close: 10}
	if got := TrueRange(prev, cur); got != 2 {
		t.Errorf("TR mismatch: got %f, want 2", got)
	}

	// Previous close above the range: low-to-prev-close dominates.
	prev = &domain.Bar{Close: 12}
	if got := TrueRange(prev, cur); got != 3 {
		t.Errorf("gap TR mismatch: got %f, want 3", got)
	}
}

func TestATRAt(t *testing.T) {
	// Constant 2-point ranges around a flat close: every TR is 2, so the
	// seed and every smoothed value stay at 2.
	bars := make([]domain.Bar, 8)
	for i := range bars {
		bars[i] = domain.Bar{
			TimestampMs: int64(i+1) * 1000,
			Open:        10, High: 11, Low: 9, Close: 10,
			Volume: 1,
		}
	}

	got, err := ATRAt(bars, 3, 7)
	if err != nil {
		t.Fatalf("ATRAt failed: %v", err)
	}
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("ATR mismatch: got %f, want 2", got)
	}
}

func TestATRAt_SkipsGapBars(t *testing.T) {
	// Constant 2-point ranges with one gap bar in the middle: the true
	// range spans the gap to the previous tradeable bar, so the ATR stays
	// exactly 2 and never turns NaN.
	nan := math.NaN()
	bars := make([]domain.Bar, 9)
	for i := range bars {
		bars[i] = domain.Bar{
			TimestampMs: int64(i+1) * 1000,
			Open:        10, High: 11, Low: 9, Close: 10,
			Volume: 1,
		}
	}
	bars[4].Open, bars[4].High, bars[4].Low, bars[4].Close = nan, nan, nan, nan
	bars[4].Volume = 0

	got, err := ATRAt(bars, 3, 8)
	if err != nil {
		t.Fatalf("ATRAt over gap failed: %v", err)
	}
	if math.IsNaN(got) {
		t.Fatal("ATR over gap is NaN")
	}
	if math.Abs(got-2) > 1e-12 {
		t.Errorf("ATR over gap: got %f, want 2", got)
	}

	// Gaps shrink the usable history: three tradeable bars cannot fill a
	// period-3 window that needs four.
	if _, err := ATRAt(bars[2:6], 3, 3); !errors.Is(err, ErrInsufficientHistory) {
		t.Error("expected ErrInsufficientHistory with a gap inside a minimal window")
	}
}

func TestATRAt_InsufficientHistory(t *testing.T) {
	bars := make([]domain.Bar, 3)

	// ATR needs period+1 bars for the first period true ranges.
	if _, err := ATRAt(bars, 3, 2); !errors.Is(err, ErrInsufficientHistory) {
		t.Errorf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestCloses(t *testing.T) {
	bars := []domain.Bar{{Close: 1.5}, {Close: 2.5}}
	closes := Closes(bars)
	if len(closes) != 2 || closes[0] != 1.5 || closes[1] != 2.5 {
		t.Errorf("Closes mismatch: got %v", closes)
	}
}

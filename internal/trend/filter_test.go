package trend

import (
	"math"
	"testing"

	"fx-backtest-lab/internal/domain"
)

func barsFromCloses(closes []float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			TimestampMs: int64(i+1) * 1000,
			Open:        c, High: c, Low: c, Close: c,
			Volume: 1,
		}
	}
	return bars
}

func TestAlignment_Uptrend(t *testing.T) {
	f := NewFilter(2, 4)
	htf := barsFromCloses([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	asOfMs := htf[len(htf)-1].TimestampMs

	if got := f.Alignment(domain.DirectionLong, htf, asOfMs); got != Aligned {
		t.Errorf("long in uptrend: got %s, want %s", got, Aligned)
	}
	if got := f.Alignment(domain.DirectionShort, htf, asOfMs); got != Opposed {
		t.Errorf("short in uptrend: got %s, want %s", got, Opposed)
	}
}

func TestAlignment_Downtrend(t *testing.T) {
	f := NewFilter(2, 4)
	htf := barsFromCloses([]float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})
	asOfMs := htf[len(htf)-1].TimestampMs

	if got := f.Alignment(domain.DirectionShort, htf, asOfMs); got != Aligned {
		t.Errorf("short in downtrend: got %s, want %s", got, Aligned)
	}
	if got := f.Alignment(domain.DirectionLong, htf, asOfMs); got != Opposed {
		t.Errorf("long in downtrend: got %s, want %s", got, Opposed)
	}
}

func TestAlignment_GapBarInSeries(t *testing.T) {
	f := NewFilter(2, 4)

	// One gap bar in a clean uptrend must not flip the verdict: the EMAs
	// skip the gap and the trend stays readable.
	nan := math.NaN()
	htf := barsFromCloses([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	htf[5].Open, htf[5].High, htf[5].Low, htf[5].Close = nan, nan, nan, nan
	htf[5].Volume = 0
	asOfMs := htf[len(htf)-1].TimestampMs

	if got := f.Alignment(domain.DirectionLong, htf, asOfMs); got != Aligned {
		t.Errorf("long in gapped uptrend: got %s, want %s", got, Aligned)
	}
	if got := f.Alignment(domain.DirectionShort, htf, asOfMs); got != Opposed {
		t.Errorf("short in gapped uptrend: got %s, want %s", got, Opposed)
	}
}

func TestAlignment_Unknown(t *testing.T) {
	f := NewFilter(2, 4)
	htf := barsFromCloses([]float64{1, 2, 3, 4, 5, 6})

	// No HTF series at all.
	if got := f.Alignment(domain.DirectionLong, nil, 5000); got != Unknown {
		t.Errorf("nil series: got %s, want %s", got, Unknown)
	}
	// No direction to compare against.
	if got := f.Alignment(domain.DirectionNone, htf, 6000); got != Unknown {
		t.Errorf("no direction: got %s, want %s", got, Unknown)
	}
	// As-of before the first HTF bar.
	if got := f.Alignment(domain.DirectionLong, htf, 500); got != Unknown {
		t.Errorf("before first bar: got %s, want %s", got, Unknown)
	}
	// Not enough bars for the slow EMA.
	short := barsFromCloses([]float64{1, 2, 3})
	if got := f.Alignment(domain.DirectionLong, short, 3000); got != Unknown {
		t.Errorf("short history: got %s, want %s", got, Unknown)
	}
}

func TestAlignment_AsOfCutoff(t *testing.T) {
	// Uptrend through bar 10, then a collapse. The verdict as of bar 10
	// must not see the later bars.
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 3, 2, 1, 0.5, 0.3, 0.2}
	htf := barsFromCloses(closes)
	f := NewFilter(2, 4)

	cutoff := htf[9].TimestampMs
	if got := f.Alignment(domain.DirectionLong, htf, cutoff); got != Aligned {
		t.Errorf("as-of verdict leaked future bars: got %s, want %s", got, Aligned)
	}

	end := htf[len(htf)-1].TimestampMs
	if got := f.Alignment(domain.DirectionLong, htf, end); got != Opposed {
		t.Errorf("end-of-series verdict: got %s, want %s", got, Opposed)
	}
}

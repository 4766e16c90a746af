package feed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fx-backtest-lab/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadBarsCSV(t *testing.T) {
	path := writeFile(t, "bars.csv", `timestamp_ms,open,high,low,close,volume
1000,1.1000,1.1050,1.0950,1.1020,120
2000,nan,nan,nan,nan,0
3000,1.1020,1.1100,1.1000,1.1080,150
`)

	bars, err := LoadBarsCSV(path)
	if err != nil {
		t.Fatalf("LoadBarsCSV failed: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].TimestampMs != 1000 || bars[0].Close != 1.1020 || bars[0].Volume != 120 {
		t.Errorf("first bar mismatch: %+v", bars[0])
	}
	if !bars[1].IsGap() {
		t.Error("nan row should load as a gap bar")
	}
	if bars[2].High != 1.1100 {
		t.Errorf("third bar high = %f, want 1.1100", bars[2].High)
	}
}

func TestLoadBarsCSV_EmptyFieldsAreGaps(t *testing.T) {
	path := writeFile(t, "bars.csv", `timestamp_ms,open,high,low,close,volume
1000,,,,,
`)
	bars, err := LoadBarsCSV(path)
	if err != nil {
		t.Fatalf("LoadBarsCSV failed: %v", err)
	}
	if !bars[0].IsGap() {
		t.Error("empty price fields should load as a gap bar")
	}
}

func TestLoadBarsCSV_Errors(t *testing.T) {
	badHeader := writeFile(t, "bars.csv", "time,open,high,low,close,volume\n1000,1,1,1,1,1\n")
	if _, err := LoadBarsCSV(badHeader); err == nil {
		t.Error("wrong header should fail")
	}

	empty := writeFile(t, "empty.csv", "timestamp_ms,open,high,low,close,volume\n")
	if _, err := LoadBarsCSV(empty); !errors.Is(err, domain.ErrEmptySeries) {
		t.Errorf("header-only file: expected ErrEmptySeries, got %v", err)
	}

	badTs := writeFile(t, "badts.csv", "timestamp_ms,open,high,low,close,volume\nabc,1,1,1,1,1\n")
	if _, err := LoadBarsCSV(badTs); err == nil {
		t.Error("bad timestamp should fail")
	}

	if _, err := LoadBarsCSV(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoadNewsCSV(t *testing.T) {
	path := writeFile(t, "news.csv", `timestamp_ms,label,impact,currency,sentiment
1000,NFP,high,usd,0.5
2000,ECB Rate Decision,HIGH,EUR,-0.25
3000,PMI,medium,eur,
`)

	events, err := LoadNewsCSV(path)
	if err != nil {
		t.Fatalf("LoadNewsCSV failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	// Impact and currency are normalized to upper case.
	if events[0].Impact != domain.ImpactHigh || events[0].Currency != "USD" {
		t.Errorf("first event not normalized: %+v", events[0])
	}
	if events[0].Sentiment != 0.5 {
		t.Errorf("sentiment = %f, want 0.5", events[0].Sentiment)
	}
	if events[1].Sentiment != -0.25 {
		t.Errorf("sentiment = %f, want -0.25", events[1].Sentiment)
	}
	// Missing sentiment defaults to zero.
	if events[2].Impact != domain.ImpactMedium || events[2].Sentiment != 0 {
		t.Errorf("third event mismatch: %+v", events[2])
	}
}

func TestLoadNewsCSV_Errors(t *testing.T) {
	badImpact := writeFile(t, "news.csv", "timestamp_ms,label,impact,currency,sentiment\n1000,NFP,EXTREME,USD,0\n")
	if _, err := LoadNewsCSV(badImpact); err == nil {
		t.Error("unknown impact should fail")
	}

	badSentiment := writeFile(t, "news2.csv", "timestamp_ms,label,impact,currency,sentiment\n1000,NFP,HIGH,USD,much\n")
	if _, err := LoadNewsCSV(badSentiment); err == nil {
		t.Error("bad sentiment should fail")
	}
}

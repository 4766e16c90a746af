// Package feed loads bar series and news calendars from CSV files.
package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"fx-backtest-lab/internal/domain"
)

// LoadBarsCSV reads an OHLCV series from a CSV file with the header
// timestamp_ms,open,high,low,close,volume. Empty or "nan" price fields
// load as NaN, which is how gap bars are represented on disk.
func LoadBarsCSV(path string) ([]domain.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read bars csv header: %w", err)
	}
	if strings.ToLower(header[0]) != "timestamp_ms" {
		return nil, fmt.Errorf("bars csv %s: unexpected header %q", path, header[0])
	}

	var bars []domain.Bar
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read bars csv line %d: %w", line, err)
		}

		ts, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bars csv line %d: bad timestamp %q", line, rec[0])
		}

		bar := domain.Bar{TimestampMs: ts}
		for j, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume} {
			v, err := parseFloat(rec[j+1])
			if err != nil {
				return nil, fmt.Errorf("bars csv line %d field %d: %w", line, j+1, err)
			}
			*dst = v
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, domain.ErrEmptySeries
	}
	return bars, nil
}

// LoadNewsCSV reads a scheduled event calendar from a CSV file with the
// header timestamp_ms,label,impact,currency,sentiment. The sentiment
// column is optional per row and defaults to 0.
func LoadNewsCSV(path string) ([]domain.NewsEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open news csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read news csv header: %w", err)
	}
	if strings.ToLower(header[0]) != "timestamp_ms" {
		return nil, fmt.Errorf("news csv %s: unexpected header %q", path, header[0])
	}

	var events []domain.NewsEvent
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read news csv line %d: %w", line, err)
		}

		ts, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("news csv line %d: bad timestamp %q", line, rec[0])
		}

		impact := strings.ToUpper(strings.TrimSpace(rec[2]))
		switch impact {
		case domain.ImpactLow, domain.ImpactMedium, domain.ImpactHigh:
		default:
			return nil, fmt.Errorf("news csv line %d: unknown impact %q", line, rec[2])
		}

		sentiment := 0.0
		if strings.TrimSpace(rec[4]) != "" {
			sentiment, err = strconv.ParseFloat(rec[4], 64)
			if err != nil {
				return nil, fmt.Errorf("news csv line %d: bad sentiment %q", line, rec[4])
			}
		}

		events = append(events, domain.NewsEvent{
			TimestampMs: ts,
			Label:       rec[1],
			Impact:      impact,
			Currency:    strings.ToUpper(strings.TrimSpace(rec[3])),
			Sentiment:   sentiment,
		})
	}
	return events, nil
}

// parseFloat treats empty fields and "nan" as NaN.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

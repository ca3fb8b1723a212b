// Package store writes each source's normalized series to a flat CSV file.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"stockcompare/internal/fetcher"
)

// Store writes series under a directory, one file per source, symbol and range
type Store struct {
	dir string
}

// New creates a store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Path returns the file a series for source/symbol/range is written to
func (s *Store) Path(source, symbol string, start, end time.Time) string {
	name := fmt.Sprintf("%s_%s_%s_%s.csv",
		sanitize(source), sanitize(symbol), start.Format(fetcher.DateLayout), end.Format(fetcher.DateLayout))
	return filepath.Join(s.dir, name)
}

// Save writes series as "Date,Close" rows, replacing any previous file.
// The file is written to a temporary name and renamed into place.
func (s *Store) Save(series fetcher.PriceSeries, start, end time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	path := s.Path(series.Source, series.Symbol, start, end)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	records := make([][]string, 0, series.Len()+1)
	records = append(records, []string{"Date", "Close"})
	for _, p := range series.Points {
		records = append(records, []string{
			p.Date.Format(fetcher.DateLayout),
			strconv.FormatFloat(p.Close, 'f', -1, 64),
		})
	}
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename into %s: %w", path, err)
	}
	return path, nil
}

// Load reads a file written by Save back into a series
func (s *Store) Load(source, symbol string, start, end time.Time) (fetcher.PriceSeries, error) {
	path := s.Path(source, symbol, start, end)
	f, err := os.Open(path)
	if err != nil {
		return fetcher.PriceSeries{}, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fetcher.PriceSeries{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return fetcher.PriceSeries{}, fmt.Errorf("read %s: missing header", path)
	}

	series := fetcher.PriceSeries{Source: source, Symbol: symbol}
	for i, rec := range records[1:] {
		day, err := fetcher.ParseDay(rec[0])
		if err != nil {
			return fetcher.PriceSeries{}, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		price, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return fetcher.PriceSeries{}, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		series.Points = append(series.Points, fetcher.Point{Date: day, Close: price})
	}
	return series, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

package fetcher

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the canonical ISO calendar date layout.
const DateLayout = "2006-01-02"

// Point is a single daily closing price.
type Point struct {
	Date  time.Time
	Close float64
}

// PriceSeries is an ordered (date, close) series for one symbol from one source.
type PriceSeries struct {
	Source string
	Symbol string
	Points []Point
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Last returns the most recent point.
func (s PriceSeries) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Day truncates t to its calendar date at UTC midnight, keeping the
// year/month/day as seen in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses an ISO calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// Normalize turns raw provider rows into a PriceSeries: rows outside the
// inclusive [start, end] window are dropped, the rest are sorted by date, and
// a repeated date keeps the last row seen for it. A non-positive or
// non-finite close is reported as a validation error.
func Normalize(source, symbol string, rows []Point, start, end time.Time) (PriceSeries, error) {
	start, end = Day(start), Day(end)

	byDate := make(map[time.Time]float64, len(rows))
	for _, row := range rows {
		if math.IsNaN(row.Close) || math.IsInf(row.Close, 0) || row.Close <= 0 {
			return PriceSeries{}, NewValidationError(
				fmt.Sprintf("invalid close %v on %s", row.Close, row.Date.Format(DateLayout)))
		}
		day := Day(row.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		byDate[day] = row.Close
	}

	points := make([]Point, 0, len(byDate))
	for day, price := range byDate {
		points = append(points, Point{Date: day, Close: price})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	return PriceSeries{Source: source, Symbol: symbol, Points: points}, nil
}

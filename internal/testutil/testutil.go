// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"time"

	"stockcompare/internal/fetcher"
	"stockcompare/internal/resolver"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context, symbol string, start, end time.Time) (fetcher.PriceSeries, error)
	NameFunc  func() string
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (fetcher.PriceSeries, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, symbol, start, end)
	}
	return fetcher.PriceSeries{}, nil
}

// Name implements the Fetcher interface
func (m *MockFetcher) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// NewMockFetcher creates a simple mock fetcher returning closes on
// consecutive days starting at start, or err when it is set
func NewMockFetcher(name string, closes []float64, err error) fetcher.Fetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, symbol string, start, end time.Time) (fetcher.PriceSeries, error) {
			if err != nil {
				return fetcher.PriceSeries{}, err
			}
			return Series(name, symbol, start, closes...), nil
		},
		NameFunc: func() string {
			return name
		},
	}
}

// Series builds a PriceSeries with one close per day starting at start
func Series(source, symbol string, start time.Time, closes ...float64) fetcher.PriceSeries {
	points := make([]fetcher.Point, len(closes))
	for i, c := range closes {
		points[i] = fetcher.Point{Date: fetcher.Day(start).AddDate(0, 0, i), Close: c}
	}
	return fetcher.PriceSeries{Source: source, Symbol: symbol, Points: points}
}

// Day parses an ISO date and panics on failure; for test fixtures only
func Day(s string) time.Time {
	d, err := fetcher.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MockResolver is a mock symbol resolver for testing
type MockResolver struct {
	ResolveFunc func(ctx context.Context, query string) resolver.Resolution
}

// ResolveDetailed returns ResolveFunc's answer, or the query itself as a ticker
func (m *MockResolver) ResolveDetailed(ctx context.Context, query string) resolver.Resolution {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, query)
	}
	return resolver.Resolution{Query: query, Symbol: query, Branch: resolver.BranchTicker}
}

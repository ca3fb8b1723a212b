package fetcher

import (
	"context"
	"time"
)

// Fetcher is the core interface that all price source adapters must implement.
// Each fetcher knows how to retrieve daily closing prices from one provider
// and normalize them into a PriceSeries.
type Fetcher interface {
	// Fetch retrieves closing prices for symbol within the inclusive
	// [start, end] calendar date range.
	// Returns an error instead of a partial series if any row fails to parse.
	Fetch(ctx context.Context, symbol string, start, end time.Time) (PriceSeries, error)

	// Name returns the source name used to label results and data files.
	// Examples: yahoo, stooq, nasdaq, investing, alphavantage
	Name() string
}

// Package sources builds the configured set of price source adapters.
package sources

import (
	"fmt"

	"stockcompare/internal/alphavantage"
	"stockcompare/internal/config"
	"stockcompare/internal/fetcher"
	"stockcompare/internal/investing"
	"stockcompare/internal/nasdaq"
	"stockcompare/internal/stooq"
	"stockcompare/internal/yahoo"
)

// ClientOptions derives the shared HTTP client options from the configuration
func ClientOptions(cfg *config.Config) fetcher.ClientOptions {
	return fetcher.ClientOptions{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	}
}

// Build returns one fetcher per enabled source, in configuration order
func Build(cfg *config.Config) ([]fetcher.Fetcher, error) {
	opts := ClientOptions(cfg)

	fetchers := make([]fetcher.Fetcher, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		f, err := build(cfg, name, opts)
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, f)
	}
	return fetchers, nil
}

func build(cfg *config.Config, name string, opts fetcher.ClientOptions) (fetcher.Fetcher, error) {
	switch name {
	case yahoo.Name:
		return yahoo.NewChartFetcher(cfg.YahooBaseURL, opts), nil
	case stooq.Name:
		return stooq.NewCSVFetcher(cfg.StooqBaseURL, cfg.StooqSuffix, opts), nil
	case nasdaq.Name:
		return nasdaq.NewChartFetcher(cfg.NasdaqBaseURL, opts), nil
	case investing.Name:
		locale, err := investing.LookupLocale(cfg.InvestingLocale)
		if err != nil {
			return nil, err
		}
		return investing.NewTableFetcher(cfg.InvestingBaseURL, locale, opts), nil
	case alphavantage.Name:
		return alphavantage.NewStockFetcher(cfg.AlphavantageAPIKey, cfg.AlphavantageBaseURL, opts), nil
	default:
		return nil, fmt.Errorf("%w %q", config.ErrUnknownSource, name)
	}
}

package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"stockcompare/internal/fetcher"
)

// ErrNoFetchers is returned when a coordinator has nothing to run
var ErrNoFetchers = errors.New("no fetchers configured")

// Coordinator runs every configured fetcher for one symbol and collects
// their results in configuration order
type Coordinator struct {
	fetchers []fetcher.Fetcher
	timeout  time.Duration
	logger   *zap.SugaredLogger
}

// New creates a new Coordinator with the given fetchers. A positive timeout
// bounds each fetcher's call independently.
func New(fetchers []fetcher.Fetcher, timeout time.Duration, logger *zap.SugaredLogger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Coordinator{
		fetchers: fetchers,
		timeout:  timeout,
		logger:   logger,
	}
}

// Collect executes all fetchers concurrently and returns one result per
// fetcher, in the order the fetchers were configured. A fetcher failure is
// recorded in its result and never aborts the others, so an outcome in which
// every source failed is still returned without error.
func (c *Coordinator) Collect(ctx context.Context, symbol string, start, end time.Time) (fetcher.Outcome, error) {
	if len(c.fetchers) == 0 {
		return fetcher.Outcome{}, ErrNoFetchers
	}

	c.logger.Infof("Collecting %s from %d sources, %s to %s",
		symbol, len(c.fetchers), start.Format(fetcher.DateLayout), end.Format(fetcher.DateLayout))

	// Each result lands at its fetcher's index, so completion order does not matter
	mapper := iter.Mapper[fetcher.Fetcher, fetcher.SourceResult]{MaxGoroutines: len(c.fetchers)}
	results := mapper.Map(c.fetchers, func(f *fetcher.Fetcher) fetcher.SourceResult {
		return c.run(ctx, *f, symbol, start, end)
	})

	outcome := fetcher.Outcome{
		Symbol:  symbol,
		Start:   start,
		End:     end,
		Results: results,
	}

	if outcome.AllFailed() {
		c.logger.Errorf("All %d sources failed for %s", len(results), symbol)
	}

	return outcome, nil
}

// run invokes a single fetcher, converting errors and panics into a failed result
func (c *Coordinator) run(ctx context.Context, f fetcher.Fetcher, symbol string, start, end time.Time) (result fetcher.SourceResult) {
	name := f.Name()
	result.Source = name

	defer func() {
		if r := recover(); r != nil {
			result = fetcher.SourceResult{
				Source: name,
				Err: &fetcher.FetchError{
					Type:    fetcher.ErrorTypeUnknown,
					Message: fmt.Sprintf("fetcher panicked: %v", r),
				},
			}
			c.logger.Errorw("Source failed", "source", name, "error", result.Err)
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	begin := time.Now()
	series, err := f.Fetch(ctx, symbol, start, end)
	elapsed := time.Since(begin)

	if err != nil {
		result.Err = err
		c.logger.Errorw("Source failed", "source", name, "elapsed", elapsed, "error", err)
		return result
	}

	// Labels come from the coordinator so results always match their source
	series.Source = name
	series.Symbol = symbol
	result.Series = series

	if series.Len() == 0 {
		c.logger.Warnw("Source returned no rows", "source", name, "elapsed", elapsed)
	} else {
		c.logger.Infow("Source loaded", "source", name, "rows", series.Len(), "elapsed", elapsed)
	}
	return result
}

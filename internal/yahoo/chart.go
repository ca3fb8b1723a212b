package yahoo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resty.dev/v3"

	"stockcompare/internal/fetcher"
)

// Name is the source name of this adapter
const Name = "yahoo"

// ChartResponse represents the Yahoo Finance v8 chart response
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

// ChartError is the error object Yahoo returns for unknown symbols and bad ranges
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartResult holds parallel timestamp and close arrays. Closes are nullable:
// Yahoo emits null for sessions without a trade.
type ChartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

// ChartFetcher fetches daily closes from the Yahoo Finance chart API
type ChartFetcher struct {
	client *resty.Client
}

// NewChartFetcher creates a new Yahoo chart fetcher
func NewChartFetcher(baseURL string, opts fetcher.ClientOptions) *ChartFetcher {
	return &ChartFetcher{
		client: fetcher.NewHTTPClient(baseURL, opts),
	}
}

// Fetch retrieves daily closes for symbol between start and end
func (f *ChartFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (fetcher.PriceSeries, error) {
	var result ChartResponse

	// period2 is exclusive, so ask for one extra day to keep end inclusive
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(fetcher.Day(start).Unix(), 10),
			"period2":  strconv.FormatInt(fetcher.Day(end).AddDate(0, 0, 1).Unix(), 10),
			"interval": "1d",
			"events":   "history",
		}).
		SetResult(&result).
		Get("/v8/finance/chart/{symbol}")

	if err := fetcher.CheckResponse(resp, err); err != nil {
		return fetcher.PriceSeries{}, err
	}

	if result.Chart.Error != nil {
		return fetcher.PriceSeries{}, fetcher.NewClientError(0,
			fmt.Sprintf("%s: %s", result.Chart.Error.Code, result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return fetcher.PriceSeries{}, fetcher.NewValidationError(
			fmt.Sprintf("chart result not found in response for %s", symbol))
	}

	rows, err := rowsFromResult(result.Chart.Result[0])
	if err != nil {
		return fetcher.PriceSeries{}, err
	}

	return fetcher.Normalize(Name, symbol, rows, start, end)
}

// Name returns the source name for this fetcher
func (f *ChartFetcher) Name() string {
	return Name
}

func rowsFromResult(r ChartResult) ([]fetcher.Point, error) {
	// A range with no sessions comes back without timestamps or quotes
	if len(r.Timestamp) == 0 {
		return nil, nil
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, fetcher.NewValidationError("quote indicators missing from chart result")
	}

	closes := r.Indicators.Quote[0].Close
	if len(closes) != len(r.Timestamp) {
		return nil, fetcher.NewValidationError(fmt.Sprintf(
			"chart has %d timestamps but %d closes", len(r.Timestamp), len(closes)))
	}

	// Timestamps mark the session open; shift into exchange time before taking the date
	zone := time.FixedZone("exchange", int(r.Meta.GMTOffset))

	rows := make([]fetcher.Point, 0, len(closes))
	for i, ts := range r.Timestamp {
		if closes[i] == nil {
			continue
		}
		rows = append(rows, fetcher.Point{
			Date:  fetcher.Day(time.Unix(ts, 0).In(zone)),
			Close: *closes[i],
		})
	}
	return rows, nil
}

package alphavantage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resty.dev/v3"

	"stockcompare/internal/fetcher"
)

// Name is the source name of this adapter
const Name = "alphavantage"

// DailyBar is one entry of the daily time series. Only the close is kept.
type DailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// DailyResponse represents the AlphaVantage TIME_SERIES_DAILY response
type DailyResponse struct {
	MetaData struct {
		Information   string `json:"1. Information"`
		Symbol        string `json:"2. Symbol"`
		LastRefreshed string `json:"3. Last Refreshed"`
	} `json:"Meta Data"`
	TimeSeries map[string]DailyBar `json:"Time Series (Daily)"`

	// AlphaVantage answers rate limiting and bad symbols with HTTP 200 and one of these
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// StockFetcher fetches daily closes from AlphaVantage
type StockFetcher struct {
	apiKey string
	client *resty.Client
}

// NewStockFetcher creates a new AlphaVantage daily series fetcher
func NewStockFetcher(apiKey, baseURL string, opts fetcher.ClientOptions) *StockFetcher {
	return &StockFetcher{
		apiKey: apiKey,
		client: fetcher.NewHTTPClient(baseURL, opts),
	}
}

// Fetch retrieves the daily closes for symbol between start and end
func (f *StockFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (fetcher.PriceSeries, error) {
	if f.apiKey == "" {
		return fetcher.PriceSeries{}, fetcher.NewValidationError("alphavantage API key is not configured")
	}

	var result DailyResponse

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":     f.apiKey,
			"function":   "TIME_SERIES_DAILY",
			"symbol":     symbol,
			"outputsize": outputSize(start),
		}).
		SetResult(&result).
		Get("")

	if err := fetcher.CheckResponse(resp, err); err != nil {
		return fetcher.PriceSeries{}, err
	}

	switch {
	case result.Note != "":
		return fetcher.PriceSeries{}, &fetcher.FetchError{
			Type:      fetcher.ErrorTypeRateLimit,
			Retryable: true,
			Message:   result.Note,
		}
	case result.Information != "":
		return fetcher.PriceSeries{}, fetcher.NewClientError(0, result.Information)
	case result.ErrorMessage != "":
		return fetcher.PriceSeries{}, fetcher.NewClientError(0, result.ErrorMessage)
	}

	if len(result.TimeSeries) == 0 {
		return fetcher.PriceSeries{}, fetcher.NewValidationError(
			fmt.Sprintf("time series not found in response for %s", symbol))
	}

	rows := make([]fetcher.Point, 0, len(result.TimeSeries))
	for date, bar := range result.TimeSeries {
		day, err := fetcher.ParseDay(date)
		if err != nil {
			return fetcher.PriceSeries{}, fetcher.NewParseError(fmt.Sprintf("failed to parse date %q", date), err)
		}
		price, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			return fetcher.PriceSeries{}, fetcher.NewParseError(fmt.Sprintf("failed to parse close for %s", date), err)
		}
		rows = append(rows, fetcher.Point{Date: day, Close: price})
	}

	return fetcher.Normalize(Name, symbol, rows, start, end)
}

// Name returns the source name for this fetcher
func (f *StockFetcher) Name() string {
	return Name
}

// outputSize picks the compact series (last 100 trading days) when the
// requested range is recent enough to fit in it.
func outputSize(start time.Time) string {
	if time.Since(start) < 140*24*time.Hour {
		return "compact"
	}
	return "full"
}

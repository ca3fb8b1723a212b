package nasdaq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resty.dev/v3"

	"stockcompare/internal/fetcher"
)

// Name is the source name of this adapter
const Name = "nasdaq"

// ChartPoint is one point of the Nasdaq chart: x is epoch milliseconds, y the close
type ChartPoint struct {
	X *int64   `json:"x"`
	Y *float64 `json:"y"`
}

// ChartResponse represents the Nasdaq quote chart API response
type ChartResponse struct {
	Data *struct {
		Symbol string       `json:"symbol"`
		Chart  []ChartPoint `json:"chart"`
	} `json:"data"`
	Status struct {
		RCode        int `json:"rCode"`
		BCodeMessage []struct {
			Code         int    `json:"code"`
			ErrorMessage string `json:"errorMessage"`
		} `json:"bCodeMessage"`
	} `json:"status"`
}

// ChartFetcher fetches daily closes from the Nasdaq chart API
type ChartFetcher struct {
	client *resty.Client
}

// NewChartFetcher creates a new Nasdaq chart fetcher
func NewChartFetcher(baseURL string, opts fetcher.ClientOptions) *ChartFetcher {
	return &ChartFetcher{
		client: fetcher.NewHTTPClient(baseURL, opts),
	}
}

// Fetch retrieves daily closes for symbol between start and end
func (f *ChartFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (fetcher.PriceSeries, error) {
	var result ChartResponse

	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"assetclass": "stocks",
			"fromdate":   start.Format(fetcher.DateLayout),
			"todate":     end.Format(fetcher.DateLayout),
		}).
		SetResult(&result).
		Get("/api/quote/{symbol}/chart")

	if err := fetcher.CheckResponse(resp, err); err != nil {
		return fetcher.PriceSeries{}, err
	}

	if result.Status.RCode != 0 && result.Status.RCode != 200 {
		return fetcher.PriceSeries{}, fetcher.NewClientError(result.Status.RCode, statusMessage(result))
	}
	if result.Data == nil {
		return fetcher.PriceSeries{}, fetcher.NewValidationError(
			fmt.Sprintf("chart data not found in response for %s: %s", symbol, statusMessage(result)))
	}

	rows := make([]fetcher.Point, 0, len(result.Data.Chart))
	for i, p := range result.Data.Chart {
		if p.X == nil || p.Y == nil {
			return fetcher.PriceSeries{}, fetcher.NewValidationError(fmt.Sprintf("chart point %d lacks x or y", i))
		}
		rows = append(rows, fetcher.Point{
			Date:  fetcher.Day(time.UnixMilli(*p.X).UTC()),
			Close: *p.Y,
		})
	}

	return fetcher.Normalize(Name, symbol, rows, start, end)
}

// Name returns the source name for this fetcher
func (f *ChartFetcher) Name() string {
	return Name
}

func statusMessage(r ChartResponse) string {
	var msgs []string
	for _, m := range r.Status.BCodeMessage {
		if m.ErrorMessage != "" {
			msgs = append(msgs, m.ErrorMessage)
		}
	}
	if len(msgs) == 0 {
		return "no status message"
	}
	return strings.Join(msgs, "; ")
}

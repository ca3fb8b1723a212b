package nasdaq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockcompare/internal/fetcher"
)

// x values are midnight UTC of 2024-01-02, 2024-01-03 and 2024-02-01
const chartBody = `{
	"data": {
		"symbol": "AAPL",
		"chart": [
			{"x": 1704153600000, "y": 185.64, "z": {"dateTime": "01/02/2024", "value": "185.64"}},
			{"x": 1704240000000, "y": 184.25, "z": {"dateTime": "01/03/2024", "value": "184.25"}},
			{"x": 1706745600000, "y": 186.86, "z": {"dateTime": "02/01/2024", "value": "186.86"}}
		]
	},
	"status": {"rCode": 200, "bCodeMessage": null}
}`

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := fetcher.ParseDay(s)
	if err != nil {
		t.Fatalf("ParseDay(%q): %v", s, err)
	}
	return d
}

func TestChartFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/quote/AAPL/chart" {
			t.Errorf("path = %q, want /api/quote/AAPL/chart", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("assetclass") != "stocks" || q.Get("fromdate") != "2024-01-01" || q.Get("todate") != "2024-01-31" {
			t.Errorf("query = %v", q)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chartBody))
	}))
	defer server.Close()

	f := NewChartFetcher(server.URL, fetcher.ClientOptions{})
	series, err := f.Fetch(context.Background(), "AAPL", mustDay(t, "2024-01-01"), mustDay(t, "2024-01-31"))
	if err != nil {
		t.Fatalf("Fetch() returned unexpected error: %v", err)
	}

	if series.Len() != 2 {
		t.Fatalf("Len() = %d, want 2: %+v", series.Len(), series.Points)
	}
	if got := series.Points[0].Date.Format(fetcher.DateLayout); got != "2024-01-02" {
		t.Errorf("Points[0].Date = %s, want 2024-01-02", got)
	}
	if series.Points[1].Close != 184.25 {
		t.Errorf("Points[1].Close = %v, want 184.25", series.Points[1].Close)
	}
}

func TestChartFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType fetcher.ErrorType
	}{
		{
			name:     "unknown symbol",
			status:   http.StatusOK,
			body:     `{"data": null, "status": {"rCode": 400, "bCodeMessage": [{"code": 1001, "errorMessage": "Symbol not exists"}]}}`,
			wantType: fetcher.ErrorTypeClient,
		},
		{
			name:     "null data",
			status:   http.StatusOK,
			body:     `{"data": null, "status": {"rCode": 200}}`,
			wantType: fetcher.ErrorTypeValidation,
		},
		{
			name:     "point without y",
			status:   http.StatusOK,
			body:     `{"data": {"chart": [{"x": 1704153600000}]}, "status": {"rCode": 200}}`,
			wantType: fetcher.ErrorTypeValidation,
		},
		{
			name:     "forbidden",
			status:   http.StatusForbidden,
			body:     `{}`,
			wantType: fetcher.ErrorTypeClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			f := NewChartFetcher(server.URL, fetcher.ClientOptions{})
			_, err := f.Fetch(context.Background(), "AAPL", mustDay(t, "2024-01-01"), mustDay(t, "2024-01-31"))

			var fe *fetcher.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Fetch() error = %v, want *FetchError", err)
			}
			if fe.Type != tt.wantType {
				t.Errorf("error type = %q, want %q (%v)", fe.Type, tt.wantType, err)
			}
		})
	}
}

func TestChartFetcher_Fetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	f := NewChartFetcher(url, fetcher.ClientOptions{})
	_, err := f.Fetch(context.Background(), "AAPL", mustDay(t, "2024-01-01"), mustDay(t, "2024-01-31"))

	var fe *fetcher.FetchError
	if !errors.As(err, &fe) || fe.Type != fetcher.ErrorTypeNetwork {
		t.Errorf("Fetch() error = %v, want network FetchError", err)
	}
}

package stooq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockcompare/internal/fetcher"
)

const csvBody = "Date,Open,High,Low,Close,Volume\n" +
	"2024-01-02,187.15,188.44,183.885,185.64,82488674\n" +
	"2024-01-03,184.22,185.88,183.43,184.25,58414460\n" +
	"2024-01-04,182.15,183.0872,180.88,181.91,71983570\n"

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := fetcher.ParseDay(s)
	if err != nil {
		t.Fatalf("ParseDay(%q): %v", s, err)
	}
	return d
}

func TestCSVFetcher_Fetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/q/d/l/" {
			t.Errorf("path = %q, want /q/d/l/", r.URL.Path)
		}
		if got := q.Get("s"); got != "aapl.us" {
			t.Errorf("s = %q, want aapl.us", got)
		}
		if got := q.Get("d1"); got != "20240101" {
			t.Errorf("d1 = %q, want 20240101", got)
		}
		if got := q.Get("d2"); got != "20240131" {
			t.Errorf("d2 = %q, want 20240131", got)
		}
		if got := q.Get("i"); got != "d" {
			t.Errorf("i = %q, want d", got)
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(csvBody))
	}))
	defer server.Close()

	f := NewCSVFetcher(server.URL, DefaultSuffix, fetcher.ClientOptions{})
	series, err := f.Fetch(context.Background(), "AAPL", mustDay(t, "2024-01-01"), mustDay(t, "2024-01-31"))
	if err != nil {
		t.Fatalf("Fetch() returned unexpected error: %v", err)
	}

	if series.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", series.Len())
	}
	last, _ := series.Last()
	if last.Close != 181.91 || last.Date.Format(fetcher.DateLayout) != "2024-01-04" {
		t.Errorf("Last() = %+v", last)
	}
	if series.Source != "stooq" {
		t.Errorf("Source = %q, want stooq", series.Source)
	}
}

func TestCSVFetcher_StooqSymbol(t *testing.T) {
	f := NewCSVFetcher("http://localhost", DefaultSuffix, fetcher.ClientOptions{})

	tests := []struct {
		in   string
		want string
	}{
		{"AAPL", "aapl.us"},
		{"BRK.B", "brk.b"},
		{"CDR.PL", "cdr.pl"},
		{"^SPX", "^spx"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := f.stooqSymbol(tt.in); got != tt.want {
				t.Errorf("stooqSymbol(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCSV_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no data", "No data"},
		{"empty", ""},
		{"missing close column", "Date,Open,High,Low,Volume\n2024-01-02,1,2,3,4\n"},
		{"short row", "Date,Open,High,Low,Close,Volume\n2024-01-02,187.15,188.44\n"},
		{"bad date", "Date,Close\n01/02/2024,185.64\n"},
		{"bad close", "Date,Close\n2024-01-02,n/a\n"},
		{"html error page", "<html><body>Exceeded the daily hits limit</body></html>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := parseCSV(tt.body)
			if err == nil {
				t.Fatalf("parseCSV() = %+v, want error", rows)
			}

			var fe *fetcher.FetchError
			if !errors.As(err, &fe) || fe.Type != fetcher.ErrorTypeValidation {
				t.Errorf("parseCSV() error = %v, want validation FetchError", err)
			}
		})
	}
}

func TestCSVFetcher_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := NewCSVFetcher(server.URL, DefaultSuffix, fetcher.ClientOptions{})
	_, err := f.Fetch(context.Background(), "AAPL", mustDay(t, "2024-01-01"), mustDay(t, "2024-01-31"))

	var fe *fetcher.FetchError
	if !errors.As(err, &fe) || fe.Type != fetcher.ErrorTypeServer {
		t.Errorf("Fetch() error = %v, want server FetchError", err)
	}
}

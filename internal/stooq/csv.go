package stooq

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"stockcompare/internal/fetcher"
)

// Name is the source name of this adapter
const Name = "stooq"

// DefaultSuffix is appended to bare symbols to select the US market
const DefaultSuffix = ".us"

const queryDateLayout = "20060102"

// CSVFetcher downloads daily history from Stooq as CSV
type CSVFetcher struct {
	suffix string
	client *resty.Client
}

// NewCSVFetcher creates a new Stooq CSV fetcher. suffix is the market suffix
// added to symbols that do not carry one already.
func NewCSVFetcher(baseURL, suffix string, opts fetcher.ClientOptions) *CSVFetcher {
	opts.Accept = "text/csv"
	return &CSVFetcher{
		suffix: suffix,
		client: fetcher.NewHTTPClient(baseURL, opts),
	}
}

// Fetch retrieves daily closes for symbol between start and end
func (f *CSVFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (fetcher.PriceSeries, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s":  f.stooqSymbol(symbol),
			"d1": start.Format(queryDateLayout),
			"d2": end.Format(queryDateLayout),
			"i":  "d",
		}).
		Get("/q/d/l/")

	if err := fetcher.CheckResponse(resp, err); err != nil {
		return fetcher.PriceSeries{}, err
	}

	rows, err := parseCSV(resp.String())
	if err != nil {
		return fetcher.PriceSeries{}, err
	}

	return fetcher.Normalize(Name, symbol, rows, start, end)
}

// Name returns the source name for this fetcher
func (f *CSVFetcher) Name() string {
	return Name
}

func (f *CSVFetcher) stooqSymbol(symbol string) string {
	s := strings.ToLower(symbol)
	if strings.Contains(s, ".") || strings.HasPrefix(s, "^") {
		return s
	}
	return s + f.suffix
}

// parseCSV reads the Date and Close columns. Stooq answers unknown symbols
// with HTTP 200 and a plain "No data" body.
func parseCSV(body string) ([]fetcher.Point, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || strings.EqualFold(trimmed, "no data") {
		return nil, fetcher.NewValidationError("no data returned")
	}

	r := csv.NewReader(strings.NewReader(trimmed))
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fetcher.NewParseError("failed to read CSV header", err)
	}

	dateCol, closeCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "close":
			closeCol = i
		}
	}
	if dateCol < 0 || closeCol < 0 {
		return nil, fetcher.NewValidationError(fmt.Sprintf("CSV header %q lacks Date/Close columns", strings.Join(header, ",")))
	}

	var rows []fetcher.Point
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		// csv.Reader already rejects rows whose width differs from the header
		if err != nil {
			return nil, fetcher.NewParseError("malformed CSV", err)
		}

		day, err := fetcher.ParseDay(record[dateCol])
		if err != nil {
			return nil, fetcher.NewParseError(fmt.Sprintf("line %d: bad date %q", line, record[dateCol]), err)
		}
		price, err := strconv.ParseFloat(record[closeCol], 64)
		if err != nil {
			return nil, fetcher.NewParseError(fmt.Sprintf("line %d: bad close %q", line, record[closeCol]), err)
		}
		rows = append(rows, fetcher.Point{Date: day, Close: price})
	}
	return rows, nil
}

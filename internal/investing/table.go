package investing

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"resty.dev/v3"

	"stockcompare/internal/fetcher"
)

// Name is the source name of this adapter
const Name = "investing"

// TableFetcher scrapes the historical-data table of an Investing.com equity page
type TableFetcher struct {
	locale Locale
	client *resty.Client
}

// NewTableFetcher creates a new Investing.com table fetcher for the given locale
func NewTableFetcher(baseURL string, locale Locale, opts fetcher.ClientOptions) *TableFetcher {
	opts.Accept = "text/html"
	return &TableFetcher{
		locale: locale,
		client: fetcher.NewHTTPClient(baseURL, opts),
	}
}

// Fetch retrieves daily closes for symbol between start and end
func (f *TableFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (fetcher.PriceSeries, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("slug", strings.ToLower(symbol)).
		Get("/equities/{slug}-historical-data")

	if err := fetcher.CheckResponse(resp, err); err != nil {
		return fetcher.PriceSeries{}, err
	}

	rows, err := parseTable(strings.NewReader(resp.String()), f.locale)
	if err != nil {
		return fetcher.PriceSeries{}, err
	}

	return fetcher.Normalize(Name, symbol, rows, start, end)
}

// Name returns the source name for this fetcher
func (f *TableFetcher) Name() string {
	return Name
}

// parseTable finds the first table whose header carries the locale's date and
// close columns and parses every data row of it.
func parseTable(r io.Reader, locale Locale) ([]fetcher.Point, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fetcher.NewParseError("failed to parse HTML", err)
	}

	for _, table := range findAll(doc, atom.Table) {
		cells := tableRows(table)
		if len(cells) == 0 {
			continue
		}

		header := cells[0]
		dateCol, closeCol := -1, -1
		for i, h := range header {
			switch {
			case dateCol < 0 && locale.isDateHeader(h):
				dateCol = i
			case closeCol < 0 && locale.isCloseHeader(h):
				closeCol = i
			}
		}
		if dateCol < 0 || closeCol < 0 {
			continue
		}

		return parseRows(cells[1:], len(header), dateCol, closeCol, locale)
	}

	return nil, fetcher.NewValidationError("historical price table not found in page")
}

func parseRows(rows [][]string, width, dateCol, closeCol int, locale Locale) ([]fetcher.Point, error) {
	points := make([]fetcher.Point, 0, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fetcher.NewValidationError(
				fmt.Sprintf("row %d has %d cells, header has %d", i+1, len(row), width))
		}

		day, err := parseDate(row[dateCol], locale)
		if err != nil {
			return nil, fetcher.NewParseError(fmt.Sprintf("row %d: bad date %q", i+1, row[dateCol]), err)
		}
		price, err := locale.ParseNumber(row[closeCol])
		if err != nil {
			return nil, fetcher.NewParseError(fmt.Sprintf("row %d: bad close %q", i+1, row[closeCol]), err)
		}
		points = append(points, fetcher.Point{Date: day, Close: price})
	}
	return points, nil
}

func parseDate(s string, locale Locale) (time.Time, error) {
	var lastErr error
	for _, layout := range locale.DateLayouts {
		t, err := time.Parse(layout, strings.TrimSpace(s))
		if err == nil {
			return fetcher.Day(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// tableRows returns the text of every th/td cell, row by row. Rows without
// cells are dropped.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	for _, tr := range findAll(table, atom.Tr) {
		var row []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Th || c.DataAtom == atom.Td) {
				row = append(row, text(c))
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			out = append(out, n)
			// tables nested inside a match are not searched
			if a == atom.Table {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Package resolver turns free-text company names into ticker symbols.
package resolver

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"resty.dev/v3"

	"stockcompare/internal/fetcher"
)

// Branch records how a query was resolved
type Branch string

const (
	// BranchTicker means the query already looked like a ticker
	BranchTicker Branch = "ticker"
	// BranchEquity means the first equity search hit was used
	BranchEquity Branch = "equity"
	// BranchFirst means no hit was an equity and the first hit was used
	BranchFirst Branch = "first"
	// BranchFallback means the search failed or found nothing
	BranchFallback Branch = "fallback"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)

// Resolution is the result of resolving a query
type Resolution struct {
	Query  string
	Symbol string
	Branch Branch
}

// SearchResponse represents the Yahoo Finance search response
type SearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		QuoteType string `json:"quoteType"`
		ShortName string `json:"shortname"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

// Resolver looks up ticker symbols through the Yahoo Finance search API
type Resolver struct {
	client *resty.Client
	logger *zap.SugaredLogger
}

// New creates a resolver against the search API at baseURL
func New(baseURL string, opts fetcher.ClientOptions, logger *zap.SugaredLogger) *Resolver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Resolver{
		client: fetcher.NewHTTPClient(baseURL, opts),
		logger: logger,
	}
}

// Resolve returns a usable symbol for query. It never fails: when the search
// is unusable the upper-cased query is returned.
func (r *Resolver) Resolve(ctx context.Context, query string) string {
	return r.ResolveDetailed(ctx, query).Symbol
}

// ResolveDetailed resolves query and reports which branch produced the symbol
func (r *Resolver) ResolveDetailed(ctx context.Context, query string) Resolution {
	query = strings.TrimSpace(query)
	res := Resolution{Query: query}

	if LooksLikeTicker(query) {
		res.Symbol, res.Branch = query, BranchTicker
		r.logger.Infow("Query is already a ticker", "query", query, "symbol", res.Symbol)
		return res
	}

	symbol, branch, err := r.search(ctx, query)
	if err != nil {
		r.logger.Warnw("Symbol search failed, using query as symbol", "query", query, "error", err)
	}
	if symbol == "" {
		symbol, branch = strings.ToUpper(query), BranchFallback
	}

	res.Symbol, res.Branch = symbol, branch
	r.logger.Infow("Resolved symbol", "query", query, "symbol", symbol, "branch", string(branch))
	return res
}

func (r *Resolver) search(ctx context.Context, query string) (string, Branch, error) {
	var result SearchResponse

	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           query,
			"quotesCount": "10",
			"newsCount":   "0",
		}).
		SetResult(&result).
		Get("/v1/finance/search")

	if err := fetcher.CheckResponse(resp, err); err != nil {
		return "", BranchFallback, err
	}

	for _, q := range result.Quotes {
		if strings.EqualFold(q.QuoteType, "EQUITY") && q.Symbol != "" {
			return q.Symbol, BranchEquity, nil
		}
	}
	if len(result.Quotes) > 0 && result.Quotes[0].Symbol != "" {
		return result.Quotes[0].Symbol, BranchFirst, nil
	}
	return "", BranchFallback, nil
}

// LooksLikeTicker reports whether s is 1-5 upper-case letters or digits
func LooksLikeTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

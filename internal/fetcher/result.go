package fetcher

import "time"

// SourceResult represents the outcome of one adapter invocation.
// Exactly one of Series or Err is meaningful: Err == nil means success.
type SourceResult struct {
	// Source is the adapter name that produced this result
	Source string

	// Series holds the normalized prices when the fetch succeeded
	Series PriceSeries

	// Err contains the failure, if any. Series must be ignored when Err is set.
	Err error
}

// OK reports whether the adapter succeeded.
func (r SourceResult) OK() bool {
	return r.Err == nil
}

// Usable reports whether the result carries at least one price.
func (r SourceResult) Usable() bool {
	return r.OK() && r.Series.Len() > 0
}

// Outcome is the per-request collection of results, one per configured
// source, in configuration order.
type Outcome struct {
	Symbol  string
	Start   time.Time
	End     time.Time
	Results []SourceResult
}

// Successes returns the results whose adapters succeeded, including empty series.
func (o Outcome) Successes() []SourceResult {
	var out []SourceResult
	for _, r := range o.Results {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Failures returns the results whose adapters failed.
func (o Outcome) Failures() []SourceResult {
	var out []SourceResult
	for _, r := range o.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Usable returns the successful results with at least one price.
func (o Outcome) Usable() []SourceResult {
	var out []SourceResult
	for _, r := range o.Results {
		if r.Usable() {
			out = append(out, r)
		}
	}
	return out
}

// HasData reports whether any source produced a non-empty series.
func (o Outcome) HasData() bool {
	for _, r := range o.Results {
		if r.Usable() {
			return true
		}
	}
	return false
}

// AllFailed reports whether every source failed. An outcome with no results
// is not considered failed.
func (o Outcome) AllFailed() bool {
	if len(o.Results) == 0 {
		return false
	}
	for _, r := range o.Results {
		if r.OK() {
			return false
		}
	}
	return true
}

package pipeline

import (
	"time"

	"stockcompare/internal/evaluator"
	"stockcompare/internal/fetcher"
	"stockcompare/internal/resolver"
)

// Result is everything one run produced
type Result struct {
	RunID      string
	Query      string
	Symbol     string
	Branch     resolver.Branch
	Start      time.Time
	End        time.Time
	Prediction float64

	Outcome     fetcher.Outcome
	DataFiles   map[string]string
	Evaluations []evaluator.Result

	// ChartPath is empty when no chart could be rendered
	ChartPath string

	// Report holds the timing lines, one per stage
	Report []string
}

// SourceSummary describes how one source fared in a run
type SourceSummary struct {
	Source   string
	OK       bool
	Rows     int
	Error    string
	DataFile string
}

// NoData reports whether no source produced a usable series
func (r *Result) NoData() bool {
	return !r.Outcome.HasData()
}

// HasChart reports whether a chart was rendered
func (r *Result) HasChart() bool {
	return r.ChartPath != ""
}

// Best returns the evaluation closest to the prediction
func (r *Result) Best() (evaluator.Result, bool) {
	return evaluator.Best(r.Evaluations)
}

// Sources summarizes every source in configuration order
func (r *Result) Sources() []SourceSummary {
	out := make([]SourceSummary, 0, len(r.Outcome.Results))
	for _, res := range r.Outcome.Results {
		s := SourceSummary{
			Source:   res.Source,
			OK:       res.OK(),
			DataFile: r.DataFiles[res.Source],
		}
		if res.OK() {
			s.Rows = res.Series.Len()
		} else {
			s.Error = res.Err.Error()
		}
		out = append(out, s)
	}
	return out
}

// Succeeded counts the sources that returned without error
func (r *Result) Succeeded() int {
	return len(r.Outcome.Successes())
}

// Failed counts the sources that returned an error
func (r *Result) Failed() int {
	return len(r.Outcome.Failures())
}

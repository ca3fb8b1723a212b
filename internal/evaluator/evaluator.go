package evaluator

import (
	"math"
	"time"

	"go.uber.org/zap"

	"stockcompare/internal/fetcher"
)

// Result compares a prediction against one source's latest close
type Result struct {
	Source     string
	Date       time.Time
	Actual     float64
	Prediction float64
	AbsError   float64
}

// Evaluator scores a prediction against every usable source in an outcome
type Evaluator struct {
	logger *zap.SugaredLogger
}

// New creates an evaluator that logs to logger
func New(logger *zap.SugaredLogger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Evaluator{logger: logger}
}

// Evaluate returns one Result per successful, non-empty series, in outcome
// order. The actual price is the close of the series' most recent point.
func (e *Evaluator) Evaluate(outcome fetcher.Outcome, prediction float64) []Result {
	results := make([]Result, 0, len(outcome.Results))

	for _, r := range outcome.Results {
		if !r.OK() {
			e.logger.Warnw("Skipping failed source", "source", r.Source, "error", r.Err)
			continue
		}
		last, ok := r.Series.Last()
		if !ok {
			e.logger.Warnw("Skipping source with no data", "source", r.Source)
			continue
		}

		res := Result{
			Source:     r.Source,
			Date:       last.Date,
			Actual:     last.Close,
			Prediction: prediction,
			AbsError:   math.Abs(last.Close - prediction),
		}
		results = append(results, res)

		e.logger.Infof("%s: actual %.2f on %s, predicted %.2f, absolute error %.2f",
			res.Source, res.Actual, res.Date.Format(fetcher.DateLayout), res.Prediction, res.AbsError)
	}

	return results
}

// Best returns the result with the smallest absolute error. Ties keep the
// earlier source.
func Best(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.AbsError < best.AbsError {
			best = r
		}
	}
	return best, true
}

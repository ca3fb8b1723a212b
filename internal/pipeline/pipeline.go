// Package pipeline runs one stock comparison end to end: resolve the symbol,
// collect prices from every source, store them, evaluate the prediction,
// render the chart and report stage timings.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockcompare/internal/chart"
	"stockcompare/internal/coordinator"
	"stockcompare/internal/evaluator"
	"stockcompare/internal/fetcher"
	"stockcompare/internal/resolver"
	"stockcompare/internal/store"
	"stockcompare/internal/timing"
)

// Stage names reported by the timing tracker
const (
	StageCollection = "data_collection"
	StageStorage    = "data_storage"
	StageEvaluation = "prediction_evaluation"
	StageChart      = "chart_generation"
)

// SymbolResolver maps a free-text query to a ticker symbol
type SymbolResolver interface {
	ResolveDetailed(ctx context.Context, query string) resolver.Resolution
}

// Options configures where a pipeline writes its artifacts
type Options struct {
	DataDir       string
	ChartsDir     string
	SourceTimeout time.Duration
}

// Pipeline wires the stages together. It holds no per-run state and can
// serve concurrent runs.
type Pipeline struct {
	resolver  SymbolResolver
	fetchers  []fetcher.Fetcher
	store     *store.Store
	chartsDir string
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// New creates a pipeline over the given resolver and fetchers
func New(res SymbolResolver, fetchers []fetcher.Fetcher, opts Options, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Pipeline{
		resolver:  res,
		fetchers:  fetchers,
		store:     store.New(opts.DataDir),
		chartsDir: opts.ChartsDir,
		timeout:   opts.SourceTimeout,
		logger:    logger,
	}
}

// Run executes one comparison. Invalid requests fail with ErrInvalidRequest
// before any network call. Source failures never fail the run: they are
// recorded in the outcome, and a run where nothing succeeded reports NoData.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	params, err := req.Parse()
	if err != nil {
		p.logger.Warnw("Rejected request", "error", err)
		return nil, err
	}

	runID := uuid.NewString()
	log := p.logger.With("run_id", runID)
	tracker := timing.NewTracker(log)

	log.Infof("Analyzing %q from %s to %s with prediction %g",
		params.Query, params.Start.Format(fetcher.DateLayout), params.End.Format(fetcher.DateLayout), params.Prediction)

	tracker.Start(StageCollection)
	resolution := p.resolver.ResolveDetailed(ctx, params.Query)
	outcome, err := coordinator.New(p.fetchers, p.timeout, log).Collect(ctx, resolution.Symbol, params.Start, params.End)
	tracker.Stop(StageCollection)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", resolution.Symbol, err)
	}

	tracker.Start(StageStorage)
	files := p.persist(log, outcome)
	tracker.Stop(StageStorage)

	tracker.Start(StageEvaluation)
	evaluations := evaluator.New(log).Evaluate(outcome, params.Prediction)
	tracker.Stop(StageEvaluation)

	tracker.Start(StageChart)
	chartPath, _ := chart.NewRenderer(p.chartsDir, log).Render(outcome, resolution.Symbol)
	tracker.Stop(StageChart)

	report := tracker.Report()
	for _, line := range report {
		log.Info(line)
	}

	if outcome.AllFailed() {
		log.Warnf("No data found for %s from any source", resolution.Symbol)
	}

	return &Result{
		RunID:       runID,
		Query:       params.Query,
		Symbol:      resolution.Symbol,
		Branch:      resolution.Branch,
		Start:       params.Start,
		End:         params.End,
		Prediction:  params.Prediction,
		Outcome:     outcome,
		DataFiles:   files,
		Evaluations: evaluations,
		ChartPath:   chartPath,
		Report:      report,
	}, nil
}

// persist saves every usable series and returns the written paths by source.
// A failed write is logged and leaves that source without a file.
func (p *Pipeline) persist(log *zap.SugaredLogger, outcome fetcher.Outcome) map[string]string {
	files := make(map[string]string)
	for _, r := range outcome.Usable() {
		path, err := p.store.Save(r.Series, outcome.Start, outcome.End)
		if err != nil {
			log.Errorw("Failed to save data", "source", r.Source, "error", err)
			continue
		}
		log.Infof("Saved %d rows from %s to %s", r.Series.Len(), r.Source, path)
		files[r.Source] = path
	}
	return files
}

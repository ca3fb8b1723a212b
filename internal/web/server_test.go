package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockcompare/internal/evaluator"
	"stockcompare/internal/fetcher"
	"stockcompare/internal/pipeline"
	"stockcompare/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRunner struct {
	calls  int
	last   pipeline.Request
	result *pipeline.Result
	err    error
}

func (r *stubRunner) Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	r.calls++
	r.last = req
	return r.result, r.err
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func sampleResult(chartPath string) *pipeline.Result {
	start := testutil.Day("2024-01-02")
	return &pipeline.Result{
		RunID:      "run-123",
		Query:      "Apple",
		Symbol:     "AAPL",
		Start:      start,
		End:        testutil.Day("2024-01-05"),
		Prediction: 105,
		Outcome: fetcher.Outcome{
			Symbol: "AAPL",
			Results: []fetcher.SourceResult{
				{Source: "yahoo", Series: testutil.Series("yahoo", "AAPL", start, 100, 104)},
				{Source: "nasdaq", Err: fetcher.NewServerError(503)},
			},
		},
		DataFiles: map[string]string{"yahoo": "data/yahoo_AAPL_2024-01-02_2024-01-05.csv"},
		Evaluations: []evaluator.Result{
			{Source: "yahoo", Date: testutil.Day("2024-01-03"), Actual: 104, Prediction: 105, AbsError: 1},
		},
		ChartPath: chartPath,
		Report:    []string{"data_collection - 0.42 s", "chart_generation - 0.10 s"},
	}
}

func TestIndex(t *testing.T) {
	s := New(":0", &stubRunner{}, t.TempDir(), nil)

	rec := get(t, s, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<form action="/analyze" method="get">`)
	assert.NotContains(t, rec.Body.String(), missingFieldsWarning)
}

func TestAnalyze_MissingFields(t *testing.T) {
	runner := &stubRunner{}
	s := New(":0", runner, t.TempDir(), nil)

	rec := get(t, s, "/analyze?stock=AAPL&start_date=2024-01-02&end_date=&prediction=100")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), missingFieldsWarning)
	assert.Contains(t, rec.Body.String(), `value="AAPL"`)
	assert.Zero(t, runner.calls)
}

func TestAnalyze_RendersResult(t *testing.T) {
	runner := &stubRunner{result: sampleResult("charts/AAPL_price_chart.png")}
	s := New(":0", runner, t.TempDir(), nil)

	rec := get(t, s, "/analyze?stock=Apple&start_date=2024-01-02&end_date=2024-01-05&prediction=105")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, pipeline.Request{Stock: "Apple", StartDate: "2024-01-02", EndDate: "2024-01-05", Prediction: "105"}, runner.last)

	body := rec.Body.String()
	assert.Contains(t, body, "Results for AAPL")
	assert.Contains(t, body, "Sources processed: 2, succeeded: 1, failed: 1")
	assert.Contains(t, body, "server error (status 503)")
	assert.Contains(t, body, "Closest source: yahoo (104.00)")
	assert.Contains(t, body, `<img src="/charts/AAPL_price_chart.png"`)
	assert.Contains(t, body, "data_collection - 0.42 s")
	assert.NotContains(t, body, "No data found")
}

func TestAnalyze_NoData(t *testing.T) {
	result := sampleResult("")
	result.Outcome.Results = []fetcher.SourceResult{
		{Source: "yahoo", Err: fetcher.NewNetworkError(errors.New("connection refused"))},
	}
	result.Evaluations = []evaluator.Result{}
	result.DataFiles = map[string]string{}
	s := New(":0", &stubRunner{result: result}, t.TempDir(), nil)

	rec := get(t, s, "/analyze?stock=AAPL&start_date=2024-01-02&end_date=2024-01-05&prediction=105")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "No data found for AAPL from any source.")
	assert.Contains(t, body, "No chart available.")
	assert.Contains(t, body, "connection refused")
}

func TestAnalyze_InvalidRequest(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("%w: prediction \"abc\" is not a number", pipeline.ErrInvalidRequest)}
	s := New(":0", runner, t.TempDir(), nil)

	rec := get(t, s, "/analyze?stock=AAPL&start_date=2024-01-02&end_date=2024-01-05&prediction=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "is not a number")
}

func TestAnalyze_PipelineError(t *testing.T) {
	runner := &stubRunner{err: errors.New("no fetchers configured")}
	s := New(":0", runner, t.TempDir(), nil)

	rec := get(t, s, "/analyze?stock=AAPL&start_date=2024-01-02&end_date=2024-01-05&prediction=1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Analysis failed")
}

func TestCharts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL_price_chart.png"), []byte("png"), 0o644))
	s := New(":0", &stubRunner{}, dir, nil)

	rec := get(t, s, "/charts/AAPL_price_chart.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	rec = get(t, s, "/charts/missing.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	s := New(":0", &stubRunner{}, t.TempDir(), nil)

	rec := get(t, s, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Page not found", rec.Body.String())
}

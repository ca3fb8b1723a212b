// Package chart draws the closing-price series of every usable source on a
// single time-series chart.
package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"stockcompare/internal/fetcher"
)

const (
	width  = 10 * vg.Inch
	height = 6 * vg.Inch
)

var (
	errNoSeries = errors.New("no plottable series")

	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Renderer writes PNG charts into a directory
type Renderer struct {
	dir    string
	logger *zap.SugaredLogger
}

// NewRenderer creates a renderer writing into dir
func NewRenderer(dir string, logger *zap.SugaredLogger) *Renderer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Renderer{dir: dir, logger: logger}
}

// Path returns the file a chart for label is written to.
func (r *Renderer) Path(label string) string {
	return filepath.Join(r.dir, FileName(label))
}

// FileName returns the deterministic chart file name for label
func FileName(label string) string {
	safe := strings.Trim(unsafeChars.ReplaceAllString(label, "_"), "_.")
	if safe == "" {
		safe = "chart"
	}
	return safe + "_price_chart.png"
}

// Render plots every successful, non-empty series in outcome and returns the
// chart path. Rendering problems are logged and reported as ok == false.
func (r *Renderer) Render(outcome fetcher.Outcome, label string) (string, bool) {
	r.logger.Infof("Generating price chart for %s", label)

	path, err := r.render(outcome, label)
	if err != nil {
		r.logger.Errorw("Chart generation failed", "label", label, "error", err)
		return "", false
	}

	r.logger.Infof("Chart saved to %s", path)
	return path, true
}

func (r *Renderer) render(outcome fetcher.Outcome, label string) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Closing price of %s", label)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Close"
	p.X.Tick.Marker = plot.TimeTicks{Format: fetcher.DateLayout}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	plotted := 0
	for _, res := range outcome.Results {
		if !res.OK() {
			continue
		}
		if res.Series.Len() == 0 {
			r.logger.Errorf("Series for %s is empty, skipping", res.Source)
			continue
		}

		line, err := plotter.NewLine(toXYs(res.Series))
		if err != nil {
			r.logger.Errorw("Cannot plot series", "source", res.Source, "error", err)
			continue
		}
		line.Color = plotutil.Color(plotted)
		line.Dashes = plotutil.Dashes(plotted)

		p.Add(line)
		p.Legend.Add(res.Source, line)
		plotted++
	}

	if plotted == 0 {
		return "", errNoSeries
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create chart directory: %w", err)
	}

	path := r.Path(label)
	if err := p.Save(width, height, path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	return path, nil
}

func toXYs(s fetcher.PriceSeries) plotter.XYs {
	xys := make(plotter.XYs, len(s.Points))
	for i, pt := range s.Points {
		xys[i].X = float64(pt.Date.Unix())
		xys[i].Y = pt.Close
	}
	return xys
}

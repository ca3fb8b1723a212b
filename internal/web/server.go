// Package web serves the stock comparison form and renders pipeline results.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stockcompare/internal/evaluator"
	"stockcompare/internal/fetcher"
	"stockcompare/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

const missingFieldsWarning = "Please fill in all fields."

// Runner executes one comparison
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server is the HTTP front end
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	runner     Runner
	logger     *zap.SugaredLogger
}

// form echoes the submitted fields back into the page
type form struct {
	Stock      string
	StartDate  string
	EndDate    string
	Prediction string
	Warning    string
}

type resultPage struct {
	Form     form
	Result   *pipeline.Result
	Sources  []pipeline.SourceSummary
	Best     *evaluator.Result
	ChartURL string
}

var funcs = template.FuncMap{
	"day": func(t time.Time) string {
		return t.Format(fetcher.DateLayout)
	},
	"price": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
}

// New creates a server listening on addr. Charts are served from chartsDir.
func New(addr string, runner Runner, chartsDir string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	if logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(recovery(logger), requestLogger(logger))
	engine.SetHTMLTemplate(template.Must(
		template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"),
	))

	s := &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  120 * time.Second,
		},
		runner: runner,
		logger: logger,
	}

	engine.GET("/", s.index)
	engine.GET("/analyze", s.analyze)
	engine.Static("/charts", chartsDir)
	engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Page not found")
	})

	return s
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until Shutdown is called
func (s *Server) ListenAndServe() error {
	s.logger.Infof("Serving on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server with a 5-second deadline
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", form{})
}

func (s *Server) analyze(c *gin.Context) {
	f := form{
		Stock:      strings.TrimSpace(c.Query("stock")),
		StartDate:  strings.TrimSpace(c.Query("start_date")),
		EndDate:    strings.TrimSpace(c.Query("end_date")),
		Prediction: strings.TrimSpace(c.Query("prediction")),
	}
	if f.Stock == "" || f.StartDate == "" || f.EndDate == "" || f.Prediction == "" {
		f.Warning = missingFieldsWarning
		c.HTML(http.StatusOK, "index.html", f)
		return
	}

	result, err := s.runner.Run(c.Request.Context(), pipeline.Request{
		Stock:      f.Stock,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Prediction: f.Prediction,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidRequest) {
			f.Warning = err.Error()
			c.HTML(http.StatusBadRequest, "index.html", f)
			return
		}
		s.logger.Errorw("Analysis failed", "stock", f.Stock, "error", err)
		f.Warning = "Analysis failed: " + err.Error()
		c.HTML(http.StatusInternalServerError, "index.html", f)
		return
	}

	page := resultPage{
		Form:    f,
		Result:  result,
		Sources: result.Sources(),
	}
	if best, ok := result.Best(); ok {
		page.Best = &best
	}
	if result.HasChart() {
		page.ChartURL = "/charts/" + filepath.Base(result.ChartPath)
	}
	c.HTML(http.StatusOK, "result.html", page)
}

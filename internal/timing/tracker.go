// Package timing measures wall-clock time spent in named pipeline stages.
package timing

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Span is the timing of one stage. Duration is nil while the stage is running.
type Span struct {
	Stage    string
	Start    time.Time
	Duration *time.Duration
}

// Tracker records start/stop times per stage. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	now    func() time.Time
	order  []string
	spans  map[string]*Span
	logger *zap.SugaredLogger
}

// NewTracker creates a tracker using the wall clock
func NewTracker(logger *zap.SugaredLogger) *Tracker {
	return NewTrackerWithClock(logger, time.Now)
}

// NewTrackerWithClock creates a tracker reading time from now
func NewTrackerWithClock(logger *zap.SugaredLogger, now func() time.Time) *Tracker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Tracker{
		now:    now,
		spans:  make(map[string]*Span),
		logger: logger,
	}
}

// Start begins timing stage. Starting a stage again resets its start time.
func (t *Tracker) Start(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.spans[stage]; !ok {
		t.order = append(t.order, stage)
	}
	t.spans[stage] = &Span{Stage: stage, Start: t.now()}
	t.logger.Infof("Timer started for %s", stage)
}

// Stop ends timing stage. Stopping a stage that was never started only logs a warning.
func (t *Tracker) Stop(stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	span, ok := t.spans[stage]
	if !ok {
		t.logger.Warnf("Attempt to stop inactive timer for %s", stage)
		return
	}

	d := nonNegative(t.now().Sub(span.Start))
	span.Duration = &d
	t.logger.Infof("Timer stopped for %s: %.2f s", stage, d.Seconds())
}

// Spans returns a snapshot of every started stage in first-start order.
// Running stages have a nil Duration.
func (t *Tracker) Spans() []Span {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Span, 0, len(t.order))
	for _, stage := range t.order {
		s := *t.spans[stage]
		if s.Duration != nil {
			d := *s.Duration
			s.Duration = &d
		}
		out = append(out, s)
	}
	return out
}

// Report renders one line per started stage. Running stages report the time
// elapsed so far.
func (t *Tracker) Report() []string {
	spans := t.Spans()
	now := t.now()

	lines := make([]string, 0, len(spans))
	for _, s := range spans {
		if s.Duration != nil {
			lines = append(lines, fmt.Sprintf("%s - %.2f s", s.Stage, s.Duration.Seconds()))
			continue
		}
		elapsed := nonNegative(now.Sub(s.Start))
		lines = append(lines, fmt.Sprintf("%s - %.2f s (running)", s.Stage, elapsed.Seconds()))
	}
	return lines
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

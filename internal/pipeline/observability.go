package pipeline

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is the leveled logging contract the pipeline emits through. The
// zero value of the pipeline installs a noop logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder observes pipeline stage executions.
type MetricsRecorder interface {
	ObserveStage(ctx context.Context, stage string, rows int, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveStage(context.Context, string, int, bool, time.Duration) {}

var expvarSeq uint64

// ExpvarMetricsRecorder publishes per-stage timing, row, and result counters
// via expvar, for deployments that prefer process-local metrics without
// external dependencies.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	rows      map[string]int64
	results   map[string]map[string]int64
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Rows        map[string]int64            `json:"rows_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder and publishes
// it under the supplied name. When name is empty, a unique one is generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("pipeline_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		rows:      make(map[string]int64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// ObserveStage accumulates one stage execution.
func (r *ExpvarMetricsRecorder) ObserveStage(_ context.Context, stage string, rows int, success bool, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[stage] += float64(duration.Milliseconds())
	r.rows[stage] += int64(rows)
	byStatus, ok := r.results[stage]
	if !ok {
		byStatus = make(map[string]int64, 2)
		r.results[stage] = byStatus
	}
	status := "success"
	if !success {
		status = "error"
	}
	byStatus[status]++
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for stage, total := range r.durations {
		durations[stage] = total
	}
	rows := make(map[string]int64, len(r.rows))
	for stage, total := range r.rows {
		rows[stage] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for stage, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[stage] = cpy
	}

	return ExpvarMetricsSnapshot{
		DurationsMS: durations,
		Rows:        rows,
		Results:     results,
		RecordedAt:  time.Now().UTC(),
	}
}

package pipeline

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exposes pipeline stage metrics through a
// Prometheus registry: a duration histogram, a row counter, and a result
// counter, all labelled by stage.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	rows      *prometheus.CounterVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the pipeline collectors on reg.
// Passing nil uses the default registerer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "psephos",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage.",
		}, []string{"stage"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "psephos",
			Subsystem: "pipeline",
			Name:      "stage_rows_total",
			Help:      "Rows produced by each pipeline stage.",
		}, []string{"stage"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "psephos",
			Subsystem: "pipeline",
			Name:      "stage_results_total",
			Help:      "Stage completions by status.",
		}, []string{"stage", "status"}),
	}
	for _, c := range []prometheus.Collector{r.durations, r.rows, r.results} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveStage records one stage execution.
func (r *PrometheusMetricsRecorder) ObserveStage(_ context.Context, stage string, rows int, success bool, duration time.Duration) {
	r.durations.WithLabelValues(stage).Observe(duration.Seconds())
	r.rows.WithLabelValues(stage).Add(float64(rows))
	status := "success"
	if !success {
		status = "error"
	}
	r.results.WithLabelValues(stage, status).Inc()
}

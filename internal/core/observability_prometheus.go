package core

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation latency as a histogram and
// outcomes as a counter, both labelled by operation.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the store collectors on reg.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	rec := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nutritrack",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Latency of state store operations including the write-through save.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nutritrack",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "State store operations by outcome.",
		}, []string{"operation", "status"}),
	}
	for _, c := range []prometheus.Collector{rec.durations, rec.results} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register store metrics: %w", err)
		}
	}
	return rec, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, statusLabel(success)).Inc()
}

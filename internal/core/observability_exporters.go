package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq uint64

// ExpvarMetricsRecorder publishes per-operation latency totals and
// success/error counters through expvar.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
}

// ExpvarMetricsSnapshot is a copy of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder publishes a recorder under name, or under a generated
// unique name when name is empty. expvar names are process-global.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		name = fmt.Sprintf("nutritrack_store_metrics_%d", atomic.AddUint64(&expvarSeq, 1))
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any { return rec.Snapshot() }))
	return rec
}

// Name returns the expvar export name.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Snapshot returns a copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make(map[string]map[string]int64, len(r.results))
	for op, counts := range r.results {
		results[op] = maps.Clone(counts)
	}
	return ExpvarMetricsSnapshot{
		DurationsMS: maps.Clone(r.durations),
		Results:     results,
		RecordedAt:  time.Now().UTC(),
	}
}

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[operation] += float64(duration) / float64(time.Millisecond)
	counts, ok := r.results[operation]
	if !ok {
		counts = make(map[string]int64, 2)
		r.results[operation] = counts
	}
	counts[statusLabel(success)]++
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// JSONTraceEntry is one finished span.
type JSONTraceEntry struct {
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceTracer writes finished spans as JSON lines and keeps them for inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	entries []JSONTraceEntry
	enc     *json.Encoder
}

// NewJSONTracer returns a tracer writing to w. A nil writer only retains spans.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	t := &JSONTraceTracer{}
	if w != nil {
		t.enc = json.NewEncoder(w)
	}
	return t
}

// Entries returns a copy of the recorded spans.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]JSONTraceEntry(nil), t.entries...)
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{tracer: t, operation: operation, started: time.Now().UTC()}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
}

func (s *jsonTraceSpan) End(err error) {
	ended := time.Now().UTC()
	entry := JSONTraceEntry{
		Operation:  s.operation,
		Status:     statusLabel(err == nil),
		DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
		StartedAt:  s.started,
		EndedAt:    ended,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.entries = append(s.tracer.entries, entry)
	if s.tracer.enc != nil {
		_ = s.tracer.enc.Encode(entry)
	}
}

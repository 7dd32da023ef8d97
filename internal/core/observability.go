package core

import (
	"context"
	"time"
)

// Logger is the structured logger the store writes to. Arguments are key/value
// pairs; *slog.Logger satisfies it.
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

// MetricsRecorder observes the outcome and latency of store operations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Tracer starts a span per store operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is finished with the operation error, nil on success.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// Clock supplies event timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock. A nil ClockFunc reports the system time.
// Times are always returned in UTC.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// Option customises a Store.
type Option func(*options)

type options struct {
	logger  Logger
	clock   Clock
	metrics MetricsRecorder
	tracer  Tracer
}

func defaultOptions() options {
	return options{
		logger:  noopLogger{},
		clock:   ClockFunc(nil),
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
}

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the clock used for event timestamps.
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithMetricsRecorder sets the metrics recorder.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

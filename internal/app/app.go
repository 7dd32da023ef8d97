// Package app wires configuration, the durable slot, the state store and the
// report exporter into one value a host embeds.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"nutritrack/internal/blob"
	"nutritrack/internal/config"
	"nutritrack/internal/core"
	"nutritrack/internal/export"
	"nutritrack/internal/snapshot"
)

// App is a running NutriTrack store with its collaborators.
type App struct {
	Store    *core.Store
	Exporter *export.Exporter
	Logger   *slog.Logger
	// Metrics is nil when metrics are disabled.
	Metrics core.MetricsRecorder
	// Registry holds the store collectors when Prometheus metrics are enabled.
	Registry *prometheus.Registry

	closers []func() error
}

// Option customises New.
type Option func(*settings)

type settings struct {
	logOutput io.Writer
	registry  *prometheus.Registry
	storeOpts []core.Option
}

// WithLogOutput sends the JSON log to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.logOutput = w
		}
	}
}

// WithPrometheusRegistry registers store collectors on reg instead of a fresh
// registry.
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(s *settings) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithStoreOptions appends options applied to the store after the defaults
// derived from cfg.
func WithStoreOptions(opts ...core.Option) Option {
	return func(s *settings) { s.storeOpts = append(s.storeOpts, opts...) }
}

// New opens the configured slot, loads the snapshot and prepares the exporter.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	s := settings{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&s)
	}
	logger := slog.New(slog.NewJSONHandler(s.logOutput, &slog.HandlerOptions{Level: cfg.LogLevel}))
	a := &App{Logger: logger}

	storeOpts := []core.Option{core.WithLogger(logger)}
	switch cfg.Metrics {
	case config.MetricsExpvar:
		a.Metrics = core.NewExpvarMetricsRecorder("")
	case config.MetricsPrometheus:
		reg := s.registry
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		rec, err := core.NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return nil, err
		}
		a.Metrics, a.Registry = rec, reg
	}
	if a.Metrics != nil {
		storeOpts = append(storeOpts, core.WithMetricsRecorder(a.Metrics))
	}

	slot, closeSlot, err := core.OpenSlot(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s slot: %w", cfg.Storage.Driver, err)
	}
	a.closers = append(a.closers, closeSlot)

	exports, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open %s blob store: %w", cfg.Blob.Driver, err)
	}
	a.Exporter = export.NewExporter(exports)

	a.Store = core.Open(ctx, snapshot.NewAdapter(slot, cfg.StateKey), append(storeOpts, s.storeOpts...)...)
	logger.Info("nutritrack ready",
		"storage", string(cfg.Storage.Driver),
		"sealed", cfg.Storage.Passphrase != "",
		"blob", string(exports.Driver()),
		"metrics", string(cfg.Metrics),
	)
	return a, nil
}

// ExportReports publishes the CSV export of one patient's reports.
func (a *App) ExportReports(ctx context.Context, patientID int) (export.Result, error) {
	res, err := a.Exporter.Export(ctx, a.Store.Snapshot(), patientID)
	if err != nil {
		a.Logger.Warn("report export failed", "patient_id", patientID, "error", err)
		return res, err
	}
	a.Logger.Info("reports exported", "patient_id", patientID, "key", res.Info.Key, "rows", res.Rows)
	return res, nil
}

// LatestExport returns the stored export of one patient, if any.
func (a *App) LatestExport(ctx context.Context, patientID int) (export.Result, error) {
	return a.Exporter.Lookup(ctx, a.Store.Snapshot(), patientID)
}

// Exports lists every stored report export.
func (a *App) Exports(ctx context.Context) ([]blob.Info, error) {
	return a.Exporter.List(ctx)
}

// Close releases the slot backend.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

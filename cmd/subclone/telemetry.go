package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/katalvlaran/subclone/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Observability files written next to the artifacts.
const (
	fileTraces  = "traces.json"
	fileMetrics = "metrics.prom"
)

// newLogger builds the slog logger described by cfg.
func newLogger(w io.Writer, cfg config.ObservabilityConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// initTracing installs a tracer provider exporting spans to dir/traces.json.
// The returned shutdown flushes the spans and closes the file.
func initTracing(dir, runID string) (func(context.Context) error, error) {
	f, err := os.Create(filepath.Join(dir, fileTraces))
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "subclone"),
			attribute.String("subclone.run_id", runID),
		)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), f.Close())
	}, nil
}

// writeMetrics dumps the registry in the Prometheus text format.
func writeMetrics(dir string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(filepath.Join(dir, fileMetrics), g)
}

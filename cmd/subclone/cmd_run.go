package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/katalvlaran/subclone/genome"
	"github.com/katalvlaran/subclone/internal/tables"
	"github.com/katalvlaran/subclone/pipeline"
	"github.com/katalvlaran/subclone/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// runPipeline is the handler of "subclone run".
//
// Artifacts of the stages that completed are written even when the run
// fails, so a run without a viable model still leaves its QC report, CCF
// table and fit grid behind.
func runPipeline(cmd *cobra.Command, f *cliFlags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), cfg.Observability)
	runID := uuid.NewString()
	log = log.With("run_id", runID)

	muts, err := tables.ReadMutationsFile(f.mutations)
	if err != nil {
		return fmt.Errorf("read mutations: %w", err)
	}
	segs, err := tables.ReadSegmentsFile(f.segments)
	if err != nil {
		return fmt.Errorf("read segments: %w", err)
	}
	log.Info("inputs loaded", "mutations", len(muts), "segments", len(segs), "mode", cfg.Mode, "workers", cfg.EffectiveWorkers())

	if err := os.MkdirAll(f.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []pipeline.Option{pipeline.WithLogger(log), pipeline.WithRunID(runID)}
	var reg *prometheus.Registry
	if cfg.Observability.MetricsEnabled {
		reg = prometheus.NewRegistry()
		opts = append(opts, pipeline.WithMetrics(pipeline.NewMetrics(reg)))
	}
	if cfg.Observability.TracingEnabled {
		shutdown, err := initTracing(f.outDir, runID)
		if err != nil {
			return err
		}
		defer func() {
			if serr := shutdown(context.Background()); serr != nil {
				log.Warn("trace shutdown", "error", serr)
			}
		}()
	}

	spec := genome.SampleSpec{Purity: f.purity, SampleID: f.sample, ReferenceGenome: f.reference}
	res, runErr := pipeline.Run(ctx, cfg, spec, muts, segs, opts...)

	artifacts := res.Artifacts()
	if werr := report.WriteDir(f.outDir, artifacts); werr != nil {
		return errors.Join(runErr, werr)
	}
	if reg != nil {
		if werr := writeMetrics(f.outDir, reg); werr != nil {
			log.Warn("write metrics", "error", werr)
		}
	}
	if err := report.WriteSummaries(cmd.OutOrStdout(), artifacts); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr != nil {
		return runErr
	}
	log.Info("artifacts written", "dir", f.outDir, "files", len(artifacts))
	return nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/katalvlaran/subclone/ccf"
	"github.com/katalvlaran/subclone/clonetree"
	"github.com/katalvlaran/subclone/config"
	"github.com/katalvlaran/subclone/genome"
	"github.com/katalvlaran/subclone/mixture"
	"github.com/katalvlaran/subclone/peaks"
	"github.com/katalvlaran/subclone/selection"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("subclone.pipeline")

// Option customises Run.
type Option func(*runOptions)

type runOptions struct {
	logger  *slog.Logger
	metrics *Metrics
	runID   string
}

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *runOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records into m; by default metrics are not recorded.
func WithMetrics(m *Metrics) Option {
	return func(o *runOptions) { o.metrics = m }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(o *runOptions) {
		if id != "" {
			o.runID = id
		}
	}
}

// Result gathers the output of every stage. Fields of stages that did not
// run are nil.
type Result struct {
	RunID  string
	Config config.Config

	Annotation *genome.Annotation
	QC         *peaks.QCReport
	CCF        *ccf.Result

	// Features are the fitted values with their rows in CCF.Estimates.
	Features *mixture.FeatureSet

	Grid      *mixture.FitGrid
	Selection *selection.Selection
	Trees     *clonetree.TreeSet

	Duration time.Duration
}

// Run executes the full pipeline.
//
// Errors:
//   - config.ErrInvalidConfig, genome.ErrInvalidPurity: before any stage.
//   - mixture.ErrInvalidData: no usable feature values.
//   - selection.ErrNoViableModel: returned together with the partial
//     Result (annotation, QC, CCF and grid are set).
//   - ctx.Err() when cancelled during the grid.
func Run(ctx context.Context, cfg config.Config, spec genome.SampleSpec,
	muts []genome.Mutation, segs []genome.Segment, opts ...Option) (*Result, error) {
	o := runOptions{logger: slog.Default(), runID: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With("run_id", o.runID)
	start := time.Now()

	ctx, span := tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(
		attribute.String("subclone.run_id", o.runID),
		attribute.String("subclone.sample", spec.SampleID),
		attribute.Int("subclone.mutations", len(muts)),
		attribute.Int("subclone.segments", len(segs)),
	))
	defer span.End()

	res, err := run(ctx, cfg, spec, muts, segs, o, log)
	res.Duration = time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "run failed")
		o.count("error")
		log.Error("run failed", "error", err, "duration", res.Duration)
		return res, err
	}
	span.SetStatus(codes.Ok, "")
	o.count("ok")
	log.Info("run finished", "duration", res.Duration,
		"k", res.Selection.Best.Config.K, "clusters", len(res.Selection.Best.Clusters()),
		"trees", len(res.Trees.Trees))
	return res, nil
}

func (o runOptions) count(result string) {
	if o.metrics != nil {
		o.metrics.runs.WithLabelValues(result).Inc()
	}
}

// run holds the stage sequence; it always returns a non-nil Result.
func run(ctx context.Context, cfg config.Config, spec genome.SampleSpec,
	muts []genome.Mutation, segs []genome.Segment, o runOptions, log *slog.Logger) (*Result, error) {
	res := &Result{RunID: o.runID, Config: cfg}
	if err := cfg.Validate(); err != nil {
		return res, err
	}
	sample, err := genome.NewSampleContext(spec)
	if err != nil {
		return res, err
	}

	// annotate
	_, span := tracer.Start(ctx, "pipeline.annotate")
	res.Annotation = genome.Annotate(sample, muts, segs, cfg.Genome)
	span.SetAttributes(
		attribute.Int("subclone.annotated", len(res.Annotation.Mutations)),
		attribute.Int("subclone.excluded", res.Annotation.Excluded),
	)
	span.End()
	if o.metrics != nil {
		o.metrics.excluded.Add(float64(res.Annotation.Excluded))
	}
	log.Info("mutations annotated",
		"annotated", len(res.Annotation.Mutations), "excluded", res.Annotation.Excluded,
		"conflicts", res.Annotation.Conflicts, "segment_overlaps", res.Annotation.SegmentOverlaps,
		"invalid", res.Annotation.Invalid)

	// peak QC (advisory)
	_, span = tracer.Start(ctx, "pipeline.qc")
	res.QC, err = peaks.Detect(res.Annotation, cfg.Peaks)
	if err != nil {
		endSpan(span, err)
		return res, err
	}
	span.SetAttributes(attribute.Bool("subclone.qc_pass", res.QC.Pass), attribute.Float64("subclone.qc_score", res.QC.Score))
	span.End()
	if o.metrics != nil && res.QC.Scored {
		o.metrics.qcScore.Set(res.QC.Score)
	}
	for _, w := range res.QC.Warnings {
		log.Warn("qc", "warning", w)
	}
	if res.QC.Pass {
		log.Info("peak QC passed", "score", res.QC.Score)
	} else {
		log.Warn("peak QC failed", "score", res.QC.Score, "scored", res.QC.Scored, "threshold", res.QC.Threshold)
	}

	// CCF
	_, span = tracer.Start(ctx, "pipeline.ccf")
	res.CCF, err = ccf.Estimate(res.Annotation, cfg.CCF)
	if err != nil {
		endSpan(span, err)
		return res, err
	}
	span.End()
	log.Info("ccf estimated", "estimates", len(res.CCF.Estimates),
		"skipped", res.CCF.Skipped, "low_confidence", res.CCF.LowConfidence)

	res.Features, err = mixture.Features(res.CCF, cfg.Mixture)
	if err != nil {
		return res, err
	}
	if res.Features.Dropped > 0 {
		log.Warn("zero feature values dropped", "dropped", res.Features.Dropped, "feature", cfg.Mixture.Feature)
	}

	// grid
	gctx, span := tracer.Start(ctx, "pipeline.grid")
	res.Grid, err = fitGrid(gctx, res.Features.Values, cfg, o, log)
	if err != nil {
		endSpan(span, err)
		return res, err
	}
	span.SetAttributes(attribute.Int("subclone.fits", len(res.Grid.Fits)), attribute.Int("subclone.failures", len(res.Grid.Failures)))
	span.End()

	// selection
	_, span = tracer.Start(ctx, "pipeline.select")
	res.Selection, err = selection.Select(res.Grid, cfg.Selection)
	if err != nil {
		endSpan(span, err)
		return res, err
	}
	best := res.Selection.Best
	span.SetAttributes(attribute.Int("subclone.k", best.Config.K), attribute.Float64("subclone.score", best.Score))
	span.End()
	if err = res.CCF.AssignClusters(res.Features.Rows, best.Labels()); err != nil {
		return res, err
	}
	log.Info("model selected", "k", best.Config.K, "seed", best.Config.Seed,
		"clusters", len(best.Clusters()), "score", best.Score, "tail_weight", best.Tail().Weight)

	// clone trees
	_, span = tracer.Start(ctx, "pipeline.trees")
	res.Trees, err = clonetree.Build(best, cfg.CloneTree)
	if err != nil {
		endSpan(span, err)
		return res, err
	}
	span.SetAttributes(attribute.Int("subclone.trees", len(res.Trees.Trees)), attribute.Bool("subclone.truncated", res.Trees.Truncated))
	span.End()
	if len(res.Trees.Trees) == 0 {
		log.Warn("no clone tree satisfies the sum rule", "clusters", len(best.Clusters()))
	}
	return res, nil
}

// fitGrid fits every task of the configured grid on a bounded pool.
func fitGrid(ctx context.Context, x []float64, cfg config.Config, o runOptions, log *slog.Logger) (*mixture.FitGrid, error) {
	tasks := cfg.FitGrid().Tasks()
	fits := make([]*mixture.FitResult, len(tasks))
	errs := make([]error, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.EffectiveWorkers())
	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			fits[i], errs[i] = mixture.Fit(x, task.K, task.Seed, cfg.Mixture)
			o.observeFit(fits[i], errs[i], time.Since(start))
			if errs[i] != nil {
				log.Warn("fit failed", "k", task.K, "seed", task.Seed, "error", errs[i])
			} else {
				log.Debug("fit done", "k", task.K, "seed", task.Seed,
					"iterations", fits[i].Iterations, "converged", fits[i].Converged, "nll", -fits[i].LogLik)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pipeline: grid: %w", err)
	}
	return mixture.NewFitGrid(tasks, fits, errs), nil
}

func (o runOptions) observeFit(f *mixture.FitResult, err error, d time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.fitSeconds.Observe(d.Seconds())
	switch {
	case err != nil:
		o.metrics.fits.WithLabelValues(outcomeFailed).Inc()
	case f.Converged:
		o.metrics.fits.WithLabelValues(outcomeConverged).Inc()
		o.metrics.iterations.Observe(float64(f.Iterations))
	default:
		o.metrics.fits.WithLabelValues(outcomeUnconverged).Inc()
		o.metrics.iterations.Observe(float64(f.Iterations))
	}
}

func endSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

// IsNoViableModel reports whether err means that no fit converged.
func IsNoViableModel(err error) bool {
	return errors.Is(err, selection.ErrNoViableModel)
}

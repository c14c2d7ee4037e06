package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fit outcomes used as the "outcome" label of subclone_fits_total.
const (
	outcomeConverged   = "converged"
	outcomeUnconverged = "unconverged"
	outcomeFailed      = "failed"
)

// Metrics holds the Prometheus collectors of the pipeline.
type Metrics struct {
	runs       *prometheus.CounterVec
	fits       *prometheus.CounterVec
	iterations prometheus.Histogram
	fitSeconds prometheus.Histogram
	excluded   prometheus.Counter
	qcScore    prometheus.Gauge
}

// NewMetrics registers the pipeline collectors on reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subclone_runs_total",
			Help: "Pipeline runs by result",
		}, []string{"result"}),
		fits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "subclone_fits_total",
			Help: "Mixture fits by outcome",
		}, []string{"outcome"}),
		iterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "subclone_em_iterations",
			Help:    "EM iterations per fit",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		}),
		fitSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "subclone_fit_duration_seconds",
			Help:    "Wall time of one mixture fit",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		excluded: f.NewCounter(prometheus.CounterOpts{
			Name: "subclone_mutations_excluded_total",
			Help: "Mutations without a containing segment",
		}),
		qcScore: f.NewGauge(prometheus.GaugeOpts{
			Name: "subclone_qc_score",
			Help: "Global peak QC score of the last run",
		}),
	}
}

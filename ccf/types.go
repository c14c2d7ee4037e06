package ccf

import (
	"errors"

	"github.com/katalvlaran/subclone/genome"
)

// Sentinel errors for CCF estimation.
var (
	// ErrNilAnnotation is returned when Estimate receives a nil annotation.
	ErrNilAnnotation = errors.New("ccf: nil annotation")

	// ErrBadOptions signals an inconsistent Options value.
	ErrBadOptions = errors.New("ccf: invalid options")

	// ErrLabelMismatch is returned by AssignClusters for misaligned input.
	ErrLabelMismatch = errors.New("ccf: cluster labels do not match estimates")
)

// Unassigned marks an estimate that took no part in the mixture fit.
const Unassigned = -1

// Options configures Estimate.
type Options struct {
	// EntropyThreshold flags a mutation as low-confidence when the
	// normalised posterior entropy reaches it.
	EntropyThreshold float64 `yaml:"entropy_threshold" json:"entropy_threshold" validate:"gte=0,lte=1"`
}

// DefaultOptions returns the defaults used by the pipeline.
func DefaultOptions() Options {
	return Options{EntropyThreshold: 0.8}
}

func (o Options) validate() error {
	if !(o.EntropyThreshold >= 0 && o.EntropyThreshold <= 1) {
		return ErrBadOptions
	}
	return nil
}

// MutationCCF is the CCF call for one annotated mutation.
type MutationCCF struct {
	// Index points into Annotation.Mutations.
	Index     int              `json:"index"`
	Karyotype genome.Karyotype `json:"karyotype"`
	VAF       float64          `json:"vaf"`

	// Multiplicity is the most likely number of mutated copies.
	Multiplicity int `json:"multiplicity"`

	// Posterior[m-1] is P(m | NV, DP).
	Posterior []float64 `json:"posterior"`

	CCF float64 `json:"ccf"`
	// Clamped is set when the raw CCF fell outside [0,1].
	Clamped bool `json:"clamped"`

	// Entropy is the posterior entropy normalised to [0,1].
	Entropy       float64 `json:"entropy"`
	Confidence    float64 `json:"confidence"`
	LowConfidence bool    `json:"low_confidence"`

	// Cluster is the fitted component (0 = tail) or Unassigned.
	Cluster int `json:"cluster"`
}

// Result is the output of Estimate.
type Result struct {
	SampleID string  `json:"sample"`
	Purity   float64 `json:"purity"`

	// Estimates follow the order of Annotation.Mutations, minus skipped ones.
	Estimates []MutationCCF `json:"estimates"`

	// Skipped counts mutations whose karyotype has no major copy.
	Skipped int `json:"skipped"`

	// LowConfidence counts estimates flagged as low-confidence.
	LowConfidence int `json:"low_confidence"`

	// Clamped counts estimates whose raw CCF exceeded 1.
	Clamped int `json:"clamped"`

	// annotation backs Export; it is not serialised.
	annotation *genome.Annotation
}

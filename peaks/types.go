package peaks

import (
	"errors"

	"github.com/katalvlaran/subclone/genome"
)

// Sentinel errors for peak detection.
var (
	// ErrUnsupportedKaryotype marks a karyotype with no clonal peak
	// (total copy number 0 or major copy number 0).
	ErrUnsupportedKaryotype = errors.New("peaks: unsupported karyotype")

	// ErrBadMultiplicity is returned when m ∉ [1, major].
	ErrBadMultiplicity = errors.New("peaks: multiplicity out of range")

	// ErrBadPurity is returned when purity ∉ (0,1].
	ErrBadPurity = errors.New("peaks: purity out of range")

	// ErrBadOptions signals an inconsistent Options value.
	ErrBadOptions = errors.New("peaks: invalid options")

	// ErrNilAnnotation is returned when Detect receives a nil annotation.
	ErrNilAnnotation = errors.New("peaks: nil annotation")
)

// Options configures Detect. The zero value is invalid; start from
// DefaultOptions.
type Options struct {
	// Bandwidth of the Gaussian kernel. Zero selects Silverman's rule.
	Bandwidth float64 `yaml:"bandwidth" json:"bandwidth" validate:"gte=0,lt=1"`

	// GridPoints is the number of evaluation points over [0,1].
	GridPoints int `yaml:"grid_points" json:"grid_points" validate:"gte=16"`

	// MinMutations is the minimum number of mutations for a karyotype to be
	// analysed.
	MinMutations int `yaml:"min_mutations" json:"min_mutations" validate:"gte=2"`

	// MinPeakHeight discards local maxima below this fraction of the
	// karyotype's highest density value.
	MinPeakHeight float64 `yaml:"min_peak_height" json:"min_peak_height" validate:"gte=0,lte=1"`

	// ResidualThreshold is the largest global score that still passes QC.
	ResidualThreshold float64 `yaml:"residual_threshold" json:"residual_threshold" validate:"gt=0"`
}

// DefaultOptions returns the defaults used by the pipeline.
func DefaultOptions() Options {
	return Options{
		Bandwidth:         0,
		GridPoints:        512,
		MinMutations:      10,
		MinPeakHeight:     0.05,
		ResidualThreshold: 0.03,
	}
}

// validate checks Options without referencing data.
func (o Options) validate() error {
	if o.Bandwidth < 0 || o.Bandwidth >= 1 || o.GridPoints < 16 || o.MinMutations < 2 ||
		o.MinPeakHeight < 0 || o.MinPeakHeight > 1 || !(o.ResidualThreshold > 0) {
		return ErrBadOptions
	}
	return nil
}

// ExpectedPeak is the theoretical VAF of multiplicity M.
type ExpectedPeak struct {
	Multiplicity int     `json:"multiplicity"`
	VAF          float64 `json:"vaf"`
}

// Peak is a local maximum of the empirical density.
type Peak struct {
	VAF     float64 `json:"vaf"`
	Density float64 `json:"density"`
}

// Match pairs one empirical peak with one expected peak.
// Residual is Observed − Expected.
type Match struct {
	Multiplicity int     `json:"multiplicity"`
	Expected     float64 `json:"expected"`
	Observed     float64 `json:"observed"`
	Residual     float64 `json:"residual"`
}

// KaryotypeQC is the per-karyotype section of a QCReport.
type KaryotypeQC struct {
	Karyotype genome.Karyotype `json:"karyotype"`
	N         int              `json:"n"`
	Bandwidth float64          `json:"bandwidth"`

	Expected          []ExpectedPeak `json:"expected"`
	Peaks             []Peak         `json:"peaks"`
	Matches           []Match        `json:"matches"`
	UnmatchedExpected []ExpectedPeak `json:"unmatched_expected"`
	UnmatchedPeaks    []Peak         `json:"unmatched_peaks"`

	// Score is the mean |residual| over Matches; valid only if Scored.
	Score  float64 `json:"score"`
	Scored bool    `json:"scored"`

	// Skipped is set, with Reason, when the karyotype was not analysed.
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

// QCReport is the output of Detect.
type QCReport struct {
	SampleID string  `json:"sample"`
	Purity   float64 `json:"purity"`

	Karyotypes []KaryotypeQC `json:"karyotypes"`

	// Score is the mutation-weighted mean of karyotype scores; valid only if Scored.
	Score     float64 `json:"score"`
	Scored    bool    `json:"scored"`
	Threshold float64 `json:"threshold"`
	Pass      bool    `json:"pass"`

	// Counters carried over from annotation.
	Excluded        int `json:"excluded"`
	Conflicts       int `json:"conflicts"`
	SegmentOverlaps int `json:"segment_overlaps"`
	Invalid         int `json:"invalid"`

	Warnings []string `json:"warnings,omitempty"`
}

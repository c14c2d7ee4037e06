package genome

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for the genome package.
var (
	// ErrInvalidPurity is returned when purity lies outside (0,1] or is NaN.
	ErrInvalidPurity = errors.New("genome: purity must be in (0,1]")

	// ErrInvalidSample indicates a SampleSpec that failed field validation.
	ErrInvalidSample = errors.New("genome: invalid sample context")

	// ErrInvalidMutation indicates a Mutation that failed field validation.
	ErrInvalidMutation = errors.New("genome: invalid mutation")

	// ErrInvalidSegment indicates a Segment that failed field validation.
	ErrInvalidSegment = errors.New("genome: invalid segment")

	// ErrBadKaryotype is returned by ParseKaryotype for malformed labels.
	ErrBadKaryotype = errors.New("genome: malformed karyotype label")
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Mutation is one somatic point mutation as read from the mutation table.
type Mutation struct {
	Chromosome string `json:"chr" validate:"required"`
	Start      int64  `json:"from" validate:"gte=0"`
	End        int64  `json:"to" validate:"gtefield=Start"`
	Ref        string `json:"ref"`
	Alt        string `json:"alt"`
	DP         int    `json:"DP" validate:"gt=0"`
	NV         int    `json:"NV" validate:"gte=0,ltefield=DP"`
	Driver     bool   `json:"is_driver"`
}

// VAF returns NV/DP. It is recomputed on every call, so it always agrees
// with the read counts. A mutation with DP==0 reports 0.
func (m Mutation) VAF() float64 {
	if m.DP <= 0 {
		return 0
	}
	return float64(m.NV) / float64(m.DP)
}

// Validate checks the read-count and coordinate invariants of m.
func (m Mutation) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %s:%d: %v", ErrInvalidMutation, m.Chromosome, m.Start, err)
	}
	return nil
}

// Karyotype is an allele-specific copy-number state.
type Karyotype struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// String renders the karyotype as "major:minor".
func (k Karyotype) String() string {
	return strconv.Itoa(k.Major) + ":" + strconv.Itoa(k.Minor)
}

// Total returns major+minor.
func (k Karyotype) Total() int { return k.Major + k.Minor }

// Less orders karyotypes by (major, minor).
func (k Karyotype) Less(o Karyotype) bool {
	if k.Major != o.Major {
		return k.Major < o.Major
	}
	return k.Minor < o.Minor
}

// ParseKaryotype parses a "major:minor" label.
func ParseKaryotype(s string) (Karyotype, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Karyotype{}, fmt.Errorf("%w: %q", ErrBadKaryotype, s)
	}
	major, err := strconv.Atoi(a)
	if err != nil || major < 0 {
		return Karyotype{}, fmt.Errorf("%w: %q", ErrBadKaryotype, s)
	}
	minor, err := strconv.Atoi(b)
	if err != nil || minor < 0 {
		return Karyotype{}, fmt.Errorf("%w: %q", ErrBadKaryotype, s)
	}
	return Karyotype{Major: major, Minor: minor}, nil
}

// Segment is one allele-specific copy-number segment.
type Segment struct {
	Chromosome string `json:"chr" validate:"required"`
	Start      int64  `json:"from" validate:"gte=0"`
	End        int64  `json:"to" validate:"gtefield=Start"`
	Major      int    `json:"major" validate:"gte=0"`
	Minor      int    `json:"minor" validate:"gte=0"`
}

// Karyotype returns the segment's copy-number state with major ≥ minor.
func (s Segment) Karyotype() Karyotype {
	if s.Minor > s.Major {
		return Karyotype{Major: s.Minor, Minor: s.Major}
	}
	return Karyotype{Major: s.Major, Minor: s.Minor}
}

// Validate checks the coordinate and copy-number invariants of s.
func (s Segment) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %s:%d-%d: %v", ErrInvalidSegment, s.Chromosome, s.Start, s.End, err)
	}
	return nil
}

// Contains reports whether [from,to] lies inside the segment.
func (s Segment) Contains(from, to int64) bool {
	return s.Start <= from && to <= s.End
}

// SampleSpec carries the raw sample fields before validation.
type SampleSpec struct {
	Purity          float64 `json:"purity" yaml:"purity" validate:"gt=0,lte=1"`
	ReferenceGenome string  `json:"reference" yaml:"reference"`
	SampleID        string  `json:"sample" yaml:"sample" validate:"required"`
}

// SampleContext is the validated, immutable per-sample context.
type SampleContext struct {
	purity    float64
	reference string
	sampleID  string
}

// NewSampleContext validates spec and returns the immutable context.
// Purity outside (0,1] (or NaN) yields ErrInvalidPurity.
func NewSampleContext(spec SampleSpec) (SampleContext, error) {
	if math.IsNaN(spec.Purity) || spec.Purity <= 0 || spec.Purity > 1 {
		return SampleContext{}, fmt.Errorf("%w: got %v", ErrInvalidPurity, spec.Purity)
	}
	if err := validate.Struct(spec); err != nil {
		return SampleContext{}, fmt.Errorf("%w: %v", ErrInvalidSample, err)
	}
	return SampleContext{
		purity:    spec.Purity,
		reference: spec.ReferenceGenome,
		sampleID:  spec.SampleID,
	}, nil
}

// Purity returns the tumour purity in (0,1].
func (c SampleContext) Purity() float64 { return c.purity }

// ReferenceGenome returns the reference genome identifier.
func (c SampleContext) ReferenceGenome() string { return c.reference }

// SampleID returns the sample identifier.
func (c SampleContext) SampleID() string { return c.sampleID }

// Ploidy returns the expected number of copies at a locus of karyotype k
// in a mixture of tumour (purity p) and diploid normal cells:
// p·(major+minor) + 2·(1−p).
func (c SampleContext) Ploidy(k Karyotype) float64 {
	return c.purity*float64(k.Total()) + 2*(1-c.purity)
}

// Options configures Annotate.
type Options struct {
	// NormalizeChromosomes matches "chr1", "Chr1" and "1" as the same
	// chromosome during lookup. Stored values are left untouched.
	NormalizeChromosomes bool `yaml:"normalize_chromosomes" json:"normalize_chromosomes"`
}

// DefaultOptions returns Options with chromosome normalization enabled.
func DefaultOptions() Options {
	return Options{NormalizeChromosomes: true}
}

// AnnotatedMutation is a Mutation with its segment assignment.
type AnnotatedMutation struct {
	Mutation

	// Segment indexes Annotation.Segments (sorted order).
	Segment int `json:"segment"`

	// Karyotype is the copy-number state of the assigned segment.
	Karyotype Karyotype `json:"karyotype"`

	// Ploidy is the purity-adjusted expected copy number at the locus.
	Ploidy float64 `json:"ploidy"`
}

// Annotation is the output of Annotate.
type Annotation struct {
	Sample SampleContext

	// Segments is the deterministically sorted copy of the input segments.
	Segments []Segment

	// Mutations holds the mutations that found a segment, in input order.
	Mutations []AnnotatedMutation

	// Excluded counts mutations without a containing segment.
	Excluded int

	// Conflicts counts mutations contained in more than one segment.
	Conflicts int

	// SegmentOverlaps counts segments overlapping an earlier one on the same
	// chromosome.
	SegmentOverlaps int

	// Invalid counts mutations or segments rejected by validation.
	Invalid int
}

// KaryotypeGroup lists the indices (into Annotation.Mutations) of all
// mutations sharing one karyotype.
type KaryotypeGroup struct {
	Karyotype Karyotype
	Indices   []int
}

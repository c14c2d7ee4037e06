package mixture

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/subclone/genome"
	"github.com/katalvlaran/subclone/matrix"
)

// Sentinel errors for mixture fitting.
var (
	// ErrInvalidData is returned for empty input, non-finite values or
	// values outside (0,1].
	ErrInvalidData = errors.New("mixture: invalid data")

	// ErrBadOptions signals an inconsistent Options value or k < 1.
	ErrBadOptions = errors.New("mixture: invalid options")

	// ErrDiverged is returned when the negative log-likelihood becomes
	// non-finite. It affects one (k, seed) fit only.
	ErrDiverged = errors.New("mixture: fit diverged")

	// ErrDegenerate is returned when the data leave no room for a tail
	// (all values at 1) or hold fewer points than components.
	ErrDegenerate = errors.New("mixture: degenerate data")
)

// FitResultVersion is the layout version written into every FitResult.
const FitResultVersion = 1

// Kind tags a mixture component.
type Kind string

const (
	KindTail    Kind = "tail"
	KindCluster Kind = "cluster"
)

// Density selects the cluster family.
type Density string

const (
	DensityNormal Density = "normal"
	DensityBeta   Density = "beta"
)

// Feature selects the fitted quantity.
type Feature string

const (
	FeatureVAF Feature = "vaf"
	FeatureCCF Feature = "ccf"
)

// Component is one term of the mixture. Tail uses Shape and Scale; Cluster
// uses Mean and Variance, plus Alpha and Beta when Family is DensityBeta.
type Component struct {
	Kind   Kind    `json:"kind"`
	Weight float64 `json:"weight"`

	// Shape is the power-law exponent α of the tail.
	Shape float64 `json:"shape,omitempty"`
	// Scale is the tail's lower bound x_min.
	Scale float64 `json:"scale,omitempty"`

	Family   Density `json:"family,omitempty"`
	Mean     float64 `json:"mean,omitempty"`
	Variance float64 `json:"variance,omitempty"`
	Alpha    float64 `json:"alpha,omitempty"`
	Beta     float64 `json:"beta,omitempty"`
}

// Options configures Fit.
type Options struct {
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations" validate:"gte=1"`
	Tolerance     float64 `yaml:"tolerance" json:"tolerance" validate:"gt=0"`
	VarianceFloor float64 `yaml:"variance_floor" json:"variance_floor" validate:"gt=0"`

	// MergeSeparation merges converged clusters whose means are closer.
	// Zero disables merging.
	MergeSeparation float64 `yaml:"merge_separation" json:"merge_separation" validate:"gte=0"`

	MinTailShape float64 `yaml:"min_tail_shape" json:"min_tail_shape" validate:"gt=0"`
	MaxTailShape float64 `yaml:"max_tail_shape" json:"max_tail_shape" validate:"gtfield=MinTailShape"`

	// TailWeight is the initial mixing weight of the tail.
	TailWeight float64 `yaml:"tail_weight" json:"tail_weight" validate:"gt=0,lt=1"`

	Density Density `yaml:"density" json:"density" validate:"oneof=normal beta"`
	Feature Feature `yaml:"feature" json:"feature" validate:"oneof=vaf ccf"`

	// Karyotypes restricts the mutations fed to the fit ("1:1", "2:0", ...).
	// Empty means all.
	Karyotypes []string `yaml:"karyotypes" json:"karyotypes,omitempty" validate:"dive,karyotype"`
}

// DefaultOptions returns the defaults used by the pipeline.
func DefaultOptions() Options {
	return Options{
		MaxIterations:   500,
		Tolerance:       1e-6,
		VarianceFloor:   1e-4,
		MergeSeparation: 0.02,
		MinTailShape:    0.05,
		MaxTailShape:    10,
		TailWeight:      0.05,
		Density:         DensityNormal,
		Feature:         FeatureVAF,
	}
}

func (o Options) validate() error {
	if o.MaxIterations < 1 || !(o.Tolerance > 0) || !(o.VarianceFloor > 0) || o.MergeSeparation < 0 ||
		!(o.MinTailShape > 0) || !(o.MaxTailShape > o.MinTailShape) ||
		!(o.TailWeight > 0 && o.TailWeight < 1) {
		return ErrBadOptions
	}
	if o.Density != DensityNormal && o.Density != DensityBeta {
		return fmt.Errorf("%w: density %q", ErrBadOptions, o.Density)
	}
	if o.Feature != FeatureVAF && o.Feature != FeatureCCF {
		return fmt.Errorf("%w: feature %q", ErrBadOptions, o.Feature)
	}
	if _, err := o.karyotypes(); err != nil {
		return err
	}
	return nil
}

// karyotypes parses Options.Karyotypes.
func (o Options) karyotypes() ([]genome.Karyotype, error) {
	if len(o.Karyotypes) == 0 {
		return nil, nil
	}
	out := make([]genome.Karyotype, 0, len(o.Karyotypes))
	for _, s := range o.Karyotypes {
		k, err := genome.ParseKaryotype(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadOptions, err)
		}
		out = append(out, k)
	}
	return out, nil
}

// Config records what a FitResult was fitted with.
type Config struct {
	K       int     `json:"k"`
	Seed    int64   `json:"seed"`
	Feature Feature `json:"feature"`
	Density Density `json:"density"`
}

// FitResult is the outcome of one (k, seed) fit.
type FitResult struct {
	Version int    `json:"version"`
	Config  Config `json:"config"`

	// Components[0] is the tail; clusters follow sorted by mean.
	Components []Component `json:"components"`

	// Responsibilities has one row per point and one column per component.
	Responsibilities *matrix.Dense `json:"-"`

	// NLL is the negative log-likelihood after every E-step of the final
	// EM phase (after the last merge).
	NLL []float64 `json:"nll"`

	// Iterations counts M-steps over all phases.
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`

	NumPoints int `json:"n"`
	// Merged counts clusters removed by merging.
	Merged int `json:"merged"`

	LogLik float64 `json:"loglik"`

	// Score is filled by model selection on its own copy.
	Score  float64 `json:"score"`
	Scored bool    `json:"scored"`

	data []float64
}

// Clusters returns the non-tail components.
func (f *FitResult) Clusters() []Component {
	if len(f.Components) == 0 {
		return nil
	}
	return f.Components[1:]
}

// Tail returns the tail component.
func (f *FitResult) Tail() Component {
	if len(f.Components) == 0 {
		return Component{}
	}
	return f.Components[0]
}

// FreeParameters is 1 (tail shape) + 3 per cluster (mean, variance, weight).
func (f *FitResult) FreeParameters() int {
	return 1 + 3*len(f.Clusters())
}

// Grid is the set of (k, seed) configurations to fit.
type Grid struct {
	Ks    []int   `yaml:"ks" json:"ks"`
	Seeds []int64 `yaml:"seeds" json:"seeds"`
}

// ReducedGrid is K ∈ {1,2,3} × seeds {1,2,3}.
func ReducedGrid() Grid {
	return Grid{Ks: []int{1, 2, 3}, Seeds: []int64{1, 2, 3}}
}

// FullGrid is K ∈ 1..6 × seeds 1..10.
func FullGrid() Grid {
	g := Grid{Ks: make([]int, 6), Seeds: make([]int64, 10)}
	for i := range g.Ks {
		g.Ks[i] = i + 1
	}
	for i := range g.Seeds {
		g.Seeds[i] = int64(i + 1)
	}
	return g
}

// Task is one grid cell.
type Task struct {
	K    int   `json:"k"`
	Seed int64 `json:"seed"`
}

// Tasks enumerates the grid in K-major order.
func (g Grid) Tasks() []Task {
	out := make([]Task, 0, len(g.Ks)*len(g.Seeds))
	for _, k := range g.Ks {
		for _, s := range g.Seeds {
			out = append(out, Task{K: k, Seed: s})
		}
	}
	return out
}

// Failure records a grid cell whose fit returned an error.
type Failure struct {
	Task
	Err error `json:"-"`
}

// FitGrid holds every successful fit and every failure of one grid run,
// both in task order.
type FitGrid struct {
	Fits     []*FitResult
	Failures []Failure
}

// NewFitGrid assembles per-task outcomes. fits[i] and errs[i] belong to
// tasks[i]; exactly one of them is expected to be set.
func NewFitGrid(tasks []Task, fits []*FitResult, errs []error) *FitGrid {
	g := &FitGrid{}
	for i, t := range tasks {
		switch {
		case i < len(errs) && errs[i] != nil:
			g.Failures = append(g.Failures, Failure{Task: t, Err: errs[i]})
		case i < len(fits) && fits[i] != nil:
			g.Fits = append(g.Fits, fits[i])
		}
	}
	return g
}

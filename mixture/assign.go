package mixture

import (
	"fmt"
	"math"

	"github.com/katalvlaran/subclone/ccf"
	"github.com/katalvlaran/subclone/matrix"
)

// Assign computes the responsibility matrix of x under fixed components.
// Rows follow x, columns follow components.
//
// Errors:
//   - ErrBadOptions if components is empty or its weights do not sum to 1.
//   - ErrInvalidData for bad values or a point outside every support.
//
// Complexity: O(n·len(components)).
func Assign(components []Component, x []float64) (*matrix.Dense, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("%w: no components", ErrBadOptions)
	}
	var s float64
	for _, c := range components {
		if c.Weight < 0 || math.IsNaN(c.Weight) {
			return nil, fmt.Errorf("%w: weight %v", ErrBadOptions, c.Weight)
		}
		s += c.Weight
	}
	if math.Abs(s-1) > 1e-6 {
		return nil, fmt.Errorf("%w: weights sum to %v", ErrBadOptions, s)
	}
	if err := checkData(x); err != nil {
		return nil, err
	}
	R, _, err := assign(components, x)
	return R, err
}

// assign allocates R and runs one E-step.
func assign(components []Component, x []float64) (*matrix.Dense, float64, error) {
	R, err := matrix.NewDense(len(x), len(components))
	if err != nil {
		return nil, 0, err
	}
	ll, err := estep(components, x, R)
	if err != nil {
		return nil, 0, err
	}
	return R, ll, nil
}

// Reassign recomputes responsibilities of the fitted data under the stored
// components.
func (f *FitResult) Reassign() (*matrix.Dense, error) {
	return Assign(f.Components, f.data)
}

// Labels returns the most responsible component of every point
// (0 = tail, first index wins on ties).
func (f *FitResult) Labels() []int {
	if f.Responsibilities == nil {
		return nil
	}
	out := make([]int, f.Responsibilities.Rows())
	for i := range out {
		row, err := f.Responsibilities.RowView(i)
		if err != nil {
			return nil
		}
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out
}

// FeatureSet is the fit input extracted from CCF estimates.
type FeatureSet struct {
	// Values are the fitted feature values.
	Values []float64
	// Rows[i] is the position in ccf.Result.Estimates of Values[i].
	Rows []int
	// Dropped counts selected estimates removed for a zero value.
	Dropped int
}

// Features extracts the values to fit from CCF estimates according to
// opts.Feature and opts.Karyotypes. Zero values (no alternate reads) are
// dropped and counted; Rows keeps the link back to the estimates.
func Features(res *ccf.Result, opts Options) (*FeatureSet, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: nil estimates", ErrInvalidData)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ks, _ := opts.karyotypes()

	var raw []float64
	if opts.Feature == FeatureCCF {
		raw = res.CCFs(ks)
	} else {
		raw = res.VAFs(ks)
	}
	rows := res.Rows(ks)
	fs := &FeatureSet{Values: make([]float64, 0, len(raw)), Rows: make([]int, 0, len(raw))}
	for i, v := range raw {
		if v > 0 {
			fs.Values = append(fs.Values, v)
			fs.Rows = append(fs.Rows, rows[i])
		} else {
			fs.Dropped++
		}
	}
	if len(fs.Values) == 0 {
		return fs, fmt.Errorf("%w: no positive %s values", ErrInvalidData, opts.Feature)
	}
	return fs, nil
}

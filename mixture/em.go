package mixture

import (
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/subclone/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// tailBoundGap keeps x_min strictly below 1 so the tail has support.
	tailBoundGap = 1e-9

	// minMass is the responsibility mass below which a cluster keeps its
	// previous parameters instead of dividing by ~0.
	minMass = 1e-10

	// initShape is the starting tail exponent before clamping to the bounds.
	initShape = 1.0
)

// Fit runs EM for one (k, seed) configuration over x.
//
// Implementation:
//   - Stage 1: validate options and data; x_min = min(x).
//   - Stage 2: seeded initialisation (jittered empirical quantiles).
//   - Stage 3: E/M iterations until the NLL decrease drops below Tolerance
//     or MaxIterations is reached.
//   - Stage 4: on convergence, merge clusters closer than MergeSeparation
//     and rerun Stage 3 from the merged parameters; repeat until stable.
//   - Stage 5: sort clusters by mean and recompute responsibilities so that
//     they match the stored components column for column.
//
// Errors:
//   - ErrBadOptions for invalid options or k < 1.
//   - ErrInvalidData for empty, non-finite or out-of-(0,1] values.
//   - ErrDegenerate when len(x) ≤ k or min(x) leaves the tail no support.
//   - ErrDiverged when the NLL becomes non-finite.
//
// Complexity: O(iterations·n·(k+1)).
func Fit(x []float64, k int, seed int64, opts Options) (*FitResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrBadOptions, k)
	}
	if err := checkData(x); err != nil {
		return nil, err
	}
	if len(x) <= k {
		return nil, fmt.Errorf("%w: %d points for %d clusters", ErrDegenerate, len(x), k)
	}
	xm := slices.Min(x)
	if xm >= 1-tailBoundGap {
		return nil, fmt.Errorf("%w: min value %v leaves no tail support", ErrDegenerate, xm)
	}

	data := slices.Clone(x)
	res := &FitResult{
		Version:   FitResultVersion,
		Config:    Config{K: k, Seed: seed, Feature: opts.Feature, Density: opts.Density},
		NumPoints: len(data),
		data:      data,
	}

	comps := initialise(data, k, seed, xm, opts)
	var (
		traj      []float64
		iters     int
		converged bool
		merged    int
		err       error
	)
	for {
		traj, iters, converged, err = runEM(data, comps, opts)
		res.Iterations += iters
		if err != nil {
			return nil, fmt.Errorf("mixture: k=%d seed=%d: %w", k, seed, err)
		}
		sortClusters(comps)
		if !converged {
			break
		}
		comps, merged = mergeClusters(comps, opts.MergeSeparation, opts.VarianceFloor)
		if merged == 0 {
			break
		}
		res.Merged += merged
	}

	R, ll, err := assign(comps, data)
	if err != nil {
		return nil, fmt.Errorf("mixture: k=%d seed=%d: %w", k, seed, err)
	}
	res.Components = comps
	res.Responsibilities = R
	res.NLL = traj
	res.Converged = converged
	res.LogLik = ll
	return res, nil
}

// checkData rejects empty input and values outside (0,1].
func checkData(x []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("%w: no values", ErrInvalidData)
	}
	for i, v := range x {
		if math.IsNaN(v) || v <= 0 || v > 1 {
			return fmt.Errorf("%w: value %d = %v outside (0,1]", ErrInvalidData, i, v)
		}
	}
	return nil
}

// initialise places k clusters at jittered empirical quantiles
// (j−0.5)/k ± 0.25/k with a shared variance max(var(x)/k², floor); the tail
// starts with TailWeight and the clusters share the rest equally.
func initialise(x []float64, k int, seed int64, xm float64, opts Options) []Component {
	rng := initRNG(seed, k)
	sorted := slices.Clone(x)
	slices.Sort(sorted)

	fk := float64(k)
	variance := stat.Variance(sorted, nil) / (fk * fk)
	if !(variance > opts.VarianceFloor) {
		variance = opts.VarianceFloor
	}

	comps := make([]Component, k+1)
	comps[0] = Component{
		Kind:   KindTail,
		Weight: opts.TailWeight,
		Shape:  math.Min(math.Max(initShape, opts.MinTailShape), opts.MaxTailShape),
		Scale:  xm,
	}
	w := (1 - opts.TailWeight) / fk
	var (
		j int
		q float64
	)
	for j = 1; j <= k; j++ {
		q = (float64(j)-0.5)/fk + (rng.Float64()-0.5)*0.5/fk
		q = math.Min(math.Max(q, 0), 1)
		c := Component{
			Kind:     KindCluster,
			Weight:   w,
			Family:   opts.Density,
			Mean:     stat.Quantile(q, stat.Empirical, sorted, nil),
			Variance: variance,
		}
		if c.Family == DensityBeta {
			setBetaShapes(&c)
		}
		comps[j] = c
	}
	sortClusters(comps)
	return comps
}

// setBetaShapes fills Alpha and Beta from Mean and Variance, shrinking the
// variance below mean·(1−mean) when needed.
func setBetaShapes(c *Component) {
	c.Mean = clampUnit(c.Mean)
	if limit := c.Mean * (1 - c.Mean); !(c.Variance < limit) {
		c.Variance = 0.5 * limit
	}
	c.Alpha, c.Beta, _ = betaShapes(c.Mean, c.Variance)
}

// runEM iterates E and M steps on comps in place. It returns the NLL after
// every E-step, the number of M-steps and whether Tolerance was met.
func runEM(x []float64, comps []Component, opts Options) ([]float64, int, bool, error) {
	R, err := matrix.NewDense(len(x), len(comps))
	if err != nil {
		return nil, 0, false, err
	}
	ll, err := estep(comps, x, R)
	if err != nil {
		return nil, 0, false, err
	}
	traj := []float64{-ll}

	col := make([]float64, len(x))
	var it int
	for it = 1; it <= opts.MaxIterations; it++ {
		if err = mstep(comps, x, R, col, opts); err != nil {
			return traj, it, false, err
		}
		if ll, err = estep(comps, x, R); err != nil {
			return traj, it, false, err
		}
		traj = append(traj, -ll)
		if traj[len(traj)-2]-traj[len(traj)-1] < opts.Tolerance {
			return traj, it, true, nil
		}
	}
	return traj, opts.MaxIterations, false, nil
}

// estep fills R with responsibilities in log space and returns the
// log-likelihood Σ_i log Σ_j π_j·f_j(x_i).
func estep(comps []Component, x []float64, R *matrix.Dense) (float64, error) {
	logw := make([]float64, len(comps))
	for j, c := range comps {
		logw[j] = math.Log(c.Weight)
	}
	l := make([]float64, len(comps))

	var (
		ll, z float64
		j     int
	)
	for i, v := range x {
		row, err := R.RowView(i)
		if err != nil {
			return 0, err
		}
		for j = range comps {
			l[j] = logw[j] + comps[j].logDensity(v)
			if math.IsNaN(l[j]) {
				return 0, fmt.Errorf("%w: NaN density at point %d", ErrDiverged, i)
			}
		}
		z = floats.LogSumExp(l)
		switch {
		case math.IsInf(z, -1):
			return 0, fmt.Errorf("%w: point %d (%v) outside every component's support", ErrInvalidData, i, v)
		case math.IsNaN(z) || math.IsInf(z, 1):
			return 0, fmt.Errorf("%w: non-finite likelihood at point %d", ErrDiverged, i)
		}
		for j = range l {
			row[j] = math.Exp(l[j] - z)
		}
		ll += z
	}
	// rows sum to 1 up to rounding; renormalise so the M-step sees exact mass
	if _, err := matrix.NormalizeRowsL1(R); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDiverged, err)
	}
	return ll, nil
}

// mstep re-estimates weights and component parameters from R. col is
// scratch space of len(x).
func mstep(comps []Component, x []float64, R *matrix.Dense, col []float64, opts Options) error {
	mass, err := matrix.ColSums(R)
	if err != nil {
		return err
	}
	n := float64(len(x))
	var i, j int
	for j = range comps {
		comps[j].Weight = mass[j] / n
		for i = range x {
			col[i], _ = R.At(i, j)
		}
		switch comps[j].Kind {
		case KindTail:
			comps[j].Shape = fitTailShape(x, col, comps[j].Scale, opts.MinTailShape, opts.MaxTailShape, comps[j].Shape)
		case KindCluster:
			if !(mass[j] > minMass) {
				continue
			}
			if comps[j].Family == DensityBeta {
				updateBeta(&comps[j], x, col, mass[j], opts.VarianceFloor)
				continue
			}
			mean, variance := weightedMoments(x, col, mass[j], false)
			comps[j].Mean = mean
			comps[j].Variance = math.Max(variance, opts.VarianceFloor)
		}
	}
	return nil
}

// weightedMoments returns the responsibility-weighted mean and variance.
func weightedMoments(x, r []float64, mass float64, clamp bool) (float64, float64) {
	var mean, variance, v, d float64
	for i := range x {
		v = x[i]
		if clamp {
			v = clampUnit(v)
		}
		mean += r[i] * v
	}
	mean /= mass
	for i := range x {
		v = x[i]
		if clamp {
			v = clampUnit(v)
		}
		d = v - mean
		variance += r[i] * d * d
	}
	return mean, variance / mass
}

// updateBeta moves a Beta cluster to its weighted method-of-moments
// estimate if that does not lower the cluster's weighted log-likelihood.
func updateBeta(c *Component, x, r []float64, mass, floor float64) {
	mean, variance := weightedMoments(x, r, mass, true)
	cand := *c
	cand.Mean, cand.Variance = mean, math.Max(variance, floor)
	a, b, ok := betaShapes(cand.Mean, cand.Variance)
	if !ok {
		return
	}
	cand.Alpha, cand.Beta = a, b
	if weightedLogLik(cand, x, r) >= weightedLogLik(*c, x, r) {
		*c = cand
	}
}

// weightedLogLik is Σ_i r_i·log f(x_i) for one component.
func weightedLogLik(c Component, x, r []float64) float64 {
	var s float64
	for i, v := range x {
		if r[i] > 0 {
			s += r[i] * c.logDensity(v)
		}
	}
	return s
}

// sortClusters orders comps[1:] by mean; the tail stays at index 0.
func sortClusters(comps []Component) {
	if len(comps) < 3 {
		return
	}
	slices.SortStableFunc(comps[1:], func(a, b Component) int {
		switch {
		case a.Mean < b.Mean:
			return -1
		case a.Mean > b.Mean:
			return 1
		default:
			return 0
		}
	})
}

// mergeClusters pools neighbouring clusters (comps sorted) whose means
// differ by less than sep. It returns the reduced slice and the number of
// clusters removed.
func mergeClusters(comps []Component, sep, floor float64) ([]Component, int) {
	if sep <= 0 || len(comps) < 3 {
		return comps, 0
	}
	out := make([]Component, 1, len(comps))
	out[0] = comps[0]
	removed := 0
	for _, c := range comps[1:] {
		last := &out[len(out)-1]
		if last.Kind == KindCluster && c.Mean-last.Mean < sep {
			*last = pool(*last, c, floor)
			removed++
			continue
		}
		out = append(out, c)
	}
	return out, removed
}

// pool merges two clusters: weights add, first and second moments are
// weight-averaged.
func pool(a, b Component, floor float64) Component {
	w := a.Weight + b.Weight
	wa, wb := 0.5, 0.5
	if w > 0 {
		wa, wb = a.Weight/w, b.Weight/w
	}
	mean := wa*a.Mean + wb*b.Mean
	second := wa*(a.Variance+a.Mean*a.Mean) + wb*(b.Variance+b.Mean*b.Mean)
	out := Component{
		Kind:     KindCluster,
		Weight:   w,
		Family:   a.Family,
		Mean:     mean,
		Variance: math.Max(second-mean*mean, floor),
	}
	if out.Family == DensityBeta {
		setBetaShapes(&out)
	}
	return out
}

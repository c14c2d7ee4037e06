package mixture

import "math"

const (
	bisectMaxIter = 200
	bisectTol     = 1e-10
)

// fitTailShape maximises the responsibility-weighted log-likelihood of the
// truncated power law over α ∈ [lo, hi] with x_min fixed.
//
// The score
//
//	g(α) = R/α − S + R·x_min^α·ln x_min / (1 − x_min^α),  S = Σ r_i·ln(x_i/x_min)
//
// is decreasing in α (the objective is concave), so bisection on its sign
// change finds the constrained maximum. When g keeps one sign on [lo, hi]
// the corresponding bound is returned. prev is kept when the tail carries
// no responsibility.
//
// Complexity: O(n + log((hi−lo)/tol)).
func fitTailShape(x, r []float64, xm, lo, hi, prev float64) float64 {
	var R, S float64
	lx := math.Log(xm)
	for i, v := range x {
		R += r[i]
		S += r[i] * (math.Log(v) - lx)
	}
	if !(R > 0) {
		return prev
	}

	g := func(a float64) float64 {
		u := math.Exp(a * lx)
		return R/a - S + R*u*lx/(-math.Expm1(a*lx))
	}
	if g(lo) <= 0 {
		return lo
	}
	if g(hi) >= 0 {
		return hi
	}
	var mid float64
	for it := 0; it < bisectMaxIter && hi-lo > bisectTol; it++ {
		mid = 0.5 * (lo + hi)
		if g(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

package mixture

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// betaClamp keeps Beta evaluation away from the open boundaries.
const betaClamp = 1e-6

// logDensity returns log f(x) for one component.
func (c Component) logDensity(x float64) float64 {
	switch c.Kind {
	case KindTail:
		return tailLogDensity(x, c.Shape, c.Scale)
	case KindCluster:
		if c.Family == DensityBeta {
			return distuv.Beta{Alpha: c.Alpha, Beta: c.Beta}.LogProb(clampUnit(x))
		}
		return distuv.Normal{Mu: c.Mean, Sigma: math.Sqrt(c.Variance)}.LogProb(x)
	default:
		return math.NaN()
	}
}

// tailLogDensity is the log of the truncated Pareto density on [xm, 1].
func tailLogDensity(x, alpha, xm float64) float64 {
	if x < xm || x > 1 {
		return math.Inf(-1)
	}
	lx := math.Log(xm)
	return math.Log(alpha) + alpha*lx - (alpha+1)*math.Log(x) - log1mExp(alpha*lx)
}

// log1mExp returns log(1 − e^a) for a < 0.
func log1mExp(a float64) float64 {
	return math.Log(-math.Expm1(a))
}

func clampUnit(x float64) float64 {
	return math.Min(math.Max(x, betaClamp), 1-betaClamp)
}

// betaShapes converts a mean and variance into Beta shape parameters.
// ok is false when the variance is not below mean·(1−mean).
func betaShapes(mean, variance float64) (a, b float64, ok bool) {
	if !(mean > 0 && mean < 1 && variance > 0) {
		return 0, 0, false
	}
	common := mean*(1-mean)/variance - 1
	if !(common > 0) {
		return 0, 0, false
	}
	return mean * common, (1 - mean) * common, true
}

package peaks

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// minBandwidth keeps Silverman's rule away from zero on degenerate samples
// (all VAFs identical or a single repeated value).
const minBandwidth = 5e-3

// SilvermanBandwidth returns 0.9·min(sd, IQR/1.34)·n^(−1/5), floored at
// minBandwidth. values need not be sorted.
//
// Complexity: O(n log n) for the quantiles.
func SilvermanBandwidth(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return minBandwidth
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	sd := stat.StdDev(sorted, nil)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)
	spread := sd
	if iqr > 0 && iqr/1.34 < spread {
		spread = iqr / 1.34
	}
	h := 0.9 * spread * math.Pow(float64(n), -0.2)
	if !(h > minBandwidth) {
		return minBandwidth
	}
	return h
}

// Density evaluates a Gaussian KDE with bandwidth h at points evenly spaced
// over [0,1]. It returns the grid and the density values.
//
// Complexity: O(points·len(values)).
func Density(values []float64, h float64, points int) ([]float64, []float64) {
	xs := make([]float64, points)
	ys := make([]float64, points)
	if points < 2 || len(values) == 0 || !(h > 0) {
		return xs, ys
	}
	step := 1.0 / float64(points-1)
	norm := 1.0 / (float64(len(values)) * h)

	var (
		i   int
		x   float64
		sum float64
	)
	for i = 0; i < points; i++ {
		x = float64(i) * step
		sum = 0
		for _, v := range values {
			sum += distuv.UnitNormal.Prob((x - v) / h)
		}
		xs[i] = x
		ys[i] = sum * norm
	}
	return xs, ys
}

// LocalMaxima returns the local maxima of ys whose height is at least
// minHeight·max(ys). Plateaus report their first point. Each maximum is
// refined by fitting a parabola through its two neighbours.
//
// Complexity: O(len(ys)).
func LocalMaxima(xs, ys []float64, minHeight float64) []Peak {
	n := len(ys)
	if n < 3 || len(xs) != n {
		return nil
	}
	top := slices.Max(ys)
	if !(top > 0) {
		return nil
	}
	cut := minHeight * top

	var out []Peak
	var i int
	for i = 1; i < n-1; i++ {
		if !(ys[i] > ys[i-1] && ys[i] >= ys[i+1]) || ys[i] < cut {
			continue
		}
		out = append(out, refine(xs, ys, i))
	}
	return out
}

// refine places the vertex of the parabola through (i−1, i, i+1).
func refine(xs, ys []float64, i int) Peak {
	y0, y1, y2 := ys[i-1], ys[i], ys[i+1]
	den := y0 - 2*y1 + y2
	if den >= 0 {
		return Peak{VAF: xs[i], Density: y1}
	}
	delta := 0.5 * (y0 - y2) / den // offset in grid steps, |delta| ≤ 0.5
	step := xs[i+1] - xs[i]
	return Peak{
		VAF:     xs[i] + delta*step,
		Density: y1 - 0.25*(y0-y2)*delta,
	}
}

package mixture_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/subclone/matrix"
	"github.com/katalvlaran/subclone/mixture"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// quantiles returns n deterministic values at Normal(mu, sd) quantiles,
// rounded to the 1/1000 resolution of a 1000x read depth.
func quantiles(n int, mu, sd float64) []float64 {
	d := distuv.Normal{Mu: mu, Sigma: sd}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round(d.Quantile((float64(i)+0.5)/float64(n))*1000) / 1000
	}
	return out
}

// twoPeaks is a clonal peak at 0.45 (300 points) plus a subclone at 0.25
// (200 points).
func twoPeaks() []float64 {
	return append(quantiles(300, 0.45, 0.03), quantiles(200, 0.25, 0.03)...)
}

func TestFit_Invariants(t *testing.T) {
	x := twoPeaks()
	fit, err := mixture.Fit(x, 2, 1, mixture.DefaultOptions())
	require.NoError(t, err)
	require.True(t, fit.Converged)
	require.Equal(t, mixture.FitResultVersion, fit.Version)
	require.Equal(t, len(x), fit.NumPoints)

	// tail first, clusters ascending by mean
	require.Equal(t, mixture.KindTail, fit.Components[0].Kind)
	require.Len(t, fit.Clusters(), 2)
	require.Less(t, fit.Clusters()[0].Mean, fit.Clusters()[1].Mean)

	var ws float64
	for _, c := range fit.Components {
		ws += c.Weight
	}
	require.InDelta(t, 1.0, ws, 1e-6)

	rows, err := matrix.RowSums(fit.Responsibilities)
	require.NoError(t, err)
	for _, s := range rows {
		require.InDelta(t, 1.0, s, 1e-9)
	}

	for i := 1; i < len(fit.NLL); i++ {
		require.LessOrEqual(t, fit.NLL[i], fit.NLL[i-1]+1e-9, "NLL increased at iteration %d", i)
	}
	require.InDelta(t, -fit.LogLik, fit.NLL[len(fit.NLL)-1], 1e-6)
}

func TestFit_RecoversTwoPeaks(t *testing.T) {
	fit, err := mixture.Fit(twoPeaks(), 2, 3, mixture.DefaultOptions())
	require.NoError(t, err)

	low, high := fit.Clusters()[0], fit.Clusters()[1]
	require.InDelta(t, 0.25, low.Mean, 0.01)
	require.InDelta(t, 0.45, high.Mean, 0.01)
	require.InDelta(t, 0.4, low.Weight, 0.05)
	require.InDelta(t, 0.6, high.Weight, 0.05)
	require.Less(t, fit.Tail().Weight, 0.05)
}

func TestFit_RoundTripFixedPoint(t *testing.T) {
	x := twoPeaks()
	fit, err := mixture.Fit(x, 2, 2, mixture.DefaultOptions())
	require.NoError(t, err)

	R, err := mixture.Assign(fit.Components, x)
	require.NoError(t, err)
	ok, err := matrix.AllClose(R, fit.Responsibilities, 0, 1e-12)
	require.NoError(t, err)
	require.True(t, ok)

	again, err := fit.Reassign()
	require.NoError(t, err)
	ok, err = matrix.AllClose(again, fit.Responsibilities, 0, 1e-12)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFit_Deterministic(t *testing.T) {
	x := twoPeaks()
	a, err := mixture.Fit(x, 3, 7, mixture.DefaultOptions())
	require.NoError(t, err)
	b, err := mixture.Fit(x, 3, 7, mixture.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, a.Components, b.Components)
	require.Equal(t, a.NLL, b.NLL)
	require.Equal(t, a.Labels(), b.Labels())
}

func TestFit_BetaClusters(t *testing.T) {
	opts := mixture.DefaultOptions()
	opts.Density = mixture.DensityBeta
	fit, err := mixture.Fit(twoPeaks(), 2, 1, opts)
	require.NoError(t, err)
	for i := 1; i < len(fit.NLL); i++ {
		require.LessOrEqual(t, fit.NLL[i], fit.NLL[i-1]+1e-9)
	}
	for _, c := range fit.Clusters() {
		require.Equal(t, mixture.DensityBeta, c.Family)
		require.Greater(t, c.Alpha, 0.0)
		require.Greater(t, c.Beta, 0.0)
		require.InDelta(t, c.Mean, c.Alpha/(c.Alpha+c.Beta), 1e-9)
	}
}

func TestFit_Errors(t *testing.T) {
	opts := mixture.DefaultOptions()
	cases := []struct {
		name string
		x    []float64
		k    int
		want error
	}{
		{"empty", nil, 1, mixture.ErrInvalidData},
		{"zero", []float64{0.2, 0, 0.4}, 1, mixture.ErrInvalidData},
		{"above one", []float64{0.2, 1.2, 0.4}, 1, mixture.ErrInvalidData},
		{"nan", []float64{0.2, math.NaN(), 0.4}, 1, mixture.ErrInvalidData},
		{"k zero", []float64{0.2, 0.3}, 0, mixture.ErrBadOptions},
		{"too few points", []float64{0.2, 0.3}, 2, mixture.ErrDegenerate},
		{"no tail support", []float64{1, 1, 1}, 1, mixture.ErrDegenerate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mixture.Fit(tc.x, tc.k, 1, opts)
			require.ErrorIs(t, err, tc.want)
		})
	}

	bad := opts
	bad.MaxTailShape = bad.MinTailShape
	_, err := mixture.Fit(twoPeaks(), 1, 1, bad)
	require.ErrorIs(t, err, mixture.ErrBadOptions)

	bad = opts
	bad.Karyotypes = []string{"two:one"}
	_, err = mixture.Fit(twoPeaks(), 1, 1, bad)
	require.ErrorIs(t, err, mixture.ErrBadOptions)
}

func TestAssign_Errors(t *testing.T) {
	_, err := mixture.Assign(nil, []float64{0.5})
	require.ErrorIs(t, err, mixture.ErrBadOptions)

	comps := []mixture.Component{
		{Kind: mixture.KindTail, Weight: 0.5, Shape: 1, Scale: 0.3},
		{Kind: mixture.KindCluster, Weight: 0.4, Family: mixture.DensityNormal, Mean: 0.5, Variance: 0.01},
	}
	_, err = mixture.Assign(comps, []float64{0.5})
	require.ErrorIs(t, err, mixture.ErrBadOptions)

	// A tail-only model has no support below x_min.
	tailOnly := []mixture.Component{{Kind: mixture.KindTail, Weight: 1, Shape: 1, Scale: 0.3}}
	_, err = mixture.Assign(tailOnly, []float64{0.1})
	require.ErrorIs(t, err, mixture.ErrInvalidData)
}

func TestGrid_Tasks(t *testing.T) {
	tasks := mixture.ReducedGrid().Tasks()
	require.Len(t, tasks, 9)
	require.Equal(t, mixture.Task{K: 1, Seed: 1}, tasks[0])
	require.Equal(t, mixture.Task{K: 1, Seed: 2}, tasks[1])
	require.Equal(t, mixture.Task{K: 3, Seed: 3}, tasks[8])

	full := mixture.FullGrid()
	require.Equal(t, []int{1, 2, 3, 4, 5, 6}, full.Ks)
	require.Len(t, full.Tasks(), 60)
}

func TestNewFitGrid_KeepsFailures(t *testing.T) {
	tasks := []mixture.Task{{K: 1, Seed: 1}, {K: 2, Seed: 1}}
	fit := &mixture.FitResult{Config: mixture.Config{K: 1, Seed: 1}}
	g := mixture.NewFitGrid(tasks, []*mixture.FitResult{fit, nil}, []error{nil, mixture.ErrDiverged})
	require.Len(t, g.Fits, 1)
	require.Len(t, g.Failures, 1)
	require.Equal(t, 2, g.Failures[0].K)
	require.ErrorIs(t, g.Failures[0].Err, mixture.ErrDiverged)
}

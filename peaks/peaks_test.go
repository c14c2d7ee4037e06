package peaks_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/katalvlaran/subclone/genome"
	"github.com/katalvlaran/subclone/peaks"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// quantileVAFs returns n deterministic VAFs at the Normal(mu, sd) quantiles.
func quantileVAFs(n int, mu, sd float64) []float64 {
	d := distuv.Normal{Mu: mu, Sigma: sd}
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Quantile((float64(i) + 0.5) / float64(n))
	}
	return out
}

// annotate builds an Annotation with all VAFs on one segment of karyotype k.
func annotate(t *testing.T, purity float64, k genome.Karyotype, vafs []float64) *genome.Annotation {
	t.Helper()
	s, err := genome.NewSampleContext(genome.SampleSpec{Purity: purity, SampleID: "T"})
	require.NoError(t, err)
	segs := []genome.Segment{{Chromosome: "1", Start: 1, End: 1_000_000, Major: k.Major, Minor: k.Minor}}
	muts := make([]genome.Mutation, len(vafs))
	for i, v := range vafs {
		muts[i] = genome.Mutation{
			Chromosome: "1", Start: int64(i + 1), End: int64(i + 1),
			DP: 1000, NV: int(math.Round(v * 1000)),
		}
	}
	return genome.Annotate(s, muts, segs, genome.DefaultOptions())
}

// TestExpectedVAF_LOH: karyotype 2:0 at purity 0.8 puts m=1 at 0.4.
func TestExpectedVAF_LOH(t *testing.T) {
	v, err := peaks.ExpectedVAF(0.8, 2, 0, 1)
	require.NoError(t, err)
	require.InDelta(t, 0.4, v, 1e-12)

	v, err = peaks.ExpectedVAF(0.8, 2, 0, 2)
	require.NoError(t, err)
	require.InDelta(t, 0.8, v, 1e-12)

	v, err = peaks.ExpectedVAF(1, 1, 1, 1)
	require.NoError(t, err)
	require.InDelta(t, 0.5, v, 1e-12)
}

// TestExpectedVAF_Errors covers every rejection path.
func TestExpectedVAF_Errors(t *testing.T) {
	_, err := peaks.ExpectedVAF(0, 1, 1, 1)
	require.ErrorIs(t, err, peaks.ErrBadPurity)
	_, err = peaks.ExpectedVAF(1.2, 1, 1, 1)
	require.ErrorIs(t, err, peaks.ErrBadPurity)
	_, err = peaks.ExpectedVAF(0.5, 0, 0, 1)
	require.ErrorIs(t, err, peaks.ErrUnsupportedKaryotype)
	_, err = peaks.ExpectedVAF(0.5, 1, 1, 2)
	require.ErrorIs(t, err, peaks.ErrBadMultiplicity)
	_, err = peaks.ExpectedVAF(0.5, 1, 1, 0)
	require.ErrorIs(t, err, peaks.ErrBadMultiplicity)
}

// TestMatchClosest_Unique: two peaks near the same expected value; only the
// nearest claims it, the other falls to the next expected value.
func TestMatchClosest_Unique(t *testing.T) {
	found := []peaks.Peak{{VAF: 0.41}, {VAF: 0.38}, {VAF: 0.95}}
	exp := []peaks.ExpectedPeak{{Multiplicity: 1, VAF: 0.4}, {Multiplicity: 2, VAF: 0.8}}

	ms, ue, up := peaks.MatchClosest(found, exp)
	require.Len(t, ms, 2)
	require.Empty(t, ue)
	require.Len(t, up, 1)

	require.Equal(t, 1, ms[0].Multiplicity)
	require.InDelta(t, 0.41, ms[0].Observed, 1e-12)
	require.InDelta(t, 0.01, ms[0].Residual, 1e-12)
	require.Equal(t, 2, ms[1].Multiplicity)
	require.InDelta(t, 0.95, ms[1].Observed, 1e-12)
	require.InDelta(t, 0.38, up[0].VAF, 1e-12)
}

// TestDensity_IntegratesToOne checks the KDE normalisation on [0,1].
func TestDensity_IntegratesToOne(t *testing.T) {
	vafs := quantileVAFs(300, 0.5, 0.05)
	xs, ys := peaks.Density(vafs, 0.02, 1001)
	var area float64
	for i := 1; i < len(xs); i++ {
		area += 0.5 * (ys[i] + ys[i-1]) * (xs[i] - xs[i-1])
	}
	require.InDelta(t, 1.0, area, 1e-3)

	pk := peaks.LocalMaxima(xs, ys, 0.05)
	require.Len(t, pk, 1)
	require.InDelta(t, 0.5, pk[0].VAF, 1e-3)
}

// TestSilvermanBandwidth_Floor returns the floor for degenerate input.
func TestSilvermanBandwidth_Floor(t *testing.T) {
	require.Greater(t, peaks.SilvermanBandwidth([]float64{0.3, 0.3, 0.3}), 0.0)
	require.Greater(t, peaks.SilvermanBandwidth(quantileVAFs(100, 0.5, 0.05)), 0.005)
}

// TestDetect_LOHScenario: a synthetic 2:0 peak at 0.4 (purity 0.8) matches
// multiplicity 1 with (near) zero residual and passes QC.
func TestDetect_LOHScenario(t *testing.T) {
	a := annotate(t, 0.8, genome.Karyotype{Major: 2, Minor: 0}, quantileVAFs(200, 0.4, 0.02))
	opts := peaks.DefaultOptions()
	opts.Bandwidth = 0.02

	rep, err := peaks.Detect(a, opts)
	require.NoError(t, err)
	require.Len(t, rep.Karyotypes, 1)

	kq := rep.Karyotypes[0]
	require.Equal(t, "2:0", kq.Karyotype.String())
	require.True(t, kq.Scored)
	require.Len(t, kq.Matches, 1)
	require.Equal(t, 1, kq.Matches[0].Multiplicity)
	require.InDelta(t, 0.4, kq.Matches[0].Expected, 1e-12)
	require.InDelta(t, 0.0, kq.Matches[0].Residual, 1e-3)
	require.Len(t, kq.UnmatchedExpected, 1)
	require.Equal(t, 2, kq.UnmatchedExpected[0].Multiplicity)

	require.True(t, rep.Scored)
	require.True(t, rep.Pass)
}

// TestDetect_WrongPurityFails: data generated at purity 0.5 but analysed at
// purity 1 misses the expected 0.5 peak by 0.25 and fails (advisory).
func TestDetect_WrongPurityFails(t *testing.T) {
	a := annotate(t, 1, genome.Karyotype{Major: 1, Minor: 1}, quantileVAFs(150, 0.25, 0.02))
	rep, err := peaks.Detect(a, peaks.DefaultOptions())
	require.NoError(t, err)
	require.True(t, rep.Scored)
	require.False(t, rep.Pass)
	require.InDelta(t, 0.25, rep.Score, 5e-3)
	require.Contains(t, rep.Summarize(), "FAIL")
}

// TestDetect_SkipsUnsupportedAndSmall records warnings instead of failing.
func TestDetect_SkipsUnsupportedAndSmall(t *testing.T) {
	s, err := genome.NewSampleContext(genome.SampleSpec{Purity: 0.9, SampleID: "T"})
	require.NoError(t, err)
	segs := []genome.Segment{
		{Chromosome: "1", Start: 1, End: 100, Major: 0, Minor: 0},
		{Chromosome: "1", Start: 101, End: 200, Major: 1, Minor: 1},
	}
	muts := []genome.Mutation{
		{Chromosome: "1", Start: 10, End: 10, DP: 100, NV: 10},
		{Chromosome: "1", Start: 150, End: 150, DP: 100, NV: 45},
	}
	rep, err := peaks.Detect(genome.Annotate(s, muts, segs, genome.DefaultOptions()), peaks.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rep.Karyotypes, 2)
	require.True(t, rep.Karyotypes[0].Skipped)
	require.Equal(t, "unsupported karyotype", rep.Karyotypes[0].Reason)
	require.True(t, rep.Karyotypes[1].Skipped)
	require.False(t, rep.Scored)
	require.False(t, rep.Pass)
	require.Len(t, rep.Warnings, 3)
}

// TestDetect_BadInput covers nil annotation and invalid options.
func TestDetect_BadInput(t *testing.T) {
	_, err := peaks.Detect(nil, peaks.DefaultOptions())
	require.ErrorIs(t, err, peaks.ErrNilAnnotation)

	a := annotate(t, 1, genome.Karyotype{Major: 1, Minor: 1}, quantileVAFs(20, 0.5, 0.02))
	opts := peaks.DefaultOptions()
	opts.GridPoints = 3
	_, err = peaks.Detect(a, opts)
	require.ErrorIs(t, err, peaks.ErrBadOptions)
}

// TestQCReport_Export writes a header plus one row per expected peak.
func TestQCReport_Export(t *testing.T) {
	a := annotate(t, 0.8, genome.Karyotype{Major: 2, Minor: 0}, quantileVAFs(200, 0.4, 0.02))
	rep, err := peaks.Detect(a, peaks.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.Export(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "sample\tkaryotype"))
	require.True(t, strings.HasPrefix(lines[1], "T\t2:0\t200\t1\t"))
}

package genome_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/subclone/genome"
	"github.com/stretchr/testify/require"
)

// mustSample builds a SampleContext or fails the test.
func mustSample(t *testing.T, purity float64) genome.SampleContext {
	t.Helper()
	s, err := genome.NewSampleContext(genome.SampleSpec{Purity: purity, ReferenceGenome: "GRCh38", SampleID: "S1"})
	require.NoError(t, err)
	return s
}

// TestNewSampleContext_Purity rejects purity outside (0,1].
func TestNewSampleContext_Purity(t *testing.T) {
	for _, p := range []float64{0, -0.1, 1.0001, math.NaN(), math.Inf(1)} {
		_, err := genome.NewSampleContext(genome.SampleSpec{Purity: p, SampleID: "S"})
		require.ErrorIs(t, err, genome.ErrInvalidPurity, "purity %v", p)
	}
	s, err := genome.NewSampleContext(genome.SampleSpec{Purity: 1, ReferenceGenome: "hg19", SampleID: "S"})
	require.NoError(t, err)
	require.Equal(t, 1.0, s.Purity())
	require.Equal(t, "hg19", s.ReferenceGenome())
	require.Equal(t, "S", s.SampleID())

	_, err = genome.NewSampleContext(genome.SampleSpec{Purity: 0.5})
	require.ErrorIs(t, err, genome.ErrInvalidSample)
}

// TestMutation_VAF checks VAF == NV/DP and validation of read counts.
func TestMutation_VAF(t *testing.T) {
	m := genome.Mutation{Chromosome: "1", Start: 10, End: 10, DP: 80, NV: 20}
	require.InDelta(t, 0.25, m.VAF(), 1e-12)
	require.NoError(t, m.Validate())

	bad := []genome.Mutation{
		{Chromosome: "1", Start: 10, End: 10, DP: 10, NV: 11},
		{Chromosome: "1", Start: 10, End: 10, DP: 0, NV: 0},
		{Chromosome: "1", Start: 10, End: 9, DP: 10, NV: 1},
		{Chromosome: "", Start: 10, End: 10, DP: 10, NV: 1},
	}
	for _, b := range bad {
		require.True(t, errors.Is(b.Validate(), genome.ErrInvalidMutation), "%+v", b)
	}
}

// TestParseKaryotype covers the label round trip and malformed input.
func TestParseKaryotype(t *testing.T) {
	k, err := genome.ParseKaryotype("2:1")
	require.NoError(t, err)
	require.Equal(t, genome.Karyotype{Major: 2, Minor: 1}, k)
	require.Equal(t, "2:1", k.String())
	require.Equal(t, 3, k.Total())

	for _, s := range []string{"", "2", "a:1", "2:-1"} {
		_, err = genome.ParseKaryotype(s)
		require.ErrorIs(t, err, genome.ErrBadKaryotype, s)
	}
}

// TestAnnotate_ExcludesOutsideSegments: one mutation outside every segment
// is excluded and the exclusion counter equals 1.
func TestAnnotate_ExcludesOutsideSegments(t *testing.T) {
	s := mustSample(t, 0.8)
	segs := []genome.Segment{
		{Chromosome: "1", Start: 1, End: 1000, Major: 1, Minor: 1},
		{Chromosome: "1", Start: 2000, End: 3000, Major: 2, Minor: 0},
	}
	muts := []genome.Mutation{
		{Chromosome: "1", Start: 500, End: 500, DP: 100, NV: 40},
		{Chromosome: "chr1", Start: 2500, End: 2500, DP: 100, NV: 40},
		{Chromosome: "1", Start: 1500, End: 1500, DP: 100, NV: 40},
	}

	a := genome.Annotate(s, muts, segs, genome.DefaultOptions())
	require.Equal(t, 1, a.Excluded)
	require.Equal(t, 0, a.Conflicts)
	require.Len(t, a.Mutations, 2)
	require.Equal(t, "1:1", a.Mutations[0].Karyotype.String())
	require.Equal(t, "2:0", a.Mutations[1].Karyotype.String())
	require.InDelta(t, 0.8*2+2*0.2, a.Mutations[1].Ploidy, 1e-12)

	// Source slice is untouched.
	require.Equal(t, int64(1500), muts[2].Start)
}

// TestAnnotate_OverlapFirstMatchWins: overlapping segments resolve to the
// first in sort order and count a conflict.
func TestAnnotate_OverlapFirstMatchWins(t *testing.T) {
	s := mustSample(t, 1)
	segs := []genome.Segment{
		{Chromosome: "2", Start: 100, End: 900, Major: 2, Minor: 1},
		{Chromosome: "2", Start: 1, End: 1000, Major: 1, Minor: 1},
	}
	muts := []genome.Mutation{{Chromosome: "2", Start: 150, End: 150, DP: 50, NV: 25}}

	a := genome.Annotate(s, muts, segs, genome.DefaultOptions())
	require.Len(t, a.Mutations, 1)
	require.Equal(t, 1, a.Conflicts)
	require.Equal(t, 1, a.SegmentOverlaps)
	// Sorted by start: [1,1000] precedes [100,900].
	require.Equal(t, "1:1", a.Mutations[0].Karyotype.String())
}

// TestAnnotate_InvalidCounted: invalid records are dropped and counted.
func TestAnnotate_InvalidCounted(t *testing.T) {
	s := mustSample(t, 1)
	segs := []genome.Segment{
		{Chromosome: "3", Start: 1, End: 100, Major: 1, Minor: 1},
		{Chromosome: "3", Start: 500, End: 100, Major: 1, Minor: 1},
	}
	muts := []genome.Mutation{
		{Chromosome: "3", Start: 5, End: 5, DP: 10, NV: 12},
		{Chromosome: "3", Start: 6, End: 6, DP: 10, NV: 5},
	}
	a := genome.Annotate(s, muts, segs, genome.DefaultOptions())
	require.Equal(t, 2, a.Invalid)
	require.Len(t, a.Mutations, 1)
	require.Len(t, a.Segments, 1)
}

// TestAnnotation_Groups orders groups by karyotype.
func TestAnnotation_Groups(t *testing.T) {
	s := mustSample(t, 1)
	segs := []genome.Segment{
		{Chromosome: "1", Start: 1, End: 100, Major: 2, Minor: 1},
		{Chromosome: "1", Start: 101, End: 200, Major: 1, Minor: 1},
	}
	muts := []genome.Mutation{
		{Chromosome: "1", Start: 10, End: 10, DP: 10, NV: 5},
		{Chromosome: "1", Start: 150, End: 150, DP: 10, NV: 5},
		{Chromosome: "1", Start: 20, End: 20, DP: 10, NV: 5},
	}
	g := genome.Annotate(s, muts, segs, genome.DefaultOptions()).Groups()
	require.Len(t, g, 2)
	require.Equal(t, "1:1", g[0].Karyotype.String())
	require.Equal(t, []int{1}, g[0].Indices)
	require.Equal(t, "2:1", g[1].Karyotype.String())
	require.Equal(t, []int{0, 2}, g[1].Indices)
}

package pipeline_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalvlaran/subclone/ccf"
	"github.com/katalvlaran/subclone/config"
	"github.com/katalvlaran/subclone/genome"
	"github.com/katalvlaran/subclone/mixture"
	"github.com/katalvlaran/subclone/pipeline"
	"github.com/katalvlaran/subclone/report"
	"github.com/katalvlaran/subclone/selection"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// mutations places n mutations at Normal(mu, sd) VAF quantiles, starting at
// position from on chromosome 1 with depth 1000.
func mutations(n int, from int64, mu, sd float64) []genome.Mutation {
	d := distuv.Normal{Mu: mu, Sigma: sd}
	out := make([]genome.Mutation, n)
	for i := range out {
		v := d.Quantile((float64(i) + 0.5) / float64(n))
		pos := from + int64(i)
		out[i] = genome.Mutation{Chromosome: "1", Start: pos, End: pos, Ref: "C", Alt: "T",
			DP: 1000, NV: int(math.Round(v * 1000))}
	}
	return out
}

func diploid() []genome.Segment {
	return []genome.Segment{{Chromosome: "1", Start: 1, End: 10_000_000, Major: 1, Minor: 1}}
}

// twoPeaks is a purity-0.9 sample with a clonal peak at 0.45 and a
// subclone at 0.25.
func twoPeaks() []genome.Mutation {
	return append(mutations(300, 1, 0.45, 0.03), mutations(200, 1001, 0.25, 0.03)...)
}

func TestRun_TwoPopulations(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 4

	res, err := pipeline.Run(context.Background(), cfg, genome.SampleSpec{Purity: 0.9, SampleID: "S1"},
		twoPeaks(), diploid(), pipeline.WithLogger(quiet), pipeline.WithRunID("run-1"))
	require.NoError(t, err)
	require.Equal(t, "run-1", res.RunID)

	require.Len(t, res.Annotation.Mutations, 500)
	require.Zero(t, res.Annotation.Excluded)
	require.Len(t, res.CCF.Estimates, 500)
	require.Len(t, res.Features.Values, 500)
	require.Len(t, res.Grid.Fits, 9)

	best := res.Selection.Best
	require.Equal(t, 2, best.Config.K)
	require.Len(t, best.Clusters(), 2)
	require.InDelta(t, 0.25, best.Clusters()[0].Mean, 0.02)
	require.InDelta(t, 0.45, best.Clusters()[1].Mean, 0.02)

	require.Len(t, res.Trees.Trees, 1)
	require.Equal(t, "2(1)", res.Trees.Trees[0].String())
	require.Positive(t, res.Duration)
}

// TestRun_JoinsClusterLabels: a mutation without alternate reads is left
// out of the fit and keeps no cluster; every fitted mutation carries the
// label of its most responsible component.
func TestRun_JoinsClusterLabels(t *testing.T) {
	muts := append(twoPeaks(), genome.Mutation{Chromosome: "1", Start: 5000, End: 5000, DP: 1000, NV: 0})
	res, err := pipeline.Run(context.Background(), config.Default(), genome.SampleSpec{Purity: 0.9, SampleID: "S1"},
		muts, diploid(), pipeline.WithLogger(quiet))
	require.NoError(t, err)
	require.Len(t, res.CCF.Estimates, 501)
	require.Len(t, res.Features.Values, 500)
	require.Equal(t, 1, res.Features.Dropped)

	labels := res.Selection.Best.Labels()
	require.Len(t, labels, 500)
	for i, row := range res.Features.Rows {
		require.Equal(t, labels[i], res.CCF.Estimates[row].Cluster)
	}
	zero := res.CCF.Estimates[500]
	require.Zero(t, zero.VAF)
	require.Equal(t, ccf.Unassigned, zero.Cluster)

	// the high-VAF block falls in the upper cluster, the low block in the lower
	require.Equal(t, 2, res.CCF.Estimates[150].Cluster)
	require.Equal(t, 1, res.CCF.Estimates[400].Cluster)

	var buf bytes.Buffer
	require.NoError(t, res.CCF.Export(&buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.True(t, strings.HasSuffix(lines[0], "\tcluster"))
	require.True(t, strings.HasSuffix(lines[151], "\t2"))
	require.True(t, strings.HasSuffix(lines[501], "\tfalse\t"))
}

// TestRun_WorkerCountInvariant: the selected model does not depend on the
// size of the worker pool.
func TestRun_WorkerCountInvariant(t *testing.T) {
	run := func(workers int) *pipeline.Result {
		cfg := config.Default()
		cfg.Workers = workers
		res, err := pipeline.Run(context.Background(), cfg, genome.SampleSpec{Purity: 0.9, SampleID: "S1"},
			twoPeaks(), diploid(), pipeline.WithLogger(quiet))
		require.NoError(t, err)
		return res
	}
	a, b := run(1), run(8)
	require.NotEqual(t, a.RunID, b.RunID)
	require.Equal(t, a.Selection.Best.Config, b.Selection.Best.Config)
	require.Equal(t, a.Selection.Best.Score, b.Selection.Best.Score)
	require.Len(t, b.Selection.Table, len(a.Selection.Table))
	for i := range a.Selection.Table {
		require.Equal(t, a.Selection.Table[i].K, b.Selection.Table[i].K)
		require.Equal(t, a.Selection.Table[i].Seed, b.Selection.Table[i].Seed)
	}
}

// TestRun_NoViableModel: one EM iteration never converges; the partial
// result still carries the grid.
func TestRun_NoViableModel(t *testing.T) {
	cfg := config.Default()
	cfg.Mixture.MaxIterations = 1

	res, err := pipeline.Run(context.Background(), cfg, genome.SampleSpec{Purity: 0.9, SampleID: "S1"},
		twoPeaks(), diploid(), pipeline.WithLogger(quiet))
	require.ErrorIs(t, err, selection.ErrNoViableModel)
	require.True(t, pipeline.IsNoViableModel(err))
	require.NotNil(t, res)
	require.NotNil(t, res.QC)
	require.NotNil(t, res.Grid)
	require.Nil(t, res.Trees)

	names := make([]string, 0, 4)
	for _, a := range res.Artifacts() {
		names = append(names, a.Name)
	}
	require.Equal(t, []string{pipeline.FileQC, pipeline.FileMutations, pipeline.FileGrid}, names)
}

func TestRun_InvalidPurity(t *testing.T) {
	res, err := pipeline.Run(context.Background(), config.Default(), genome.SampleSpec{Purity: 1.5, SampleID: "S1"},
		twoPeaks(), diploid(), pipeline.WithLogger(quiet))
	require.ErrorIs(t, err, genome.ErrInvalidPurity)
	require.Nil(t, res.Annotation)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = "huge"
	_, err := pipeline.Run(context.Background(), cfg, genome.SampleSpec{Purity: 0.9, SampleID: "S1"},
		twoPeaks(), diploid(), pipeline.WithLogger(quiet))
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

// TestRun_NoUsableMutations: every mutation falls outside the segments.
func TestRun_NoUsableMutations(t *testing.T) {
	segs := []genome.Segment{{Chromosome: "2", Start: 1, End: 100, Major: 1, Minor: 1}}
	res, err := pipeline.Run(context.Background(), config.Default(), genome.SampleSpec{Purity: 0.9, SampleID: "S1"},
		twoPeaks(), segs, pipeline.WithLogger(quiet))
	require.ErrorIs(t, err, mixture.ErrInvalidData)
	require.Equal(t, 500, res.Annotation.Excluded)
	require.Nil(t, res.Grid)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pipeline.Run(ctx, config.Default(), genome.SampleSpec{Purity: 0.9, SampleID: "S1"},
		twoPeaks(), diploid(), pipeline.WithLogger(quiet))
	require.ErrorIs(t, err, context.Canceled)
}

// TestResult_WriteArtifacts writes the five artifacts of a successful run.
func TestResult_WriteArtifacts(t *testing.T) {
	res, err := pipeline.Run(context.Background(), config.Default(), genome.SampleSpec{Purity: 0.9, SampleID: "S1"},
		twoPeaks(), diploid(), pipeline.WithLogger(quiet))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, report.WriteDir(dir, res.Artifacts()))
	for _, name := range []string{pipeline.FileQC, pipeline.FileMutations, pipeline.FileGrid, pipeline.FileBestFit, pipeline.FileTrees} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		require.Positive(t, info.Size(), name)
	}
}

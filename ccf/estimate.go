package ccf

import (
	"fmt"
	"math"
	"slices"

	"github.com/katalvlaran/subclone/genome"
	"github.com/katalvlaran/subclone/peaks"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// vafClamp keeps the binomial success probability strictly inside (0,1) so
// that a fully clonal expectation (VAF 1 at purity 1 on a 1:0 locus) does
// not assign −Inf to a single reference read.
const vafClamp = 1e-9

// Estimate infers multiplicity and CCF for every annotated mutation.
//
// Implementation:
//   - Stage 1: validate options.
//   - Stage 2: per mutation, skip major = 0; score candidates m = 1..major by
//     binomial log-likelihood; normalise with log-sum-exp.
//   - Stage 3: argmax (first wins on ties), normalised entropy, CCF clamp.
//
// Complexity: O(N·M).
func Estimate(a *genome.Annotation, opts Options) (*Result, error) {
	if a == nil {
		return nil, ErrNilAnnotation
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	purity := a.Sample.Purity()
	res := &Result{
		SampleID:   a.Sample.SampleID(),
		Purity:     purity,
		Estimates:  make([]MutationCCF, 0, len(a.Mutations)),
		annotation: a,
	}

	var (
		i, m   int
		logL   []float64
		expVAF float64
		err    error
	)
	for i = range a.Mutations {
		am := &a.Mutations[i]
		k := am.Karyotype
		if k.Major < 1 {
			res.Skipped++
			continue
		}

		logL = make([]float64, k.Major)
		for m = 1; m <= k.Major; m++ {
			expVAF, err = peaks.ExpectedVAF(purity, k.Major, k.Minor, m)
			if err != nil {
				return nil, err
			}
			logL[m-1] = distuv.Binomial{
				N: float64(am.DP),
				P: math.Min(math.Max(expVAF, vafClamp), 1-vafClamp),
			}.LogProb(float64(am.NV))
		}

		est := MutationCCF{
			Index:     i,
			Karyotype: k,
			VAF:       am.VAF(),
			Posterior: posterior(logL),
			Cluster:   Unassigned,
		}
		est.Multiplicity = argmax(est.Posterior) + 1
		if k.Major > 1 {
			est.Entropy = stat.Entropy(est.Posterior) / math.Log(float64(k.Major))
		}
		est.Confidence = 1 - est.Entropy
		est.LowConfidence = k.Major > 1 && est.Entropy >= opts.EntropyThreshold

		raw := est.VAF * am.Ploidy / (purity * float64(est.Multiplicity))
		est.CCF = math.Min(math.Max(raw, 0), 1)
		est.Clamped = raw > 1

		if est.LowConfidence {
			res.LowConfidence++
		}
		if est.Clamped {
			res.Clamped++
		}
		res.Estimates = append(res.Estimates, est)
	}
	return res, nil
}

// posterior turns log-likelihoods into probabilities under a flat prior.
// An all −Inf input yields a uniform posterior.
func posterior(logL []float64) []float64 {
	out := make([]float64, len(logL))
	z := floats.LogSumExp(logL)
	if math.IsInf(z, -1) || math.IsNaN(z) {
		for i := range out {
			out[i] = 1 / float64(len(out))
		}
		return out
	}
	for i, l := range logL {
		out[i] = math.Exp(l - z)
	}
	return out
}

// argmax returns the first index of the largest value.
func argmax(p []float64) int {
	best := 0
	for i := 1; i < len(p); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return best
}

// CCFs returns the CCF of every estimate, optionally restricted to the given
// karyotypes (empty = all).
func (r *Result) CCFs(karyotypes []genome.Karyotype) []float64 {
	return r.collect(karyotypes, func(e MutationCCF) float64 { return e.CCF })
}

// VAFs returns the VAF of every estimate, optionally restricted to the given
// karyotypes (empty = all).
func (r *Result) VAFs(karyotypes []genome.Karyotype) []float64 {
	return r.collect(karyotypes, func(e MutationCCF) float64 { return e.VAF })
}

// Rows returns the positions in Estimates that CCFs and VAFs report for the
// same karyotype filter, in the same order.
func (r *Result) Rows(karyotypes []genome.Karyotype) []int {
	out := make([]int, 0, len(r.Estimates))
	for i, e := range r.Estimates {
		if len(karyotypes) > 0 && !slices.Contains(karyotypes, e.Karyotype) {
			continue
		}
		out = append(out, i)
	}
	return out
}

// AssignClusters records labels[i] as the cluster of Estimates[rows[i]] and
// resets every other estimate to Unassigned.
func (r *Result) AssignClusters(rows, labels []int) error {
	if len(rows) != len(labels) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrLabelMismatch, len(rows), len(labels))
	}
	for _, row := range rows {
		if row < 0 || row >= len(r.Estimates) {
			return fmt.Errorf("%w: row %d out of range", ErrLabelMismatch, row)
		}
	}
	for i := range r.Estimates {
		r.Estimates[i].Cluster = Unassigned
	}
	for i, row := range rows {
		r.Estimates[row].Cluster = labels[i]
	}
	return nil
}

func (r *Result) collect(karyotypes []genome.Karyotype, get func(MutationCCF) float64) []float64 {
	out := make([]float64, 0, len(r.Estimates))
	for _, e := range r.Estimates {
		if len(karyotypes) > 0 && !slices.Contains(karyotypes, e.Karyotype) {
			continue
		}
		out = append(out, get(e))
	}
	return out
}


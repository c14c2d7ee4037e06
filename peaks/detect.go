package peaks

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/subclone/genome"
)

// Detect runs peak-based QC over every karyotype of an annotation.
//
// Implementation:
//   - Stage 1: validate options; copy annotation counters into the report.
//   - Stage 2: per karyotype (ordered by major, minor): skip unsupported or
//     under-populated groups with a warning; otherwise estimate the density,
//     find local maxima and match them to the expected peaks.
//   - Stage 3: aggregate scored karyotypes weighted by mutation count and
//     classify against ResidualThreshold.
//
// A report without any scored karyotype does not pass and carries a warning.
// Errors are returned only for invalid options or a nil annotation.
func Detect(a *genome.Annotation, opts Options) (*QCReport, error) {
	if a == nil {
		return nil, ErrNilAnnotation
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	purity := a.Sample.Purity()
	rep := &QCReport{
		SampleID:        a.Sample.SampleID(),
		Purity:          purity,
		Threshold:       opts.ResidualThreshold,
		Excluded:        a.Excluded,
		Conflicts:       a.Conflicts,
		SegmentOverlaps: a.SegmentOverlaps,
		Invalid:         a.Invalid,
	}

	var (
		weighted float64
		total    int
	)
	for _, g := range a.Groups() {
		kq := KaryotypeQC{Karyotype: g.Karyotype, N: len(g.Indices)}

		exp, err := ExpectedPeaks(purity, g.Karyotype)
		if err != nil {
			if !errors.Is(err, ErrUnsupportedKaryotype) {
				return nil, err
			}
			kq.Skipped, kq.Reason = true, "unsupported karyotype"
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("karyotype %s skipped: no clonal peak", g.Karyotype))
			rep.Karyotypes = append(rep.Karyotypes, kq)
			continue
		}
		kq.Expected = exp

		if kq.N < opts.MinMutations {
			kq.Skipped, kq.Reason = true, "too few mutations"
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("karyotype %s skipped: %d mutations < %d", g.Karyotype, kq.N, opts.MinMutations))
			rep.Karyotypes = append(rep.Karyotypes, kq)
			continue
		}

		vafs := make([]float64, len(g.Indices))
		for i, idx := range g.Indices {
			vafs[i] = a.Mutations[idx].VAF()
		}
		kq.Bandwidth = opts.Bandwidth
		if kq.Bandwidth == 0 {
			kq.Bandwidth = SilvermanBandwidth(vafs)
		}
		xs, ys := Density(vafs, kq.Bandwidth, opts.GridPoints)
		kq.Peaks = LocalMaxima(xs, ys, opts.MinPeakHeight)
		kq.Matches, kq.UnmatchedExpected, kq.UnmatchedPeaks = MatchClosest(kq.Peaks, exp)

		if len(kq.Matches) > 0 {
			kq.Score, kq.Scored = meanAbsResidual(kq.Matches), true
			weighted += kq.Score * float64(kq.N)
			total += kq.N
		} else {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("karyotype %s: no peak matched", g.Karyotype))
		}
		rep.Karyotypes = append(rep.Karyotypes, kq)
	}

	if total > 0 {
		rep.Score, rep.Scored = weighted/float64(total), true
		rep.Pass = rep.Score <= opts.ResidualThreshold
	} else {
		rep.Warnings = append(rep.Warnings, "no karyotype could be scored")
	}
	return rep, nil
}

package ccf

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/katalvlaran/subclone/report"
	"gonum.org/v1/gonum/stat"
)

var _ report.Artifact = (*Result)(nil)

// Summarize reports counts and the median CCF.
func (r *Result) Summarize() string {
	median := 0.0
	if len(r.Estimates) > 0 {
		vals := r.CCFs(nil)
		slices.Sort(vals)
		median = stat.Quantile(0.5, stat.Empirical, vals, nil)
	}
	return fmt.Sprintf("CCF estimated=%d skipped=%d low_confidence=%d clamped=%d median_ccf=%.3f",
		len(r.Estimates), r.Skipped, r.LowConfidence, r.Clamped, median)
}

// Export writes one TSV row per estimated mutation. The cluster column is
// empty for mutations outside the fit.
func (r *Result) Export(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "chr\tfrom\tto\tref\talt\tDP\tNV\tvaf\tkaryotype\tmultiplicity\tccf\tconfidence\tlow_confidence\tis_driver\tcluster"); err != nil {
		return err
	}
	for _, e := range r.Estimates {
		var (
			chr      string
			from, to int64
			ref, alt string
			dp, nv   int
			driver   bool
		)
		if r.annotation != nil && e.Index < len(r.annotation.Mutations) {
			m := r.annotation.Mutations[e.Index].Mutation
			chr, from, to, ref, alt, dp, nv, driver = m.Chromosome, m.Start, m.End, m.Ref, m.Alt, m.DP, m.NV, m.Driver
		}
		cluster := ""
		if e.Cluster != Unassigned {
			cluster = strconv.Itoa(e.Cluster)
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%d\t%d\t%.6f\t%s\t%d\t%.6f\t%.4f\t%t\t%t\t%s\n",
			chr, from, to, ref, alt, dp, nv, e.VAF, e.Karyotype, e.Multiplicity, e.CCF, e.Confidence, e.LowConfidence, driver, cluster); err != nil {
			return err
		}
	}
	return nil
}

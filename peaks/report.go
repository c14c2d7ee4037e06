package peaks

import (
	"fmt"
	"io"

	"github.com/katalvlaran/subclone/report"
)

var _ report.Artifact = (*QCReport)(nil)

// Summarize renders the pass/fail call with the global score and counters.
func (r *QCReport) Summarize() string {
	status := "FAIL"
	if r.Pass {
		status = "PASS"
	}
	scored := 0
	for _, k := range r.Karyotypes {
		if k.Scored {
			scored++
		}
	}
	score := "n/a"
	if r.Scored {
		score = fmt.Sprintf("%.4f", r.Score)
	}
	return fmt.Sprintf("QC %s score=%s threshold=%.4f karyotypes=%d/%d excluded=%d conflicts=%d warnings=%d",
		status, score, r.Threshold, scored, len(r.Karyotypes), r.Excluded, r.Conflicts, len(r.Warnings))
}

// Export writes one TSV row per expected peak: matched pairs carry the
// observed value and residual, unmatched expected peaks leave them empty.
func (r *QCReport) Export(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "sample\tkaryotype\tn\tmultiplicity\texpected\tobserved\tresidual\tkaryotype_score\tpass"); err != nil {
		return err
	}
	for _, k := range r.Karyotypes {
		ks := ""
		if k.Scored {
			ks = fmt.Sprintf("%.6f", k.Score)
		}
		for _, m := range k.Matches {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.6f\t%.6f\t%.6f\t%s\t%t\n",
				r.SampleID, k.Karyotype, k.N, m.Multiplicity, m.Expected, m.Observed, m.Residual, ks, r.Pass); err != nil {
				return err
			}
		}
		for _, e := range k.UnmatchedExpected {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.6f\t\t\t%s\t%t\n",
				r.SampleID, k.Karyotype, k.N, e.Multiplicity, e.VAF, ks, r.Pass); err != nil {
				return err
			}
		}
	}
	return nil
}

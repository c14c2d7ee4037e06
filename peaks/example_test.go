package peaks_test

import (
	"fmt"

	"github.com/katalvlaran/subclone/genome"
	"github.com/katalvlaran/subclone/peaks"
)

// ExampleExpectedPeaks lists the clonal peaks of a 2:1 segment at purity 0.6.
//
//	VAF = m·p / (p·3 + 2·0.4) = m·0.6/2.6
func ExampleExpectedPeaks() {
	exp, err := peaks.ExpectedPeaks(0.6, genome.Karyotype{Major: 2, Minor: 1})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, e := range exp {
		fmt.Printf("m=%d vaf=%.4f\n", e.Multiplicity, e.VAF)
	}
	// Output:
	// m=1 vaf=0.2308
	// m=2 vaf=0.4615
}

// ExampleMatchClosest pairs two empirical peaks with the expected ones; the
// m=2 expectation stays unmatched.
func ExampleMatchClosest() {
	found := []peaks.Peak{{VAF: 0.41}, {VAF: 0.12}}
	exp := []peaks.ExpectedPeak{{Multiplicity: 1, VAF: 0.4}, {Multiplicity: 2, VAF: 0.8}}

	ms, ue, up := peaks.MatchClosest(found, exp)
	for _, m := range ms {
		fmt.Printf("m=%d residual=%+.2f\n", m.Multiplicity, m.Residual)
	}
	fmt.Println("unmatched expected:", len(ue), "unmatched peaks:", len(up))
	// Output:
	// m=1 residual=+0.01
	// m=2 residual=-0.68
	// unmatched expected: 0 unmatched peaks: 0
}

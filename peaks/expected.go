package peaks

import (
	"fmt"
	"math"

	"github.com/katalvlaran/subclone/genome"
)

// ExpectedVAF returns the VAF of a clonal mutation carried by m of the tumour
// copies of a major:minor segment at purity p:
//
//	m·p / (p·(major+minor) + 2·(1−p))
//
// Errors:
//   - ErrBadPurity if p ∉ (0,1].
//   - ErrUnsupportedKaryotype if major+minor == 0 or major == 0.
//   - ErrBadMultiplicity if m ∉ [1, major].
//
// Complexity: O(1).
func ExpectedVAF(purity float64, major, minor, m int) (float64, error) {
	if math.IsNaN(purity) || purity <= 0 || purity > 1 {
		return 0, ErrBadPurity
	}
	if major < 0 || minor < 0 || major+minor == 0 || major == 0 {
		return 0, fmt.Errorf("%w: %d:%d", ErrUnsupportedKaryotype, major, minor)
	}
	if m < 1 || m > major {
		return 0, fmt.Errorf("%w: m=%d for %d:%d", ErrBadMultiplicity, m, major, minor)
	}
	return float64(m) * purity / (purity*float64(major+minor) + 2*(1-purity)), nil
}

// ExpectedPeaks lists the expected peak of every multiplicity 1..major of k.
func ExpectedPeaks(purity float64, k genome.Karyotype) ([]ExpectedPeak, error) {
	k = normalize(k)
	out := make([]ExpectedPeak, 0, k.Major)
	for m := 1; m <= k.Major; m++ {
		v, err := ExpectedVAF(purity, k.Major, k.Minor, m)
		if err != nil {
			return nil, err
		}
		out = append(out, ExpectedPeak{Multiplicity: m, VAF: v})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKaryotype, k)
	}
	return out, nil
}

// normalize swaps major and minor if they were given in the wrong order.
func normalize(k genome.Karyotype) genome.Karyotype {
	if k.Minor > k.Major {
		k.Major, k.Minor = k.Minor, k.Major
	}
	return k
}

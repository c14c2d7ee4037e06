package peaks

import (
	"math"
	"slices"
)

// candidate is one (peak, expected) pair considered by MatchClosest.
type candidate struct {
	p, e int     // indices into peaks and expected
	dist float64 // |peak − expected|
}

// MatchClosest pairs empirical peaks with expected peaks by minimal absolute
// distance. Pairs are accepted greedily in increasing distance while both
// sides are unclaimed, so every expected value is claimed at most once and
// every peak takes its nearest still-available expected value.
//
// Ties in distance are broken by peak index, then expected index, which
// keeps the output deterministic. Matches are returned ordered by
// multiplicity.
//
// Complexity: O(P·E·log(P·E)).
func MatchClosest(found []Peak, expected []ExpectedPeak) (matches []Match, unmatchedExpected []ExpectedPeak, unmatchedPeaks []Peak) {
	cands := make([]candidate, 0, len(found)*len(expected))
	var i, j int
	for i = range found {
		for j = range expected {
			cands = append(cands, candidate{p: i, e: j, dist: math.Abs(found[i].VAF - expected[j].VAF)})
		}
	}
	slices.SortStableFunc(cands, func(a, b candidate) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		case a.p != b.p:
			return a.p - b.p
		default:
			return a.e - b.e
		}
	})

	usedP := make([]bool, len(found))
	usedE := make([]bool, len(expected))
	for _, c := range cands {
		if usedP[c.p] || usedE[c.e] {
			continue
		}
		usedP[c.p], usedE[c.e] = true, true
		matches = append(matches, Match{
			Multiplicity: expected[c.e].Multiplicity,
			Expected:     expected[c.e].VAF,
			Observed:     found[c.p].VAF,
			Residual:     found[c.p].VAF - expected[c.e].VAF,
		})
	}
	slices.SortFunc(matches, func(a, b Match) int { return a.Multiplicity - b.Multiplicity })

	for j = range expected {
		if !usedE[j] {
			unmatchedExpected = append(unmatchedExpected, expected[j])
		}
	}
	for i = range found {
		if !usedP[i] {
			unmatchedPeaks = append(unmatchedPeaks, found[i])
		}
	}
	return matches, unmatchedExpected, unmatchedPeaks
}

// meanAbsResidual returns the mean |residual| of ms (0 for none).
func meanAbsResidual(ms []Match) float64 {
	if len(ms) == 0 {
		return 0
	}
	var s float64
	for _, m := range ms {
		s += math.Abs(m.Residual)
	}
	return s / float64(len(ms))
}

// Package selection scores every fit of a grid and picks the best
// supported mixture model.
//
// Score (lower is better):
//
//	score = −2·LL + p·ln(n) + λ·Σ_i H(r_i)
//
// where p = 1 + 3·clusters free parameters (tail shape, and per cluster its
// mean, variance and weight), n is the number of points and H(r_i) the
// Shannon entropy of point i's responsibility row. The entropy term
// penalises models whose clusters overlap; λ is Options.EntropyWeight.
//
// Policy:
//
//   - Only converged fits are eligible.
//   - Scores within Options.TieTolerance of the minimum are ties; ties
//     prefer fewer clusters, then the lower seed.
//   - No eligible fit yields ErrNoViableModel.
//
// Complexity: O(F·n·(k+1)) for F fits.
package selection

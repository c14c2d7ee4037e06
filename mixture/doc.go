// Package mixture fits a tail + k-cluster finite mixture to a 1-D allele
// frequency (VAF) or cancer cell fraction (CCF) distribution by
// expectation-maximisation.
//
// What:
//
//   - Tail: truncated power law on [x_min, 1], x_min = min(data),
//     f(x) = α·x_min^α·x^−(α+1) / (1 − x_min^α). It absorbs the neutral,
//     low-frequency mutations. The shape α is re-estimated by bisection on
//     the responsibility-weighted score equation.
//   - Clusters: Normal (closed-form weighted mean and variance) or Beta
//     (weighted moments, accepted only if they do not lower the component's
//     expected log-likelihood).
//   - Fit runs one (k, seed) configuration; Tasks enumerates a Grid of them.
//   - Assign recomputes responsibilities for fixed parameters. A converged
//     fit is a fixed point: Assign(fit.Components, x) equals
//     fit.Responsibilities.
//
// Invariants:
//
//   - Component 0 is always the tail; clusters follow sorted by mean.
//   - Mixing weights sum to 1; every responsibility row sums to 1.
//   - The stored NLL trajectory is non-increasing.
//
// Determinism:
//
//   - Initialisation draws from a SplitMix64-derived stream keyed by
//     (seed, k); the same inputs always yield the same FitResult.
//
// Complexity:
//
//   - One EM iteration is O(n·(k+1)); the tail update adds O(n·log(1/tol)).
package mixture

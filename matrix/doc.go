// SPDX-License-Identifier: MIT

// Package matrix provides the row-major Dense matrix used to hold mixture
// responsibilities (rows = observations, columns = components) together with
// the few row-stochastic kernels the fitting code needs.
//
// What:
//
//   - Dense: contiguous row-major storage with bounds-checked At/Set that
//     return sentinel errors instead of panicking, plus RowView for hot loops.
//   - NormalizeRowsL1: rescale each row to sum to 1 (degenerate rows untouched).
//   - RowSums / ColSums: per-row totals and per-component responsibility mass.
//   - RowEntropy: Shannon entropy −Σ r·ln r of each row.
//   - AllClose: |a−b| ≤ atol + rtol·|b| element-wise comparison.
//
// Determinism:
//
//   - Fixed i→j loop order everywhere; no maps, no randomness.
//
// Complexity:
//
//   - NewDense O(r·c); At/Set O(1); every kernel O(r·c).
package matrix

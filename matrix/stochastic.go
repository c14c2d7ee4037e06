// SPDX-License-Identifier: MIT

// Package matrix - row-stochastic kernels.
//
// These kernels serve mixture responsibilities: every row is a discrete
// distribution over components.

package matrix

import "math"

const (
	opNormalizeRowsL1 = "NormalizeRowsL1"
	opRowSums         = "RowSums"
	opColSums         = "ColSums"
	opRowEntropy      = "RowEntropy"
	opAllClose        = "AllClose"
)

// NormalizeRowsL1 scales each row in place so that Σ_j |x_ij| == 1.
// Rows with zero norm are left unchanged. It returns the original norms.
//
// Complexity: Time O(r*c), Space O(r).
func NormalizeRowsL1(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf(opNormalizeRowsL1, ErrNilMatrix)
	}
	norms := make([]float64, m.r)
	var (
		i, j int
		s, v float64
	)
	for i = 0; i < m.r; i++ {
		base := i * m.c
		s = 0
		for j = 0; j < m.c; j++ {
			v = m.data[base+j]
			if v < 0 {
				v = -v
			}
			s += v
		}
		norms[i] = s
		if s == 0 {
			continue // degenerate row stays as is
		}
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, matrixErrorf(opNormalizeRowsL1, ErrNaNInf)
		}
		for j = 0; j < m.c; j++ {
			m.data[base+j] /= s
		}
	}
	return norms, nil
}

// RowSums returns Σ_j x_ij for each row.
// Complexity: O(r*c).
func RowSums(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf(opRowSums, ErrNilMatrix)
	}
	out := make([]float64, m.r)
	var i, j int
	for i = 0; i < m.r; i++ {
		base := i * m.c
		for j = 0; j < m.c; j++ {
			out[i] += m.data[base+j]
		}
	}
	return out, nil
}

// ColSums returns Σ_i x_ij for each column (the responsibility mass of each
// component).
// Complexity: O(r*c).
func ColSums(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf(opColSums, ErrNilMatrix)
	}
	out := make([]float64, m.c)
	var i, j int
	for i = 0; i < m.r; i++ {
		base := i * m.c
		for j = 0; j < m.c; j++ {
			out[j] += m.data[base+j]
		}
	}
	return out, nil
}

// RowEntropy returns −Σ_j x_ij·ln x_ij for each row, with 0·ln 0 = 0.
// Negative entries are rejected with ErrNaNInf since they are not
// probabilities.
// Complexity: O(r*c).
func RowEntropy(m *Dense) ([]float64, error) {
	if m == nil {
		return nil, matrixErrorf(opRowEntropy, ErrNilMatrix)
	}
	out := make([]float64, m.r)
	var (
		i, j int
		v, h float64
	)
	for i = 0; i < m.r; i++ {
		base := i * m.c
		h = 0
		for j = 0; j < m.c; j++ {
			v = m.data[base+j]
			if v < 0 || math.IsNaN(v) {
				return nil, matrixErrorf(opRowEntropy, ErrNaNInf)
			}
			if v > 0 {
				h -= v * math.Log(v)
			}
		}
		out[i] = h
	}
	return out, nil
}

// AllClose checks element-wise |a−b| ≤ atol + rtol·|b| for identical shapes.
// Negative tolerances are treated as their absolute values.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf (non-finite tolerance).
//
// Complexity: O(r*c), early exit on the first violation.
func AllClose(a, b *Dense, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	if a == nil || b == nil {
		return false, matrixErrorf(opAllClose, ErrNilMatrix)
	}
	if a.r != b.r || a.c != b.c {
		return false, matrixErrorf(opAllClose, ErrDimensionMismatch)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	for idx := range a.data {
		if math.Abs(a.data[idx]-b.data[idx]) > atol+rtol*math.Abs(b.data[idx]) {
			return false, nil
		}
	}
	return true, nil
}

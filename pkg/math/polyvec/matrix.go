package polyvec

import (
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/pool"
)

// Matrix is a matrix of ring elements in the transform domain, stored by rows.
type Matrix []NTTVector

// NewMatrix returns a zero rows × cols matrix.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make(NTTVector, cols)
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the number of columns, assuming m is rectangular.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Add returns m + n.
func (m Matrix) Add(n Matrix) Matrix {
	mustMatch("Matrix.Add", len(m), len(n))
	out := make(Matrix, len(m))
	for i := range m {
		out[i] = m[i].Add(n[i])
	}
	return out
}

// Equal reports whether m and n have the same shape and entries.
func (m Matrix) Equal(n Matrix) bool {
	if len(m) != len(n) {
		return false
	}
	for i := range m {
		if len(m[i]) != len(n[i]) {
			return false
		}
		for j := range m[i] {
			if m[i][j] != n[i][j] {
				return false
			}
		}
	}
	return true
}

// Apply transforms v once and returns m·v̂, left in the transform domain.
func (m Matrix) Apply(pl *pool.Pool, v Vector) NTTVector {
	return m.MulNTT(pl, v.NTT())
}

// MulNTT returns m·v for a vector already in the transform domain.
//
// Every row is the sum over its columns of pointwise Montgomery products; rows are
// evaluated on pl. The result is not reduced.
func (m Matrix) MulNTT(pl *pool.Pool, v NTTVector) NTTVector {
	for _, row := range m {
		mustMatch("Matrix.MulNTT", len(row), len(v))
	}
	out := make(NTTVector, len(m))
	pl.Parallelize(len(m), func(i int) {
		row := m[i]
		var t ring.NTTPoly
		for j := range row {
			t.PointwiseMontgomery(&row[j], &v[j])
			out[i].Add(&out[i], &t)
		}
	})
	return out
}

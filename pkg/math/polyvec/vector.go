// Package polyvec lifts ring operations to vectors and matrices of ring elements.
//
// Operations on two vectors panic when their lengths differ; that is a
// programming error rather than a recoverable condition.
package polyvec

import (
	"fmt"

	"github.com/taurusgroup/dilizium/pkg/math/ring"
)

// Vector is a module element in the coefficient domain.
type Vector []ring.Poly

// NTTVector is a module element in the transform domain.
type NTTVector []ring.NTTPoly

func mustMatch(op string, a, b int) {
	if a != b {
		panic(fmt.Sprintf("polyvec.%s: length mismatch (%d != %d)", op, a, b))
	}
}

// Copy returns a deep copy of v.
func (v Vector) Copy() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Add returns v + w.
func (v Vector) Add(w Vector) Vector {
	mustMatch("Add", len(v), len(w))
	out := make(Vector, len(v))
	for i := range v {
		out[i].Add(&v[i], &w[i])
	}
	return out
}

// Sub returns v - w.
func (v Vector) Sub(w Vector) Vector {
	mustMatch("Sub", len(v), len(w))
	out := make(Vector, len(v))
	for i := range v {
		out[i].Sub(&v[i], &w[i])
	}
	return out
}

// ScalarMul returns c·v.
func (v Vector) ScalarMul(c int32) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i].ScalarMul(&v[i], c)
	}
	return out
}

// Reduce applies ring.Poly.Reduce in place and returns v.
func (v Vector) Reduce() Vector {
	for i := range v {
		v[i].Reduce()
	}
	return v
}

// CAddQ applies ring.Poly.CAddQ in place and returns v.
func (v Vector) CAddQ() Vector {
	for i := range v {
		v[i].CAddQ()
	}
	return v
}

// Freeze applies ring.Poly.Freeze in place and returns v.
func (v Vector) Freeze() Vector {
	for i := range v {
		v[i].Freeze()
	}
	return v
}

// Center applies ring.Poly.Center in place and returns v.
func (v Vector) Center() Vector {
	for i := range v {
		v[i].Center()
	}
	return v
}

// NTT returns the transform of every component.
func (v Vector) NTT() NTTVector {
	out := make(NTTVector, len(v))
	for i := range v {
		out[i] = v[i].NTT()
	}
	return out
}

// Decompose splits every component with r.
func (v Vector) Decompose(r ring.Rounder) (lo, hi Vector) {
	lo, hi = make(Vector, len(v)), make(Vector, len(v))
	for i := range v {
		lo[i], hi[i] = r.Decompose(&v[i])
	}
	return lo, hi
}

// HighBits returns the high part of every component.
func (v Vector) HighBits(r ring.Rounder) Vector {
	_, hi := v.Decompose(r)
	return hi
}

// LowBits returns the low part of every component.
func (v Vector) LowBits(r ring.Rounder) Vector {
	lo, _ := v.Decompose(r)
	return lo
}

// CheckNorm reports whether any component violates bound.
func (v Vector) CheckNorm(bound int32) bool {
	for i := range v {
		if v[i].CheckNorm(bound) {
			return true
		}
	}
	return false
}

// Equal reports whether v and w have the same length and coefficients.
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// Add returns v + w.
func (v NTTVector) Add(w NTTVector) NTTVector {
	mustMatch("NTTVector.Add", len(v), len(w))
	out := make(NTTVector, len(v))
	for i := range v {
		out[i].Add(&v[i], &w[i])
	}
	return out
}

// Reduce applies ring.NTTPoly.Reduce in place and returns v.
func (v NTTVector) Reduce() NTTVector {
	for i := range v {
		v[i].Reduce()
	}
	return v
}

// InvNTT returns the inverse transform of every component, scaled by 2³².
func (v NTTVector) InvNTT() Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i].InvNTT()
	}
	return out
}

// Scale returns the pointwise Montgomery product of every component with c.
func (v NTTVector) Scale(c *ring.NTTPoly) NTTVector {
	out := make(NTTVector, len(v))
	for i := range v {
		out[i].PointwiseMontgomery(&v[i], c)
	}
	return out
}

// MulPoly returns c·v in the coefficient domain, given ĉ = NTT(c).
func (v Vector) MulPoly(cHat *ring.NTTPoly) Vector {
	return v.NTT().Scale(cHat).InvNTT()
}

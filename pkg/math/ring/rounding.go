package ring

import (
	"errors"
	"fmt"
)

// ErrUnsupportedGamma2 is returned for a low-order rounding range other than
// (Q-1)/32 or (Q-1)/88.
var ErrUnsupportedGamma2 = errors.New("ring: unsupported gamma2")

// Rounder splits coefficients into high and low parts with respect to 2·gamma2.
type Rounder struct {
	gamma2 int32
}

// NewRounder returns a Rounder for gamma2, which must be (Q-1)/32 or (Q-1)/88.
func NewRounder(gamma2 int32) (Rounder, error) {
	if gamma2 != (Q-1)/32 && gamma2 != (Q-1)/88 {
		return Rounder{}, fmt.Errorf("ring.NewRounder: %d: %w", gamma2, ErrUnsupportedGamma2)
	}
	return Rounder{gamma2: gamma2}, nil
}

// Gamma2 returns the low-order rounding range.
func (r Rounder) Gamma2() int32 { return r.gamma2 }

// Alpha returns the step size 2·gamma2.
func (r Rounder) Alpha() int32 { return 2 * r.gamma2 }

// Modulus returns (Q-1)/Alpha, the number of distinct high parts.
func (r Rounder) Modulus() int32 { return (Q - 1) / r.Alpha() }

// Decompose returns (a0, a1) with a ≡ a0 + a1·2·gamma2 (mod Q) and
// a0 in [-gamma2, gamma2]. When a - a0 would be Q-1, a1 is set to 0 and a0
// decreased by one.
func (r Rounder) Decompose(a *Poly) (a0, a1 Poly) {
	for i, c := range a {
		a0[i], a1[i] = r.decompose(freeze(c))
	}
	return a0, a1
}

func (r Rounder) decompose(a int32) (int32, int32) {
	a1 := (a + 127) >> 7
	if r.gamma2 == (Q-1)/32 {
		a1 = (a1*1025 + (1 << 21)) >> 22
		a1 &= 15
	} else {
		a1 = (a1*11275 + (1 << 23)) >> 24
		a1 ^= ((43 - a1) >> 31) & a1
	}
	a0 := a - a1*2*r.gamma2
	a0 -= (((Q-1)/2 - a0) >> 31) & Q
	return a0, a1
}

// DecomposeGeneric computes the same split as Decompose using plain division,
// without relying on constants tied to a particular gamma2.
func (r Rounder) DecomposeGeneric(a *Poly) (a0, a1 Poly) {
	alpha := r.Alpha()
	for i, c := range a {
		c = freeze(c)
		c0 := c % alpha
		if c0 > alpha/2 {
			c0 -= alpha
		}
		if c-c0 == Q-1 {
			a0[i], a1[i] = c0-1, 0
		} else {
			a0[i], a1[i] = c0, (c-c0)/alpha
		}
	}
	return a0, a1
}

// HighBits returns the a1 part of Decompose.
func (r Rounder) HighBits(a *Poly) Poly {
	_, a1 := r.Decompose(a)
	return a1
}

// LowBits returns the a0 part of Decompose.
func (r Rounder) LowBits(a *Poly) Poly {
	a0, _ := r.Decompose(a)
	return a0
}

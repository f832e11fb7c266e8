// Package ring implements arithmetic in Z_Q[X]/(X^N + 1) for Q = 8380417, N = 256.
//
// Elements are tagged by domain: Poly holds coefficients in normal order, NTTPoly
// holds the bit-reversed output of the number theoretic transform. Only NTTPoly
// supports pointwise multiplication, so a product of two coefficient-domain
// values cannot be formed by mistake.
package ring

const (
	// N is the degree of the ring.
	N = 256
	// Q is the prime modulus, 2²³ - 2¹³ + 1.
	Q = 8380417
	// QInv is Q⁻¹ mod 2³².
	QInv = 58728449

	// maxNormBound is the largest bound CheckNorm gives a meaningful answer for.
	maxNormBound = (Q - 1) / 8
)

// Poly is a ring element in the coefficient domain.
type Poly [N]int32

// NTTPoly is a ring element in the transform domain.
type NTTPoly [N]int32

// Add sets p = a + b, each coefficient reduced with a truncated remainder mod Q.
func (p *Poly) Add(a, b *Poly) *Poly {
	for i := range p {
		p[i] = (a[i] + b[i]) % Q
	}
	return p
}

// Sub sets p = a - b, each coefficient reduced with a truncated remainder mod Q.
func (p *Poly) Sub(a, b *Poly) *Poly {
	for i := range p {
		p[i] = (a[i] - b[i]) % Q
	}
	return p
}

// ScalarMul sets p = c·a mod Q.
func (p *Poly) ScalarMul(a *Poly, c int32) *Poly {
	for i := range p {
		p[i] = int32(int64(a[i]) * int64(c) % Q)
	}
	return p
}

// Reduce maps every coefficient to a representative in [-6283009, 6283007].
func (p *Poly) Reduce() *Poly {
	for i := range p {
		p[i] = reduce32(p[i])
	}
	return p
}

// CAddQ adds Q to every negative coefficient.
func (p *Poly) CAddQ() *Poly {
	for i := range p {
		p[i] = caddq(p[i])
	}
	return p
}

// Freeze maps every coefficient to its canonical representative in [0, Q).
func (p *Poly) Freeze() *Poly {
	for i := range p {
		p[i] = freeze(p[i])
	}
	return p
}

// Center maps every coefficient to its centered representative in
// [-(Q-1)/2, (Q-1)/2].
func (p *Poly) Center() *Poly {
	for i := range p {
		p[i] = center(p[i])
	}
	return p
}

// CheckNorm reports whether some coefficient has a centered absolute value of at
// least bound. Bounds above (Q-1)/8 always report a violation.
func (p *Poly) CheckNorm(bound int32) bool {
	if bound > maxNormBound {
		return true
	}
	for _, c := range p {
		c = center(c)
		if c < 0 {
			c = -c
		}
		if c >= bound {
			return true
		}
	}
	return false
}

// Add sets a = x + y, each coefficient reduced with a truncated remainder mod Q.
func (a *NTTPoly) Add(x, y *NTTPoly) *NTTPoly {
	for i := range a {
		a[i] = (x[i] + y[i]) % Q
	}
	return a
}

// Reduce maps every coefficient to a representative in [-6283009, 6283007].
func (a *NTTPoly) Reduce() *NTTPoly {
	for i := range a {
		a[i] = reduce32(a[i])
	}
	return a
}

func freeze(a int32) int32 {
	a %= Q
	return a + ((a >> 31) & Q)
}

func center(a int32) int32 {
	a = freeze(a)
	if a > (Q-1)/2 {
		a -= Q
	}
	return a
}

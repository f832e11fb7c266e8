// Package commitment implements a linear commitment over module lattices.
//
// A key is a pair of matrices
//
//	A1 = [ I_n | U1 ]          (n × k)
//	A2 = [ 0_{l×n} | I_l | U2 ] (l × k)
//
// and a commitment to x ∈ R_Q^l with randomness r ∈ R_Q^k is
//
//	c1 = A1·r,  c2 = A2·r + x.
//
// Commitments are additively homomorphic: the sum of the commitments to (r, x)
// and (r', x') is the commitment to (r + r', x + x').
package commitment

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
	"github.com/taurusgroup/dilizium/pkg/pool"
)

// Key is a commitment key, stored in the transform domain.
type Key struct {
	A1 polyvec.Matrix
	A2 polyvec.Matrix
}

// NewKey derives the n × k matrix A1 and the l × k matrix A2 from seed.
//
// The uniform entries of A1 at (i, j) use nonce (i << 8) + j, those of A2 use
// ((n + i) << 8) + j, so no two entries share an XOF stream.
func NewKey(pl *pool.Pool, seed []byte, n, k, l int) *Key {
	if n <= 0 || l <= 0 || k <= n+l || k > 256 || n+l > 256 {
		panic(fmt.Sprintf("commitment.NewKey: invalid dimensions n=%d k=%d l=%d", n, k, l))
	}
	one := polyvec.Constant(1)
	a1 := polyvec.NewMatrix(n, k)
	a2 := polyvec.NewMatrix(l, k)

	// rows of A1 and A2 are numbered 0, ..., n+l-1; only the U blocks are sampled
	pl.Parallelize(n+l, func(i int) {
		row, first := polyvec.NTTVector(nil), n
		if i < n {
			row = a1[i]
		} else {
			row, first = a2[i-n], n+l
		}
		row[i] = one
		for j := first; j < k; j++ {
			row[j] = sample.Uniform(sample.SHAKE128, seed, uint16(i<<8+j))
		}
	})
	return &Key{A1: a1, A2: a2}
}

// RandomnessLength returns the number of polynomials in r.
func (key *Key) RandomnessLength() int { return key.A1.Cols() }

// ValueLength returns the number of polynomials in a committed value x.
func (key *Key) ValueLength() int { return key.A2.Rows() }

// Commit returns (A1·r, A2·r + x) with coefficients in [0, Q).
func (key *Key) Commit(pl *pool.Pool, r, x polyvec.Vector) *Value {
	if len(r) != key.RandomnessLength() || len(x) != key.ValueLength() {
		panic(fmt.Sprintf("commitment.Commit: got |r| = %d, |x| = %d, expected %d, %d",
			len(r), len(x), key.RandomnessLength(), key.ValueLength()))
	}
	rHat := r.NTT()
	c1 := key.A1.MulNTT(pl, rHat).Reduce().InvNTT().Freeze()
	c2 := key.A2.MulNTT(pl, rHat).Reduce().InvNTT().Add(x).Freeze()
	return &Value{C1: c1, C2: c2}
}

// Open reports whether c is the commitment to x with randomness r.
// Malformed inputs are reported as false.
func (key *Key) Open(pl *pool.Pool, r, x polyvec.Vector, c *Value) bool {
	if c == nil || len(r) != key.RandomnessLength() || len(x) != key.ValueLength() {
		return false
	}
	return key.Commit(pl, r, x).Equal(c)
}

// SampleRandomness returns k polynomials with coefficients uniform in
// [-beta, beta], drawn from rand.
func SampleRandomness(rand io.Reader, k int, beta int32) polyvec.Vector {
	return polyvec.BoundedVector(rand, k, beta)
}

// Value is a commitment (c1, c2).
type Value struct {
	C1 polyvec.Vector
	C2 polyvec.Vector
}

// Add returns the coordinatewise sum of c and d mod Q.
func (c *Value) Add(d *Value) *Value {
	return &Value{
		C1: c.C1.Add(d.C1).Freeze(),
		C2: c.C2.Add(d.C2).Freeze(),
	}
}

// Equal reports whether c and d are the same commitment.
func (c *Value) Equal(d *Value) bool {
	if c == nil || d == nil {
		return c == d
	}
	return c.C1.Equal(d.C1) && c.C2.Equal(d.C2)
}

// Validate checks that c has the shape produced by key and canonical coefficients.
func (c *Value) Validate(key *Key) error {
	if c == nil {
		return errors.New("commitment: nil value")
	}
	if len(c.C1) != key.A1.Rows() || len(c.C2) != key.ValueLength() {
		return fmt.Errorf("commitment: incorrect shape (got %d, %d, expected %d, %d)",
			len(c.C1), len(c.C2), key.A1.Rows(), key.ValueLength())
	}
	for _, v := range []polyvec.Vector{c.C1, c.C2} {
		for i := range v {
			for _, x := range v[i] {
				if x < 0 || x >= ring.Q {
					return errors.New("commitment: coefficient out of range")
				}
			}
		}
	}
	return nil
}

// WriteTo implements io.WriterTo.
func (c *Value) WriteTo(w io.Writer) (int64, error) {
	n1, err := c.C1.WriteTo(w)
	if err != nil {
		return n1, err
	}
	n2, err := c.C2.WriteTo(w)
	return n1 + n2, err
}

// Domain implements hash.WriterToWithDomain.
func (*Value) Domain() string { return "commitment.Value" }

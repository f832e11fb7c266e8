package polyvec

import (
	"fmt"
	"io"
	"math"

	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
	"github.com/taurusgroup/dilizium/pkg/pool"
)

// ExpandMatrix samples a uniform rows × cols matrix from rho.
// Entry (i, j) uses nonce ((i + rowOffset) << 8) + j.
func ExpandMatrix(pl *pool.Pool, xof sample.XOF, rho []byte, rows, cols, rowOffset int) Matrix {
	if rows+rowOffset > 256 || cols > 256 {
		panic(fmt.Sprintf("polyvec.ExpandMatrix: %d×%d at offset %d exceeds nonce space", rows, cols, rowOffset))
	}
	m := NewMatrix(rows, cols)
	pl.Parallelize(rows, func(i int) {
		for j := range m[i] {
			m[i][j] = sample.Uniform(xof, rho, uint16((i+rowOffset)<<8+j))
		}
	})
	return m
}

// SecretVector samples length small polynomials, using nonce + i for entry i.
func SecretVector(eta sample.Eta, xof sample.XOF, seed []byte, length int, nonce uint16) Vector {
	if int(nonce)+length-1 > math.MaxUint16 {
		panic(fmt.Sprintf("polyvec.SecretVector: nonce %d overflows for length %d", nonce, length))
	}
	v := make(Vector, length)
	for i := range v {
		v[i] = eta.Sample(xof, seed, nonce+uint16(i))
	}
	return v
}

// MaskVector samples length masking polynomials for attempt kappa, using
// nonce length·kappa + i for entry i.
func MaskVector(mask sample.Mask, xof sample.XOF, seed []byte, length, kappa int) Vector {
	if kappa < 0 || length*(kappa+1)-1 > math.MaxUint16 {
		panic(fmt.Sprintf("polyvec.MaskVector: kappa %d overflows for length %d", kappa, length))
	}
	v := make(Vector, length)
	for i := range v {
		v[i] = mask.Sample(xof, seed, uint16(length*kappa+i))
	}
	return v
}

// BoundedVector samples length polynomials with coefficients uniform in
// [-bound, bound] from rand.
func BoundedVector(rand io.Reader, length int, bound int32) Vector {
	v := make(Vector, length)
	for i := range v {
		v[i] = sample.Bounded(rand, bound)
	}
	return v
}

// Constant returns the transform of the constant polynomial c.
func Constant(c int32) ring.NTTPoly {
	var p ring.Poly
	p[0] = c
	return p.NTT()
}

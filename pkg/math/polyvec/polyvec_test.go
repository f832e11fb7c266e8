package polyvec

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
	"github.com/taurusgroup/dilizium/pkg/pool"
)

var seed = []byte("polyvec test seed, 32 bytes long")

func smallVector(rng *rand.Rand, length int, bound int32) Vector {
	v := make(Vector, length)
	for i := range v {
		for j := range v[i] {
			v[i][j] = rng.Int31n(2*bound+1) - bound
		}
	}
	return v
}

func TestVectorArithmetic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u, v := smallVector(rng, 4, 100), smallVector(rng, 4, 100)

	assert.True(t, u.Add(v).Sub(v).Equal(u))
	assert.True(t, u.Sub(u).Equal(make(Vector, 4)))
	assert.True(t, u.Add(u).Equal(u.ScalarMul(2)))
	assert.False(t, u.Equal(v))
	assert.False(t, u.Equal(u[:3]))

	c := u.Copy()
	c[0][0]++
	assert.False(t, c.Equal(u))

	assert.Panics(t, func() { u.Add(v[:3]) })
	assert.Panics(t, func() { u.Sub(v[:2]) })
	assert.Panics(t, func() { u.NTT().Add(v[:1].NTT()) })
}

func TestFreezeCenter(t *testing.T) {
	v := make(Vector, 2)
	v[0][0], v[1][5] = -3, ring.Q+4
	v.Freeze()
	assert.Equal(t, int32(ring.Q-3), v[0][0])
	assert.Equal(t, int32(4), v[1][5])
	v.Center()
	assert.Equal(t, int32(-3), v[0][0])
}

func TestMatrixIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	v := smallVector(rng, 3, 1<<17)

	one := Constant(1)
	id := NewMatrix(3, 3)
	for i := range id {
		id[i][i] = one
	}
	got := id.Apply(nil, v).Reduce().InvNTT().Freeze()
	assert.True(t, got.Equal(v.Copy().Freeze()))
}

func TestMatrixLinearity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	A := ExpandMatrix(nil, sample.SHAKE128, seed, 4, 4, 0)
	u, v := smallVector(rng, 4, 1<<17), smallVector(rng, 4, 2)

	eval := func(pl *pool.Pool, x Vector) Vector {
		return A.Apply(pl, x).Reduce().InvNTT().Freeze()
	}
	pl := pool.NewPool(2)
	defer pl.TearDown()

	assert.True(t, eval(nil, u).Equal(eval(pl, u)))
	sum := eval(nil, u).Add(eval(nil, v)).Freeze()
	assert.True(t, eval(nil, u.Add(v)).Equal(sum))

	assert.Panics(t, func() { A.Apply(nil, u[:3]) })
}

func TestMulPoly(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	v := smallVector(rng, 2, 5)
	var c ring.Poly
	c[1] = 1 // multiplication by X shifts and negates the top coefficient
	cHat := c.NTT()
	got := v.MulPoly(&cHat).Freeze()
	for i := range v {
		want := v[i]
		want[0] = -v[i][ring.N-1]
		copy(want[1:], v[i][:ring.N-1])
		want.Freeze()
		assert.Equal(t, want, got[i])
	}
}

func TestMatrixAddEqual(t *testing.T) {
	A := ExpandMatrix(nil, sample.SHAKE128, seed, 2, 3, 0)
	B := ExpandMatrix(nil, sample.SHAKE128, seed, 2, 3, 2)
	assert.True(t, A.Equal(ExpandMatrix(pool.NewPool(1), sample.SHAKE128, seed, 2, 3, 0)))
	assert.False(t, A.Equal(B))
	assert.Equal(t, 2, A.Rows())
	assert.Equal(t, 3, A.Cols())
	assert.Equal(t, 0, Matrix{}.Cols())

	// row 0 at offset 2 is row 2 without offset
	C := ExpandMatrix(nil, sample.SHAKE128, seed, 4, 3, 0)
	assert.Equal(t, C[2], B[0])

	S := A.Add(B)
	for i := range S {
		for j := range S[i] {
			for k := range S[i][j] {
				require.Equal(t, (A[i][j][k]+B[i][j][k])%ring.Q, S[i][j][k])
			}
		}
	}
	assert.Panics(t, func() { ExpandMatrix(nil, sample.SHAKE128, seed, 2, 2, 255) })
}

func TestDecomposeNorm(t *testing.T) {
	r, err := ring.NewRounder((ring.Q - 1) / 88)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(5))
	v := smallVector(rng, 4, ring.Q/2).Freeze()
	lo, hi := v.Decompose(r)
	back := hi.ScalarMul(r.Alpha()).Add(lo).Freeze()
	assert.True(t, back.Equal(v))
	assert.True(t, hi.Equal(v.HighBits(r)))
	assert.True(t, lo.Equal(v.LowBits(r)))

	small := make(Vector, 3)
	assert.False(t, small.CheckNorm(1))
	small[2][100] = -1
	assert.True(t, small.CheckNorm(1))
	assert.False(t, small.CheckNorm(2))
}

func TestExpandVectors(t *testing.T) {
	eta, err := sample.NewEta(2)
	require.NoError(t, err)
	s := SecretVector(eta, sample.SHAKE128, seed, 4, 4)
	for i := range s {
		assert.Equal(t, eta.Sample(sample.SHAKE128, seed, uint16(4+i)), s[i])
	}
	assert.False(t, s.CheckNorm(3))
	assert.NotEqual(t, s[0], s[1])

	mask, err := sample.NewMask(1 << 17)
	require.NoError(t, err)
	y := MaskVector(mask, sample.SHAKE256, seed, 4, 7)
	for i := range y {
		assert.Equal(t, mask.Sample(sample.SHAKE256, seed, uint16(4*7+i)), y[i])
	}
	assert.NotPanics(t, func() { MaskVector(mask, sample.SHAKE256, seed, 4, 16383) })
	assert.Panics(t, func() { MaskVector(mask, sample.SHAKE256, seed, 4, 16384) })
	assert.Panics(t, func() { SecretVector(eta, sample.SHAKE128, seed, 4, 65533) })

	r := BoundedVector(rand.New(rand.NewSource(6)), 15, 256)
	assert.Len(t, r, 15)
	assert.False(t, r.CheckNorm(257))
}

func TestWriteTo(t *testing.T) {
	v := make(Vector, 2)
	w := make(Vector, 2)
	v[1][3], w[1][3] = -1, ring.Q-1

	var b1, b2 bytes.Buffer
	n, err := v.WriteTo(&b1)
	require.NoError(t, err)
	assert.Equal(t, int64(4+2*4*ring.N), n)
	_, err = w.WriteTo(&b2)
	require.NoError(t, err)
	assert.Equal(t, b1.Bytes(), b2.Bytes())

	b1.Reset()
	_, err = v[:1].WriteTo(&b1)
	require.NoError(t, err)
	assert.NotEqual(t, b1.Bytes(), b2.Bytes())

	A := NewMatrix(2, 2)
	b1.Reset()
	n, err = A.WriteTo(&b1)
	require.NoError(t, err)
	assert.Equal(t, int64(4+2*(4+2*4*ring.N)), n)
	assert.NotEqual(t, A.Domain(), v.Domain())
	assert.NotEqual(t, A[0].Domain(), v.Domain())
}

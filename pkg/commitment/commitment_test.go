package commitment

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
	"github.com/taurusgroup/dilizium/pkg/pool"
)

const (
	n    = 5
	k    = 15
	l    = 4
	beta = 256
)

var seed = []byte("commitment key seed of 32 bytes.")

func highBits(rng *rand.Rand) polyvec.Vector {
	x := make(polyvec.Vector, l)
	for i := range x {
		for j := range x[i] {
			x[i][j] = rng.Int31n(44)
		}
	}
	return x
}

func TestKeyShape(t *testing.T) {
	key := NewKey(nil, seed, n, k, l)
	require.Equal(t, n, key.A1.Rows())
	require.Equal(t, k, key.A1.Cols())
	require.Equal(t, l, key.A2.Rows())
	require.Equal(t, k, key.A2.Cols())
	assert.Equal(t, k, key.RandomnessLength())
	assert.Equal(t, l, key.ValueLength())

	one := polyvec.Constant(1)
	var zero ring.NTTPoly
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				assert.Equal(t, one, key.A1[i][j])
			} else {
				assert.Equal(t, zero, key.A1[i][j])
			}
		}
	}
	for i := 0; i < l; i++ {
		for j := 0; j < n+l; j++ {
			if j == n+i {
				assert.Equal(t, one, key.A2[i][j])
			} else {
				assert.Equal(t, zero, key.A2[i][j])
			}
		}
	}
	assert.NotEqual(t, key.A1[0][n+l], key.A2[0][n+l])
	assert.NotEqual(t, key.A1[0][n+l], key.A1[1][n+l])

	pl := pool.NewPool(2)
	defer pl.TearDown()
	same := NewKey(pl, seed, n, k, l)
	assert.True(t, key.A1.Equal(same.A1))
	assert.True(t, key.A2.Equal(same.A2))
	other := NewKey(nil, []byte("another seed"), n, k, l)
	assert.False(t, key.A1.Equal(other.A1))

	assert.Panics(t, func() { NewKey(nil, seed, 5, 9, 4) })
	assert.Panics(t, func() { NewKey(nil, seed, 5, 257, 4) })
}

func TestKeyNonces(t *testing.T) {
	key := NewKey(nil, seed, n, k, l)
	for i := 0; i < n; i++ {
		for j := n; j < k; j++ {
			require.Equal(t, sample.Uniform(sample.SHAKE128, seed, uint16(i<<8+j)), key.A1[i][j], "A1[%d][%d]", i, j)
		}
	}
	for i := 0; i < l; i++ {
		for j := n + l; j < k; j++ {
			require.Equal(t, sample.Uniform(sample.SHAKE128, seed, uint16((n+i)<<8+j)), key.A2[i][j], "A2[%d][%d]", i, j)
		}
	}
}

func TestIdentityBlocks(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	key := NewKey(nil, seed, n, k, l)
	// randomness supported on the first n entries only meets the identity block
	r := make(polyvec.Vector, k)
	copy(r, SampleRandomness(rng, n, beta))
	x := highBits(rng)

	c := key.Commit(nil, r, x)
	assert.True(t, c.C1.Equal(r[:n].Copy().Freeze()))
	assert.True(t, c.C2.Equal(x))
}

func TestOpen(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	key := NewKey(nil, seed, n, k, l)
	r := SampleRandomness(rng, k, beta)
	x := highBits(rng)
	c := key.Commit(nil, r, x)
	require.NoError(t, c.Validate(key))

	assert.True(t, key.Open(nil, r, x, c))

	x2 := x.Copy()
	x2[3][200]++
	assert.False(t, key.Open(nil, r, x2, c))

	r2 := r.Copy()
	r2[14][0]--
	assert.False(t, key.Open(nil, r2, x, c))

	other := NewKey(nil, []byte("another seed"), n, k, l)
	assert.False(t, other.Open(nil, r, x, c))

	assert.False(t, key.Open(nil, r[:k-1], x, c))
	assert.False(t, key.Open(nil, r, x[:l-1], c))
	assert.False(t, key.Open(nil, r, x, nil))
	assert.Panics(t, func() { key.Commit(nil, r, x[:1]) })
}

func TestHomomorphism(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	key := NewKey(nil, seed, n, k, l)
	pl := pool.NewPool(0)
	defer pl.TearDown()

	for trial := 0; trial < 5; trial++ {
		r1, r2 := SampleRandomness(rng, k, beta), SampleRandomness(rng, k, beta)
		x1, x2 := highBits(rng), highBits(rng)

		sum := key.Commit(pl, r1, x1).Add(key.Commit(pl, r2, x2))
		joint := key.Commit(pl, r1.Add(r2), x1.Add(x2))
		assert.True(t, sum.Equal(joint))
		assert.True(t, key.Open(nil, r1.Add(r2), x1.Add(x2), sum))
	}
}

func TestValidate(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	key := NewKey(nil, seed, n, k, l)
	c := key.Commit(nil, SampleRandomness(rng, k, beta), highBits(rng))
	require.NoError(t, c.Validate(key))

	bad := &Value{C1: c.C1[:n-1], C2: c.C2}
	assert.Error(t, bad.Validate(key))

	bad = &Value{C1: c.C1.Copy(), C2: c.C2}
	bad.C1[0][0] = -1
	assert.Error(t, bad.Validate(key))

	var nilValue *Value
	assert.Error(t, nilValue.Validate(key))
	assert.True(t, nilValue.Equal(nil))
	assert.False(t, c.Equal(nil))
}

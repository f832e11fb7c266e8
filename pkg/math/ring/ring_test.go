package ring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// montgomery is 2³² mod Q, the scaling introduced by InvNTT.
const montgomery = int64(1<<32) % Q

func randomPoly(rng *rand.Rand, bound int32) Poly {
	var p Poly
	for i := range p {
		p[i] = rng.Int31n(2*bound-1) - (bound - 1)
	}
	return p
}

func negacyclic(a, b *Poly) Poly {
	var acc [N]int64
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			prod := int64(a[i]) * int64(b[j]) % Q
			if k := i + j; k < N {
				acc[k] += prod
			} else {
				acc[k-N] -= prod
			}
		}
	}
	var c Poly
	for i := range c {
		c[i] = int32(acc[i] % Q)
	}
	return *c.Freeze()
}

func TestNTTRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		p := randomPoly(rng, Q)
		pHat := p.NTT()
		back := pHat.InvNTT()
		for i := range p {
			want := int64(p[i]) * montgomery % Q
			assert.Equal(t, freeze(int32(want)), freeze(back[i]), "coefficient %d", i)
		}
	}
}

func TestNTTOfOne(t *testing.T) {
	var one Poly
	one[0] = 1
	oneHat := one.NTT()
	for i := range oneHat {
		require.Equal(t, int32(1), oneHat[i])
	}
}

func TestPointwiseProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tests := []struct {
		name   string
		aBound int32
		bBound int32
	}{
		{"small", 5, 5},
		{"mask by challenge", 1 << 17, 2},
		{"uniform by small", Q, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := randomPoly(rng, tt.aBound)
			b := randomPoly(rng, tt.bBound)
			aHat, bHat := a.NTT(), b.NTT()
			var cHat NTTPoly
			cHat.PointwiseMontgomery(&aHat, &bHat)
			c := cHat.InvNTT()
			assert.Equal(t, negacyclic(&a, &b), *c.Freeze())
		})
	}
}

func TestAddSub(t *testing.T) {
	var a, b, c Poly
	a[0], b[0] = Q-1, 2
	a[1], b[1] = -5, 3
	a[2], b[2] = -(Q - 1), -(Q - 1)

	c.Add(&a, &b)
	assert.Equal(t, int32(1), c[0])
	assert.Equal(t, int32(-2), c[1])
	assert.Equal(t, int32(-(Q - 2)), c[2])

	c.Sub(&a, &b)
	assert.Equal(t, int32(Q-3), c[0])
	assert.Equal(t, int32(-8), c[1])
	assert.Equal(t, int32(0), c[2])

	c.ScalarMul(&a, -2)
	assert.Equal(t, int32(-(Q - 2)), c[0])
	assert.Equal(t, int32(10), c[1])
}

func TestReduceCAddQFreeze(t *testing.T) {
	for _, a := range []int32{0, 1, -1, Q, -Q, 2*Q + 7, -(2*Q + 7), 1<<31 - 1 - (1 << 22), -(1 << 31)} {
		r := reduce32(a)
		assert.GreaterOrEqual(t, r, int32(-6283009))
		assert.LessOrEqual(t, r, int32(6283008))
		assert.Equal(t, freeze(a), freeze(r))
		assert.GreaterOrEqual(t, caddq(r), int32(0))
		assert.Equal(t, freeze(r), freeze(caddq(r)))
	}

	var p Poly
	p[0], p[1], p[2] = -1, Q, (Q-1)/2+1
	p.Center()
	assert.Equal(t, int32(-1), p[0])
	assert.Equal(t, int32(0), p[1])
	assert.Equal(t, int32(-(Q-1)/2), p[2])
	p.Freeze()
	assert.Equal(t, int32(Q-1), p[0])
	assert.Equal(t, int32((Q-1)/2+1), p[2])
}

func TestCheckNorm(t *testing.T) {
	tests := []struct {
		name   string
		coeff  int32
		bound  int32
		expect bool
	}{
		{"zero", 0, 10, false},
		{"below", 9, 10, false},
		{"equal", 10, 10, true},
		{"negative below", -9, 10, false},
		{"negative equal", -10, 10, true},
		{"wrapped negative", Q - 9, 10, false},
		{"wrapped negative equal", Q - 10, 10, true},
		{"large bound", 0, (Q-1)/8 + 1, true},
		{"largest bound", (Q-1)/8 - 1, (Q - 1) / 8, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Poly
			p[17] = tt.coeff
			assert.Equal(t, tt.expect, p.CheckNorm(tt.bound))
		})
	}
}

func TestNewRounder(t *testing.T) {
	for _, gamma2 := range []int32{(Q - 1) / 32, (Q - 1) / 88} {
		r, err := NewRounder(gamma2)
		require.NoError(t, err)
		assert.Equal(t, gamma2, r.Gamma2())
		assert.Equal(t, (Q-1)/r.Alpha(), r.Modulus())
	}
	for _, gamma2 := range []int32{0, 1 << 17, (Q - 1) / 64} {
		_, err := NewRounder(gamma2)
		assert.ErrorIs(t, err, ErrUnsupportedGamma2)
	}
}

func TestDecompose(t *testing.T) {
	for _, gamma2 := range []int32{(Q - 1) / 32, (Q - 1) / 88} {
		r, err := NewRounder(gamma2)
		require.NoError(t, err)
		alpha := int64(r.Alpha())

		var a Poly
		for start := int32(0); start < Q; start += N {
			for i := range a {
				a[i] = start + int32(i)
			}
			a0, a1 := r.Decompose(&a)
			g0, g1 := r.DecomposeGeneric(&a)
			require.Equal(t, a0, g0, "low parts from %d", start)
			require.Equal(t, a1, g1, "high parts from %d", start)
			for i := range a {
				if a[i] >= Q {
					continue
				}
				if (int64(a0[i])+int64(a1[i])*alpha-int64(a[i]))%Q != 0 {
					t.Fatalf("%d does not recompose from (%d, %d)", a[i], a0[i], a1[i])
				}
				if a0[i] < -gamma2 || a0[i] > gamma2 || a1[i] < 0 || a1[i] >= r.Modulus() {
					t.Fatalf("%d decomposes out of range into (%d, %d)", a[i], a0[i], a1[i])
				}
			}
		}
	}
}

func TestDecomposeWrap(t *testing.T) {
	r, err := NewRounder((Q - 1) / 88)
	require.NoError(t, err)
	var a Poly
	a[0] = Q - 1
	a[1] = -1
	a[2] = 43*r.Alpha() + r.Gamma2() + 1
	a0, a1 := r.Decompose(&a)
	assert.Equal(t, int32(-1), a0[0])
	assert.Equal(t, int32(0), a1[0])
	assert.Equal(t, a0[0], a0[1])
	assert.Equal(t, int32(-r.Gamma2()), a0[2])
	assert.Equal(t, int32(0), a1[2])
	assert.Equal(t, a1, r.HighBits(&a))
	assert.Equal(t, a0, r.LowBits(&a))
}

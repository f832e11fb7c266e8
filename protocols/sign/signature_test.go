package sign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/dilizium/pkg/commitment"
	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/protocols/keygen"
)

func testSignature(t *testing.T) (*params.Params, *keygen.PublicKey, *Signature) {
	pp := params.Default()
	_, ca, cb := testConfigs(t, pp)
	results, err := runSign(context.Background(), nil, ca, cb, nil)
	require.NoError(t, err)
	return pp, ca.Key.PublicKey(), results[0].Signature
}

func copySignature(sig *Signature) *Signature {
	return &Signature{
		Z:          sig.Z.Copy(),
		Commitment: &commitment.Value{C1: sig.Commitment.C1.Copy(), C2: sig.Commitment.C2.Copy()},
		R:          sig.R.Copy(),
		Hint:       Hint{H1: sig.Hint.H1.Copy(), H2: sig.Hint.H2.Copy()},
		WHB:        sig.WHB.Copy(),
		Rejections: sig.Rejections,
	}
}

func TestVerifyTampered(t *testing.T) {
	pp, pk, sig := testSignature(t)
	require.True(t, sig.Verify(pp, pk, testMessage))

	tests := []struct {
		name   string
		tamper func(s *Signature)
	}{
		{"z", func(s *Signature) { s.Z[1][7]++ }},
		{"z too large", func(s *Signature) { s.Z[0][0] = 2 * (pp.Gamma1 - pp.Beta) }},
		{"r", func(s *Signature) { s.R[3][3]++ }},
		{"r too large", func(s *Signature) { s.R[0][0] = 2*pp.CommitmentBeta + 1 }},
		{"commitment", func(s *Signature) { s.Commitment.C2[0][0] = (s.Commitment.C2[0][0] + 1) % ring.Q }},
		{"commitment out of range", func(s *Signature) { s.Commitment.C1[0][0] = ring.Q }},
		{"nil commitment", func(s *Signature) { s.Commitment = nil }},
		{"hint h1", func(s *Signature) { s.Hint.H1[2][2]++ }},
		{"hint h2", func(s *Signature) { s.Hint.H2[2][2]++ }},
		{"whb", func(s *Signature) { s.WHB[0][5] = (s.WHB[0][5] + 1) % 44 }},
		{"short z", func(s *Signature) { s.Z = s.Z[:1] }},
		{"short hint", func(s *Signature) { s.Hint.H2 = nil }},
		{"short whb", func(s *Signature) { s.WHB = s.WHB[1:] }},
		// the same values mod Q, stored out of range
		{"z shifted by q", func(s *Signature) { s.Z[0][0] += ring.Q }},
		{"z shifted by -q", func(s *Signature) { s.Z[2][9] -= ring.Q }},
		{"r shifted by q", func(s *Signature) { s.R[3][7] += ring.Q }},
		{"whb shifted by q", func(s *Signature) { s.WHB[1][1] += ring.Q }},
		{"hint carried", func(s *Signature) {
			s.Hint.H1[0][0]++
			s.Hint.H2[0][0] -= 44
		}},
		{"hint h1 shifted by q", func(s *Signature) { s.Hint.H1[0][0] += ring.Q }},
		{"hint h1 wrapped", func(s *Signature) { s.Hint.H1[0][0] += 1 << 30 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forged := copySignature(sig)
			tt.tamper(forged)
			assert.False(t, forged.Verify(pp, pk, testMessage))
		})
	}

	var nilSig *Signature
	assert.False(t, nilSig.Verify(pp, pk, testMessage))
	assert.False(t, sig.Verify(pp, nil, testMessage))
	assert.False(t, sig.Verify(pp, &keygen.PublicKey{A: pk.A[:1], T: pk.T}, testMessage))

	bad := *pp
	bad.Eta = 5
	assert.False(t, sig.Verify(&bad, pk, testMessage))

	otherKey := &keygen.PublicKey{A: pk.A, T: pk.T.Copy()}
	otherKey.T[0][0] = (otherKey.T[0][0] + 1) % ring.Q
	assert.False(t, sig.Verify(pp, otherKey, testMessage))
}

func TestSignatureMarshalBinary(t *testing.T) {
	pp, pk, sig := testSignature(t)

	data, err := sig.MarshalBinary()
	require.NoError(t, err)

	var decoded Signature
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.True(t, decoded.Z.Equal(sig.Z))
	assert.True(t, decoded.Commitment.Equal(sig.Commitment))
	assert.Equal(t, sig.Rejections, decoded.Rejections)
	assert.True(t, decoded.Verify(pp, pk, testMessage))

	assert.Error(t, decoded.UnmarshalBinary([]byte{0xff}))
}

func TestHint(t *testing.T) {
	const alpha = 44
	whb := make(polyvec.Vector, 2)
	x := make(polyvec.Vector, 2)
	for i := range whb {
		for j := range whb[i] {
			whb[i][j] = int32((i*ring.N + j) % alpha)
			x[i][j] = int32((7*j + 3*i) % (2*alpha - 1))
		}
	}
	h := MakeHint(whb, x, alpha)
	for i := range h.H2 {
		for j := range h.H2[i] {
			require.True(t, h.H2[i][j] > -alpha/2 && h.H2[i][j] <= alpha/2)
		}
	}
	assert.True(t, UseHint(whb, h, alpha).Equal(x))

	// extremes of whb - x, with x the sum of two high-bits vectors
	whb[0][0], x[0][0] = alpha-1, 0
	whb[0][1], x[0][1] = 0, 2*(alpha-1)
	h = MakeHint(whb, x, alpha)
	assert.Equal(t, int32(1), h.H1[0][0])
	assert.Equal(t, int32(-2), h.H1[0][1])
}

func TestRejectionCheckString(t *testing.T) {
	assert.Equal(t, "none", CheckNone.String())
	assert.Equal(t, "gamma1", CheckGamma1.String())
	assert.Equal(t, "gamma2", CheckGamma2.String())
	assert.Equal(t, "RejectionCheck(9)", RejectionCheck(9).String())
}

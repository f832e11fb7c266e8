package dilizium_test

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/pkg/pool"
	"github.com/taurusgroup/dilizium/protocols/dilizium"
	"github.com/taurusgroup/dilizium/protocols/sign"
)

var message = []byte("Hello Estonia")

func TestSignLocal(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	k1, k2, err := dilizium.Keygen(nil, []byte("alice"), []byte("bob"), pl)
	require.NoError(t, err)
	pk := k1.PublicKey()
	require.NotNil(t, pk)

	result, err := dilizium.SignLocal(context.Background(), k1, k2, message,
		dilizium.WithPool(pl), dilizium.WithSessionID([]byte("1")))
	require.NoError(t, err)
	assert.True(t, dilizium.Verify(nil, pk, message, result.Signature))
	assert.True(t, dilizium.Verify(nil, k2.PublicKey(), message, result.Signature))
	assert.False(t, dilizium.Verify(nil, pk, []byte("Hello Finland"), result.Signature))

	// signing twice gives distinct, valid signatures
	again, err := dilizium.SignLocal(context.Background(), k1, k2, message)
	require.NoError(t, err)
	assert.True(t, dilizium.Verify(nil, pk, message, again.Signature))
	assert.False(t, again.Signature.Z.Equal(result.Signature.Z))
}

// Two fixed 32 byte key seeds, and a second pair used as an unrelated key.
const (
	estoniaSeed1 = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	estoniaSeed2 = "1f1e1d1c1b1a191817161514131211100f0e0d0c0b0a09080706050403020100"
	otherSeed1   = "a0a1a2a3a4a5a6a7a8a9aaabacadaeafb0b1b2b3b4b5b6b7b8b9babbbcbdbebf"
	otherSeed2   = "c0c1c2c3c4c5c6c7c8c9cacbcccdcecfd0d1d2d3d4d5d6d7d8d9dadbdcdddedf"
)

func decodeSeed(t *testing.T, s string) []byte {
	t.Helper()
	seed, err := hex.DecodeString(s)
	require.NoError(t, err)
	require.Len(t, seed, 32)
	return seed
}

func TestSignFixedSeeds(t *testing.T) {
	helloEstonia := []byte("Hello, Estonia!")

	k1, k2, err := dilizium.Keygen(nil, decodeSeed(t, estoniaSeed1), decodeSeed(t, estoniaSeed2), nil)
	require.NoError(t, err)
	o1, _, err := dilizium.Keygen(nil, decodeSeed(t, otherSeed1), decodeSeed(t, otherSeed2), nil)
	require.NoError(t, err)

	// key generation is deterministic in the seeds
	again, _, err := dilizium.Keygen(nil, decodeSeed(t, estoniaSeed1), decodeSeed(t, estoniaSeed2), nil)
	require.NoError(t, err)
	assert.True(t, again.PublicKey().T.Equal(k1.PublicKey().T))

	for i := 0; i < 3; i++ {
		result, err := dilizium.SignLocal(context.Background(), k1, k2, helloEstonia)
		require.NoError(t, err)
		assert.True(t, dilizium.Verify(nil, k1.PublicKey(), helloEstonia, result.Signature))
		assert.False(t, dilizium.Verify(nil, o1.PublicKey(), helloEstonia, result.Signature))
	}
}

func TestSignLocalWrongKey(t *testing.T) {
	k1, k2, err := dilizium.Keygen(nil, []byte("alice"), []byte("bob"), nil)
	require.NoError(t, err)
	k3, _, err := dilizium.Keygen(nil, []byte("carol"), []byte("dave"), nil)
	require.NoError(t, err)

	result, err := dilizium.SignLocal(context.Background(), k1, k2, message)
	require.NoError(t, err)
	assert.False(t, dilizium.Verify(nil, k3.PublicKey(), message, result.Signature))

	// shares from different key pairs cannot sign together
	_, err = dilizium.SignLocal(context.Background(), k1, k3, message)
	assert.Error(t, err)
}

func TestSignLocalParams(t *testing.T) {
	pp := params.Default()
	pp.MaxAttempts = 1
	k1, k2, err := dilizium.Keygen(pp, []byte("alice"), []byte("bob"), nil)
	require.NoError(t, err)

	for i := 0; i < 32; i++ {
		_, err = dilizium.SignLocal(context.Background(), k1, k2, message, dilizium.WithParams(pp))
		if err != nil {
			assert.True(t, errors.Is(err, sign.ErrAttemptsExhausted), err)
			return
		}
	}
	t.Fatal("expected a rejection")
}

func TestKeygenErrors(t *testing.T) {
	_, _, err := dilizium.Keygen(nil, nil, []byte("bob"), nil)
	assert.Error(t, err)
	_, _, err = dilizium.Keygen(nil, []byte("alice"), nil, nil)
	assert.Error(t, err)
}

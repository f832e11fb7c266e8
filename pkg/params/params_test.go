package params

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
)

func TestDefault(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	prims, err := p.Primitives()
	require.NoError(t, err)
	assert.Equal(t, p.Eta, prims.Eta.Bound())
	assert.Equal(t, p.Gamma1, prims.Mask.Gamma1())
	assert.Equal(t, p.Gamma2, prims.Rounder.Gamma2())
	assert.Equal(t, int32(44), prims.Rounder.Modulus())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
		cause  error
	}{
		{"eta", func(p *Params) { p.Eta = 3 }, sample.ErrUnsupportedEta},
		{"gamma1", func(p *Params) { p.Gamma1 = 1 << 18 }, sample.ErrUnsupportedGamma1},
		{"gamma2", func(p *Params) { p.Gamma2 = 1000 }, ring.ErrUnsupportedGamma2},
		{"gamma1 too large for two parties", func(p *Params) { p.Gamma1 = 1 << 19 }, nil},
		{"modulus", func(p *Params) { p.Q = 12289 }, nil},
		{"commitment modulus", func(p *Params) { p.CommitmentQ = 12289 }, nil},
		{"tau", func(p *Params) { p.Tau = 65 }, nil},
		{"beta", func(p *Params) { p.Beta = 0 }, nil},
		{"commitment l", func(p *Params) { p.CommitmentL = 5 }, nil},
		{"commitment k", func(p *Params) { p.CommitmentK = 9 }, nil},
		{"commitment beta", func(p *Params) { p.CommitmentBeta = 0 }, nil},
		{"nonce offset", func(p *Params) { p.NonceOffset = 1 << 14 }, nil},
		{"max attempts", func(p *Params) { p.MaxAttempts = p.NonceOffset + 1 }, nil},
		{"no attempts", func(p *Params) { p.MaxAttempts = 0 }, nil},
		{"no parallel sessions", func(p *Params) { p.ParallelSessions = 0 }, nil},
		{"too many parallel sessions", func(p *Params) { p.ParallelSessions = MaxParallelSessions + 1 }, nil},
		{"parallel sessions exceed nonce range", func(p *Params) { p.ParallelSessions = 9 }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.modify(p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	config := `
eta: 4
beta: 156
max_attempts: 500
parallel_sessions: 4
`
	p, err := Load(strings.NewReader(config), "yaml")
	require.NoError(t, err)
	want := Default()
	want.Eta, want.Beta, want.MaxAttempts, want.ParallelSessions = 4, 156, 500, 4
	assert.Equal(t, want, p)

	_, err = Load(strings.NewReader("gamma2: 1234"), "yaml")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(strings.NewReader("{not yaml"), "yaml")
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tau": 49, "beta": 98}`), 0o600))
	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 49, p.Tau)
	assert.Equal(t, int32(98), p.Beta)
	assert.Equal(t, Default().K, p.K)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

// Package params holds the parameter set shared by key generation, signing and
// verification, and loads it from configuration files.
package params

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/spf13/viper"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
)

// ErrInvalid is wrapped by every parameter validation failure.
var ErrInvalid = errors.New("params: invalid parameters")

// Params is a parameter set for the two-party scheme.
type Params struct {
	// N and Q describe the ring and must match package ring.
	N int   `mapstructure:"n"`
	Q int32 `mapstructure:"q"`

	// K and L are the row and column counts of the public matrix.
	K int `mapstructure:"k"`
	L int `mapstructure:"l"`
	// Eta bounds the secret coefficients.
	Eta int32 `mapstructure:"eta"`
	// Tau is the number of non-zero challenge coefficients.
	Tau int `mapstructure:"tau"`
	// Beta bounds ‖c·s‖∞ for a single share, usually Tau·Eta.
	Beta int32 `mapstructure:"beta"`
	// Gamma1 is the masking range.
	Gamma1 int32 `mapstructure:"gamma1"`
	// Gamma2 is the low-order rounding range.
	Gamma2 int32 `mapstructure:"gamma2"`

	// CommitmentQ must equal Q.
	CommitmentQ int32 `mapstructure:"commitment_q"`
	// CommitmentN is the number of rows of A1.
	CommitmentN int `mapstructure:"commitment_n"`
	// CommitmentK is the length of the commitment randomness.
	CommitmentK int `mapstructure:"commitment_k"`
	// CommitmentL is the length of committed values, which must be K.
	CommitmentL int `mapstructure:"commitment_l"`
	// CommitmentBeta bounds the coefficients of the commitment randomness.
	CommitmentBeta int32 `mapstructure:"commitment_beta"`

	// ParallelSessions is the number of masking vectors each party samples per attempt.
	// The parties try every pair of their commitments, so an attempt fails only if
	// all ParallelSessions² combinations are rejected.
	ParallelSessions int `mapstructure:"parallel_sessions"`
	// NonceOffset is the first nonce counter of the second party.
	NonceOffset int `mapstructure:"nonce_offset"`
	// MaxAttempts bounds the number of signing attempts in a session.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// MaxParallelSessions bounds Params.ParallelSessions.
const MaxParallelSessions = 16

// Default returns the parameter set built on Dilithium2.
func Default() *Params {
	return &Params{
		N:              ring.N,
		Q:              ring.Q,
		K:              4,
		L:              4,
		Eta:            2,
		Tau:            39,
		Beta:           78,
		Gamma1:         1 << 17,
		Gamma2:         (ring.Q - 1) / 88,
		CommitmentQ:    ring.Q,
		CommitmentN:    5,
		CommitmentK:    15,
		CommitmentL:    4,
		CommitmentBeta: 256,

		ParallelSessions: 1,
		NonceOffset:      1 << 13,
		MaxAttempts:      1 << 10,
	}
}

// Validate returns an error wrapping ErrInvalid if p cannot be used.
func (p *Params) Validate() error {
	if _, err := p.Primitives(); err != nil {
		return err
	}
	return nil
}

// Primitives bundles the samplers and the rounding derived from a parameter set.
type Primitives struct {
	Eta     sample.Eta
	Mask    sample.Mask
	Rounder ring.Rounder
}

// Primitives validates p and returns the samplers and rounding it describes.
func (p *Params) Primitives() (*Primitives, error) {
	invalid := func(format string, args ...interface{}) (*Primitives, error) {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if p.N != ring.N || p.Q != ring.Q {
		return invalid("ring (N, Q) = (%d, %d), only (%d, %d) is supported", p.N, p.Q, ring.N, ring.Q)
	}
	if p.CommitmentQ != ring.Q {
		return invalid("commitment modulus %d differs from Q", p.CommitmentQ)
	}
	if p.K <= 0 || p.L <= 0 || p.K > 256 || p.L > 256 {
		return invalid("dimensions (K, L) = (%d, %d)", p.K, p.L)
	}

	eta, err := sample.NewEta(p.Eta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	mask, err := sample.NewMask(p.Gamma1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	rounder, err := ring.NewRounder(p.Gamma2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if p.Tau <= 0 || p.Tau > 64 {
		return invalid("tau %d must be in (0, 64]", p.Tau)
	}
	if p.Beta <= 0 || p.Beta >= p.Gamma2 || p.Beta >= p.Gamma1 {
		return invalid("beta %d must be positive and below gamma1 and gamma2", p.Beta)
	}
	for _, bound := range []int32{p.Gamma1 - p.Beta, p.Gamma2 - p.Beta, 2 * (p.Gamma1 - p.Beta)} {
		if bound >= (ring.Q-1)/8 {
			return invalid("norm bound %d is not below (Q-1)/8", bound)
		}
	}

	if p.CommitmentN <= 0 || p.CommitmentL != p.K {
		return invalid("commitment dimensions (n, l) = (%d, %d), l must equal K = %d", p.CommitmentN, p.CommitmentL, p.K)
	}
	if p.CommitmentK <= p.CommitmentN+p.CommitmentL || p.CommitmentK > 256 || p.CommitmentN+p.CommitmentL > 256 {
		return invalid("commitment randomness length %d", p.CommitmentK)
	}
	if p.CommitmentBeta <= 0 || 2*p.CommitmentBeta >= (ring.Q-1)/8 {
		return invalid("commitment beta %d", p.CommitmentBeta)
	}

	if p.NonceOffset <= 0 || 2*p.NonceOffset*p.L > math.MaxUint16+1 {
		return invalid("nonce offset %d leaves no room for two parties with L = %d", p.NonceOffset, p.L)
	}
	if p.ParallelSessions <= 0 || p.ParallelSessions > MaxParallelSessions {
		return invalid("parallel sessions %d must be in (0, %d]", p.ParallelSessions, MaxParallelSessions)
	}
	// every attempt consumes ParallelSessions masking nonces of the party's range
	if p.MaxAttempts <= 0 || p.MaxAttempts*p.ParallelSessions > p.NonceOffset {
		return invalid("max attempts %d with %d parallel sessions exceed the nonce offset %d",
			p.MaxAttempts, p.ParallelSessions, p.NonceOffset)
	}
	if p.L+p.K > math.MaxUint16 {
		return invalid("secret vectors (K, L) = (%d, %d) exceed the nonce space", p.K, p.L)
	}

	return &Primitives{Eta: eta, Mask: mask, Rounder: rounder}, nil
}

// Load reads a parameter set from r, in a format supported by viper
// ("yaml", "json", "toml", ...). Missing keys keep their Default value.
func Load(r io.Reader, format string) (*Params, error) {
	v := newViper()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("params.Load: %w", err)
	}
	return decode(v)
}

// LoadFile reads a parameter set from the file at path, using its extension
// to choose the format.
func LoadFile(path string) (*Params, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("params.LoadFile: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("n", d.N)
	v.SetDefault("q", d.Q)
	v.SetDefault("k", d.K)
	v.SetDefault("l", d.L)
	v.SetDefault("eta", d.Eta)
	v.SetDefault("tau", d.Tau)
	v.SetDefault("beta", d.Beta)
	v.SetDefault("gamma1", d.Gamma1)
	v.SetDefault("gamma2", d.Gamma2)
	v.SetDefault("commitment_q", d.CommitmentQ)
	v.SetDefault("commitment_n", d.CommitmentN)
	v.SetDefault("commitment_k", d.CommitmentK)
	v.SetDefault("commitment_l", d.CommitmentL)
	v.SetDefault("commitment_beta", d.CommitmentBeta)
	v.SetDefault("parallel_sessions", d.ParallelSessions)
	v.SetDefault("nonce_offset", d.NonceOffset)
	v.SetDefault("max_attempts", d.MaxAttempts)
	return v
}

func decode(v *viper.Viper) (*Params, error) {
	p := new(Params)
	if err := v.Unmarshal(p); err != nil {
		return nil, fmt.Errorf("params: decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

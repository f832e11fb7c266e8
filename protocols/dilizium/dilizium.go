// Package dilizium is the entry point to two-party lattice signatures.
//
// Two parties each derive a key share from a private seed and combine them
// into a joint public key. Signing requires both shares; the resulting
// signature verifies under the joint public key alone.
package dilizium

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/pkg/party"
	"github.com/taurusgroup/dilizium/pkg/pool"
	"github.com/taurusgroup/dilizium/pkg/protocol"
	"github.com/taurusgroup/dilizium/protocols/keygen"
	"github.com/taurusgroup/dilizium/protocols/sign"
)

type (
	KeyMaterial = keygen.KeyMaterial
	PublicKey   = keygen.PublicKey
	Config      = sign.Config
	Result      = sign.Result
	Signature   = sign.Signature
)

// IDs used by SignLocal for the two parties.
const (
	FirstParty  party.ID = "1"
	SecondParty party.ID = "2"
)

// Keygen derives both key shares from their seeds and combines them.
//
// In a distributed setting each party calls keygen.NewShare on its own seed,
// sends A and its public vector under the joint matrix, and calls Extend.
// A pool can be passed to this function, to parallelize certain operations and improve performance.
func Keygen(pp *params.Params, seed1, seed2 []byte, pl *pool.Pool) (*KeyMaterial, *KeyMaterial, error) {
	if pp == nil {
		pp = params.Default()
	}
	a, err := keygen.NewShare(pl, pp, seed1)
	if err != nil {
		return nil, nil, fmt.Errorf("dilizium.Keygen: %w", err)
	}
	b, err := keygen.NewShare(pl, pp, seed2)
	if err != nil {
		return nil, nil, fmt.Errorf("dilizium.Keygen: %w", err)
	}
	return keygen.Combine(pl, a, b)
}

// Sign initiates the signing protocol for one party.
//
// config.Key must come from Keygen, or from keygen.KeyMaterial.Extend.
// The other party must run Sign with the same message, and the same sessionID
// when the StartFunc is invoked.
func Sign(config *Config, message []byte, pl *pool.Pool) protocol.StartFunc {
	return sign.StartSign(config, message, pl)
}

// Verify reports whether sig is a valid signature on message under pk.
// A nil pp selects params.Default().
func Verify(pp *params.Params, pk *PublicKey, message []byte, sig *Signature) bool {
	return sig.Verify(pp, pk, message)
}

type options struct {
	params    *params.Params
	rand      io.Reader
	pool      *pool.Pool
	log       zerolog.Logger
	sessionID []byte
}

// Option configures SignLocal.
type Option func(*options)

// WithParams sets the parameter set, params.Default() otherwise.
func WithParams(pp *params.Params) Option { return func(o *options) { o.params = pp } }

// WithRand sets the entropy source shared by both parties, crypto/rand otherwise.
func WithRand(r io.Reader) Option { return func(o *options) { o.rand = r } }

// WithPool parallelizes matrix products on pl.
func WithPool(pl *pool.Pool) Option { return func(o *options) { o.pool = pl } }

// WithLogger logs round transitions and attempt outcomes to log.
func WithLogger(log zerolog.Logger) Option { return func(o *options) { o.log = log } }

// WithSessionID binds the execution to sessionID.
func WithSessionID(sessionID []byte) Option { return func(o *options) { o.sessionID = sessionID } }

// SignLocal runs the signing protocol between two shares held in this process.
//
// Messages between the parties are still serialized, and each party checks the other's contributions.
func SignLocal(ctx context.Context, share1, share2 *KeyMaterial, message []byte, opts ...Option) (*Result, error) {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rand == nil {
		o.rand = rand.Reader
	}
	source := pool.NewLockedReader(o.rand)

	local := protocol.Local{Log: o.log, SessionID: o.sessionID}
	results, err := local.Run(ctx,
		sign.StartSign(&sign.Config{
			Key: share1, Params: o.params, SelfID: FirstParty, OtherID: SecondParty, Rand: source, Log: o.log,
		}, message, o.pool),
		sign.StartSign(&sign.Config{
			Key: share2, Params: o.params, SelfID: SecondParty, OtherID: FirstParty, Rand: source, Log: o.log,
		}, message, o.pool),
	)
	if err != nil {
		return nil, fmt.Errorf("dilizium.SignLocal: %w", err)
	}
	result, ok := results[0].(*Result)
	if !ok {
		return nil, errors.New("dilizium.SignLocal: unexpected result type")
	}
	return result, nil
}

// Package sign implements the two-party signing protocol.
//
// Each attempt runs five rounds. A party samples Params.ParallelSessions masking
// vectors per attempt, and the parties try every pair of their commitments.
//
//  1. sample masking vectors y, commit to each HighBits(A·y) and send a hash of the commitments,
//  2. reveal the commitments,
//  3. derive a challenge for every pair of commitments and send which responses are short,
//  4. restart if no pair was accepted by both parties, otherwise send the response of the first one,
//  5. check the other share and combine.
package sign

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/dilizium/internal/round"
	"github.com/taurusgroup/dilizium/pkg/hash"
	"github.com/taurusgroup/dilizium/pkg/party"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/pkg/pool"
	"github.com/taurusgroup/dilizium/pkg/protocol"
	"github.com/taurusgroup/dilizium/protocols/keygen"
)

const (
	protocolID = "dilizium/sign"
	// This protocol has 5 concrete rounds per attempt.
	protocolRounds round.Number = 5

	// sessionEntropy is the number of fresh random bytes mixed into the masking seed.
	sessionEntropy = 32
)

// ErrAttemptsExhausted is returned when every allowed attempt was rejected.
var ErrAttemptsExhausted = errors.New("sign: attempts exhausted")

// Config holds what a party needs to take part in a signing session.
type Config struct {
	// Key must have been combined with the other party's share.
	Key *keygen.KeyMaterial
	// Params defaults to params.Default().
	Params *params.Params
	// SelfID and OtherID name both parties. The party whose ID sorts first uses the low nonce range.
	SelfID, OtherID party.ID
	// Rand is used for the commitment randomness and the session entropy.
	// It defaults to crypto/rand.Reader, and must be safe for concurrent use if shared.
	Rand io.Reader
	// Log receives attempt outcomes. The zero value logs nothing.
	Log zerolog.Logger
}

// Result is the output of a signing session.
type Result struct {
	Signature *Signature
	// Attempts lists every rejection that caused a restart, in order.
	Attempts []Attempt
}

// StartSign returns a StartFunc for a signing session on message.
func StartSign(config *Config, message []byte, pl *pool.Pool) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if config == nil || config.Key == nil || config.Key.Threshold == nil {
			return nil, errors.New("sign.StartSign: key share was not combined")
		}
		pp := config.Params
		if pp == nil {
			pp = params.Default()
		}
		prims, err := pp.Primitives()
		if err != nil {
			return nil, fmt.Errorf("sign.StartSign: %w", err)
		}
		key := config.Key
		if len(key.S1) != pp.L || len(key.S2) != pp.K || key.Threshold.TotalA.Rows() != pp.K || key.Threshold.TotalA.Cols() != pp.L {
			return nil, errors.New("sign.StartSign: key share does not match the parameters")
		}

		pk := key.PublicKey()
		info := round.Info{
			ProtocolID:       protocolID,
			FinalRoundNumber: protocolRounds,
			SelfID:           config.SelfID,
			PartyIDs:         []party.ID{config.SelfID, config.OtherID},
		}
		helper, err := round.NewSession(info, sessionID, pl, pk, &hash.BytesWithDomain{
			TheDomain: "Message",
			Bytes:     message,
		})
		if err != nil {
			return nil, fmt.Errorf("sign.StartSign: %w", err)
		}

		source := config.Rand
		if source == nil {
			source = rand.Reader
		}
		seed, err := maskSeed(source, key.Seed, message)
		if err != nil {
			return nil, fmt.Errorf("sign.StartSign: %w", err)
		}

		return &round1{
			Helper:  helper,
			key:     key,
			params:  pp,
			prims:   prims,
			message: message,
			rand:    source,
			log:     config.Log.With().Str("protocol", protocolID).Str("party", string(config.SelfID)).Logger(),
			ck:      commitmentKey(pl, pp, message, pk),
			seed:    seed,
			kappa:   helper.PartyIDs().GetIndex(config.SelfID) * pp.NonceOffset,
		}, nil
	}
}

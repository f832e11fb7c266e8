package sign

import (
	"fmt"
	"io"

	"github.com/taurusgroup/dilizium/pkg/commitment"
	"github.com/taurusgroup/dilizium/pkg/hash"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/pkg/pool"
	"github.com/taurusgroup/dilizium/protocols/keygen"
)

const seedLength = 32

// commitmentKey derives the commitment key bound to message and the joint public key.
func commitmentKey(pl *pool.Pool, pp *params.Params, message []byte, pk *keygen.PublicKey) *commitment.Key {
	h := hash.New()
	_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "Commitment Key", Bytes: message}, pk)
	return commitment.NewKey(pl, h.Sum()[:seedLength], pp.CommitmentN, pp.CommitmentK, pp.CommitmentL)
}

// challengeSeed hashes message and the joint commitment into the challenge seed.
func challengeSeed(message []byte, com *commitment.Value) []byte {
	h := hash.New()
	_ = h.WriteAny(&hash.BytesWithDomain{TheDomain: "Challenge", Bytes: message}, com)
	return h.Sum()[:seedLength]
}

// maskSeed derives the private seed of the masking vectors for one session.
// Fresh entropy makes every session use different masks, even for the same message.
func maskSeed(rand io.Reader, key, message []byte) ([]byte, error) {
	fresh := make([]byte, sessionEntropy)
	if _, err := io.ReadFull(rand, fresh); err != nil {
		return nil, fmt.Errorf("failed to read session entropy: %w", err)
	}
	h := hash.New()
	_ = h.WriteAny(
		&hash.BytesWithDomain{TheDomain: "Mask Key", Bytes: key},
		&hash.BytesWithDomain{TheDomain: "Message", Bytes: message},
		&hash.BytesWithDomain{TheDomain: "Session Entropy", Bytes: fresh},
	)
	return h.Sum(), nil
}

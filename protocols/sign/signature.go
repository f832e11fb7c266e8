package sign

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/dilizium/pkg/commitment"
	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/pkg/pool"
	"github.com/taurusgroup/dilizium/protocols/keygen"
)

// Signature is a joint signature.
type Signature struct {
	// Z = z₁ + z₂, centered.
	Z polyvec.Vector
	// Commitment = com₁ + com₂.
	Commitment *commitment.Value
	// R = r₁ + r₂, centered.
	R polyvec.Vector
	// Hint recovers the committed high bits from WHB.
	Hint Hint
	// WHB = HighBits(A·z - c·t).
	WHB polyvec.Vector
	// Rejections is the number of restarted attempts.
	Rejections int
}

// highBitsOfResponse returns HighBits(A·z - c·t).
func highBitsOfResponse(pl *pool.Pool, rounder ring.Rounder, a polyvec.Matrix, t, z polyvec.Vector, cHat *ring.NTTPoly) polyvec.Vector {
	return a.Apply(pl, z).Reduce().InvNTT().Sub(t.MulPoly(cHat)).Freeze().HighBits(rounder)
}

// Verify reports whether sig is a valid signature on message under pk.
// Malformed inputs are reported as false.
func (sig *Signature) Verify(pp *params.Params, pk *keygen.PublicKey, message []byte) bool {
	if pp == nil {
		pp = params.Default()
	}
	prims, err := pp.Primitives()
	if err != nil {
		return false
	}
	if !sig.wellFormed(pp, prims, pk) {
		return false
	}

	ck := commitmentKey(nil, pp, message, pk)
	if sig.Commitment.Validate(ck) != nil {
		return false
	}

	c := sample.Challenge(sample.SHAKE256, challengeSeed(message, sig.Commitment), pp.Tau)
	cHat := c.NTT()
	if !highBitsOfResponse(nil, prims.Rounder, pk.A, pk.T, sig.Z, &cHat).Equal(sig.WHB) {
		return false
	}

	alpha := prims.Rounder.Modulus()
	x := UseHint(sig.WHB, sig.Hint, alpha)
	// x is the sum of two high-bits vectors
	if !within(x, 0, 2*(alpha-1)) {
		return false
	}
	return ck.Open(nil, sig.R, x, sig.Commitment)
}

// wellFormed checks the dimensions of sig and pk, and that every coefficient of sig
// is stored in its canonical range. Values are not reduced first, so that a
// coefficient shifted by a multiple of Q is rejected.
func (sig *Signature) wellFormed(pp *params.Params, prims *params.Primitives, pk *keygen.PublicKey) bool {
	if sig == nil || pk == nil || sig.Commitment == nil {
		return false
	}
	if pk.A.Rows() != pp.K || pk.A.Cols() != pp.L || len(pk.T) != pp.K {
		return false
	}
	for _, row := range pk.A {
		if len(row) != pp.L {
			return false
		}
	}
	if len(sig.Z) != pp.L ||
		len(sig.R) != pp.CommitmentK ||
		len(sig.WHB) != pp.K ||
		len(sig.Hint.H1) != pp.K ||
		len(sig.Hint.H2) != pp.K {
		return false
	}

	zBound := 2*(prims.Mask.Gamma1()-pp.Beta) - 1
	rBound := 2 * pp.CommitmentBeta
	alpha := prims.Rounder.Modulus()
	return within(sig.Z, -zBound, zBound) &&
		within(sig.R, -rBound, rBound) &&
		within(sig.WHB, 0, alpha-1) &&
		within(sig.Hint.H1, -2, 1) &&
		within(sig.Hint.H2, -alpha/2+1, alpha/2)
}

// within reports whether every coefficient of v lies in [lo, hi].
func within(v polyvec.Vector, lo, hi int32) bool {
	for i := range v {
		for _, c := range v[i] {
			if c < lo || c > hi {
				return false
			}
		}
	}
	return true
}

// signature has the fields of Signature without its methods, so that cbor encodes it as a map.
type signature Signature

// MarshalBinary implements encoding.BinaryMarshaler.
func (sig *Signature) MarshalBinary() ([]byte, error) {
	data, err := cbor.Marshal((*signature)(sig))
	if err != nil {
		return nil, fmt.Errorf("sign.Signature: %w", err)
	}
	return data, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sig *Signature) UnmarshalBinary(data []byte) error {
	if err := cbor.Unmarshal(data, (*signature)(sig)); err != nil {
		return fmt.Errorf("sign.Signature: %w", err)
	}
	return nil
}

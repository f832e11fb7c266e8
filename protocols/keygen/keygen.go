// Package keygen derives the key shares consumed by the two-party signing protocol.
//
// Each party expands its own seed into a module-LWE key (A, s1, s2, t). To sign
// jointly, the parties add their matrices into A_total and recompute their public
// vectors under it, so that
//
//	t_total = t_1 + t_2 = A_total·(s1_1 + s1_2) + (s2_1 + s2_2).
package keygen

import (
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/pkg/pool"
	"golang.org/x/crypto/sha3"
)

// SeedLength is the length of the seeds read from the expanded key seed.
const SeedLength = 32

// KeyMaterial is one party's key share.
type KeyMaterial struct {
	// Rho seeds the party's own matrix A.
	Rho []byte
	// Seed is private, and keys the masking vectors of every signing session.
	Seed []byte

	A  polyvec.Matrix
	S1 polyvec.Vector
	S2 polyvec.Vector
	// T = A·s1 + s2, with coefficients in [0, Q).
	T polyvec.Vector

	// Threshold is set once the share has been combined with another party's.
	Threshold *ThresholdExtension
}

// ThresholdExtension holds the joint public material of a combined share.
type ThresholdExtension struct {
	// TotalA = A_self + A_other.
	TotalA polyvec.Matrix
	// SelfT = TotalA·s1 + s2 for this party's secrets.
	SelfT polyvec.Vector
	// OtherT is the other party's SelfT.
	OtherT polyvec.Vector
	// TotalT = SelfT + OtherT.
	TotalT polyvec.Vector
}

// PublicKey is the joint verification key.
type PublicKey struct {
	A polyvec.Matrix
	T polyvec.Vector
}

// NewShare expands seed into a key share.
//
// SHAKE-256(seed) yields rho, rho' and the private signing seed, 32 bytes each.
// s1 and s2 use nonces 0..L-1 and L..L+K-1 under rho'.
func NewShare(pl *pool.Pool, pp *params.Params, seed []byte) (*KeyMaterial, error) {
	prims, err := pp.Primitives()
	if err != nil {
		return nil, fmt.Errorf("keygen.NewShare: %w", err)
	}
	if len(seed) == 0 {
		return nil, errors.New("keygen.NewShare: empty seed")
	}

	h := sha3.NewShake256()
	_, _ = h.Write(seed)
	buf := make([]byte, 3*SeedLength)
	if _, err = io.ReadFull(h, buf); err != nil {
		return nil, fmt.Errorf("keygen.NewShare: %w", err)
	}
	rho, rhoPrime, key := buf[:SeedLength], buf[SeedLength:2*SeedLength], buf[2*SeedLength:]

	a := polyvec.ExpandMatrix(pl, sample.SHAKE128, rho, pp.K, pp.L, 0)
	s1 := polyvec.SecretVector(prims.Eta, sample.SHAKE128, rhoPrime, pp.L, 0)
	s2 := polyvec.SecretVector(prims.Eta, sample.SHAKE128, rhoPrime, pp.K, uint16(pp.L))

	return &KeyMaterial{
		Rho:  rho,
		Seed: key,
		A:    a,
		S1:   s1,
		S2:   s2,
		T:    publicVector(pl, a, s1, s2),
	}, nil
}

// publicVector returns A·s1 + s2 with coefficients in [0, Q).
func publicVector(pl *pool.Pool, a polyvec.Matrix, s1, s2 polyvec.Vector) polyvec.Vector {
	return a.Apply(pl, s1).Reduce().InvNTT().Add(s2).Freeze()
}

// JointMatrix returns the sum of both parties' matrices.
func JointMatrix(self, other polyvec.Matrix) polyvec.Matrix {
	return self.Add(other)
}

// ShareUnder returns this party's public vector under the joint matrix.
func (k *KeyMaterial) ShareUnder(pl *pool.Pool, totalA polyvec.Matrix) polyvec.Vector {
	return publicVector(pl, totalA, k.S1, k.S2)
}

// Extend returns a copy of k carrying the joint public material, given the
// other party's matrix and its public vector under the joint matrix.
func (k *KeyMaterial) Extend(pl *pool.Pool, otherA polyvec.Matrix, otherT polyvec.Vector) (*KeyMaterial, error) {
	if otherA.Rows() != k.A.Rows() || otherA.Cols() != k.A.Cols() || len(otherT) != len(k.T) {
		return nil, errors.New("keygen.Extend: other share has mismatched dimensions")
	}
	totalA := JointMatrix(k.A, otherA)
	selfT := k.ShareUnder(pl, totalA)
	extended := *k
	extended.Threshold = &ThresholdExtension{
		TotalA: totalA,
		SelfT:  selfT,
		OtherT: otherT.Copy(),
		TotalT: selfT.Add(otherT).Freeze(),
	}
	return &extended, nil
}

// Combine runs the exchange between two local shares and returns both extended
// shares. Each party only reads the other's public values.
func Combine(pl *pool.Pool, a, b *KeyMaterial) (*KeyMaterial, *KeyMaterial, error) {
	totalA := JointMatrix(a.A, b.A)
	ta := a.ShareUnder(pl, totalA)
	tb := b.ShareUnder(pl, totalA)

	ea, err := a.Extend(pl, b.A, tb)
	if err != nil {
		return nil, nil, fmt.Errorf("keygen.Combine: %w", err)
	}
	eb, err := b.Extend(pl, a.A, ta)
	if err != nil {
		return nil, nil, fmt.Errorf("keygen.Combine: %w", err)
	}
	return ea, eb, nil
}

// PublicKey returns the joint verification key, or nil if k was never combined.
func (k *KeyMaterial) PublicKey() *PublicKey {
	if k.Threshold == nil {
		return nil
	}
	return &PublicKey{A: k.Threshold.TotalA, T: k.Threshold.TotalT}
}

// Domain implements hash.WriterToWithDomain.
func (*PublicKey) Domain() string { return "keygen.PublicKey" }

// WriteTo implements io.WriterTo.
func (pk *PublicKey) WriteTo(w io.Writer) (int64, error) {
	n1, err := pk.A.WriteTo(w)
	if err != nil {
		return n1, err
	}
	n2, err := pk.T.WriteTo(w)
	return n1 + n2, err
}

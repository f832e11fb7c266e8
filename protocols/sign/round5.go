package sign

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/dilizium/internal/round"
	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
)

type round5 struct {
	*round4

	// chosen is the combination accepted by both parties.
	chosen int

	// otherZ and otherR are the other party's response for the chosen combination.
	otherZ polyvec.Vector
	otherR polyvec.Vector
}

type message5 struct {
	Attempt     int
	Combination int
	Z           polyvec.Vector
	R           polyvec.Vector
}

// RoundNumber implements round.Content.
func (message5) RoundNumber() round.Number { return 5 }

// VerifyMessage implements round.Round.
func (r *round5) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message5)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if err := r.checkAttempt(body.Attempt); err != nil {
		return err
	}
	if body.Combination != r.chosen {
		return fmt.Errorf("response for combination %d, expected %d", body.Combination, r.chosen)
	}
	if body.Z == nil || body.R == nil {
		return round.ErrNilFields
	}
	if len(body.Z) != r.params.L || len(body.R) != r.params.CommitmentK {
		return fmt.Errorf("response has lengths (%d, %d), expected (%d, %d)",
			len(body.Z), len(body.R), r.params.L, r.params.CommitmentK)
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round5) StoreMessage(msg round.Message) error {
	body := msg.Content.(*message5)
	r.otherZ = body.Z
	r.otherR = body.R
	return nil
}

// Finalize implements round.Round
//
// - check that zⱼ is short and that comⱼ opens to HighBits(A·zⱼ - c·tⱼ) with rⱼ.
// - z = zᵢ + zⱼ, r = rᵢ + rⱼ, x = xᵢ + xⱼ.
// - compute HighBits(A·z - c·t) and the hint to x.
func (r *round5) Finalize(chan<- *round.Message) (round.Session, error) {
	other := r.otherID()
	rounder := r.prims.Rounder
	totalA := r.key.Threshold.TotalA
	mine, theirs := r.sessionsOf(r.chosen)
	cHat := &r.cHat[r.chosen]

	if r.otherZ.CheckNorm(r.prims.Mask.Gamma1() - r.params.Beta) {
		return r.AbortRound(errors.New("response share exceeds its bound"), other), nil
	}
	otherX := totalA.Apply(r.Pool(), r.otherZ).Reduce().InvNTT().
		Sub(r.key.Threshold.OtherT.MulPoly(cHat)).Freeze().
		HighBits(rounder)
	if !r.ck.Open(r.Pool(), r.otherR, otherX, r.otherCom[theirs]) {
		return r.AbortRound(errors.New("commitment does not open on response share"), other), nil
	}

	z := r.z[r.chosen].Add(r.otherZ)
	rho := r.rho[mine].Add(r.otherR)
	x := r.x[mine].Add(otherX)
	com := r.com[mine].Add(r.otherCom[theirs])

	whb := highBitsOfResponse(r.Pool(), rounder, totalA, r.key.Threshold.TotalT, z, cHat)
	sig := &Signature{
		Z:          z,
		Commitment: com,
		R:          rho,
		Hint:       MakeHint(whb, x, rounder.Modulus()),
		WHB:        whb,
		Rejections: r.attempt - 1,
	}
	r.log.Debug().Int("attempts", r.attempt).Int("combination", r.chosen).Msg("signed")

	return r.ResultRound(&Result{Signature: sig, Attempts: r.attempts}), nil
}

// MessageContent implements round.Round.
func (round5) MessageContent() round.Content { return &message5{} }

// Number implements round.Round.
func (round5) Number() round.Number { return 5 }

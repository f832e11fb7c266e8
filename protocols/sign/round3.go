package sign

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/dilizium/internal/round"
	"github.com/taurusgroup/dilizium/pkg/commitment"
	"github.com/taurusgroup/dilizium/pkg/hash"
	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
)

type round3 struct {
	*round2

	// otherCom holds the other party's commitments to its xⱼₚ.
	otherCom commitments
}

type message3 struct {
	Attempt      int
	Commitments  []*commitment.Value
	Decommitment hash.Decommitment
}

// RoundNumber implements round.Content.
func (message3) RoundNumber() round.Number { return 3 }

// VerifyMessage implements round.Round
//
// - check that the commitments are well formed and match the hash sent in the previous round.
func (r *round3) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if body.Decommitment == nil {
		return round.ErrNilFields
	}
	if err := r.checkAttempt(body.Attempt); err != nil {
		return err
	}
	if len(body.Commitments) != r.params.ParallelSessions {
		return fmt.Errorf("got %d commitments, expected %d", len(body.Commitments), r.params.ParallelSessions)
	}
	for _, com := range body.Commitments {
		if com == nil {
			return round.ErrNilFields
		}
		if err := com.Validate(r.ck); err != nil {
			return err
		}
	}
	if err := body.Decommitment.Validate(); err != nil {
		return err
	}
	if !r.HashForID(msg.From).Decommit(r.otherHash, body.Decommitment, commitments(body.Commitments)) {
		return errors.New("failed to decommit")
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round3) StoreMessage(msg round.Message) error {
	body := msg.Content.(*message3)
	r.otherCom = body.Commitments
	return nil
}

// Finalize implements round.Round
//
// For every combination of a session p of this party with a session q of the other:
//
// - com = comᵢₚ + comⱼq, c = Challenge(H(M, com)).
// - z = yᵢₚ + c·s1ᵢ.
// - reject if ‖z‖∞ ≥ γ1 - β or ‖LowBits(wᵢₚ - c·s2ᵢ)‖∞ ≥ γ2 - β.
//
// Only the outcome of each check is sent.
func (r *round3) Finalize(out chan<- *round.Message) (round.Session, error) {
	n := r.combinations()
	next := &round4{
		round3: r,
		cHat:   make([]ring.NTTPoly, n),
		z:      make([]polyvec.Vector, n),
		checks: make([]RejectionCheck, n),
	}
	for idx := 0; idx < n; idx++ {
		mine, theirs := r.sessionsOf(idx)
		com := r.com[mine].Add(r.otherCom[theirs])
		c := sample.Challenge(sample.SHAKE256, challengeSeed(r.message, com), r.params.Tau)
		cHat := c.NTT()

		z := r.y[mine].Add(r.key.S1.MulPoly(&cHat)).Freeze().Center()

		check := CheckNone
		if z.CheckNorm(r.prims.Mask.Gamma1() - r.params.Beta) {
			check = CheckGamma1
		} else {
			lo := r.w[mine].Sub(r.key.S2.MulPoly(&cHat)).Freeze().LowBits(r.prims.Rounder)
			if lo.CheckNorm(r.prims.Rounder.Gamma2() - r.params.Beta) {
				check = CheckGamma2
			}
		}
		next.cHat[idx], next.z[idx], next.checks[idx] = cHat, z, check
	}

	checks := make([]RejectionCheck, n)
	copy(checks, next.checks)
	if err := r.SendMessage(out, &message4{Attempt: r.attempt, Checks: checks}, r.otherID()); err != nil {
		return r, err
	}
	return next, nil
}

// MessageContent implements round.Round.
func (round3) MessageContent() round.Content { return &message3{} }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }

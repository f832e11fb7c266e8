package sign

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/dilizium/internal/round"
	"github.com/taurusgroup/dilizium/pkg/commitment"
	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
	"github.com/taurusgroup/dilizium/pkg/math/sample"
	"github.com/taurusgroup/dilizium/pkg/party"
	"github.com/taurusgroup/dilizium/pkg/params"
	"github.com/taurusgroup/dilizium/protocols/keygen"
)

// round1 holds the state that survives across attempts.
type round1 struct {
	*round.Helper

	key     *keygen.KeyMaterial
	params  *params.Params
	prims   *params.Primitives
	message []byte
	rand    io.Reader
	log     zerolog.Logger

	// ck is the commitment key for this message and public key.
	ck *commitment.Key
	// seed keys the masking vectors of this session.
	seed []byte
	// kappa is the counter of the next masking vector.
	kappa int
	// attempt is the number of the current attempt, starting at 1.
	attempt  int
	attempts []Attempt
}

// VerifyMessage implements round.Round.
func (round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - start a new attempt, or abort if none are left.
// - for each parallel session p, sample yᵢₚ and compute wᵢₚ = A·yᵢₚ, xᵢₚ = HighBits(wᵢₚ).
// - commit to every xᵢₚ with fresh randomness rᵢₚ.
// - send a hash of the list of commitments.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	if r.attempt >= r.params.MaxAttempts {
		r.log.Warn().Int("attempts", r.attempt).Msg("no attempts left")
		return r.AbortRound(fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, r.attempt)), nil
	}
	r.attempt++

	sessions := r.params.ParallelSessions
	next := &round2{
		round1: r,
		y:      make([]polyvec.Vector, sessions),
		w:      make([]polyvec.Vector, sessions),
		x:      make([]polyvec.Vector, sessions),
		rho:    make([]polyvec.Vector, sessions),
		com:    make(commitments, sessions),
	}
	for p := 0; p < sessions; p++ {
		y := polyvec.MaskVector(r.prims.Mask, sample.SHAKE256, r.seed, r.params.L, r.kappa)
		r.kappa++

		w := r.key.Threshold.TotalA.Apply(r.Pool(), y).Reduce().InvNTT().CAddQ().Freeze()
		x := w.HighBits(r.prims.Rounder)
		rho := commitment.SampleRandomness(r.rand, r.params.CommitmentK, r.params.CommitmentBeta)

		next.y[p], next.w[p], next.x[p], next.rho[p] = y, w, x, rho
		next.com[p] = r.ck.Commit(r.Pool(), rho, x)
	}

	comHash, decommitment, err := r.HashForID(r.SelfID()).Commit(next.com)
	if err != nil {
		return r, fmt.Errorf("sign: failed to commit: %w", err)
	}
	next.decommitment = decommitment

	if err = r.SendMessage(out, &message2{Attempt: r.attempt, CommitmentHash: comHash}, r.otherID()); err != nil {
		return r, err
	}
	return next, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }

func (r *round1) otherID() party.ID {
	return r.OtherPartyIDs()[0]
}

// checkAttempt returns an error if the message belongs to another attempt.
func (r *round1) checkAttempt(attempt int) error {
	if attempt != r.attempt {
		return fmt.Errorf("message for attempt %d, expected %d", attempt, r.attempt)
	}
	return nil
}

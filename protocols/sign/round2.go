package sign

import (
	"github.com/taurusgroup/dilizium/internal/round"
	"github.com/taurusgroup/dilizium/pkg/hash"
	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
)

type round2 struct {
	*round1

	// y holds this attempt's masking vectors, one per parallel session.
	y []polyvec.Vector
	// w[p] = A·y[p] with coefficients in [0, Q).
	w []polyvec.Vector
	// x[p] = HighBits(w[p])
	x []polyvec.Vector
	// rho holds the commitment randomness.
	rho          []polyvec.Vector
	com          commitments
	decommitment hash.Decommitment

	// otherHash is the other party's hash commitment to its commitment.
	otherHash hash.Commitment
}

type message2 struct {
	Attempt        int
	CommitmentHash hash.Commitment
}

// RoundNumber implements round.Content.
func (message2) RoundNumber() round.Number { return 2 }

// VerifyMessage implements round.Round.
func (r *round2) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message2)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if err := r.checkAttempt(body.Attempt); err != nil {
		return err
	}
	return body.CommitmentHash.Validate()
}

// StoreMessage implements round.Round.
func (r *round2) StoreMessage(msg round.Message) error {
	body := msg.Content.(*message2)
	r.otherHash = body.CommitmentHash
	return nil
}

// Finalize implements round.Round
//
// - reveal the commitments and their decommitment.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	if err := r.SendMessage(out, &message3{
		Attempt:      r.attempt,
		Commitments:  r.com,
		Decommitment: r.decommitment,
	}, r.otherID()); err != nil {
		return r, err
	}
	return &round3{round2: r}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return &message2{} }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }

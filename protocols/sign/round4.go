package sign

import (
	"fmt"

	"github.com/taurusgroup/dilizium/internal/round"
	"github.com/taurusgroup/dilizium/pkg/math/polyvec"
	"github.com/taurusgroup/dilizium/pkg/math/ring"
)

type round4 struct {
	*round3

	// cHat[idx] = NTT(c) for combination idx.
	cHat []ring.NTTPoly
	// z[idx] is this party's centered response for combination idx. It is only sent for the chosen combination.
	z      []polyvec.Vector
	checks []RejectionCheck

	otherChecks []RejectionCheck
}

type message4 struct {
	Attempt int
	// Checks has one entry per combination, CheckNone where the sender accepted its share.
	Checks []RejectionCheck
}

// RoundNumber implements round.Content.
func (message4) RoundNumber() round.Number { return 4 }

// VerifyMessage implements round.Round.
func (r *round4) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if err := r.checkAttempt(body.Attempt); err != nil {
		return err
	}
	if len(body.Checks) != r.combinations() {
		return fmt.Errorf("got %d checks, expected %d", len(body.Checks), r.combinations())
	}
	for _, check := range body.Checks {
		if check > CheckGamma2 {
			return fmt.Errorf("unknown rejection check %d", check)
		}
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round4) StoreMessage(msg round.Message) error {
	body := msg.Content.(*message4)
	r.otherChecks = body.Checks
	return nil
}

// Finalize implements round.Round
//
// - choose the first combination accepted by both parties.
// - if there is none, record the rejections and start over.
// - otherwise send the response zᵢ and randomness rᵢ of that combination.
func (r *round4) Finalize(out chan<- *round.Message) (round.Session, error) {
	chosen := -1
	for idx := range r.checks {
		if r.checks[idx] == CheckNone && r.otherChecks[idx] == CheckNone {
			chosen = idx
			break
		}
	}

	if chosen < 0 {
		for _, id := range r.PartyIDs() {
			checks := r.checks
			if id != r.SelfID() {
				checks = r.otherChecks
			}
			a, rejected := rejections(r.attempt, id, checks)
			if !rejected {
				continue
			}
			r.attempts = append(r.attempts, a)
			r.log.Debug().Int("attempt", a.Number).Str("rejected_by", string(a.Party)).
				Stringer("check", a.Check).Int("rejected", a.Rejected).Msg("attempt rejected")
		}
		return r.round1.Finalize(out)
	}

	mine, _ := r.sessionsOf(chosen)
	if err := r.SendMessage(out, &message5{
		Attempt:     r.attempt,
		Combination: chosen,
		Z:           r.z[chosen],
		R:           r.rho[mine],
	}, r.otherID()); err != nil {
		return r, err
	}
	return &round5{round4: r, chosen: chosen}, nil
}

// MessageContent implements round.Round.
func (round4) MessageContent() round.Content { return &message4{} }

// Number implements round.Round.
func (round4) Number() round.Number { return 4 }

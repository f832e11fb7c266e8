package test

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/dilizium/internal/round"
	"github.com/taurusgroup/dilizium/pkg/party"
	"golang.org/x/sync/errgroup"
)

// Rule describes various hooks that can be applied to a protocol execution.
type Rule interface {
	// ModifyBefore modifies r before r.Finalize() is called.
	ModifyBefore(r round.Session)
	// ModifyAfter modifies rNext, which is the round returned by r.Finalize().
	ModifyAfter(rNext round.Session)
	// ModifyContent modifies content for the message that is delivered in rNext.
	ModifyContent(rNext round.Session, to party.ID, content round.Content)
}

// Rounds finalizes every session once, and delivers the resulting messages to the next rounds
// after a cbor round trip. It returns true once all sessions have reached an Output or Abort round.
func Rounds(rounds []round.Session, rule Rule) (error, bool) {
	var (
		err       error
		roundType reflect.Type
		errGroup  errgroup.Group
		N         = len(rounds)
		out       = make(chan *round.Message, N*(N+1))
	)

	if _, err = checkAllRoundsSame(rounds); err != nil {
		return err, false
	}
	for id := range rounds {
		idx := id
		r := rounds[idx]
		errGroup.Go(func() error {
			var (
				rNew round.Session
				err  error
			)
			if rule != nil {
				rule.ModifyBefore(r)
				outFake := make(chan *round.Message, N+1)
				rNew, err = r.Finalize(outFake)
				close(outFake)
				if err != nil {
					return err
				}
				rule.ModifyAfter(rNew)
				for msg := range outFake {
					rule.ModifyContent(rNew, msg.To, msg.Content)
					out <- msg
				}
			} else {
				rNew, err = r.Finalize(out)
				if err != nil {
					return err
				}
			}

			if rNew != nil {
				rounds[idx] = rNew
			}
			return nil
		})
	}
	if err = errGroup.Wait(); err != nil {
		return err, false
	}
	close(out)

	// a single abort ends the execution, even if the other parties produced an output
	for _, r := range rounds {
		if _, ok := r.(*round.Abort); ok {
			return nil, true
		}
	}

	// Check that all rounds are the same type
	if roundType, err = checkAllRoundsSame(rounds); err != nil {
		return err, false
	}
	if roundType == reflect.TypeOf(&round.Output{}) {
		return nil, true
	}

	for msg := range out {
		msgBytes, err := cbor.Marshal(msg.Content)
		if err != nil {
			return err, false
		}
		for _, r := range rounds {
			m := *msg
			r := r
			if !m.IsFor(r.SelfID()) {
				continue
			}
			errGroup.Go(func() error {
				if m.Content.RoundNumber() != r.Number() {
					return fmt.Errorf("message for round %d delivered in round %d", m.Content.RoundNumber(), r.Number())
				}
				m.Content = r.MessageContent()
				if err := cbor.Unmarshal(msgBytes, m.Content); err != nil {
					return err
				}
				if err := r.VerifyMessage(m); err != nil {
					return err
				}
				return r.StoreMessage(m)
			})
		}
		if err = errGroup.Wait(); err != nil {
			return err, false
		}
	}

	return nil, false
}

func checkAllRoundsSame(rounds []round.Session) (reflect.Type, error) {
	var t reflect.Type
	for _, r := range rounds {
		t2 := reflect.TypeOf(r)
		if t == nil {
			t = t2
		} else if t != t2 {
			return t, fmt.Errorf("two different rounds: %s %s", t, t2)
		}
	}
	return t, nil
}

// Package protocol drives round-based protocol sessions.
package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/taurusgroup/dilizium/internal/round"
	"github.com/taurusgroup/dilizium/pkg/party"
	"golang.org/x/sync/errgroup"
)

// ErrDesync is returned when the sessions of a local execution stop advancing in lockstep.
var ErrDesync = errors.New("protocol: sessions out of sync")

// StartFunc is function that creates the first round of a protocol.
// If the creation fails (likely due to misconfiguration), and error is returned.
type StartFunc func(sessionID []byte) (round.Session, error)

// Intercept is called on every message before it is delivered.
// It may modify the message content.
type Intercept func(msg *round.Message)

// Local runs all parties of a protocol inside one process.
//
// Every message is serialized with cbor before delivery, so that the parties
// only ever see what they would receive over a wire.
type Local struct {
	// Log receives round transitions. The zero value logs nothing.
	Log zerolog.Logger
	// SessionID is passed to every StartFunc.
	SessionID []byte
	// Intercept is optional.
	Intercept Intercept
}

// Run creates one session per StartFunc and executes them until every party reaches its output.
// The results are returned in the order of starts.
//
// The context is checked between rounds. An aborted session is reported as an Error naming the culprit.
func (l *Local) Run(ctx context.Context, starts ...StartFunc) ([]interface{}, error) {
	sessions := make([]round.Session, len(starts))
	for i, start := range starts {
		s, err := start(l.SessionID)
		if err != nil {
			return nil, fmt.Errorf("protocol: failed to create round: %w", err)
		}
		sessions[i] = s
	}
	if len(sessions) == 0 {
		return nil, errors.New("protocol: no parties")
	}
	log := l.Log.With().Str("protocol", sessions[0].ProtocolID()).Logger()
	log.Debug().Int("parties", len(sessions)).Msg("start")

	for steps := 1; ; steps++ {
		if err := ctx.Err(); err != nil {
			log.Debug().Err(err).Msg("stopped")
			return nil, err
		}

		number := sessions[0].Number()
		out, err := finalize(sessions)
		if err != nil {
			return nil, err
		}
		log.Debug().Int("round", int(number)).Int("step", steps).Int("messages", len(out)).Msg("finalized")

		results, done, err := collect(sessions, number)
		if err != nil {
			log.Warn().Err(err).Msg("aborted")
			return nil, err
		}
		if done {
			log.Debug().Int("steps", steps).Msg("done")
			return results, nil
		}

		for _, msg := range out {
			if l.Intercept != nil {
				l.Intercept(msg)
			}
			if err = deliver(sessions, msg); err != nil {
				log.Warn().Err(err).Stringer("msg", msg).Msg("failed to deliver")
				return nil, err
			}
		}
	}
}

// finalize calls Finalize on every session concurrently and replaces it by the next round.
func finalize(sessions []round.Session) ([]*round.Message, error) {
	var (
		errGroup errgroup.Group
		N        = len(sessions)
		out      = make(chan *round.Message, N*(N+1))
	)
	for idx := range sessions {
		i := idx
		r := sessions[i]
		errGroup.Go(func() error {
			next, err := r.Finalize(out)
			if err != nil {
				return Error{RoundNumber: r.Number(), Err: err}
			}
			if next != nil {
				sessions[i] = next
			}
			return nil
		})
	}
	if err := errGroup.Wait(); err != nil {
		return nil, err
	}
	close(out)

	msgs := make([]*round.Message, 0, len(out))
	for msg := range out {
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// collect returns the results once all sessions have output, or the first abort.
func collect(sessions []round.Session, number round.Number) ([]interface{}, bool, error) {
	results := make([]interface{}, len(sessions))
	finished := 0
	for i, s := range sessions {
		switch r := s.(type) {
		case *round.Abort:
			var culprit party.ID
			if len(r.Culprits) > 0 {
				culprit = r.Culprits[0]
			}
			return nil, false, Error{RoundNumber: number, Culprit: culprit, Err: r.Err}
		case *round.Output:
			results[i] = r.Result
			finished++
		}
	}
	switch finished {
	case 0:
		return nil, false, nil
	case len(sessions):
		return results, true, nil
	default:
		return nil, false, Error{RoundNumber: number, Err: ErrDesync}
	}
}

// deliver hands msg to every session it is intended for.
func deliver(sessions []round.Session, msg *round.Message) error {
	if msg.Content == nil {
		return Error{RoundNumber: 0, Culprit: msg.From, Err: errors.New("protocol: empty message")}
	}
	data, err := cbor.Marshal(msg.Content)
	if err != nil {
		return fmt.Errorf("protocol: marshal %s: %w", msg, err)
	}

	var errGroup errgroup.Group
	for _, s := range sessions {
		r := s
		if !msg.IsFor(r.SelfID()) {
			continue
		}
		errGroup.Go(func() error {
			if msg.Content.RoundNumber() != r.Number() {
				return Error{RoundNumber: r.Number(), Err: ErrDesync}
			}
			content := r.MessageContent()
			if err := cbor.Unmarshal(data, content); err != nil {
				return Error{RoundNumber: r.Number(), Culprit: msg.From, Err: fmt.Errorf("protocol: unmarshal: %w", err)}
			}
			m := round.Message{
				From:      msg.From,
				To:        msg.To,
				Broadcast: msg.Broadcast,
				Content:   content,
			}
			if err := r.VerifyMessage(m); err != nil {
				return Error{RoundNumber: r.Number(), Culprit: msg.From, Err: err}
			}
			if err := r.StoreMessage(m); err != nil {
				return Error{RoundNumber: r.Number(), Culprit: msg.From, Err: err}
			}
			return nil
		})
	}
	return errGroup.Wait()
}

package sign

import (
	"encoding/binary"
	"io"

	"github.com/taurusgroup/dilizium/pkg/commitment"
)

// commitments holds the commitments of one party for an attempt, one per parallel session.
type commitments []*commitment.Value

// WriteTo implements io.WriterTo.
func (cs commitments) WriteTo(w io.Writer) (int64, error) {
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(cs)))
	n, err := w.Write(count[:])
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, c := range cs {
		m, err := c.WriteTo(w)
		total += m
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (commitments) Domain() string { return "sign.Commitments" }

// combinations is the number of pairs of parallel sessions.
func (r *round1) combinations() int {
	return r.params.ParallelSessions * r.params.ParallelSessions
}

// sessionsOf returns the parallel sessions of this party and of the other party
// that make up combination idx.
//
// Combination idx pairs session idx / P of the party whose ID sorts first with
// session idx % P of the other, so both parties enumerate the same pairs in the same order.
func (r *round1) sessionsOf(idx int) (mine, theirs int) {
	p := r.params.ParallelSessions
	first, second := idx/p, idx%p
	if r.PartyIDs()[0] == r.SelfID() {
		return first, second
	}
	return second, first
}

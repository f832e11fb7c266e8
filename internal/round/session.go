package round

import (
	"github.com/taurusgroup/dilizium/pkg/hash"
	"github.com/taurusgroup/dilizium/pkg/party"
	"github.com/taurusgroup/dilizium/pkg/pool"
)

// Info is the static description of a protocol execution.
type Info struct {
	// ProtocolID is an identifier for this protocol
	ProtocolID string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber Number
	// SelfID is this party's ID.
	SelfID party.ID
	// PartyIDs is a sorted slice of participating parties in this protocol.
	PartyIDs []party.ID
}

// Session represents the current execution of a round-based protocol.
// It embeds the current round, and provides additional information about the execution.
type Session interface {
	// Round is the current round being executed.
	Round
	// Hash returns a cloned hash function with the current hash state.
	Hash() *hash.Hash
	// ProtocolID is an identifier for this protocol.
	ProtocolID() string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber() Number
	// SSID the unique identifier for this protocol execution.
	SSID() []byte
	// SelfID is this party's ID.
	SelfID() party.ID
	// PartyIDs is a sorted slice of participating parties in this protocol.
	PartyIDs() party.IDSlice
	// OtherPartyIDs returns a sorted list of parties that does not contain SelfID.
	OtherPartyIDs() party.IDSlice
	// N returns the total number of parties participating in the protocol.
	N() int
	// Pool returns the worker pool of this execution, which may be nil.
	Pool() *pool.Pool
}

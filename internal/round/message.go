package round

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/dilizium/pkg/party"
)

var (
	// ErrInvalidContent is returned when a message content does not have the type expected by the round.
	ErrInvalidContent = errors.New("round: content is not the expected type")
	// ErrNilFields is returned when a message content is missing some of its fields.
	ErrNilFields = errors.New("round: message contained empty fields")
)

// Content represents the message, either broadcast or P2P returned by a round
// during finalization.
type Content interface {
	RoundNumber() Number
}

// Message is a Content together with its routing header.
// An empty To means the message is for every other party.
type Message struct {
	From, To  party.ID
	Broadcast bool
	Content   Content
}

// IsFor returns true if the message is intended for the designated party.
func (m *Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.To == "" || m.To == id
}

func (m *Message) String() string {
	if m.Content == nil {
		return fmt.Sprintf("message: from %s, to %s, no content", m.From, m.To)
	}
	return fmt.Sprintf("message: round %d, from %s, to %s", m.Content.RoundNumber(), m.From, m.To)
}

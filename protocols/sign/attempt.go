package sign

import (
	"fmt"

	"github.com/taurusgroup/dilizium/pkg/party"
)

// RejectionCheck names the bound a response share violated.
type RejectionCheck uint8

const (
	// CheckNone means the share was accepted.
	CheckNone RejectionCheck = iota
	// CheckGamma1 means ‖z‖∞ ≥ γ1 - β.
	CheckGamma1
	// CheckGamma2 means ‖LowBits(w - c·s2)‖∞ ≥ γ2 - β.
	CheckGamma2
)

func (c RejectionCheck) String() string {
	switch c {
	case CheckNone:
		return "none"
	case CheckGamma1:
		return "gamma1"
	case CheckGamma2:
		return "gamma2"
	default:
		return fmt.Sprintf("RejectionCheck(%d)", uint8(c))
	}
}

// Attempt records the rejections of one party in a failed attempt.
type Attempt struct {
	// Number starts at 1.
	Number int
	Party  party.ID
	// Check is the bound violated by the first rejected combination.
	Check RejectionCheck
	// Rejected is the number of combinations of commitments the party rejected.
	Rejected int
}

func (a Attempt) String() string {
	if a.Rejected > 1 {
		return fmt.Sprintf("attempt %d: party %s rejected %d combinations (first: %s)", a.Number, a.Party, a.Rejected, a.Check)
	}
	return fmt.Sprintf("attempt %d: party %s rejected (%s)", a.Number, a.Party, a.Check)
}

// rejections returns the Attempt of party for its checks, and false if it accepted every combination.
func rejections(number int, id party.ID, checks []RejectionCheck) (Attempt, bool) {
	a := Attempt{Number: number, Party: id}
	for _, check := range checks {
		if check == CheckNone {
			continue
		}
		if a.Rejected == 0 {
			a.Check = check
		}
		a.Rejected++
	}
	return a, a.Rejected > 0
}

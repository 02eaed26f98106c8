package game

import "fmt"

// Decision is a player's choice for a round.
// The zero value, None, means that no choice has been made.
type Decision int

const (
	// None is the pending decision of a player who has not chosen yet.
	None Decision = iota
	// Cooperate is the decision to stay silent and trust the other player.
	Cooperate
	// Betray is the decision to defect against the other player.
	Betray
)

// String returns the display value for the decision.
func (d Decision) String() string {
	switch d {
	case None:
		return "None"
	case Cooperate:
		return "Cooperate"
	case Betray:
		return "Betray"
	}
	return "?"
}

// Valid determines if the decision can be submitted by a player.
func (d Decision) Valid() bool {
	return d == Cooperate || d == Betray
}

// Effective is the decision used for scoring.  A player who has not made a choice betrays.
func (d Decision) Effective() Decision {
	if d == Cooperate {
		return Cooperate
	}
	return Betray
}

// MarshalText encodes the decision as the lower-case word the ui sends.
func (d Decision) MarshalText() ([]byte, error) {
	switch d {
	case None:
		return []byte{}, nil
	case Cooperate:
		return []byte("cooperate"), nil
	case Betray:
		return []byte("betray"), nil
	}
	return nil, fmt.Errorf("unknown decision: %d", int(d))
}

// UnmarshalText decodes the decision from the lower-case word the ui sends.
func (d *Decision) UnmarshalText(text []byte) error {
	switch string(text) {
	case "":
		*d = None
	case "cooperate":
		*d = Cooperate
	case "betray":
		*d = Betray
	default:
		return fmt.Errorf("unknown decision: %q", text)
	}
	return nil
}

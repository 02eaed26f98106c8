package game

// Status is the phase of the game.
type Status int

const (
	_ Status = iota
	// Standby is the status of a game that has not been started.  The configuration can only be changed while in standby.
	Standby
	// Playing is the status of a game that has been started but is not finished.  Rounds may be active or waiting to be started.
	Playing
	// Finished is the status of a game that has evaluated its last round.
	Finished
)

// String returns the display value for the status.
func (s Status) String() string {
	switch s {
	case Standby:
		return "Standby"
	case Playing:
		return "Playing"
	case Finished:
		return "Finished"
	}
	return "?"
}

// Package game contains communication structures for the game controller, runner, and socket to use.
package game

import "fmt"

type (
	// ID is the id of a game.
	ID int

	// Config contains the settings of a game.  It can only be replaced while the game is in standby.
	Config struct {
		// RoundDurationSec is the number of seconds players have to make their decisions each round.
		RoundDurationSec int `json:"roundDurationSec" yaml:"roundDurationSec"`
		// TotalRounds is the number of rounds in the game.
		TotalRounds int `json:"totalRounds" yaml:"totalRounds"`
		// Payoffs is the point-award table keyed by the decision pair.
		Payoffs Payoffs `json:"payoffs" yaml:"payoffs"`
	}

	// Payoffs is the payoff matrix.  The points are awarded to each player after every round.
	Payoffs struct {
		// BothCooperate is awarded to each player when both players cooperate.
		BothCooperate int `json:"bothCooperate" yaml:"bothCooperate"`
		// BothBetray is awarded to each player when both players betray.
		BothBetray int `json:"bothBetray" yaml:"bothBetray"`
		// BetraySuccess is awarded to a player who betrays a cooperating player.
		BetraySuccess int `json:"betraySuccess" yaml:"betraySuccess"`
		// BetrayedPenalty is awarded to a player who cooperates with a betraying player.
		BetrayedPenalty int `json:"betrayedPenalty" yaml:"betrayedPenalty"`
	}
)

const (
	// DefaultRoundDurationSec is the default length of a round.
	DefaultRoundDurationSec = 60
	// DefaultTotalRounds is the default number of rounds in a game.
	DefaultTotalRounds = 15
)

// DefaultConfig creates the standard game configuration.
func DefaultConfig() Config {
	return Config{
		RoundDurationSec: DefaultRoundDurationSec,
		TotalRounds:      DefaultTotalRounds,
		Payoffs: Payoffs{
			BothCooperate:   3,
			BothBetray:      1,
			BetraySuccess:   4,
			BetrayedPenalty: 0,
		},
	}
}

// Validate ensures the configuration can be applied to a game.
// The game does not check the configuration again, so callers should validate before applying.
func (cfg Config) Validate() error {
	p := cfg.Payoffs
	switch {
	case cfg.RoundDurationSec <= 0:
		return fmt.Errorf("positive round duration required")
	case cfg.TotalRounds <= 0:
		return fmt.Errorf("positive total round count required")
	case p.BothCooperate < 0, p.BothBetray < 0, p.BetraySuccess < 0, p.BetrayedPenalty < 0:
		return fmt.Errorf("non-negative payoffs required")
	}
	return nil
}

// Score awards points to the players for their decisions.
// A decision that is not Cooperate is scored as a betrayal.
func (p Payoffs) Score(a, b Decision) (pointsA, pointsB int) {
	a, b = a.Effective(), b.Effective()
	switch {
	case a == Cooperate && b == Cooperate:
		return p.BothCooperate, p.BothCooperate
	case a == Betray && b == Betray:
		return p.BothBetray, p.BothBetray
	case a == Betray: // b cooperated
		return p.BetraySuccess, p.BetrayedPenalty
	default:
		return p.BetrayedPenalty, p.BetraySuccess
	}
}

// Rules gets the rules for the game.
func (cfg Config) Rules() []string {
	p := cfg.Payoffs
	rules := []string{
		"Two players play against each other for a number of rounds.",
		"Click Start Game to start the first round and Start Next Round to start each following round.",
		fmt.Sprintf("Each round lasts %d seconds.  Choose Cooperate or Betray before the timer runs out.  Decisions can be changed until then.", cfg.RoundDurationSec),
		"A player who has not made a decision when the timer runs out betrays.",
		fmt.Sprintf("If both players cooperate, each gets %d points.", p.BothCooperate),
		fmt.Sprintf("If both players betray, each gets %d points.", p.BothBetray),
		fmt.Sprintf("If one player betrays and the other cooperates, the betrayer gets %d points and the cooperator gets %d points.", p.BetraySuccess, p.BetrayedPenalty),
		fmt.Sprintf("The player with the most points after %d rounds wins.", cfg.TotalRounds),
	}
	return rules
}

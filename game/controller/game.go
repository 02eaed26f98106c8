// Package controller handles the logic to run the game.
package controller

import (
	"fmt"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/player"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/round"
)

type (
	// Game is the round state machine of a two-player prisoner's dilemma.
	// Operations that are not allowed in the current state are ignored and return false.
	// Game is not safe for concurrent use; callers should serialize all operations.
	Game struct {
		cfg     game.Config
		state   game.State
		players [2]seat
		history round.Ledger
	}

	// Config contains the properties to create similar games.
	Config struct {
		// Game is the initial configuration of the game.
		Game game.Config
		// PlayerNames are the display names of the two players.
		// If not specified, "Player 1" and "Player 2" are used.
		PlayerNames [2]player.Name
		// NewPlayerIDFunc creates the ids of the players.
		// If not specified, random ids are used.
		NewPlayerIDFunc func() player.ID
	}
)

// NewGame creates a new game in standby.
func (cfg Config) NewGame() (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating game: validation: %w", err)
	}
	newPlayerIDFunc := cfg.NewPlayerIDFunc
	if newPlayerIDFunc == nil {
		newPlayerIDFunc = player.NewID
	}
	g := Game{
		cfg: cfg.Game,
	}
	for i := range g.players {
		name := cfg.PlayerNames[i]
		if len(name) == 0 {
			name = player.Name(fmt.Sprintf("Player %d", i+1))
		}
		g.players[i] = seat{
			id:   newPlayerIDFunc(),
			name: name,
		}
	}
	if g.players[0].id == g.players[1].id {
		return nil, fmt.Errorf("creating game: players must have different ids")
	}
	g.reset()
	return &g, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.Game.Validate() != nil:
		return cfg.Game.Validate()
	case len(cfg.PlayerNames[0]) != 0 && cfg.PlayerNames[0] == cfg.PlayerNames[1]:
		return fmt.Errorf("players must have different names")
	}
	return nil
}

// StartGame starts the first round of a game in standby.
func (g *Game) StartGame() bool {
	if g.state.Status != game.Standby {
		return false
	}
	g.state.Status = game.Playing
	g.state.CurrentRound = 1
	g.activateRound()
	return true
}

// StartRound starts the next round of a game that is being played.
func (g *Game) StartRound() bool {
	if g.state.Status != game.Playing || g.state.RoundActive {
		return false
	}
	g.activateRound()
	return true
}

// activateRound resets the clock and pending decisions and allows players to make decisions.
func (g *Game) activateRound() {
	g.state.RoundActive = true
	g.state.SecondsRemaining = g.cfg.RoundDurationSec
	for i := range g.players {
		g.players[i].pending = game.None
	}
}

// SubmitDecision sets the pending decision for the player while a round is active.
// The decision can be changed any number of times until the round expires.
func (g *Game) SubmitDecision(id player.ID, d game.Decision) bool {
	if !g.state.RoundActive || !d.Valid() {
		return false
	}
	for i := range g.players {
		if g.players[i].id == id {
			g.players[i].pending = d
			return true
		}
	}
	return false
}

// Tick counts down the active round by one second.
// When no time remains, the round is evaluated.  True is returned if the state changed.
func (g *Game) Tick() bool {
	if !g.state.RoundActive {
		return false
	}
	if g.state.SecondsRemaining > 0 {
		g.state.SecondsRemaining--
	}
	if g.state.SecondsRemaining == 0 {
		g.evaluateRound()
	}
	return true
}

// evaluateRound scores the decisions of the round and moves on to the next round or finishes the game.
func (g *Game) evaluateRound() {
	p1, p2 := &g.players[0], &g.players[1]
	d1, d2 := p1.pending.Effective(), p2.pending.Effective()
	points1, points2 := g.cfg.Payoffs.Score(d1, d2)
	g.history.Append([2]game.Decision{d1, d2}, [2]int{points1, points2})
	p1.award(d1, points1)
	p2.award(d2, points2)
	g.state.RoundActive = false
	if g.state.CurrentRound >= g.cfg.TotalRounds {
		g.state.Status = game.Finished
		return
	}
	g.state.CurrentRound++
	g.state.SecondsRemaining = g.cfg.RoundDurationSec
}

// StartNewGame resets the players, history, and state of the game to standby.
// It can be called from any state.
func (g *Game) StartNewGame() bool {
	g.reset()
	return true
}

// ApplyConfig replaces the configuration and resets the game.  The game must be in standby.
// The configuration is not validated.
func (g *Game) ApplyConfig(cfg game.Config) bool {
	if g.state.Status != game.Standby {
		return false
	}
	g.cfg = cfg
	g.reset()
	return true
}

// reset clears all mutable state of the game.
func (g *Game) reset() {
	for i := range g.players {
		g.players[i].reset()
	}
	g.history = round.Ledger{}
	g.state = game.State{
		CurrentRound:     1,
		SecondsRemaining: g.cfg.RoundDurationSec,
		Status:           game.Standby,
	}
}

// State returns the round and timer state of the game.
func (g Game) State() game.State {
	return g.state
}

// Config returns the configuration of the game.
func (g Game) Config() game.Config {
	return g.cfg
}

// Result compares the scores of the players.  It should only be used when the game is finished.
func (g Game) Result() game.Result {
	return game.NewResult(g.players[0].info(), g.players[1].info())
}

// Info creates a snapshot of the game.  The snapshot does not share memory with the game.
func (g Game) Info() game.Info {
	i := game.Info{
		State:   g.state,
		Config:  g.cfg,
		Players: []game.PlayerInfo{g.players[0].info(), g.players[1].info()},
		History: g.history.Records(),
	}
	if g.state.Status == game.Finished {
		r := g.Result()
		i.Result = &r
	}
	return i
}

package controller

import (
	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/player"
)

type (
	// seat stores the score and decisions of a player in the game.
	seat struct {
		id      player.ID
		name    player.Name
		pending game.Decision
		score   int
		history []game.Decision
	}
)

// award adds the points for the round and records the effective decision, clearing the pending decision.
func (p *seat) award(d game.Decision, points int) {
	p.score += points
	p.history = append(p.history, d)
	p.pending = game.None
}

// reset clears the score and decisions of the player.  The id and name are kept.
func (p *seat) reset() {
	p.pending = game.None
	p.score = 0
	p.history = nil
}

// info creates a copy of the player's ledger.
func (p seat) info() game.PlayerInfo {
	i := game.PlayerInfo{
		ID:      p.id,
		Name:    p.name,
		Pending: p.pending,
		Score:   p.score,
	}
	if len(p.history) != 0 {
		i.History = make([]game.Decision, len(p.history))
		copy(i.History, p.history)
	}
	return i
}

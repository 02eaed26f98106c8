package game

import (
	"fmt"

	"github.com/jacobpatterson1549/prisoners-dilemma/game/player"
)

type (
	// Info is a read-only snapshot of a game, used to render it.
	Info struct {
		// ID is unique among the other games that currently exist.
		ID ID `json:"id,omitempty"`
		// State is the round and timer state of the game.
		State State `json:"state"`
		// Config is the configuration the game is played with.
		Config Config `json:"config"`
		// Players are the two players of the game, in seat order.
		Players []PlayerInfo `json:"players,omitempty"`
		// History contains the completed rounds, in order.
		History []RoundRecord `json:"history,omitempty"`
		// Result describes the outcome of a finished game.
		Result *Result `json:"result,omitempty"`
		// CreatedAt is the game's creation time in seconds since the unix epoch.
		CreatedAt int64 `json:"createdAt,omitempty"`
	}

	// State is the round and timer state of a game.
	State struct {
		// CurrentRound is the one-based round number being played or waiting to be started.
		CurrentRound int `json:"currentRound"`
		// SecondsRemaining is the time left for the active round.
		SecondsRemaining int `json:"secondsRemaining"`
		// RoundActive is true only while players can make decisions.
		RoundActive bool `json:"roundActive"`
		// Status is the phase of the game.
		Status Status `json:"status"`
	}

	// PlayerInfo is the ledger of a player.
	PlayerInfo struct {
		ID      player.ID   `json:"id"`
		Name    player.Name `json:"name"`
		Pending Decision    `json:"pending"`
		Score   int         `json:"score"`
		// History contains the effective decisions of the player for each completed round.
		History []Decision `json:"history,omitempty"`
	}

	// RoundRecord is the outcome of a completed round.
	RoundRecord struct {
		Round     int         `json:"round"`
		Decisions [2]Decision `json:"decisions"`
		Points    [2]int      `json:"points"`
	}

	// Result is the derived outcome of a game.
	Result struct {
		// Tie is true when both players have the same score.
		Tie bool `json:"tie,omitempty"`
		// Winner is the name of the player with the highest score.  Empty for ties.
		Winner player.Name `json:"winner,omitempty"`
		// Scores are the final scores of the players, in seat order.
		Scores [2]int `json:"scores"`
	}
)

// NewResult compares the scores of the two players.
func NewResult(a, b PlayerInfo) Result {
	r := Result{
		Scores: [2]int{a.Score, b.Score},
	}
	switch {
	case a.Score > b.Score:
		r.Winner = a.Name
	case b.Score > a.Score:
		r.Winner = b.Name
	default:
		r.Tie = true
	}
	return r
}

// String returns the game over text for the result.
func (r Result) String() string {
	if r.Tie {
		return "It's a tie!"
	}
	return fmt.Sprintf("%v wins!", r.Winner)
}

// Package message contains structures to pass between the ui and server.
package message

import (
	"net/http"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/player"
)

type (
	// Type represents what the purpose of a message.
	Type int

	// Message contains information to or from a socket for a game.
	Message struct {
		// Type is the purpose of the message.
		Type Type `json:"type"`
		// Info is a message to show to the players.
		Info string `json:"info,omitempty"`
		// Game is the snapshot of the game the socket is playing.
		Game *game.Info `json:"game,omitempty"`
		// PlayerID identifies the player a decision is submitted for.
		PlayerID player.ID `json:"playerID,omitempty"`
		// Decision is the choice a player submits.
		Decision game.Decision `json:"decision,omitempty"`
		// Config is the game configuration to apply.
		Config *game.Config `json:"config,omitempty"`
		// GameID is the id of the game the message is to/from.  It is read from the session token of the socket, never from the ui.
		GameID game.ID `json:"-"`
		// Addr is the socket remote address text the message is from.
		Addr Addr `json:"-"`
		// AddSocketRequest is used to upgrade a http request to a socket for a game.
		AddSocketRequest *AddSocketRequest `json:"-"`
		// Result is the channel to reply to requests from the http server on.  It should be buffered.
		Result chan<- Message `json:"-"`
	}

	// AddSocketRequest contains the http request to create a socket from.
	AddSocketRequest struct {
		http.ResponseWriter
		*http.Request
	}

	// Addr identifies the source of a message.
	Addr string
)

const (
	_ Type = iota
	// CreateGame is a MessageType that the server sends to the runner to open a new game.
	CreateGame
	// DeleteGame is a MessageType that is sent to remove a game from the server.
	DeleteGame
	// StartGame is a MessageType that users send to start the first round of a game in standby.
	StartGame
	// StartRound is a MessageType that users send to start the next round.
	StartRound
	// SubmitDecision is a MessageType that users send to choose to cooperate or betray for a player.
	SubmitDecision
	// StartNewGame is a MessageType that users send to reset the game to standby.
	StartNewGame
	// ApplyConfig is a MessageType that users send to change the configuration of a game in standby.
	ApplyConfig
	// RefreshGame is a MessageType that users send to get the current snapshot of the game.
	RefreshGame
	// GameInfos is a MessageType that the server sends to report changes in the state of the game.
	GameInfos
	// SocketWarning is a MessageType that servers send to inform users that a request is invalid.
	SocketWarning
	// SocketError is a MessageType that servers send to users to report an unexpected state.
	SocketError
	// SocketAdd is used to add a socket for a game.
	SocketAdd
	// SocketClose is sent when the socket is closed.
	SocketClose // keep last for tests
)

// String returns the display value for the type.
func (t Type) String() string {
	switch t {
	case CreateGame:
		return "CreateGame"
	case DeleteGame:
		return "DeleteGame"
	case StartGame:
		return "StartGame"
	case StartRound:
		return "StartRound"
	case SubmitDecision:
		return "SubmitDecision"
	case StartNewGame:
		return "StartNewGame"
	case ApplyConfig:
		return "ApplyConfig"
	case RefreshGame:
		return "RefreshGame"
	case GameInfos:
		return "GameInfos"
	case SocketWarning:
		return "SocketWarning"
	case SocketError:
		return "SocketError"
	case SocketAdd:
		return "SocketAdd"
	case SocketClose:
		return "SocketClose"
	}
	return "?"
}

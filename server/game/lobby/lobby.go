// Package lobby handles browsers connecting to games and communication between games and sockets.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/message"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/runner"
)

type (
	// Lobby is the place browsers create and play games.
	Lobby struct {
		runner         *runner.Runner
		socketRunner   Runner
		gameRunner     Runner
		socketMessages chan message.Message
		gameMessages   chan message.Message
		Config
	}

	// Config contiains the properties to create a lobby.
	Config struct {
		// Debug is a flag that causes the lobby to log the types of messages that are forwarded.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
	}

	// Runner handles messages for multiple games or sockets.
	Runner interface {
		Run(ctx context.Context, in <-chan message.Message) <-chan message.Message
	}
)

// NewLobby creates a new game lobby.
func (cfg Config) NewLobby(socketRunner, gameRunner Runner) (*Lobby, error) {
	if err := cfg.validate(socketRunner, gameRunner); err != nil {
		return nil, fmt.Errorf("creating lobby: validation: %w", err)
	}
	l := Lobby{
		runner:         runner.New("lobby"),
		socketRunner:   socketRunner,
		gameRunner:     gameRunner,
		socketMessages: make(chan message.Message),
		gameMessages:   make(chan message.Message),
		Config:         cfg,
	}
	return &l, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(socketRunner, gameRunner Runner) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case socketRunner == nil:
		return fmt.Errorf("socket runner required")
	case gameRunner == nil:
		return fmt.Errorf("game runner required")
	}
	return nil
}

// Run starts the runners and passes messages between them until the context is done.
// Messages from games go to the socket runner.  Messages from sockets go to the game runner.
// The lobby can only be run once.
func (l *Lobby) Run(ctx context.Context) error {
	if err := l.runner.Start(); err != nil {
		return err
	}
	socketOut := l.socketRunner.Run(ctx, l.socketMessages)
	gameOut := l.gameRunner.Run(ctx, l.gameMessages)
	go l.forward(ctx, gameOut, l.socketMessages, "socket")
	go l.forward(ctx, socketOut, l.gameMessages, "game")
	return nil
}

// forward passes messages from the src to the dest until the context is done or the src is closed.
func (l *Lobby) forward(ctx context.Context, src <-chan message.Message, dest chan<- message.Message, destName string) {
	defer l.runner.Stop()
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return
		case m, ok := <-src:
			if !ok {
				return
			}
			if l.Debug {
				l.Log.Printf("lobby forwarding %v message for game %v to %v runner", m.Type, m.GameID, destName)
			}
			select {
			case <-ctx.Done():
				return
			case dest <- m:
			}
		}
	}
}

// CreateGame creates a new game, returning its id.
func (l *Lobby) CreateGame(ctx context.Context) (game.ID, error) {
	m := message.Message{
		Type: message.CreateGame,
	}
	m2, err := l.request(ctx, m, l.gameMessages)
	if err != nil {
		return 0, fmt.Errorf("creating game: %w", err)
	}
	return m2.GameID, nil
}

// AddSocket upgrades the request to a websocket for the game.
func (l *Lobby) AddSocket(ctx context.Context, gameID game.ID, w http.ResponseWriter, r *http.Request) error {
	m := message.Message{
		Type:   message.SocketAdd,
		GameID: gameID,
		AddSocketRequest: &message.AddSocketRequest{
			ResponseWriter: w,
			Request:        r,
		},
	}
	if _, err := l.request(ctx, m, l.socketMessages); err != nil {
		return fmt.Errorf("adding socket: %w", err)
	}
	return nil
}

// request sends the message to the runner and waits for the reply.
func (l *Lobby) request(ctx context.Context, m message.Message, runnerIn chan<- message.Message) (*message.Message, error) {
	result := make(chan message.Message, 1)
	m.Result = result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case runnerIn <- m:
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case m2 := <-result:
		switch m2.Type {
		case message.SocketWarning, message.SocketError:
			return nil, errors.New(m2.Info)
		}
		return &m2, nil
	}
}

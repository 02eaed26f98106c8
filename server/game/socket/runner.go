package socket

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/message"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/game/socket/gorilla"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
)

type (
	// Runner handles sending messages to different sockets.
	// Each socket plays a single game.  Multiple sockets can watch and play the same game.
	Runner struct {
		upgrader Upgrader
		sockets  map[message.Addr]runningSocket
		RunnerConfig
	}

	// RunnerConfig is used to create a socket Runner.
	RunnerConfig struct {
		// Log is used to log errors and other information
		Log log.Logger
		// The maximum number of sockets.
		MaxSockets int
		// The maximum number of sockets each game can have.  Must be no more than maxSockets.
		MaxGameSockets int
		// The config for creating new sockets
		SocketConfig Config
		// UpgraderConfig is used to create the websocket upgrader.
		UpgraderConfig gorilla.UpgraderConfig
	}

	// Upgrader turns a http request into a websocket.
	Upgrader interface {
		// Upgrade creates a Conn from the HTTP request.
		Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error)
	}

	// runningSocket is a socket the runner can send messages to.
	runningSocket struct {
		gameID game.ID
		in     chan<- message.Message
		done   <-chan struct{}
	}
)

// NewRunner creates a new socket runner from the config.
func (cfg RunnerConfig) NewRunner() (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating socket runner: validation: %w", err)
	}
	u := newGorillaUpgrader(cfg.UpgraderConfig)
	r := Runner{
		upgrader:     u,
		sockets:      make(map[message.Addr]runningSocket, cfg.MaxSockets),
		RunnerConfig: cfg,
	}
	return &r, nil
}

// validate ensures the configuration has no errors.
func (cfg RunnerConfig) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.MaxGameSockets < 1:
		return fmt.Errorf("each game must be able to have at least one socket")
	case cfg.MaxSockets < cfg.MaxGameSockets:
		return fmt.Errorf("games cannot have more sockets than the runner allows")
	}
	return nil
}

// Run consumes messages from the "in" channel.  This channel is used to create sockets and send messages from games to them.
// The messages received from sockets are sent on the returned "out" channel to be read by games.
// Replies to SocketAdd messages are sent on the Result channel of the message.
func (r *Runner) Run(ctx context.Context, in <-chan message.Message) <-chan message.Message {
	out := make(chan message.Message)
	go func() {
		for { // BLOCKING
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				r.handleMessage(ctx, m, out)
			}
		}
	}()
	return out
}

// handleMessage writes the message to the appropriate sockets in the runner.
func (r *Runner) handleMessage(ctx context.Context, m message.Message, out chan<- message.Message) {
	switch m.Type {
	case message.SocketAdd:
		r.addSocket(ctx, m, out)
	case message.DeleteGame:
		r.sendGameMessage(ctx, m)
		r.removeGameSockets(m.GameID)
	default:
		r.sendGameMessage(ctx, m)
	}
}

// addSocket adds a socket and sends a reply on the result channel of the request.
func (r *Runner) addSocket(ctx context.Context, m message.Message, out chan<- message.Message) {
	switch {
	case m.AddSocketRequest == nil:
		r.Log.Printf("no AddSocketRequest on message for game %v", m.GameID)
		return
	case m.Result == nil:
		r.Log.Printf("no Result channel on message for game %v", m.GameID)
		return
	}
	r.removeStoppedSockets()
	m2 := message.Message{
		GameID: m.GameID,
	}
	s, err := r.handleAddSocket(ctx, m, out)
	switch {
	case err != nil:
		m2.Type = message.SocketError
		m2.Info = err.Error()
	default:
		m2.Type = message.SocketAdd
		m2.Addr = s.Addr
	}
	message.Send(ctx, m2, m.Result, r.Log)
}

// handleAddSocket runs and adds a socket for the game to the runner.
// Requests that are not upgraded are written an error response.
func (r *Runner) handleAddSocket(ctx context.Context, m message.Message, out chan<- message.Message) (*Socket, error) {
	if err := r.checkRoom(m.GameID); err != nil {
		http.Error(m.AddSocketRequest.ResponseWriter, err.Error(), http.StatusServiceUnavailable)
		return nil, err
	}
	conn, err := r.upgrader.Upgrade(m.AddSocketRequest.ResponseWriter, m.AddSocketRequest.Request)
	if err != nil {
		return nil, fmt.Errorf("upgrading to websocket connection: %w", err)
	}
	s, err := r.SocketConfig.NewSocket(m.GameID, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating socket in runner: %w", err)
	}
	if _, ok := r.sockets[s.Addr]; ok {
		conn.Close()
		return nil, fmt.Errorf("socket already exists with address of %v", s.Addr)
	}
	socketIn := make(chan message.Message)
	done := s.Run(ctx, socketIn, out)
	r.sockets[s.Addr] = runningSocket{
		gameID: m.GameID,
		in:     socketIn,
		done:   done,
	}
	return s, nil
}

// checkRoom ensures another socket can be added for the game.
func (r *Runner) checkRoom(id game.ID) error {
	switch {
	case len(r.sockets) >= r.MaxSockets:
		return fmt.Errorf("no room for another socket")
	case id <= 0:
		return fmt.Errorf("game id required")
	case r.numGameSockets(id) >= r.MaxGameSockets:
		return fmt.Errorf("game has reached quota of sockets, close an existing one")
	}
	return nil
}

// numGameSockets counts the sockets for the game.  Not thread safe.
func (r *Runner) numGameSockets(id game.ID) int {
	n := 0
	for _, rs := range r.sockets {
		if rs.gameID == id {
			n++
		}
	}
	return n
}

// sendGameMessage sends the message to the socket at its address or to all the sockets of its game.
func (r *Runner) sendGameMessage(ctx context.Context, m message.Message) {
	if len(m.Addr) != 0 {
		rs, ok := r.sockets[m.Addr]
		if !ok {
			r.Log.Debugf("no socket at %v for %v message", m.Addr, m.Type)
			return
		}
		r.sendSocket(ctx, m.Addr, rs, m)
		return
	}
	for a, rs := range r.sockets {
		if rs.gameID == m.GameID {
			r.sendSocket(ctx, a, rs, m)
		}
	}
}

// sendSocket sends the message to the socket, removing the socket if it has stopped.
func (r *Runner) sendSocket(ctx context.Context, a message.Addr, rs runningSocket, m message.Message) {
	select {
	case <-ctx.Done():
	case <-rs.done:
		delete(r.sockets, a)
	case rs.in <- m:
	}
}

// removeGameSockets removes the sockets of the game.  The sockets close themselves when they are sent the DeleteGame message.
func (r *Runner) removeGameSockets(id game.ID) {
	for a, rs := range r.sockets {
		if rs.gameID == id {
			delete(r.sockets, a)
		}
	}
}

// removeStoppedSockets removes the sockets that have closed.
func (r *Runner) removeStoppedSockets() {
	for a, rs := range r.sockets {
		select {
		case <-rs.done:
			delete(r.sockets, a)
		default:
		}
	}
}

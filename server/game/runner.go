package game

import (
	"context"
	"fmt"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/message"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
)

type (
	// Runner runs games.
	Runner struct {
		// games maps game ids to the channel each games listens to for incoming messages
		games map[game.ID]runningGame
		// lastID is the ID of the most recently created game.  The next new game should get a larger ID.
		lastID game.ID
		// RunnerConfig contains configruation properties of the Runner.
		RunnerConfig
	}

	// RunnerConfig is used to create a game Runner.
	RunnerConfig struct {
		// Log is used to log errors and other information
		Log log.Logger
		// The maximum number of games.
		MaxGames int
		// The config for creating new games.
		GameConfig Config
	}

	// runningGame is a game the runner can send messages to.
	runningGame struct {
		in   chan<- message.Message
		done <-chan struct{}
	}
)

// NewRunner creates a new game runner from the config.
func (cfg RunnerConfig) NewRunner() (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating game runner: validation: %w", err)
	}
	r := Runner{
		games:        make(map[game.ID]runningGame, cfg.MaxGames),
		RunnerConfig: cfg,
	}
	return &r, nil
}

// validate ensures the configuration has no errors.
func (cfg RunnerConfig) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.MaxGames < 1:
		return fmt.Errorf("must be able to create at least one game")
	case cfg.GameConfig.Metrics == nil:
		return fmt.Errorf("game metrics required")
	}
	return nil
}

// Run consumes messages from the "in" channel, processing them on a new goroutine until the "in" channel closes.
// The messages from games are sent on the "out" channel to be read by the subscriber.
// Replies to CreateGame messages are sent on the Result channel of the message.
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

// handleMessage takes appropriate actions for different message types.
func (r *Runner) handleMessage(ctx context.Context, m message.Message, out chan<- message.Message) {
	switch m.Type {
	case message.CreateGame:
		r.createGame(ctx, m, out)
	case message.DeleteGame:
		r.deleteGame(ctx, m, out)
	default:
		r.handleGameMessage(ctx, m, out)
	}
}

// createGame allocates a new game, adding it to the running games.
// The id of the game is replied on the result channel of the message.
func (r *Runner) createGame(ctx context.Context, m message.Message, out chan<- message.Message) {
	r.removeStoppedGames()
	if len(r.games) >= r.MaxGames {
		err := gameWarning(fmt.Sprintf("the maximum number of games have already been created (%v)", r.MaxGames))
		r.reply(ctx, m, err, out)
		return
	}
	id := r.lastID + 1
	g, err := r.GameConfig.NewGame(id)
	if err != nil {
		r.reply(ctx, m, err, out)
		return
	}
	r.lastID = id
	i := g.info() // before the game is running
	in := make(chan message.Message)
	done := g.Run(ctx, in, out) // all games publish to the same "out" channel
	r.games[id] = runningGame{
		in:   in,
		done: done,
	}
	r.GameConfig.Metrics.ActiveGames.Inc()
	r.Log.Printf("created game %v", id)
	m2 := message.Message{
		Type:   message.GameInfos,
		GameID: id,
		Game:   &i,
	}
	r.sendResult(ctx, m, m2)
}

// deleteGame removes a game from the runner, notifying the game that it is being deleted so it can notify sockets.
func (r *Runner) deleteGame(ctx context.Context, m message.Message, out chan<- message.Message) {
	rg, ok := r.games[m.GameID]
	if !ok {
		r.reply(ctx, m, gameWarning(fmt.Sprintf("no game %v to delete", m.GameID)), out)
		return
	}
	r.removeGame(m.GameID)
	r.sendGame(ctx, rg, m)
}

// handleGameMessage passes a message to the game it is for.
func (r *Runner) handleGameMessage(ctx context.Context, m message.Message, out chan<- message.Message) {
	rg, ok := r.games[m.GameID]
	if !ok {
		r.reply(ctx, m, gameWarning(fmt.Sprintf("no game %v, create a new game", m.GameID)), out)
		return
	}
	if !r.sendGame(ctx, rg, m) {
		r.removeGame(m.GameID)
		r.reply(ctx, m, gameWarning(fmt.Sprintf("game %v has been deleted, create a new game", m.GameID)), out)
	}
}

// sendGame sends the message to the game, returning false if the game has stopped.
func (r *Runner) sendGame(ctx context.Context, rg runningGame, m message.Message) bool {
	select {
	case <-ctx.Done():
		return true
	case <-rg.done:
		return false
	case rg.in <- m:
		return true
	}
}

// removeGame stops tracking the game.
func (r *Runner) removeGame(id game.ID) {
	delete(r.games, id)
	r.GameConfig.Metrics.ActiveGames.Dec()
}

// removeStoppedGames removes the games that have deleted themselves.
func (r *Runner) removeStoppedGames() {
	for id, rg := range r.games {
		select {
		case <-rg.done:
			r.removeGame(id)
		default:
		}
	}
}

// reply sends the error back to the sender of the message.
// Warnings are for the user.  Other errors are also logged.
func (r *Runner) reply(ctx context.Context, m message.Message, err error, out chan<- message.Message) {
	mt := message.SocketWarning
	if _, ok := err.(gameWarning); !ok {
		mt = message.SocketError
		r.Log.Printf("game runner: %v", err)
	}
	m2 := message.Message{
		Type:   mt,
		Info:   err.Error(),
		GameID: m.GameID,
		Addr:   m.Addr,
	}
	if m.Result != nil {
		r.sendResult(ctx, m, m2)
		return
	}
	message.Send(ctx, m2, out, r.Log)
}

// sendResult replies to the message on its result channel.
func (r *Runner) sendResult(ctx context.Context, m, m2 message.Message) {
	if m.Result == nil {
		r.Log.Printf("no result channel to reply to %v message", m.Type)
		return
	}
	message.Send(ctx, m2, m.Result, r.Log)
}

// Package game controls the logic to run the game.
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/controller"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/message"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/game/clock"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type (
	// Game runs a prisoner's dilemma between two players who share a screen.
	// All messages and clock ticks are handled on a single goroutine.
	Game struct {
		id         game.ID
		createdAt  int64
		controller *controller.Game
		clock      *clock.Clock
		Config
	}

	// Config contiains the properties to create similar games.
	Config struct {
		// Debug is a flag that causes the game to log the types messages that are read.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// TimeFunc is a function which should supply the current time since the unix epoch.
		// Used for the created at timestamp.
		TimeFunc func() int64
		// IdlePeriod is the amount of time that can pass between non-RefreshGame messages before the game is idle and will delete itself.
		// Games with an active round are never idle.
		IdlePeriod time.Duration
		// ControllerConfig is used to create the state machine of the game.
		ControllerConfig controller.Config
		// ClockConfig is used to create the clock that counts down rounds.
		ClockConfig clock.Config
		// Metrics are updated when decisions are made and rounds are scored.
		Metrics *Metrics
		// Tracer creates spans for messages and round evaluations.
		// If not specified, the global tracer provider is used.
		Tracer trace.Tracer
	}

	// messageHandler is a function which handles message.Messages, returning responses to the output channel.
	messageHandler func(ctx context.Context, m message.Message, send messageSender) error

	// messageSender is a function that sends a message somewhere.
	messageSender func(m message.Message)
)

const tracerName = "github.com/jacobpatterson1549/prisoners-dilemma/server/game"

// NewGame creates a new game in standby.
func (cfg Config) NewGame(id game.ID) (*Game, error) {
	if err := cfg.validate(id); err != nil {
		return nil, fmt.Errorf("creating game: validation: %w", err)
	}
	c, err := cfg.ControllerConfig.NewGame()
	if err != nil {
		return nil, err
	}
	clk, err := cfg.ClockConfig.NewClock()
	if err != nil {
		return nil, err
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	g := Game{
		id:         id,
		createdAt:  cfg.TimeFunc(),
		controller: c,
		clock:      clk,
		Config:     cfg,
	}
	return &g, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(id game.ID) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case id <= 0:
		return fmt.Errorf("positive id required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.IdlePeriod <= 0:
		return fmt.Errorf("positive idle period required")
	case cfg.Metrics == nil:
		return fmt.Errorf("metrics required")
	}
	return nil
}

// Run runs the game asynchronously until the context is closed or the game is deleted.
// The returned channel is closed when the game stops reading from the "in" channel.
// When the game is deleted, a DeleteGame message is sent after the channel is closed.
func (g *Game) Run(ctx context.Context, in <-chan message.Message, out chan<- message.Message) <-chan struct{} {
	done := make(chan struct{})
	send := g.sendMessage(ctx, out)
	go func() {
		deleteReason := g.runMessages(ctx, in, send)
		close(done)
		if len(deleteReason) != 0 {
			m := message.Message{
				Type: message.DeleteGame,
				Info: deleteReason,
			}
			send(m)
		}
	}()
	return done
}

// runMessages handles messages and clock ticks until the game stops.
// The reason the game was deleted is returned, or an empty string if the game stopped because the context is done.
func (g *Game) runMessages(ctx context.Context, in <-chan message.Message, send messageSender) string {
	idleTicker := time.NewTicker(g.IdlePeriod)
	defer idleTicker.Stop()
	defer g.clock.Stop()
	active := false
	messageHandlers := map[message.Type]messageHandler{
		message.StartGame:      g.handleStartGame,
		message.StartRound:     g.handleStartRound,
		message.SubmitDecision: g.handleSubmitDecision,
		message.StartNewGame:   g.handleStartNewGame,
		message.ApplyConfig:    g.handleApplyConfig,
		message.RefreshGame:    g.handleRefreshGame,
	}
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return ""
		case m, ok := <-in:
			if !ok {
				return ""
			}
			if m.Type == message.DeleteGame {
				g.Log.Printf("deleting game %v", g.id)
				return "game deleted"
			}
			g.handleMessage(ctx, m, send, &active, messageHandlers)
		case <-g.clock.C():
			g.handleTick(ctx, send)
		case <-idleTicker.C:
			if !active && !g.controller.State().RoundActive {
				g.Log.Printf("deleted game %v due to inactivity", g.id)
				return "game deleted due to inactivity"
			}
			active = false
		}
	}
}

// sendMessage creates a messageSender that adds the gameId to the message before sending it on the out channel.
func (g *Game) sendMessage(ctx context.Context, out chan<- message.Message) messageSender {
	return func(m message.Message) {
		m.GameID = g.id
		if m.Game != nil {
			m.Game.ID = g.id
		}
		message.Send(ctx, m, out, g.Log)
	}
}

// handleMessage handles the message with the appropriate message handler.
func (g *Game) handleMessage(ctx context.Context, m message.Message, send messageSender, active *bool, messageHandlers map[message.Type]messageHandler) {
	if g.Debug {
		g.Log.Printf("game %v reading message with type %v", g.id, m.Type)
	}
	ctx, span := g.Tracer.Start(ctx, "game."+m.Type.String(),
		trace.WithAttributes(attribute.Int("game.id", int(g.id))))
	defer span.End()
	var err error
	switch mh, ok := messageHandlers[m.Type]; {
	case !ok:
		err = fmt.Errorf("game does not know how to handle MessageType %v", m.Type)
	default:
		err = mh(ctx, m, send)
		if m.Type != message.RefreshGame {
			*active = true
		}
	}
	if err != nil {
		var mt message.Type
		switch err.(type) {
		case gameWarning:
			mt = message.SocketWarning
		default:
			mt = message.SocketError
			g.Log.Printf("game %v error: %v", g.id, err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.RecordError(err)
		m2 := message.Message{
			Type: mt,
			Info: err.Error(),
			Addr: m.Addr,
		}
		send(m2)
	}
}

// handleStartGame starts the first round of the game.
func (g *Game) handleStartGame(ctx context.Context, m message.Message, send messageSender) error {
	if !g.controller.StartGame() {
		g.ignore(m)
		return nil
	}
	g.updateClock(true)
	g.publishInfo(send, "")
	return nil
}

// handleStartRound starts the next round of the game.
func (g *Game) handleStartRound(ctx context.Context, m message.Message, send messageSender) error {
	if !g.controller.StartRound() {
		g.ignore(m)
		return nil
	}
	g.updateClock(true)
	g.publishInfo(send, "")
	return nil
}

// handleSubmitDecision sets the pending decision of a player.
func (g *Game) handleSubmitDecision(ctx context.Context, m message.Message, send messageSender) error {
	if !g.controller.SubmitDecision(m.PlayerID, m.Decision) {
		g.ignore(m)
		return nil
	}
	g.Metrics.DecisionsSubmitted.WithLabelValues(m.Decision.String()).Inc()
	g.publishInfo(send, "")
	return nil
}

// handleStartNewGame resets the game to standby.
func (g *Game) handleStartNewGame(ctx context.Context, m message.Message, send messageSender) error {
	if !g.controller.StartNewGame() {
		g.ignore(m)
		return nil
	}
	g.updateClock(false)
	g.publishInfo(send, "")
	return nil
}

// handleApplyConfig changes the configuration of a game in standby.
func (g *Game) handleApplyConfig(ctx context.Context, m message.Message, send messageSender) error {
	if g.controller.State().Status != game.Standby {
		g.ignore(m)
		return nil
	}
	if m.Config == nil {
		return gameWarning("config required to apply")
	}
	if err := m.Config.Validate(); err != nil {
		return gameWarning(fmt.Sprintf("invalid config: %v", err))
	}
	if !g.controller.ApplyConfig(*m.Config) {
		g.ignore(m)
		return nil
	}
	g.updateClock(false)
	g.publishInfo(send, "")
	return nil
}

// handleRefreshGame sends the game's info to the socket that requested it.
func (g *Game) handleRefreshGame(ctx context.Context, m message.Message, send messageSender) error {
	g.publishInfo(send, m.Addr)
	return nil
}

// handleTick counts down the active round, scoring it when it expires.
func (g *Game) handleTick(ctx context.Context, send messageSender) {
	before := g.controller.Info()
	if !g.controller.Tick() {
		g.clock.Stop()
		return
	}
	if before.State.RoundActive && !g.controller.State().RoundActive {
		g.roundEvaluated(ctx, before)
	}
	g.updateClock(false)
	g.publishInfo(send, "")
}

// roundEvaluated records the metrics and trace of the round that was just scored.
// The info should be from before the round was scored.
func (g *Game) roundEvaluated(ctx context.Context, before game.Info) {
	_, span := g.Tracer.Start(ctx, "game.evaluateRound")
	defer span.End()
	i := g.controller.Info()
	r := i.History[len(i.History)-1]
	span.SetAttributes(
		attribute.Int("game.id", int(g.id)),
		attribute.Int("round", r.Round),
		attribute.StringSlice("decisions", []string{r.Decisions[0].String(), r.Decisions[1].String()}),
		attribute.IntSlice("points", r.Points[:]),
	)
	g.Metrics.RoundsEvaluated.Inc()
	for _, p := range before.Players {
		if p.Pending == game.None {
			g.Metrics.DefaultBetrayals.Inc()
			span.AddEvent("default betrayal", trace.WithAttributes(attribute.String("player", string(p.Name))))
		}
	}
	if i.Result != nil {
		g.Metrics.GamesFinished.WithLabelValues(outcomeLabel(i.Result.Tie)).Inc()
		g.Log.Printf("game %v finished: %v", g.id, i.Result)
	}
}

// updateClock stops the clock if no round is active.
// If a round was just started, the clock is restarted so the round gets all of its time.
func (g *Game) updateClock(roundStarted bool) {
	switch {
	case !g.controller.State().RoundActive:
		g.clock.Stop()
	case roundStarted:
		g.clock.Start()
	}
}

// ignore logs that the message does not change the game in its current state.
func (g *Game) ignore(m message.Message) {
	g.Log.Debugf("game %v ignored %v message while %v", g.id, m.Type, g.controller.State().Status)
}

// info creates a snapshot of the game.
func (g *Game) info() game.Info {
	i := g.controller.Info()
	i.ID = g.id
	i.CreatedAt = g.createdAt
	return i
}

// publishInfo sends the game's info in a message.
// If the address is empty, the message is for all of the game's sockets.
func (g *Game) publishInfo(send messageSender, addr message.Addr) {
	i := g.info()
	m := message.Message{
		Type: message.GameInfos,
		Game: &i,
		Addr: addr,
	}
	if i.Result != nil {
		m.Info = i.Result.String()
	}
	send(m)
}

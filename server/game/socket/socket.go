// Package socket handles communication with a browser using a websocket connection.
package socket

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/message"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
)

type (
	// Socket reads and writes messages to the browser that is playing a game.
	Socket struct {
		Conn
		gameID game.ID
		// Addr is the remote address of the connection.
		Addr message.Addr
		Config
	}

	// Config contains commonly shared Socket properties.
	Config struct {
		// Debug is a flag that causes the socket to log the types non-ping/pong messages that are read/written.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// TimeFunc is a function which should supply the current time since the unix epoch.
		// It is used to set the read and write deadlines.
		TimeFunc func() int64
		// ReadWait is the amout of time that can pass between receiving client messages before timing out.
		ReadWait time.Duration
		// WriteWait is the amout of time that the socket can take to write a message.
		WriteWait time.Duration
		// PingPeriod is how often ping messages should be sent.  Should be less than ReadWait.
		PingPeriod time.Duration
	}

	// Conn is the connection than backs the socket.
	Conn interface {
		// ReadMessage reads the next message from the connection.
		ReadMessage(m *message.Message) error
		// WriteMessage writes the message to the connection.
		WriteMessage(m message.Message) error
		// SetReadDeadline sets how long a read can take before it returns an error.
		SetReadDeadline(t time.Time) error
		// SetWriteDeadline sets how long a write can take before it returns an error.
		SetWriteDeadline(t time.Time) error
		// SetPongHandler is triggered when the server receives a pong response from a previous ping.
		SetPongHandler(h func(appData string) error)
		// Close closes the connection.
		Close() error
		// WritePing writes a ping message on the connection.
		WritePing() error
		// WriteClose writes a close message on the connection.  The connection is NOT closed.
		WriteClose(reason string) error
		// IsNormalClose determines if the error message is an error that implies a normal close or is unexpected.
		IsNormalClose(err error) bool
		// RemoteAddr gets the remote network address of the connection.
		RemoteAddr() net.Addr
	}
)

// browserTypes are the types of messages that browsers can send.
var browserTypes = map[message.Type]struct{}{
	message.StartGame:      {},
	message.StartRound:     {},
	message.SubmitDecision: {},
	message.StartNewGame:   {},
	message.ApplyConfig:    {},
	message.RefreshGame:    {},
	message.DeleteGame:     {},
}

// NewSocket creates a socket for the game.
func (cfg Config) NewSocket(gameID game.ID, conn Conn) (*Socket, error) {
	if err := cfg.validate(gameID, conn); err != nil {
		return nil, fmt.Errorf("creating socket: validation: %w", err)
	}
	s := Socket{
		Conn:   conn,
		gameID: gameID,
		Addr:   message.Addr(conn.RemoteAddr().String()),
		Config: cfg,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(gameID game.ID, conn Conn) error {
	switch {
	case gameID <= 0:
		return fmt.Errorf("positive game id required")
	case conn == nil:
		return fmt.Errorf("websocket connection required")
	case conn.RemoteAddr() == nil:
		return fmt.Errorf("remote address required")
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.ReadWait <= 0:
		return fmt.Errorf("positive read wait period required")
	case cfg.WriteWait <= 0:
		return fmt.Errorf("positive write wait period required")
	case cfg.PingPeriod <= 0:
		return fmt.Errorf("positive ping period required")
	case cfg.PingPeriod >= cfg.ReadWait:
		return fmt.Errorf("ping period should be less than read wait")
	}
	return nil
}

// Run reads messages from the connection onto the "out" channel and writes messages from the "in" channel to the connection.
// The socket first asks the game to refresh so the browser gets the current state.
// The socket runs until the connection fails, the game is deleted, the "in" channel is closed, or the context is cancelled.
// The returned channel is closed when the socket stops writing messages.
func (s *Socket) Run(ctx context.Context, in <-chan message.Message, out chan<- message.Message) <-chan struct{} {
	ctx, cancelFunc := context.WithCancel(ctx)
	done := make(chan struct{})
	pingTicker := time.NewTicker(s.PingPeriod)
	var wg sync.WaitGroup
	wg.Add(2)
	go s.readMessages(ctx, out, &wg, cancelFunc)
	go func() {
		s.writeMessages(ctx, in, &wg, pingTicker, cancelFunc)
		close(done)
	}()
	go func() {
		wg.Wait()
		pingTicker.Stop()
	}()
	return done
}

// readMessages receives messages from the connected socket and writes them to the out channel.
// The context is cancelled when reading stops so that the writing also stops.
func (s *Socket) readMessages(ctx context.Context, out chan<- message.Message, wg *sync.WaitGroup, cancelFunc context.CancelFunc) {
	defer wg.Done()
	defer cancelFunc()
	s.Conn.SetPongHandler(s.refreshReadDeadline)
	if err := s.refreshReadDeadline(""); err != nil {
		s.Log.Printf("socket %v: %v", s.Addr, err)
		return
	}
	refresh := message.Message{
		Type: message.RefreshGame,
	}
	if !s.send(ctx, refresh, out) {
		return
	}
	for { // BLOCKING
		m, err := s.readMessage()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				if !s.Conn.IsNormalClose(err) {
					s.Log.Printf("reading socket messages stopped for %v: %v", s.Addr, err)
				}
			}
			return
		}
		if _, ok := browserTypes[m.Type]; !ok {
			s.Log.Debugf("socket %v ignored message with type %v", s.Addr, m.Type)
			continue
		}
		if !s.send(ctx, *m, out) {
			return
		}
	}
}

// writeMessages sends messages from the in channel to the connected socket.
// The ticker is used to periodically write pings.
// The connection is closed when writing stops, which stops the reading.
func (s *Socket) writeMessages(ctx context.Context, in <-chan message.Message, wg *sync.WaitGroup, pingTicker *time.Ticker, cancelFunc context.CancelFunc) {
	defer wg.Done()
	var closeReason string
	defer func() {
		cancelFunc()
		s.Conn.WriteClose(closeReason)
		s.Conn.Close()
		s.Log.Printf("socket %v closed: %v", s.Addr, closeReason)
	}()
	for { // BLOCKING
		var err error
		select {
		case <-ctx.Done():
			closeReason = "socket closing"
			return
		case m, ok := <-in:
			if !ok {
				closeReason = "socket removed"
				return
			}
			err = s.writeMessage(m)
			if err == nil && m.Type == message.DeleteGame {
				closeReason = "game deleted"
				return
			}
		case <-pingTicker.C:
			if err = s.refreshWriteDeadline(); err == nil {
				err = s.Conn.WritePing()
			}
		}
		if err != nil {
			closeReason = fmt.Sprintf("writing socket messages stopped: %v", err)
			return
		}
	}
}

// send writes the message from the socket to the out channel, returning false if the socket is done.
func (s *Socket) send(ctx context.Context, m message.Message, out chan<- message.Message) bool {
	m.GameID = s.gameID
	m.Addr = s.Addr
	select {
	case <-ctx.Done():
		return false
	case out <- m:
		return true
	}
}

// readMessage reads the next message from the connection.
func (s *Socket) readMessage() (*message.Message, error) {
	var m message.Message
	if err := s.Conn.ReadMessage(&m); err != nil { // BLOCKING
		return nil, err
	}
	if s.Debug {
		s.Log.Printf("socket %v reading message with type %v", s.Addr, m.Type)
	}
	if err := s.refreshReadDeadline(""); err != nil {
		return nil, err
	}
	return &m, nil
}

// writeMessage writes a message to the connection.
func (s *Socket) writeMessage(m message.Message) error {
	if s.Debug {
		s.Log.Printf("socket %v writing message with type %v", s.Addr, m.Type)
	}
	if err := s.refreshWriteDeadline(); err != nil {
		return err
	}
	if err := s.Conn.WriteMessage(m); err != nil {
		return fmt.Errorf("writing socket message: %w", err)
	}
	return nil
}

// refreshReadDeadline extends the read deadline of the connection.  It is also the pong handler.
func (s *Socket) refreshReadDeadline(appData string) error {
	readDeadline := time.Unix(s.TimeFunc(), 0).Add(s.ReadWait)
	if err := s.Conn.SetReadDeadline(readDeadline); err != nil {
		return fmt.Errorf("setting read deadline: %w", err)
	}
	return nil
}

// refreshWriteDeadline extends the write deadline of the connection.
func (s *Socket) refreshWriteDeadline() error {
	writeDeadline := time.Unix(s.TimeFunc(), 0).Add(s.WriteWait)
	if err := s.Conn.SetWriteDeadline(writeDeadline); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	return nil
}

// Package gorilla implements a websocket connection by wrapping gorilla/websocket.
package gorilla

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/message"
)

type (
	// Upgrader implements the socket.Upgrader interface by wrapping a gorilla/websocket Upgrader.
	Upgrader struct {
		*websocket.Upgrader
	}

	// UpgraderConfig contains the properties to create an Upgrader.
	UpgraderConfig struct {
		// HandshakeTimeout is the amount of time the upgrade can take.  If zero, there is no timeout.
		HandshakeTimeout time.Duration
		// AllowedOrigins are hosts other than the host of the request that browsers can open sockets from.
		AllowedOrigins []string
	}

	// Conn implements the Conn interface by wrapping a gorilla/websocket GorillaConnection.
	Conn struct {
		*websocket.Conn
	}
)

// NewUpgrader returns a upgrader tha creates gorilla websocket connections.
func (cfg UpgraderConfig) NewUpgrader() *Upgrader {
	u := websocket.Upgrader{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	if len(cfg.AllowedOrigins) != 0 {
		u.CheckOrigin = cfg.checkOrigin
	}
	return &Upgrader{&u}
}

// checkOrigin allows requests without an origin, from the same host, or from an allowed origin host.
func (cfg UpgraderConfig) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if len(origin) == 0 {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, host := range cfg.AllowedOrigins {
		if strings.EqualFold(u.Host, host) {
			return true
		}
	}
	return false
}

// Upgrade creates a Conn from the http request.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	c, err := u.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{c}, nil
}

// ReadMessage reads the next json message from the GorillaConnection.
func (c *Conn) ReadMessage(m *message.Message) error {
	return c.Conn.ReadJSON(m)
}

// WriteMessage writes the message as json to the GorillaConnection.
func (c *Conn) WriteMessage(m message.Message) error {
	return c.Conn.WriteJSON(m)
}

// WritePing writes a ping message on the GorillaConnection.
func (c *Conn) WritePing() error {
	return c.Conn.WriteMessage(websocket.PingMessage, nil)
}

// WriteClose writes a close message on the connection.  The connestion is NOT closed.
func (c *Conn) WriteClose(reason string) error {
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	return c.Conn.WriteMessage(websocket.CloseMessage, data)
}

// IsNormalClose determines if the error message is not an unexpected close error.
func (*Conn) IsNormalClose(err error) bool {
	_, ok := err.(*websocket.CloseError) // only errors from gorilla can be normal close errors
	return ok && !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure)
}

package socket

import (
	"net/http"

	"github.com/jacobpatterson1549/prisoners-dilemma/server/game/socket/gorilla"
)

// gorillaUpgrader implements the Upgrader interface by wrapping a gorilla upgrader.
type gorillaUpgrader struct {
	*gorilla.Upgrader
}

// newGorillaUpgrader returns a upgrader that creates gorilla websocket connections.
func newGorillaUpgrader(cfg gorilla.UpgraderConfig) *gorillaUpgrader {
	u := cfg.NewUpgrader()
	return &gorillaUpgrader{u}
}

// Upgrade creates a Conn from the http request.
func (u *gorillaUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	c, err := u.Upgrader.Upgrade(w, r)
	if err != nil {
		return nil, err
	}
	return c, nil
}

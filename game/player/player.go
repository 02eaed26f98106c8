// Package player contains the identifiers of the players in a game.
package player

import (
	"fmt"

	"github.com/google/uuid"
)

type (
	// Name is the display name of a player.
	Name string

	// ID uniquely identifies a player in a game.
	ID string
)

// NewID creates a random player id.
func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID reads the player id from the text, ensuring it is a uuid.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("parsing player id: %w", err)
	}
	return ID(u.String()), nil
}

// Package auth contains code to ensure browsers are authorized to play the games they created.
package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/jacobpatterson1549/prisoners-dilemma/game"
)

type (
	// JwtTokenizer creates and reads game tokens from http traffic.
	JwtTokenizer struct {
		method jwt.SigningMethod
		key    interface{}
		TokenizerConfig
	}

	// TokenizerConfig contains fields which describe a Tokenizer.
	TokenizerConfig struct {
		// TimeFunc is a function which should supply the current time since the unix epoch.
		// Used to set the the length of time the token is valid
		TimeFunc func() int64
		// ValidSec is the length of time the token is valid from the issuing time, in seconds
		ValidSec int64
	}

	// jwtGameClaims are the claims of a token that lets a browser connect sockets to a game.
	jwtGameClaims struct {
		GameID               game.ID `json:"gameID"`
		jwt.RegisteredClaims         // the game id is also stored in Subject ("sub") field
	}
)

// NewTokenizer creates a Tokenizer that uses the key to sign tokens.
func (cfg TokenizerConfig) NewTokenizer(key interface{}) (*JwtTokenizer, error) {
	if err := cfg.validate(key); err != nil {
		return nil, fmt.Errorf("creating tokenizer: validation: %w", err)
	}
	t := JwtTokenizer{
		method:          jwt.SigningMethodHS256,
		key:             key,
		TokenizerConfig: cfg,
	}
	return &t, nil
}

// validate ensures the configuration has no errors.
func (cfg TokenizerConfig) validate(key interface{}) error {
	switch {
	case key == nil:
		return fmt.Errorf("key required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.ValidSec <= 0:
		return fmt.Errorf("positive token valid time required")
	}
	return nil
}

// Create signs a token that allows sockets to be opened for the game.
func (j JwtTokenizer) Create(gameID game.ID) (string, error) {
	now := j.TimeFunc()
	expiresAt := now + j.ValidSec
	claims := jwtGameClaims{
		GameID: gameID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(gameID),
			NotBefore: jwt.NewNumericDate(time.Unix(now, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(expiresAt, 0)),
		},
	}
	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString(j.key)
}

// ReadGameID extracts the game id from the token string.
// The token must not be expired and must have been signed by the tokenizer.
func (j JwtTokenizer) ReadGameID(tokenString string) (game.ID, error) {
	var claims jwtGameClaims
	p := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, err := p.ParseWithClaims(tokenString, &claims, j.keyFunc); err != nil {
		return 0, err
	}
	now := time.Unix(j.TimeFunc(), 0)
	switch {
	case !claims.VerifyNotBefore(now, true):
		return 0, fmt.Errorf("token not valid yet")
	case !claims.VerifyExpiresAt(now, true):
		return 0, fmt.Errorf("token expired")
	case claims.GameID <= 0:
		return 0, fmt.Errorf("no game id on token")
	}
	return claims.GameID, nil
}

// keyFunc ensures the key type (method) of the token is correct before returning the key.
func (j JwtTokenizer) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != j.method {
		return nil, fmt.Errorf("incorrect authorization signing method")
	}
	return j.key, nil
}

package server

import (
	"context"
	"net/http"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
)

type mockTokenizer struct {
	CreateFunc     func(gameID game.ID) (string, error)
	ReadGameIDFunc func(tokenString string) (game.ID, error)
}

func (m mockTokenizer) Create(gameID game.ID) (string, error) {
	return m.CreateFunc(gameID)
}

func (m mockTokenizer) ReadGameID(tokenString string) (game.ID, error) {
	return m.ReadGameIDFunc(tokenString)
}

type mockLobby struct {
	RunFunc        func(ctx context.Context) error
	CreateGameFunc func(ctx context.Context) (game.ID, error)
	AddSocketFunc  func(ctx context.Context, gameID game.ID, w http.ResponseWriter, r *http.Request) error
}

func (m mockLobby) Run(ctx context.Context) error {
	return m.RunFunc(ctx)
}

func (m mockLobby) CreateGame(ctx context.Context) (game.ID, error) {
	return m.CreateGameFunc(ctx)
}

func (m mockLobby) AddSocket(ctx context.Context, gameID game.ID, w http.ResponseWriter, r *http.Request) error {
	return m.AddSocketFunc(ctx, gameID, w, r)
}

package server

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log/logtest"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewServer(t *testing.T) {
	testLog := logtest.DiscardLogger
	var tokenizer mockTokenizer
	var lobby mockLobby
	gatherer := prometheus.NewRegistry()
	templateFS := fstest.MapFS{ // tests parseTemplate
		"any-file": &fstest.MapFile{Data: []byte{}},
	}
	okParameters := Parameters{
		Logger:     testLog,
		Tokenizer:  tokenizer,
		Lobby:      lobby,
		Gatherer:   gatherer,
		TemplateFS: templateFS,
	}
	okConfig := Config{
		Port:       8000,
		StopDur:    1 * time.Hour,
		CacheSec:   86400,
		Version:    "9d2ffad8e5e5383569d37ec381147f2d",
		GameConfig: game.DefaultConfig(),
	}
	newServerTests := []struct {
		Parameters
		change func(cfg *Config)
		wantOk bool
	}{
		{}, // no log
		{ // no tokenizer
			Parameters: Parameters{
				Logger: testLog,
			},
		},
		{ // no lobby
			Parameters: Parameters{
				Logger:    testLog,
				Tokenizer: tokenizer,
			},
		},
		{ // no gatherer
			Parameters: Parameters{
				Logger:    testLog,
				Tokenizer: tokenizer,
				Lobby:     lobby,
			},
		},
		{ // no templateFS
			Parameters: Parameters{
				Logger:    testLog,
				Tokenizer: tokenizer,
				Lobby:     lobby,
				Gatherer:  gatherer,
			},
		},
		{ // bad templateFS
			Parameters: Parameters{
				Logger:     testLog,
				Tokenizer:  tokenizer,
				Lobby:      lobby,
				Gatherer:   gatherer,
				TemplateFS: make(fstest.MapFS),
			},
		},
		{ // no port
			Parameters: okParameters,
			change:     func(cfg *Config) { cfg.Port = 0 },
		},
		{ // no stopDur
			Parameters: okParameters,
			change:     func(cfg *Config) { cfg.StopDur = 0 },
		},
		{ // bad cacheSec
			Parameters: okParameters,
			change:     func(cfg *Config) { cfg.CacheSec = -1 },
		},
		{ // tls key without certificate
			Parameters: okParameters,
			change:     func(cfg *Config) { cfg.TLSKeyFile = "key.pem" },
		},
		{ // missing version
			Parameters: okParameters,
			change:     func(cfg *Config) { cfg.Version = "" },
		},
		{ // bad version
			Parameters: okParameters,
			change:     func(cfg *Config) { cfg.Version = "almost correct :)" },
		},
		{ // bad game config
			Parameters: okParameters,
			change:     func(cfg *Config) { cfg.GameConfig.TotalRounds = 0 },
		},
		{ // happy path
			Parameters: okParameters,
			wantOk:     true,
		},
		{ // happy path with tls
			Parameters: okParameters,
			change: func(cfg *Config) {
				cfg.TLSCertFile = "cert.pem"
				cfg.TLSKeyFile = "key.pem"
			},
			wantOk: true,
		},
	}
	for i, test := range newServerTests {
		cfg := okConfig
		if test.change != nil {
			test.change(&cfg)
		}
		got, err := cfg.NewServer(test.Parameters)
		switch {
		case !test.wantOk:
			if err == nil {
				t.Errorf("Test %v: wanted error", i)
			}
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case got.log == nil, got.lobby == nil, got.HTTPServer == nil:
			t.Errorf("Test %v: server left reference nil: %v", i, got)
		case got.HTTPServer.Addr != ":8000":
			t.Errorf("Test %v: wanted server address from port, got %v", i, got.HTTPServer.Addr)
		case cfg.hasTLS() != (len(cfg.TLSCertFile) != 0):
			t.Errorf("Test %v: wanted tls only when files are set", i)
		}
	}
}

func TestServerRunStop(t *testing.T) {
	lobbyDone := make(chan struct{})
	lobby := mockLobby{
		RunFunc: func(ctx context.Context) error {
			go func() {
				<-ctx.Done()
				close(lobbyDone)
			}()
			return nil
		},
	}
	p := Parameters{
		Logger:     logtest.DiscardLogger,
		Tokenizer:  mockTokenizer{},
		Lobby:      lobby,
		Gatherer:   prometheus.NewRegistry(),
		TemplateFS: fstest.MapFS{"index.html": &fstest.MapFile{Data: []byte("ok")}},
	}
	cfg := Config{
		Port:       8000,
		StopDur:    time.Second,
		Version:    "1",
		GameConfig: game.DefaultConfig(),
	}
	s, err := cfg.NewServer(p)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	s.HTTPServer.Addr = "127.0.0.1:0" // any free port
	ctx := context.Background()
	errC := s.Run(ctx)
	time.Sleep(10 * time.Millisecond) // let the server start listening
	if err := s.Stop(ctx); err != nil {
		t.Errorf("unwanted stop error: %v", err)
	}
	select {
	case err := <-errC:
		if err != nil {
			t.Errorf("wanted server to stop without error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Errorf("wanted server to stop")
	}
	select {
	case <-lobbyDone:
	case <-time.After(time.Second):
		t.Errorf("wanted lobby context to be cancelled when server stops")
	}
}

func TestServerRunLobbyError(t *testing.T) {
	lobby := mockLobby{
		RunFunc: func(ctx context.Context) error {
			return errors.New("lobby is running, it can only be run once")
		},
	}
	p := Parameters{
		Logger:     logtest.DiscardLogger,
		Tokenizer:  mockTokenizer{},
		Lobby:      lobby,
		Gatherer:   prometheus.NewRegistry(),
		TemplateFS: fstest.MapFS{"index.html": &fstest.MapFile{Data: []byte("ok")}},
	}
	cfg := Config{
		Port:       8000,
		StopDur:    time.Second,
		Version:    "1",
		GameConfig: game.DefaultConfig(),
	}
	s, err := cfg.NewServer(p)
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	errC := s.Run(context.Background())
	select {
	case err := <-errC:
		if err == nil {
			t.Errorf("wanted error when lobby cannot run")
		}
	case <-time.After(time.Second):
		t.Errorf("wanted server to stop when lobby cannot run")
	}
}

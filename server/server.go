// Package server runs the http server which allows browsers to open websockets to play the game.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"
	"unicode"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	// Server runs the site.
	Server struct {
		log        log.Logger
		lobby      Lobby
		HTTPServer *http.Server
		Config
	}

	// Config contains fields which describe the server.
	Config struct {
		// Port is the TCP port for server http requests.
		Port int
		// StopDur is the maximum amount of time to wait for the server to shut down.
		StopDur time.Duration
		// CachenSec is the number of seconds some files are cached
		CacheSec int
		// Version is used to bust caches of files from older server version
		Version string
		// TLSCertFile is the public HTTPS TLS certificate file.  The server uses HTTPS if it and the key are set.
		TLSCertFile string
		// TLSKeyFile is the private HTTPS TLS key file.
		TLSKeyFile string
		// GameConfig is the default configuration of new games, shown on the site.
		GameConfig game.Config
	}

	// Parameters contains the interfaces needed to create a new server.
	Parameters struct {
		log.Logger
		Tokenizer
		Lobby
		// Gatherer provides the metrics served at /metrics.
		Gatherer prometheus.Gatherer
		// TemplateFS contains the templates of the site.
		TemplateFS fs.FS
	}

	// Tokenizer creates and reads tokens that allow browsers to connect to games.
	Tokenizer interface {
		Create(gameID game.ID) (string, error)
		ReadGameID(tokenString string) (game.ID, error)
	}

	// Lobby creates games and connects sockets to them.
	Lobby interface {
		Run(ctx context.Context) error
		CreateGame(ctx context.Context) (game.ID, error)
		AddSocket(ctx context.Context, gameID game.ID, w http.ResponseWriter, r *http.Request) error
	}
)

// NewServer creates a Server from the Config.
func (cfg Config) NewServer(p Parameters) (*Server, error) {
	if err := cfg.validate(p); err != nil {
		return nil, fmt.Errorf("creating server: validation: %w", err)
	}
	template, err := p.parseTemplate()
	if err != nil {
		return nil, err
	}
	addr := fmt.Sprintf(":%d", cfg.Port)
	s := Server{
		log:   p.Logger,
		lobby: p.Lobby,
		HTTPServer: &http.Server{
			Addr:         addr,
			Handler:      cfg.handler(p, template),
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Config: cfg,
	}
	return &s, nil
}

// validate ensures the configuration and parameters have no errors.
func (cfg Config) validate(p Parameters) error {
	if err := p.validate(); err != nil {
		return err
	}
	switch {
	case cfg.Port <= 0:
		return fmt.Errorf("positive port required")
	case cfg.StopDur <= 0:
		return fmt.Errorf("stop timeout duration required")
	case cfg.CacheSec < 0:
		return fmt.Errorf("nonnegative cache seconds required")
	case (len(cfg.TLSCertFile) == 0) != (len(cfg.TLSKeyFile) == 0):
		return fmt.Errorf("tls certificate and key files must both be set or both be empty")
	case len(cfg.Version) == 0:
		return fmt.Errorf("version required")
	}
	for i, r := range cfg.Version {
		if !unicode.In(r, unicode.Letter, unicode.Digit) {
			return fmt.Errorf("only letters and digits are allowed in version: invalid rune at index %v of '%v': '%v'", i, cfg.Version, string(r))
		}
	}
	if err := cfg.GameConfig.Validate(); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}
	return nil
}

// validate ensures that all of the parameters are present.
func (p Parameters) validate() error {
	switch {
	case p.Logger == nil:
		return fmt.Errorf("log required")
	case p.Tokenizer == nil:
		return fmt.Errorf("tokenizer required")
	case p.Lobby == nil:
		return fmt.Errorf("lobby required")
	case p.Gatherer == nil:
		return fmt.Errorf("metrics gatherer required")
	case p.TemplateFS == nil:
		return fmt.Errorf("template file system required")
	}
	return nil
}

// Run the server asynchronously until it receives a shutdown signal.
// When the server stops, the error is sent on the returned channel.
func (s *Server) Run(ctx context.Context) <-chan error {
	errC := make(chan error, 1)
	ctx, cancelFunc := context.WithCancel(ctx)
	if err := s.lobby.Run(ctx); err != nil {
		cancelFunc()
		errC <- fmt.Errorf("running lobby: %w", err)
		return errC
	}
	s.HTTPServer.RegisterOnShutdown(cancelFunc)
	go func() {
		var err error
		switch {
		case s.hasTLS():
			s.log.Printf("starting https server at https://127.0.0.1%v", s.HTTPServer.Addr)
			err = s.HTTPServer.ListenAndServeTLS(s.TLSCertFile, s.TLSKeyFile)
		default:
			s.log.Printf("starting http server at http://127.0.0.1%v", s.HTTPServer.Addr)
			err = s.HTTPServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errC <- err
	}()
	return errC
}

// Stop asks the server to shutdown and waits for the shutdown to complete.
// An error is returned if the server if the context times out.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	if err := s.HTTPServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	return nil
}

// hasTLS determines if the server should serve HTTPS.
func (cfg Config) hasTLS() bool {
	return len(cfg.TLSCertFile) != 0 && len(cfg.TLSKeyFile) != 0
}

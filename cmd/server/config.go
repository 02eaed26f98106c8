package main

import (
	crypto_rand "crypto/rand"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/jacobpatterson1549/prisoners-dilemma/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/game/controller"
	"github.com/jacobpatterson1549/prisoners-dilemma/server"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/auth"
	serverGame "github.com/jacobpatterson1549/prisoners-dilemma/server/game"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/game/clock"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/game/lobby"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/game/socket"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/game/socket/gorilla"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gopkg.in/yaml.v3"
)

// tokenizerKeyLength is the number of random bytes used to sign game tokens.
const tokenizerKeyLength = 64

// createServer creates the server from the flags.
func (m mainFlags) createServer(log log.Logger, e embedParameters) (*server.Server, error) {
	timeFunc := func() int64 {
		return time.Now().UTC().Unix()
	}
	tokenizer, err := newTokenizer(crypto_rand.Reader, timeFunc)
	if err != nil {
		return nil, fmt.Errorf("creating authentication tokenizer: %w", err)
	}
	gameCfg, err := m.gameConfig(os.ReadFile)
	if err != nil {
		return nil, fmt.Errorf("creating game config: %w", err)
	}
	reg, err := newRegistry()
	if err != nil {
		return nil, fmt.Errorf("creating metrics registry: %w", err)
	}
	metrics, err := serverGame.NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("creating game metrics: %w", err)
	}
	gameRunnerCfg := m.gameRunnerConfig(log, *gameCfg, metrics, timeFunc)
	gameRunner, err := gameRunnerCfg.NewRunner()
	if err != nil {
		return nil, fmt.Errorf("creating game runner: %w", err)
	}
	socketRunnerCfg := m.socketRunnerConfig(log, timeFunc)
	socketRunner, err := socketRunnerCfg.NewRunner()
	if err != nil {
		return nil, fmt.Errorf("creating socket runner: %w", err)
	}
	lobbyCfg := m.lobbyConfig(log)
	lobby, err := lobbyCfg.NewLobby(socketRunner, gameRunner)
	if err != nil {
		return nil, fmt.Errorf("creating lobby: %w", err)
	}
	cfg := m.serverConfig(e, *gameCfg)
	p := server.Parameters{
		Logger:     log,
		Tokenizer:  tokenizer,
		Lobby:      lobby,
		Gatherer:   reg,
		TemplateFS: e.templateFS,
	}
	return cfg.NewServer(p)
}

// serverConfig creates the server configuration.
func (m mainFlags) serverConfig(e embedParameters, gameCfg game.Config) server.Config {
	cfg := server.Config{
		Port:        m.port,
		StopDur:     time.Second,
		CacheSec:    m.cacheSec,
		Version:     e.version,
		TLSCertFile: m.tlsCertFile,
		TLSKeyFile:  m.tlsKeyFile,
		GameConfig:  gameCfg,
	}
	return cfg
}

// newTokenizer creates the authentication token reader/writer with a random key.
func newTokenizer(keyReader io.Reader, timeFunc func() int64) (*auth.JwtTokenizer, error) {
	key := make([]byte, tokenizerKeyLength)
	if _, err := io.ReadFull(keyReader, key); err != nil {
		return nil, fmt.Errorf("generating tokenizer key: %w", err)
	}
	var tokenValidDurationSec int64 = int64((24 * time.Hour).Seconds()) // 1 day
	cfg := auth.TokenizerConfig{
		TimeFunc: timeFunc,
		ValidSec: tokenValidDurationSec,
	}
	return cfg.NewTokenizer(key)
}

// gameConfig reads the default configuration of games.
// Fields not in the game config file keep their standard values.
func (m mainFlags) gameConfig(readFileFunc func(name string) ([]byte, error)) (*game.Config, error) {
	cfg := game.DefaultConfig()
	if len(m.gameConfigFile) != 0 {
		b, err := readFileFunc(m.gameConfigFile)
		if err != nil {
			return nil, fmt.Errorf("reading game config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parsing game config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating game config: %w", err)
	}
	return &cfg, nil
}

// newRegistry creates the registry of metrics, including metrics about the go runtime and the process.
func newRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// lobbyConfig creates the configuration for passing messages between games and sockets.
func (m mainFlags) lobbyConfig(log log.Logger) lobby.Config {
	cfg := lobby.Config{
		Debug: m.debugGame,
		Log:   log,
	}
	return cfg
}

// gameRunnerConfig creates the configuration for running and managing games.
func (m mainFlags) gameRunnerConfig(log log.Logger, gameCfg game.Config, metrics *serverGame.Metrics, timeFunc func() int64) serverGame.RunnerConfig {
	controllerCfg := controller.Config{
		Game: gameCfg,
	}
	clockCfg := clock.Config{
		Period: clock.DefaultPeriod,
	}
	cfg := serverGame.RunnerConfig{
		Log:      log,
		MaxGames: m.maxGames,
		GameConfig: serverGame.Config{
			Debug:            m.debugGame,
			Log:              log,
			TimeFunc:         timeFunc,
			IdlePeriod:       60 * time.Minute,
			ControllerConfig: controllerCfg,
			ClockConfig:      clockCfg,
			Metrics:          metrics,
		},
	}
	return cfg
}

// socketRunnerConfig creates the configuration for creating new sockets (each tab that is connected to a game).
func (m mainFlags) socketRunnerConfig(log log.Logger, timeFunc func() int64) socket.RunnerConfig {
	socketCfg := socket.Config{
		Debug:      m.debugGame,
		Log:        log,
		TimeFunc:   timeFunc,
		ReadWait:   60 * time.Second,
		WriteWait:  10 * time.Second,
		PingPeriod: 54 * time.Second, // readWait * 0.9
	}
	upgraderCfg := gorilla.UpgraderConfig{
		HandshakeTimeout: 10 * time.Second,
		AllowedOrigins:   m.origins(),
	}
	cfg := socket.RunnerConfig{
		Log:            log,
		MaxSockets:     32,
		MaxGameSockets: 4,
		SocketConfig:   socketCfg,
		UpgraderConfig: upgraderCfg,
	}
	return cfg
}

// cleanVersion returns the version, but cleaned up to only be letters and numbers.
// Spaces on each end are trimmed, but spaces in the middle of the version or special characters cause an error to be returned.
func cleanVersion(v string) (string, error) {
	validRune := func(r rune) bool {
		return unicode.In(r, unicode.Letter, unicode.Digit)
	}
	cleanV := strings.TrimSpace(v)
	switch {
	case len(cleanV) == 0:
		return "", fmt.Errorf("empty version")
	case strings.IndexFunc(cleanV, func(r rune) bool { return !validRune(r) }) >= 0:
		return "", fmt.Errorf("version must be only letters and numbers: %q", cleanV)
	}
	return cleanV, nil
}

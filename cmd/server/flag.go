package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

const (
	environmentVariablePort           = "PORT"
	environmentVariableTLSCertFile    = "TLS_CERT_FILE"
	environmentVariableTLSKeyFile     = "TLS_KEY_FILE"
	environmentVariableDebugGame      = "DEBUG_GAME_MESSAGES"
	environmentVariableCacheSec       = "CACHE_SECONDS"
	environmentVariableGameConfigFile = "GAME_CONFIG_FILE"
	environmentVariableMaxGames       = "MAX_GAMES"
	environmentVariableAllowedOrigins = "ALLOWED_ORIGINS"
	environmentVariableLogLevel       = "LOG_LEVEL"
	environmentVariableLogJSON        = "LOG_JSON"
	environmentVariableZipkinURL      = "ZIPKIN_URL"
)

type (
	// mainFlags are the configuration options which can be easly configured at run startup for different environments.
	mainFlags struct {
		port           int
		tlsCertFile    string
		tlsKeyFile     string
		debugGame      bool
		cacheSec       int
		gameConfigFile string
		maxGames       int
		allowedOrigins string
		logLevel       string
		logJSON        bool
		zipkinURL      string
	}

	// environment contains the default values of the flags, read from environment variables.
	environment struct {
		Port           int    `env:"PORT" envDefault:"8000"`
		TLSCertFile    string `env:"TLS_CERT_FILE"`
		TLSKeyFile     string `env:"TLS_KEY_FILE"`
		DebugGame      bool   `env:"DEBUG_GAME_MESSAGES"`
		CacheSec       int    `env:"CACHE_SECONDS" envDefault:"31536000"`
		GameConfigFile string `env:"GAME_CONFIG_FILE"`
		MaxGames       int    `env:"MAX_GAMES" envDefault:"16"`
		AllowedOrigins string `env:"ALLOWED_ORIGINS"`
		LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
		LogJSON        bool   `env:"LOG_JSON"`
		ZipkinURL      string `env:"ZIPKIN_URL"`
	}
)

const (
	defaultCacheSec int = 60 * 60 * 24 * 365 // 1 year
)

// usage prints how to run the server to the flagset's output.
func usage(fs *flag.FlagSet) {
	envVars := []string{
		environmentVariablePort,
		environmentVariableTLSCertFile,
		environmentVariableTLSKeyFile,
		environmentVariableDebugGame,
		environmentVariableCacheSec,
		environmentVariableGameConfigFile,
		environmentVariableMaxGames,
		environmentVariableAllowedOrigins,
		environmentVariableLogLevel,
		environmentVariableLogJSON,
		environmentVariableZipkinURL,
	}
	fmt.Fprintf(fs.Output(), "Runs the server\n")
	fmt.Fprintf(fs.Output(), "Reads environment variables when possible: [%s]\n", strings.Join(envVars, ","))
	fmt.Fprintf(fs.Output(), "Usage of %s:\n", fs.Name())
	fs.PrintDefaults()
}

// readEnvironment parses the environment variables, using defaults for ones that are not set.
func readEnvironment(environ []string) (*environment, error) {
	var e environment
	opts := env.Options{
		Environment: env.ToMap(environ),
	}
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &e, nil
}

// newFlagSet creates a flagSet that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(e environment) *flag.FlagSet {
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() {
		usage(fs) // [lazy evaluation]
	}
	fs.IntVar(&m.port, "port", e.Port, "The TCP port for server http requests.")
	fs.StringVar(&m.tlsCertFile, "tls-cert-file", e.TLSCertFile, "The absolute path of the certificate file to use for TLS.  If this and the key file are set, the server only accepts HTTPS requests.")
	fs.StringVar(&m.tlsKeyFile, "tls-key-file", e.TLSKeyFile, "The absolute path of the key file to use for TLS.")
	fs.BoolVar(&m.debugGame, "debug-game", e.DebugGame, "Logs message types in the console when messages are passed between components.")
	fs.IntVar(&m.cacheSec, "cache-sec", e.CacheSec, "The number of seconds static assets are cached.")
	fs.StringVar(&m.gameConfigFile, "game-config", e.GameConfigFile, "The yaml file of the default game configuration.  If not set, fifteen one-minute rounds are played with the standard payoffs.")
	fs.IntVar(&m.maxGames, "max-games", e.MaxGames, "The maximum number of games that can be run at once.")
	fs.StringVar(&m.allowedOrigins, "allowed-origins", e.AllowedOrigins, "Comma-separated hosts other than the server that browsers can open sockets from.")
	fs.StringVar(&m.logLevel, "log-level", e.LogLevel, "The minimum level of log messages to write, such as debug, info, or warn.")
	fs.BoolVar(&m.logJSON, "log-json", e.LogJSON, "Writes log messages as json objects.")
	fs.StringVar(&m.zipkinURL, "zipkin-url", e.ZipkinURL, "The endpoint to export traces to, such as http://localhost:9411/api/v2/spans.  Traces are not exported if not set.")
	return fs
}

// newMainFlags creates a new, populated mainFlags structure.
// Fields are populated from command line arguments.
// If fields are not specified on the command line, environment variable values are used before defaulting to other defaults.
func newMainFlags(osArgs []string, environ []string) (*mainFlags, error) {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	e, err := readEnvironment(environ)
	if err != nil {
		return nil, err
	}
	var m mainFlags
	fs := m.newFlagSet(*e)
	fs.Parse(programArgs)
	return &m, nil
}

// origins splits the allowed origins into the hosts.
func (m mainFlags) origins() []string {
	var hosts []string
	for _, h := range strings.Split(m.allowedOrigins, ",") {
		if h = strings.TrimSpace(h); len(h) != 0 {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

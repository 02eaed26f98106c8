// Package log provides an abstraction over the logger used by the server.
package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is an interface over logrus.Logger to ensure the same log is used in most places rather than a package-level logger.
type Logger interface {
	// Printf writes the formatted string with values to the logger.
	// Arguments are handled in the manner of fmt.Printf.
	Printf(format string, v ...interface{})
	// Debugf writes the formatted string with values to the logger if debug messages are enabled.
	Debugf(format string, v ...interface{})
}

// Config describes how the server's logger writes messages.
type Config struct {
	// Level is the minimum level of messages to write, such as "info" or "debug".
	Level string
	// JSON is a flag to write messages as json objects rather than text.
	JSON bool
}

// Logrus implements the Logger interface.
var _ Logger = new(logrus.Logger)

// New creates a logger that writes to the writer.
func (cfg Config) New(w io.Writer) (*logrus.Logger, error) {
	level := cfg.Level
	if len(level) == 0 {
		level = logrus.InfoLevel.String()
	}
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(l)
	switch {
	case cfg.JSON:
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: true,
		})
	}
	return log, nil
}

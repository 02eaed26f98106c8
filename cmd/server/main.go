// Package main starts the server after configuring it from supplied or standard arguments
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobpatterson1549/prisoners-dilemma/server"
	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// main configures and runs the server.
func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file loaded: %v", err)
	}
	m, err := newMainFlags(os.Args, os.Environ())
	if err != nil {
		logrus.Fatalf("reading flags: %v", err)
	}
	logCfg := log.Config{
		Level: m.logLevel,
		JSON:  m.logJSON,
	}
	log, err := logCfg.New(os.Stdout)
	if err != nil {
		logrus.Fatalf("creating log: %v", err)
	}
	e, err := newEmbedParameters(embedVersion, embeddedTemplateFS)
	if err != nil {
		log.Fatalf("reading embedded files: %v", err)
	}
	shutdownTelemetry, err := m.setupTelemetry(ctx, log)
	if err != nil {
		log.Fatalf("setting up telemetry: %v", err)
	}
	defer func() {
		if err := shutdownTelemetry(ctx); err != nil {
			log.Printf("shutting down telemetry: %v", err)
		}
	}()
	server, err := m.createServer(log, *e)
	if err != nil {
		log.Fatalf("creating server: %v", err)
	}
	if err := runServer(ctx, server, log); err != nil {
		log.Fatalf("running server: %v", err)
	}
	log.Println("server run stopped successfully")
}

// runServer runs the server until it is interrupted or terminated.
func runServer(ctx context.Context, server *server.Server, log *logrus.Logger) error {
	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	errC := server.Run(ctx)
	select { // BLOCKING
	case err := <-errC:
		switch {
		case err == nil:
			log.Printf("server shutdown triggered")
		default:
			log.Printf("server stopped unexpectedly: %v", err)
		}
	case signal := <-done:
		log.Printf("handled signal: %v", signal)
	}
	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("stopping server: %v", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colinmarsh/segtrack/internal/config"
	"github.com/colinmarsh/segtrack/internal/demo"
	"github.com/colinmarsh/segtrack/internal/logger"
	"github.com/colinmarsh/segtrack/internal/server"
	"github.com/colinmarsh/segtrack/internal/syncstore"
	"github.com/colinmarsh/segtrack/internal/trackmetrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "segtrack: load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	store, err := syncstore.Open(cfg.SyncStore.Path, cfg.SyncStore.MigrationsPath)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("segtrack: open synchronization reference store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("segtrack: close synchronization reference store")
		}
	}()

	stream, err := demo.New(demo.Config{
		BufferingLookback: cfg.Tracker.BufferingLookback,
		ProbePeekSize:     cfg.Tracker.ProbePeekSize,
		SwitchCooldown:    cfg.Tracker.SwitchCooldown,
	}, store)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("segtrack: build demo stream")
	}

	sink := trackmetrics.New()
	stream.Tracker().RegisterListener(sink)

	srv := server.New(cfg, store, stream, sink)

	streamCtx, cancelStream := context.WithCancel(context.Background())
	go stream.Run(streamCtx)

	go func() {
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			logger.Log.Error().Err(err).Msg("segtrack: HTTP server error")
			os.Exit(1)
		}
	}()

	logger.Log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("segtrack demo starting")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Log.Info().Msg("segtrack: shutdown signal received")
	cancelStream()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("segtrack: shutdown error")
		os.Exit(1)
	}

	logger.Log.Info().Msg("segtrack: stopped")
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gomoku/config"
	"gomoku/evaluator"

	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "", "Path to a config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := config.SetupLogging(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	if cfg.Evaluator.Kind == evaluator.KindRemote {
		log.Fatal().Msg("refusing to serve a remote evaluator")
	}

	e, release, err := evaluator.New(cfg.Evaluator, cfg.Search.WinningRunLength)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create evaluator")
	}
	defer release()

	server := &http.Server{
		Addr:    cfg.Evaluator.Listen,
		Handler: evaluator.NewHandler(e),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Info().Str("addr", cfg.Evaluator.Listen).Str("kind", cfg.Evaluator.Kind).Msg("evaluator listening")
	select {
	case <-sigCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

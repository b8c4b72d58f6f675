package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"gomoku/config"
	"gomoku/experiments"
	"gomoku/game"

	"github.com/rs/zerolog/log"
)

func main() {
	path := flag.String("config", "", "Path to a config file")
	games := flag.Int("games", 0, "Number of games to play, overrides match.games")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *games > 0 {
		cfg.Match.Games = *games
	}
	if err := config.SetupLogging(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := experiments.Run(ctx, cfg, experiments.WithConsole(os.Stdin, os.Stdout))
	if err != nil {
		log.Fatal().Err(err).Msg("match aborted")
	}

	log.Info().
		Int("black", result.Wins[game.Black]).
		Int("white", result.Wins[game.White]).
		Int("draws", result.Wins[game.Empty]).
		Str("records", result.Dir).
		Msg("match-complete")
}

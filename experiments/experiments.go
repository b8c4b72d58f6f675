package experiments

import (
	"context"
	"fmt"
	"io"

	"gomoku/agent"
	"gomoku/config"
	"gomoku/engine"
	"gomoku/evaluator"
	"gomoku/game"
	"gomoku/metrics"
	"gomoku/searcher"

	"github.com/rs/zerolog/log"
)

// Result tallies a series of games. Wins is indexed by player id; index 0
// counts draws.
type Result struct {
	Wins        [3]int
	GameRecords []metrics.GameRecord
	MoveRecords []metrics.MoveRecord
	Dir         string // Where records were written, if anywhere
}

type Option func(r *runner)

type runner struct {
	console *agent.Console
}

// WithConsole lets human agents play through in and out. The running score
// is printed there after every game.
func WithConsole(in io.Reader, out io.Writer) Option {
	return func(r *runner) {
		r.console = agent.NewConsole(in, out)
	}
}

// Run plays cfg.Match.Games games between the configured agents, sharing one
// evaluator, and stores the records under cfg.Match.MetricsDir when set.
func Run(ctx context.Context, cfg *config.Config, options ...Option) (Result, error) {
	var result Result
	r := &runner{}
	for _, option := range options {
		option(r)
	}
	if r.console == nil && (cfg.Match.Black == config.AgentHuman || cfg.Match.White == config.AgentHuman) {
		return result, fmt.Errorf("human agents need a console")
	}

	e, release, err := evaluator.New(cfg.Evaluator, cfg.Search.WinningRunLength)
	if err != nil {
		return result, fmt.Errorf("failed to create evaluator: %w", err)
	}
	defer release()

	log.Info().Msgf("starting %d games of %s vs %s...", cfg.Match.Games, cfg.Match.Black, cfg.Match.White)

	for i := 0; i < cfg.Match.Games; i++ {
		log.Info().Msgf("starting game %d of %d...", i+1, cfg.Match.Games)

		winner, gameMetric, moveMetrics, err := r.runGame(ctx, cfg, e, uint64(i))
		if err != nil {
			return result, fmt.Errorf("game %d: %w", i+1, err)
		}
		result.Wins[winner]++
		result.GameRecords = append(result.GameRecords, metrics.GameRecord{
			ID:         i + 1,
			GameMetric: gameMetric,
		})
		for _, mm := range moveMetrics {
			result.MoveRecords = append(result.MoveRecords, metrics.MoveRecord{
				Game:       i + 1,
				MoveMetric: mm,
			})
		}

		log.Info().Msgf("completed game %d of %d with winner: %d", i+1, cfg.Match.Games, winner)
		if r.console != nil {
			r.console.Printf("game %d: X %d, O %d, draws %d\n",
				i+1, result.Wins[game.Black], result.Wins[game.White], result.Wins[game.Empty])
		}
	}

	if cfg.Match.MetricsDir == "" {
		return result, nil
	}

	writer, err := metrics.NewWriter(cfg.Match.MetricsDir)
	if err != nil {
		return result, fmt.Errorf("failed to create metrics writer: %w", err)
	}
	result.Dir = writer.Dir()

	if err := writer.WriteGameRecords(result.GameRecords); err != nil {
		return result, fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(result.MoveRecords); err != nil {
		return result, fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return result, nil
}

// runGame executes a single game between two agents and returns the winner
func (r *runner) runGame(ctx context.Context, cfg *config.Config, e searcher.Evaluator, index uint64) (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	black, err := r.createAgent(cfg, cfg.Match.Black, e, cfg.Match.Seed+2*index)
	if err != nil {
		return 0, metrics.GameMetric{}, nil, err
	}
	white, err := r.createAgent(cfg, cfg.Match.White, e, cfg.Match.Seed+2*index+1)
	if err != nil {
		return 0, metrics.GameMetric{}, nil, err
	}

	local := engine.LocalEngine(
		game.NewBoard(cfg.Search.BoardSize),
		black, white,
		cfg.Match.StartingPlayer,
		cfg.Search.WinningRunLength,
		cfg.Match.MaxMoves,
	)
	return local.Run(ctx)
}

func (r *runner) createAgent(cfg *config.Config, mode string, e searcher.Evaluator, seed uint64) (agent.Agent, error) {
	if mode == config.AgentHuman {
		return agent.NewHumanAgent(r.console), nil
	}

	mcts, err := searcher.NewMCTS(cfg.Search, e, searcher.WithMetrics())
	if err != nil {
		return nil, err
	}

	switch mode {
	case config.AgentTraining:
		return agent.NewTrainingAgent(mcts, cfg.Match.Temperature, seed), nil
	case config.AgentEvaluation:
		return agent.NewEvaluationAgent(mcts), nil
	}
	return nil, fmt.Errorf("unknown agent mode %q", mode)
}

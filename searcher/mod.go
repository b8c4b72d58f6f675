package searcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gomoku/game"
)

// Values backed up for decided positions, from the perspective of the
// player who made the last move
const (
	Win  = 1.0
	Draw = 0.0
	Loss = -Win
)

var (
	ErrInvalidExpansion = errors.New("invalid expansion")
	ErrEmptyExpansion   = errors.New("evaluator returned no legal actions for a non-terminal position")
	ErrSelectionOnLeaf  = errors.New("selection on a node without children")
	ErrTerminalRoot     = errors.New("search root has no empty cells")
	ErrUnknownAction    = errors.New("action is not legal at the root")
)

// Config holds the search hyperparameters shared by every simulation.
type Config struct {
	CPuct            float64       `mapstructure:"c_puct"`
	NumSimulations   int           `mapstructure:"num_simulations"`
	WinningRunLength int           `mapstructure:"winning_run_length"`
	BoardSize        int           `mapstructure:"board_size"`
	Goroutines       int           `mapstructure:"goroutines"`
	Duration         time.Duration `mapstructure:"duration"`
	VirtualLoss      int           `mapstructure:"virtual_loss"`
}

func (c Config) Validate() error {
	if c.CPuct <= 0 {
		return fmt.Errorf("c_puct must be positive, got %v", c.CPuct)
	}
	if c.NumSimulations <= 0 && c.Duration <= 0 {
		return fmt.Errorf("num_simulations must be positive, got %d", c.NumSimulations)
	}
	if c.BoardSize <= 0 {
		return fmt.Errorf("board_size must be positive, got %d", c.BoardSize)
	}
	if c.WinningRunLength <= 0 {
		return fmt.Errorf("winning_run_length must be positive, got %d", c.WinningRunLength)
	}
	if c.Goroutines < 0 || c.VirtualLoss < 0 {
		return fmt.Errorf("goroutines and virtual_loss cannot be negative")
	}
	return nil
}

// Evaluation is what an evaluator knows about a position: the legal actions,
// a prior for each of them, and the expected outcome for the player to move.
type Evaluation struct {
	Actions []int     `json:"actions"`
	Priors  []float64 `json:"priors"`
	Value   float64   `json:"value"` // In [-1, 1]
}

// Evaluator supplies priors and a value estimate for leaf positions. It is
// called once per expanded leaf and may block, e.g. while batched inference
// runs. Implementations must not retain board after returning.
type Evaluator interface {
	Evaluate(ctx context.Context, board *game.Board, player int) (Evaluation, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, board *game.Board, player int) (Evaluation, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, board *game.Board, player int) (Evaluation, error) {
	return f(ctx, board, player)
}

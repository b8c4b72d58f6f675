package agent

import (
	"context"
	"errors"

	"gomoku/game"
	"gomoku/metrics"
	"gomoku/searcher"

	"gonum.org/v1/gonum/floats"
)

var ErrNoMove = errors.New("search produced no candidate move")

type Agent interface {
	// FindMove searches the current position and returns the chosen action with
	// performance metrics (if collected) from the search
	FindMove(ctx context.Context) (int, metrics.SearchMetric, error)
	// Commit plays a real move, by either player, on the agent's position
	Commit(action int) error
	// Reset starts over from board with player to move
	Reset(board *game.Board, player int)
}

type mctsAgent struct {
	mcts *searcher.MCTS
}

func (a mctsAgent) Commit(action int) error {
	return a.mcts.Commit(action)
}

func (a mctsAgent) Reset(board *game.Board, player int) {
	a.mcts.Reset(board, player)
}

// Policy turns root visit counts into a distribution over actions. Before any
// child is visited it falls back to the priors.
func Policy(stats []searcher.ChildStats) (actions []int, policy []float64) {
	actions = make([]int, len(stats))
	policy = make([]float64, len(stats))
	for i, s := range stats {
		actions[i] = s.Action
		policy[i] = float64(s.Visits)
	}
	if len(stats) == 0 {
		return actions, policy
	}

	if floats.Sum(policy) == 0 {
		for i, s := range stats {
			policy[i] = s.Prior
		}
	}
	if sum := floats.Sum(policy); sum > 0 {
		floats.Scale(1/sum, policy)
	}
	return actions, policy
}

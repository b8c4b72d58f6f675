package agent

import (
	"context"

	"gomoku/metrics"
	"gomoku/searcher"

	"gonum.org/v1/gonum/floats"
)

type evaluationAgent struct {
	mctsAgent
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
// It always picks the most visited move.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mctsAgent{mcts: mcts}}
}

func (a evaluationAgent) FindMove(ctx context.Context) (int, metrics.SearchMetric, error) {
	metric, err := a.mcts.Search(ctx)
	if err != nil {
		return 0, metric, err
	}

	actions, policy := Policy(a.mcts.Visits())
	if len(actions) == 0 {
		return 0, metric, ErrNoMove
	}
	return actions[findMax(policy)], metric, nil
}

// findMax returns the first index holding the largest probability.
func findMax(policy []float64) int {
	return floats.MaxIdx(policy)
}

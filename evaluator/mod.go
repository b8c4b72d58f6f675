// Package evaluator provides leaf evaluators for the searcher: simple priors,
// random playouts, a batching queue and a JSON-over-HTTP transport.
package evaluator

import (
	"context"

	"gomoku/game"
	"gomoku/searcher"
)

// Uniform gives every empty cell the same prior and calls each position even.
type Uniform struct{}

func (Uniform) Evaluate(_ context.Context, board *game.Board, _ int) (searcher.Evaluation, error) {
	actions := board.EmptyActions()
	return searcher.Evaluation{
		Actions: actions,
		Priors:  uniformPriors(len(actions)),
		Value:   searcher.Draw,
	}, nil
}

func uniformPriors(n int) []float64 {
	priors := make([]float64, n)
	for i := range priors {
		priors[i] = 1 / float64(n)
	}
	return priors
}

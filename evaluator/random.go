package evaluator

import (
	"context"
	"sync"

	"gomoku/game"
	"gomoku/searcher"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Random draws priors and a value at random. It stands in for an untrained
// network; the same seed replays the same evaluations.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Evaluate(_ context.Context, board *game.Board, _ int) (searcher.Evaluation, error) {
	actions := board.EmptyActions()
	priors := make([]float64, len(actions))

	r.mu.Lock()
	for i := range priors {
		priors[i] = r.rng.Float64() + 1e-9 // Never all zero
	}
	value := 2*r.rng.Float64() - 1
	r.mu.Unlock()

	if len(priors) > 0 {
		floats.Scale(1/floats.Sum(priors), priors)
	}
	return searcher.Evaluation{Actions: actions, Priors: priors, Value: value}, nil
}

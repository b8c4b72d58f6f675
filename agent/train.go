package agent

import (
	"context"
	"math"
	"sync"

	"gomoku/metrics"
	"gomoku/searcher"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

type trainingAgent struct {
	mctsAgent
	temperature float64
	mu          sync.Mutex
	rng         *rand.Rand
}

// NewTrainingAgent returns a new agent for self-play during training. It
// samples moves in proportion to visits^(1/temperature); a temperature of 0
// plays the most visited move.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	return &trainingAgent{
		mctsAgent:   mctsAgent{mcts: mcts},
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindMove(ctx context.Context) (int, metrics.SearchMetric, error) {
	metric, err := a.mcts.Search(ctx)
	if err != nil {
		return 0, metric, err
	}

	actions, policy := Policy(a.mcts.Visits())
	if len(actions) == 0 {
		return 0, metric, ErrNoMove
	}
	if a.temperature <= 0 {
		return actions[findMax(policy)], metric, nil
	}

	policy = adjustTemperature(policy, a.temperature)
	a.mu.Lock()
	sampled := a.rng.Float64()
	a.mu.Unlock()
	return actions[sample(policy, sampled)], metric, nil
}

func adjustTemperature(policy []float64, temperature float64) []float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	adjusted := make([]float64, len(policy))
	for i, p := range policy {
		adjusted[i] = math.Pow(p, exponent)
	}
	// Normalize
	if sum := floats.Sum(adjusted); sum > 0 {
		floats.Scale(1/sum, adjusted)
	}
	return adjusted
}

// sample returns the index whose cumulative probability first exceeds u.
func sample(policy []float64, u float64) int {
	cumulative := floats.CumSum(make([]float64, len(policy)), policy)
	for i, c := range cumulative {
		if u < c {
			return i
		}
	}
	return len(policy) - 1 // Fallback in case of rounding errors
}

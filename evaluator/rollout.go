package evaluator

import (
	"context"
	"sync"

	"gomoku/game"
	"gomoku/searcher"

	"golang.org/x/exp/rand"
)

// Rollout values a position by one random playout. Priors are uniform.
type Rollout struct {
	mu        sync.Mutex
	rng       *rand.Rand
	cutoff    int // Maximum playout length, 0 plays until the game ends
	runLength int
}

func NewRollout(seed uint64, cutoff, runLength int) *Rollout {
	if runLength <= 0 {
		runLength = game.DefaultRunLength
	}
	return &Rollout{
		rng:       rand.New(rand.NewSource(seed)),
		cutoff:    cutoff,
		runLength: runLength,
	}
}

func (r *Rollout) Evaluate(_ context.Context, board *game.Board, player int) (searcher.Evaluation, error) {
	actions := board.EmptyActions()
	return searcher.Evaluation{
		Actions: actions,
		Priors:  uniformPriors(len(actions)),
		Value:   r.playout(board.Clone(), append([]int(nil), actions...), player),
	}, nil
}

// playout plays random stones from player's turn onwards and returns the
// outcome for player. Reaching the cutoff counts as a draw.
func (r *Rollout) playout(board *game.Board, empty []int, player int) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	mover := player
	// Rollout till game over or for cutoff number of moves
	for depth := 0; len(empty) > 0 && (r.cutoff <= 0 || depth < r.cutoff); depth++ {
		i := r.rng.Intn(len(empty)) // Random rollout policy
		action := empty[i]
		empty[i] = empty[len(empty)-1]
		empty = empty[:len(empty)-1]

		if err := board.Play(action, mover); err != nil {
			panic(err) // empty only holds empty cells
		}
		if board.IsWinningMove(action, mover, r.runLength) {
			if mover == player {
				return searcher.Win
			}
			return searcher.Loss
		}
		mover = game.Opponent(mover)
	}
	return searcher.Draw
}

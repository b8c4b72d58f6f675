package engine

import (
	"context"

	"gomoku/metrics"
)

const MaxMoves = 10000

type Engine interface {
	// Run plays a game till there's a winner, the board is full or a max number
	// of moves is reached. Winner is 0 for a draw.
	Run(ctx context.Context) (winner int, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}

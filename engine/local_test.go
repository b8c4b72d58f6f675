package engine

import (
	"context"
	"errors"
	"testing"

	"gomoku/agent"
	"gomoku/game"
	"gomoku/metrics"
	"gomoku/searcher"

	"github.com/stretchr/testify/require"
)

type scriptedAgent struct {
	moves     []int
	next      int
	committed []int
	resets    int
	err       error
}

func (a *scriptedAgent) FindMove(context.Context) (int, metrics.SearchMetric, error) {
	if a.err != nil {
		return 0, metrics.SearchMetric{}, a.err
	}
	move := a.moves[a.next]
	a.next++
	return move, metrics.SearchMetric{Simulations: 1}, nil
}

func (a *scriptedAgent) Commit(action int) error {
	a.committed = append(a.committed, action)
	return nil
}

func (a *scriptedAgent) Reset(*game.Board, int) {
	a.resets++
}

// valueAgent has value receivers and a slice field, so two copies cannot be
// compared with ==.
type valueAgent struct {
	moves []int
	next  *int
}

func (a valueAgent) FindMove(context.Context) (int, metrics.SearchMetric, error) {
	move := a.moves[*a.next]
	*a.next++
	return move, metrics.SearchMetric{}, nil
}

func (a valueAgent) Commit(int) error { return nil }

func (a valueAgent) Reset(*game.Board, int) {}

func TestLocalEngineRun(t *testing.T) {
	t.Run("black completes a run", func(t *testing.T) {
		black := &scriptedAgent{moves: []int{0, 1, 2}}
		white := &scriptedAgent{moves: []int{5, 6}}
		e := LocalEngine(game.NewBoard(5), black, white, game.Black, 3, 0)

		winner, gameMetric, moveMetrics, err := e.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, game.Black, winner)
		require.Equal(t, game.Black, gameMetric.Winner)
		require.Equal(t, 5, gameMetric.TotalMoves)
		require.Len(t, moveMetrics, 5)
		require.Equal(t, game.White, moveMetrics[1].Player)
		require.Equal(t, 5, moveMetrics[1].Action)

		expected := []int{0, 5, 1, 6, 2}
		require.Equal(t, expected, black.committed, "Every move should reach every agent")
		require.Equal(t, expected, white.committed)
		require.Equal(t, 1, black.resets)
		require.Equal(t, 1, white.resets)
	})

	t.Run("white starts", func(t *testing.T) {
		black := &scriptedAgent{moves: []int{5, 6}}
		white := &scriptedAgent{moves: []int{0, 1, 2}}
		e := LocalEngine(game.NewBoard(5), black, white, game.White, 3, 0)

		winner, gameMetric, _, err := e.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, game.White, winner)
		require.Equal(t, game.White, gameMetric.StartingPlayer)
	})

	t.Run("full board is a draw", func(t *testing.T) {
		black := &scriptedAgent{moves: []int{0, 3}}
		white := &scriptedAgent{moves: []int{1, 2}}
		e := LocalEngine(game.NewBoard(2), black, white, game.Black, 3, 0)

		winner, gameMetric, _, err := e.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, game.Empty, winner)
		require.Equal(t, 4, gameMetric.TotalMoves)
	})

	t.Run("move cap", func(t *testing.T) {
		black := &scriptedAgent{moves: []int{0}}
		white := &scriptedAgent{moves: []int{1}}
		e := LocalEngine(game.NewBoard(5), black, white, game.Black, 5, 2)

		winner, gameMetric, _, err := e.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, game.Empty, winner)
		require.Equal(t, 2, gameMetric.TotalMoves)
	})

	t.Run("illegal move", func(t *testing.T) {
		black := &scriptedAgent{moves: []int{0}}
		white := &scriptedAgent{moves: []int{0}}
		e := LocalEngine(game.NewBoard(5), black, white, game.Black, 5, 0)

		_, _, _, err := e.Run(context.Background())
		require.ErrorIs(t, err, game.ErrOccupied)
	})

	t.Run("agent failure", func(t *testing.T) {
		boom := errors.New("boom")
		black := &scriptedAgent{err: boom}
		e := LocalEngine(game.NewBoard(5), black, &scriptedAgent{}, game.Black, 5, 0)

		_, _, moveMetrics, err := e.Run(context.Background())
		require.ErrorIs(t, err, boom)
		require.Empty(t, moveMetrics)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e := LocalEngine(game.NewBoard(5), &scriptedAgent{}, &scriptedAgent{}, game.Black, 5, 0)

		_, _, _, err := e.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("self-play commits once", func(t *testing.T) {
		self := &scriptedAgent{moves: []int{0, 5, 1, 6, 2}}
		e := LocalEngine(game.NewBoard(5), self, self, game.Black, 3, 0)

		winner, _, _, err := e.Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, game.Black, winner)
		require.Equal(t, []int{0, 5, 1, 6, 2}, self.committed)
		require.Equal(t, 1, self.resets)
	})

	t.Run("agents of uncomparable types", func(t *testing.T) {
		black := valueAgent{moves: []int{0, 1, 2}, next: new(int)}
		white := valueAgent{moves: []int{5, 6}, next: new(int)}
		e := LocalEngine(game.NewBoard(5), black, white, game.Black, 3, 0)

		var winner int
		var err error
		require.NotPanics(t, func() {
			winner, _, _, err = e.Run(context.Background())
		}, "Value agents holding slices should be accepted")
		require.NoError(t, err)
		require.Equal(t, game.Black, winner)
	})

	t.Run("every run starts from the initial board", func(t *testing.T) {
		board := game.NewBoard(5)
		require.NoError(t, board.Place(4, 4, game.White))
		black := &scriptedAgent{moves: []int{0, 1, 2}}
		white := &scriptedAgent{moves: []int{5, 6}}
		e := LocalEngine(board, black, white, game.Black, 3, 0)

		first, firstMetric, _, err := e.Run(context.Background())
		require.NoError(t, err)

		black.next, white.next = 0, 0
		second, secondMetric, _, err := e.Run(context.Background())
		require.NoError(t, err, "Second game should not find the cells of the first occupied")
		require.Equal(t, first, second)
		require.Equal(t, firstMetric.TotalMoves, secondMetric.TotalMoves)
		require.Equal(t, 2, black.resets)
		require.Equal(t, game.Empty, board.At(0, 0), "Caller's board should not be played on")
	})

	t.Run("panics without an agent", func(t *testing.T) {
		require.Panics(t, func() {
			LocalEngine(game.NewBoard(5), nil, &scriptedAgent{}, game.Black, 5, 0)
		})
	})
}

func TestLocalEngineWithSearch(t *testing.T) {
	uniform := searcher.EvaluatorFunc(func(_ context.Context, board *game.Board, _ int) (searcher.Evaluation, error) {
		actions := board.EmptyActions()
		priors := make([]float64, len(actions))
		for i := range priors {
			priors[i] = 1 / float64(len(actions))
		}
		return searcher.Evaluation{Actions: actions, Priors: priors}, nil
	})
	cfg := searcher.Config{CPuct: 1.5, NumSimulations: 100, WinningRunLength: 3, BoardSize: 3}

	newAgent := func() agent.Agent {
		m, err := searcher.NewMCTS(cfg, uniform, searcher.WithMetrics())
		require.NoError(t, err)
		return agent.NewEvaluationAgent(m)
	}
	e := LocalEngine(game.NewBoard(3), newAgent(), newAgent(), game.Black, 3, 0)

	winner, gameMetric, moveMetrics, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Contains(t, []int{game.Empty, game.Black, game.White}, winner)
	require.Len(t, moveMetrics, gameMetric.TotalMoves)
	require.LessOrEqual(t, gameMetric.TotalMoves, 9)
	require.GreaterOrEqual(t, gameMetric.TotalMoves, 5, "No run of 3 fits in fewer moves")
	for _, m := range moveMetrics {
		require.Equal(t, 100, m.Simulations)
	}
	require.True(t, moveMetrics[0].IsTreeReset)
	require.False(t, moveMetrics[2].IsTreeReset, "Trees should be reused between moves")
}

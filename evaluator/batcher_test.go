package evaluator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gomoku/game"

	"github.com/stretchr/testify/require"
)

func TestBatcher(t *testing.T) {
	t.Run("answers every caller", func(t *testing.T) {
		var calls atomic.Int32
		var largest atomic.Int32
		batch := func(ctx context.Context, requests []Request) ([]Response, error) {
			calls.Add(1)
			if n := int32(len(requests)); n > largest.Load() {
				largest.Store(n)
			}
			return Sequential(Uniform{})(ctx, requests)
		}
		b := NewBatcher(batch, 4, 5*time.Millisecond)
		defer b.Close()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				board := game.NewBoard(3)
				require.NoError(t, board.Play(i%9, game.Black))

				eval, err := b.Evaluate(context.Background(), board, game.White)
				require.NoError(t, err)
				require.Len(t, eval.Actions, 8)
				require.NotContains(t, eval.Actions, i%9, "Answer should match the caller's board")
			}(i)
		}
		wg.Wait()

		require.LessOrEqual(t, largest.Load(), int32(4), "Batches should not exceed the size")
		require.GreaterOrEqual(t, calls.Load(), int32(3))
	})

	t.Run("batch error reaches every caller", func(t *testing.T) {
		boom := errors.New("boom")
		b := NewBatcher(func(context.Context, []Request) ([]Response, error) {
			return nil, boom
		}, 2, time.Millisecond)
		defer b.Close()

		_, err := b.Evaluate(context.Background(), game.NewBoard(3), game.Black)
		require.ErrorIs(t, err, boom)
	})

	t.Run("short answer", func(t *testing.T) {
		b := NewBatcher(func(context.Context, []Request) ([]Response, error) {
			return nil, nil
		}, 1, time.Millisecond)
		defer b.Close()

		_, err := b.Evaluate(context.Background(), game.NewBoard(3), game.Black)
		require.Error(t, err)
	})

	t.Run("closed", func(t *testing.T) {
		b := NewBatcher(Sequential(Uniform{}), 1, time.Millisecond)
		b.Close()
		b.Close()

		_, err := b.Evaluate(context.Background(), game.NewBoard(3), game.Black)
		require.ErrorIs(t, err, ErrClosed)
	})

	t.Run("caller gives up", func(t *testing.T) {
		release := make(chan struct{})
		b := NewBatcher(func(ctx context.Context, requests []Request) ([]Response, error) {
			<-release
			return Sequential(Uniform{})(ctx, requests)
		}, 1, time.Millisecond)
		defer b.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := b.Evaluate(ctx, game.NewBoard(3), game.Black)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

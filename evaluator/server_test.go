package evaluator

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gomoku/game"
	"gomoku/searcher"

	"github.com/stretchr/testify/require"
)

func TestHTTPRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewHandler(NewRandom(42)))
	defer srv.Close()
	client := NewClient(srv.URL, time.Second)

	board := game.NewBoard(5)
	require.NoError(t, board.Place(2, 2, game.Black))

	t.Run("single", func(t *testing.T) {
		got, err := client.Evaluate(context.Background(), board, game.White)
		require.NoError(t, err)

		want, err := NewRandom(42).Evaluate(context.Background(), board, game.White)
		require.NoError(t, err)
		require.Equal(t, want.Actions, got.Actions)
		require.InDeltaSlice(t, want.Priors, got.Priors, 1e-12)
	})

	t.Run("batch through a batcher", func(t *testing.T) {
		b := NewBatcher(client.Batch, 2, time.Millisecond)
		defer b.Close()

		eval, err := b.Evaluate(context.Background(), board, game.White)
		require.NoError(t, err)
		require.Len(t, eval.Actions, 24)
	})

	t.Run("drives a search", func(t *testing.T) {
		cfg := searcher.Config{CPuct: 1, NumSimulations: 20, WinningRunLength: 5, BoardSize: 5}
		m, err := searcher.NewMCTS(cfg, client)
		require.NoError(t, err)

		_, err = m.Search(context.Background())
		require.NoError(t, err)
		require.Equal(t, 20, m.Tree().Visits(m.Tree().Root()))
	})
}

func TestHandlerRejects(t *testing.T) {
	handler := NewHandler(Uniform{})

	cases := map[string]string{
		"garbage":     `{`,
		"no board":    `{"id":"a","player":1}`,
		"bad player":  `{"id":"a","player":3,"board":{"size":1,"cells":[[0]]}}`,
		"ragged rows": `{"id":"a","player":1,"board":{"size":2,"cells":[[0,0],[0]]}}`,
		"board too large": oversizedBoard(MaxBoardSize + 1),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/evaluate", bytes.NewBufferString(body))
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	t.Run("body too large", func(t *testing.T) {
		body := `{"id":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		for _, path := range []string{"/evaluate", "/evaluate/batch"} {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
			handler.ServeHTTP(rec, req)
			require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, "Path %s should cap the body", path)
		}
	})
}

func oversizedBoard(size int) string {
	row := "[" + strings.TrimSuffix(strings.Repeat("0,", size), ",") + "]"
	rows := strings.TrimSuffix(strings.Repeat(row+",", size), ",")
	return fmt.Sprintf(`{"id":"a","player":1,"board":{"size":%d,"cells":[%s]}}`, size, rows)
}

func TestClientServerError(t *testing.T) {
	failing := searcher.EvaluatorFunc(func(context.Context, *game.Board, int) (searcher.Evaluation, error) {
		return searcher.Evaluation{}, context.DeadlineExceeded
	})
	srv := httptest.NewServer(NewHandler(failing))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Evaluate(context.Background(), game.NewBoard(3), game.Black)
	require.ErrorContains(t, err, "500")
}

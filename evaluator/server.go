package evaluator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gomoku/game"
	"gomoku/searcher"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const (
	// MaxBoardSize is the largest board side the server evaluates.
	MaxBoardSize = 64
	maxBodyBytes = 8 << 20
)

type server struct {
	evaluator searcher.Evaluator
}

// NewHandler serves e at POST /evaluate and POST /evaluate/batch.
func NewHandler(e searcher.Evaluator) http.Handler {
	s := &server{evaluator: e}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/evaluate", s.handleEvaluate)
	r.Post("/evaluate/batch", s.handleBatch)
	return r
}

func (s *server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !decode(w, r, &req) {
		return
	}
	if err := validate(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	eval, err := s.evaluator.Evaluate(r.Context(), req.Board, req.Player)
	if err != nil {
		log.Error().Err(err).Str("id", req.ID).Msg("evaluation-failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Response{ID: req.ID, Evaluation: eval})
}

func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var requests []Request
	if !decode(w, r, &requests) {
		return
	}
	for _, req := range requests {
		if err := validate(req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("request %s: %v", req.ID, err)})
			return
		}
	}

	responses, err := Sequential(s.evaluator)(r.Context(), requests)
	if err != nil {
		log.Error().Err(err).Int("size", len(requests)).Msg("batch-failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	log.Debug().Int("size", len(requests)).Msg("batch-served")
	writeJSON(w, http.StatusOK, responses)
}

// decode reads the body into v, answering the request itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload too large"})
		return false
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	return false
}

func validate(req Request) error {
	if req.Board == nil || req.Board.Size <= 0 || len(req.Board.Cells) != req.Board.Size {
		return fmt.Errorf("missing or malformed board")
	}
	if req.Board.Size > MaxBoardSize {
		return fmt.Errorf("board size %d exceeds %d", req.Board.Size, MaxBoardSize)
	}
	for _, row := range req.Board.Cells {
		if len(row) != req.Board.Size {
			return fmt.Errorf("board rows must have %d cells", req.Board.Size)
		}
	}
	if req.Player != game.Black && req.Player != game.White {
		return fmt.Errorf("unknown player %d", req.Player)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

package engine

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"gomoku/agent"
	"gomoku/game"
	"gomoku/metrics"

	"github.com/rs/zerolog/log"
)

type localEngine struct {
	initial   *game.Board
	board     *game.Board
	agents    map[int]agent.Agent
	starting  int
	runLength int
	maxMoves  int
}

// LocalEngine plays black against white on board in process. Both agents are
// reset to board before the first move. Every Run starts over from board.
func LocalEngine(board *game.Board, black, white agent.Agent, starting, runLength, maxMoves int) Engine {
	if black == nil || white == nil {
		panic("need an agent for each player")
	}
	if starting != game.Black && starting != game.White {
		panic(fmt.Sprintf("unknown starting player %d", starting))
	}
	if runLength <= 0 {
		runLength = game.DefaultRunLength
	}
	if maxMoves <= 0 || maxMoves > MaxMoves {
		maxMoves = MaxMoves
	}

	return &localEngine{
		initial:   board.Clone(),
		agents:    map[int]agent.Agent{game.Black: black, game.White: white},
		starting:  starting,
		runLength: runLength,
		maxMoves:  maxMoves,
	}
}

func (e *localEngine) Run(ctx context.Context) (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	e.board = e.initial.Clone()
	for _, a := range e.uniqueAgents() {
		a.Reset(e.board, e.starting)
	}

	gameMetric := metrics.GameMetric{
		StartingPlayer: e.starting,
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric
	log.Info().Msgf("player %d is starting", e.starting)

	player := e.starting
	winner := game.Empty
	for step := 1; step <= e.maxMoves && !e.board.IsFull(); step++ {
		if err := ctx.Err(); err != nil {
			return winner, e.complete(gameMetric, step-1), moveMetrics, err
		}

		action, searchMetric, err := e.agents[player].FindMove(ctx)
		if err != nil {
			return winner, e.complete(gameMetric, step-1), moveMetrics, fmt.Errorf("player %d at step %d: %w", player, step, err)
		}
		if err := e.board.Play(action, player); err != nil {
			return winner, e.complete(gameMetric, step-1), moveMetrics, fmt.Errorf("player %d chose an illegal move: %w", player, err)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Action:       action,
			SearchMetric: searchMetric,
		})

		// Every agent follows the real game so its tree can be reused
		for _, a := range e.uniqueAgents() {
			if err := a.Commit(action); err != nil {
				return winner, e.complete(gameMetric, step), moveMetrics, fmt.Errorf("failed to commit move %d: %w", action, err)
			}
		}

		x, y := game.ToLoc(action, e.board.Size)
		log.Debug().Int("step", step).Int("player", player).Int("x", x).Int("y", y).Msg("move")

		if e.board.IsWinningMove(action, player, e.runLength) {
			winner = player
			gameMetric.Winner = winner
			log.Info().Msgf("player %d won after %d moves", winner, step)
			return winner, e.complete(gameMetric, step), moveMetrics, nil
		}
		player = game.Opponent(player)
	}

	log.Info().Msgf("draw after %d moves", len(moveMetrics))
	return winner, e.complete(gameMetric, len(moveMetrics)), moveMetrics, nil
}

// uniqueAgents lists each agent once, so that an agent playing both sides
// commits every move a single time.
func (e *localEngine) uniqueAgents() []agent.Agent {
	black, white := e.agents[game.Black], e.agents[game.White]
	if sameAgent(black, white) {
		return []agent.Agent{black}
	}
	return []agent.Agent{black, white}
}

// sameAgent compares a and b only when their dynamic types allow it, since ==
// on interfaces panics for types such as structs holding a slice.
func sameAgent(a, b agent.Agent) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func (e *localEngine) complete(m metrics.GameMetric, moves int) metrics.GameMetric {
	m.EndTime = time.Now()
	m.Duration = m.EndTime.Sub(m.StartTime)
	m.TotalMoves = moves
	return m
}

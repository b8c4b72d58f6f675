package searcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gomoku/game"
	"gomoku/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Option func(mcts *MCTS)

// ChildStats are the raw statistics of one root child, for callers choosing
// a move by visit counts.
type ChildStats struct {
	Action int
	Visits int
	Q      float64
	Prior  float64
}

// MCTS runs PUCT-guided simulations from a root position and keeps the tree
// across real moves.
type MCTS struct {
	mu          sync.Mutex // Guards tree during a search
	cfg         Config
	evaluator   Evaluator
	tree        *Tree
	board       *game.Board // Position at the root
	virtualLoss int
	metrics     metrics.Collector
}

func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.cfg.Goroutines = goroutines
		}
	}
}

func WithSimulations(simulations int) Option {
	return func(m *MCTS) {
		if simulations > 0 {
			m.cfg.NumSimulations = simulations
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		if duration > 0 {
			m.cfg.Duration = duration
		}
	}
}

func WithVirtualLoss(loss int) Option {
	return func(m *MCTS) {
		if loss >= 0 {
			m.cfg.VirtualLoss = loss
		}
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

// NewMCTS returns a searcher positioned on an empty board with Black to move.
func NewMCTS(cfg Config, evaluator Evaluator, options ...Option) (*MCTS, error) {
	m := &MCTS{ // Default values
		cfg:       cfg,
		evaluator: evaluator,
		metrics:   metrics.NewDummyCollector(),
	}
	if m.cfg.WinningRunLength == 0 {
		m.cfg.WinningRunLength = game.DefaultRunLength
	}
	for _, option := range options {
		option(m)
	}
	if m.cfg.Goroutines == 0 {
		m.cfg.Goroutines = 1
	}
	if err := m.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("invalid search config: no evaluator")
	}
	if m.cfg.Goroutines > 1 {
		m.virtualLoss = m.cfg.VirtualLoss
	}

	m.Reset(game.NewBoard(m.cfg.BoardSize), game.Black)
	return m, nil
}

func (m *MCTS) Config() Config {
	return m.cfg
}

// Reset discards the tree and searches board with player to move from now on.
func (m *MCTS) Reset(board *game.Board, player int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.board = board.Clone()
	m.tree = NewTree(player, board.Size*board.Size)
	m.metrics.SetTreeReset(true)
}

// Board returns a copy of the root position.
func (m *MCTS) Board() *game.Board {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.board.Clone()
}

// Player returns the player to move at the root.
func (m *MCTS) Player() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.tree.Player(m.tree.Root())
}

// Tree exposes the search tree. It must not be used while Search runs.
func (m *MCTS) Tree() *Tree {
	return m.tree
}

// Search runs the configured number of simulations from the root, or until
// the configured duration elapses. Cancellation of ctx is honoured between
// simulations; a canceled search is not an error. The first evaluator or
// expansion failure aborts the search and is returned.
func (m *MCTS) Search(ctx context.Context) (metrics.SearchMetric, error) {
	if m.board.IsFull() {
		return metrics.SearchMetric{}, ErrTerminalRoot
	}

	parent := ctx
	if m.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Duration)
		defer cancel()
	}

	m.metrics.Start(m.cfg.Goroutines, m.cfg.NumSimulations)
	var err error
	if m.cfg.Goroutines > 1 {
		err = m.iterateParallel(ctx)
	} else {
		err = m.iterate(ctx)
	}
	if parent.Err() != nil {
		m.metrics.SetCanceled()
	}
	metric := m.metrics.Complete()

	log.Debug().
		Int("simulations", metric.Simulations).
		Int("nodes", m.tree.Len()).
		Dur("duration", metric.Duration).
		Msg("search-complete")

	return metric, err
}

// within reports whether the i-th simulation (0-based) fits the budget.
// Without a simulation budget only the deadline stops the search.
func (m *MCTS) within(i int) bool {
	return m.cfg.NumSimulations <= 0 || i < m.cfg.NumSimulations
}

func (m *MCTS) iterate(ctx context.Context) error {
	for i := 0; m.within(i); i++ {
		if ctx.Err() != nil {
			return nil
		}
		if err := m.simulate(ctx); err != nil {
			return err
		}
		m.metrics.AddSimulation()
	}
	return nil
}

func (m *MCTS) iterateParallel(ctx context.Context) error {
	var started atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < m.cfg.Goroutines; i++ {
		g.Go(func() error {
			for {
				if gctx.Err() != nil {
					return nil
				}
				if !m.within(int(started.Add(1) - 1)) {
					return nil
				}
				if err := m.simulate(ctx); err != nil {
					return err
				}
				m.metrics.AddSimulation()
			}
		})
	}

	return g.Wait()
}

type outcome int

const (
	expandable outcome = iota
	won
	drawn
)

func (m *MCTS) simulate(ctx context.Context) error {
	board := m.board.Clone()

	m.mu.Lock()
	path, player, result, err := m.selects(board)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	var value float64 // For the player who moved into the leaf
	var eval Evaluation
	switch result {
	case won:
		value = Win
		m.metrics.AddTerminal()
	case drawn:
		value = Draw
		m.metrics.AddTerminal()
	case expandable:
		// The evaluator may outlive a cancellation: the simulation in flight is
		// always completed so that the tree stays consistent.
		eval, err = m.evaluator.Evaluate(context.WithoutCancel(ctx), board, player)
		if err != nil {
			m.revert(path)
			return fmt.Errorf("failed to evaluate leaf: %w", err)
		}
		m.metrics.AddEvaluation()
		if len(eval.Actions) == 0 {
			m.revert(path)
			return fmt.Errorf("%w: %d empty cells left", ErrEmptyExpansion, len(board.EmptyActions()))
		}
		value = -eval.Value
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	leaf := path[len(path)-1]
	// Another goroutine may have expanded the leaf while this one evaluated it
	if result == expandable && m.tree.IsLeaf(leaf) {
		if err := m.tree.Expand(leaf, eval.Actions, eval.Priors); err != nil {
			m.undoVirtualLoss(path)
			return err
		}
	}
	m.backup(path, value)
	return nil
}

// selects walks from the root to a leaf, playing each selected action on
// board and checking it with the oracle right away. It returns the visited
// path, the player to move at its last node and how that position stands.
func (m *MCTS) selects(board *game.Board) ([]NodeID, int, outcome, error) {
	t := m.tree
	id := t.Root()
	path := []NodeID{id}
	t.addVirtualLoss(id, m.virtualLoss)

	for !t.IsLeaf(id) {
		i := SelectChild(t, id, m.cfg.CPuct)
		mover := t.nodes[id].player
		action := t.nodes[id].actions[i]
		id = t.nodes[id].children[i]
		path = append(path, id)
		t.addVirtualLoss(id, m.virtualLoss)

		if err := board.Play(action, mover); err != nil {
			m.undoVirtualLoss(path)
			return nil, 0, expandable, fmt.Errorf("%w: tree holds illegal action %d: %w", ErrInvalidExpansion, action, err)
		}
		if board.IsWinningMove(action, mover, m.cfg.WinningRunLength) {
			return path, t.nodes[id].player, won, nil
		}
	}

	if board.IsFull() {
		return path, t.nodes[id].player, drawn, nil
	}
	return path, t.nodes[id].player, expandable, nil
}

// backup walks the path from the leaf to the root, folding value into each
// node from the perspective of the player who moved into it.
func (m *MCTS) backup(path []NodeID, value float64) {
	for i := len(path) - 1; i >= 0; i-- {
		id := path[i]
		m.tree.removeVirtualLoss(id, m.virtualLoss)
		m.tree.UpdateValue(id, value)
		m.tree.IncrementVisits(id)
		value = -value
	}
}

func (m *MCTS) revert(path []NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.undoVirtualLoss(path)
}

func (m *MCTS) undoVirtualLoss(path []NodeID) {
	for _, id := range path {
		m.tree.removeVirtualLoss(id, m.virtualLoss)
	}
}

// Visits returns the statistics of every root child in expansion order.
func (m *MCTS) Visits() []ChildStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.tree
	root := t.nodes[t.Root()]
	stats := make([]ChildStats, len(root.children))
	for i, id := range root.children {
		stats[i] = ChildStats{
			Action: root.actions[i],
			Visits: t.nodes[id].visits,
			Q:      t.nodes[id].q,
			Prior:  t.nodes[id].prior,
		}
	}
	return stats
}

// BestAction returns the action of the most visited root child, the first
// one on ties.
func (m *MCTS) BestAction() (int, error) {
	stats := m.Visits()
	if len(stats) == 0 {
		return 0, fmt.Errorf("%w: root has not been searched", ErrSelectionOnLeaf)
	}

	best := 0
	for i, s := range stats[1:] {
		if s.Visits > stats[best].Visits {
			best = i + 1
		}
	}
	return stats[best].Action, nil
}

// Commit plays action for the player to move at the root. The matching child
// becomes the new root, keeping its subtree; the rest of the tree is
// released. An action never expanded starts a fresh tree.
func (m *MCTS) Commit(action int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.tree
	mover := t.Player(t.Root())
	if err := m.board.Play(action, mover); err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownAction, err)
	}

	child, ok := t.Child(t.Root(), action)
	if !ok {
		log.Debug().Int("action", action).Msg("action not in tree, resetting")
		m.tree = NewTree(game.Opponent(mover), t.NumActions())
		m.metrics.SetTreeReset(true)
		return nil
	}

	t.Detach(child)
	m.metrics.SetTreeReset(false)
	log.Debug().Int("action", action).Int("nodes", t.Len()).Msg("reusing subtree")
	return nil
}

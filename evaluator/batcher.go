package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gomoku/game"
	"gomoku/searcher"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("evaluator closed")

// Request is one position to evaluate. ID ties the answer to the request.
type Request struct {
	ID     string      `json:"id"`
	Board  *game.Board `json:"board"`
	Player int         `json:"player"`
}

// Response answers the Request with the same ID.
type Response struct {
	ID string `json:"id"`
	searcher.Evaluation
}

// BatchFunc evaluates requests together and answers them in order.
type BatchFunc func(ctx context.Context, requests []Request) ([]Response, error)

// Sequential turns an Evaluator into a BatchFunc that answers one request
// after the other.
func Sequential(e searcher.Evaluator) BatchFunc {
	return func(ctx context.Context, requests []Request) ([]Response, error) {
		responses := make([]Response, len(requests))
		for i, req := range requests {
			eval, err := e.Evaluate(ctx, req.Board, req.Player)
			if err != nil {
				return nil, fmt.Errorf("request %s: %w", req.ID, err)
			}
			responses[i] = Response{ID: req.ID, Evaluation: eval}
		}
		return responses, nil
	}
}

type result struct {
	eval searcher.Evaluation
	err  error
}

type pending struct {
	Request
	reply chan result
}

// Batcher queues evaluations from concurrent searchers and hands them to a
// BatchFunc in groups of up to size, or whatever arrived within wait of the
// first queued request.
type Batcher struct {
	batch    BatchFunc
	size     int
	wait     time.Duration
	requests chan pending
	done     chan struct{}
	stopped  chan struct{}
	closing  sync.Once
}

func NewBatcher(batch BatchFunc, size int, wait time.Duration) *Batcher {
	if size <= 0 {
		size = 1
	}
	b := &Batcher{
		batch:    batch,
		size:     size,
		wait:     wait,
		requests: make(chan pending, size),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Batcher) Evaluate(ctx context.Context, board *game.Board, player int) (searcher.Evaluation, error) {
	p := pending{
		Request: Request{ID: uuid.NewString(), Board: board.Clone(), Player: player},
		reply:   make(chan result, 1),
	}

	select {
	case b.requests <- p:
	case <-b.done:
		return searcher.Evaluation{}, ErrClosed
	case <-ctx.Done():
		return searcher.Evaluation{}, ctx.Err()
	}

	select {
	case r := <-p.reply:
		return r.eval, r.err
	case <-b.stopped:
		select {
		case r := <-p.reply:
			return r.eval, r.err
		default:
			return searcher.Evaluation{}, ErrClosed
		}
	case <-ctx.Done():
		return searcher.Evaluation{}, ctx.Err()
	}
}

// Close stops the batcher after the batch in progress. Requests still queued
// fail with ErrClosed.
func (b *Batcher) Close() {
	b.closing.Do(func() { close(b.done) })
	<-b.stopped
}

func (b *Batcher) run() {
	defer close(b.stopped)
	defer b.drain()

	for {
		var batch []pending
		select {
		case p := <-b.requests:
			batch = append(batch, p)
		case <-b.done:
			return
		}

		timer := time.NewTimer(b.wait)
	collect:
		for len(batch) < b.size {
			select {
			case p := <-b.requests:
				batch = append(batch, p)
			case <-timer.C:
				break collect
			case <-b.done:
				break collect
			}
		}
		timer.Stop()

		b.flush(batch)
	}
}

func (b *Batcher) flush(batch []pending) {
	requests := make([]Request, len(batch))
	for i, p := range batch {
		requests[i] = p.Request
	}

	responses, err := b.batch(context.Background(), requests)
	if err == nil && len(responses) != len(batch) {
		err = fmt.Errorf("batch of %d requests got %d responses", len(batch), len(responses))
	}
	if err != nil {
		log.Error().Err(err).Int("size", len(batch)).Msg("batch-failed")
	}

	for i, p := range batch {
		switch {
		case err != nil:
			p.reply <- result{err: err}
		case responses[i].ID != p.ID:
			p.reply <- result{err: fmt.Errorf("response %s does not answer request %s", responses[i].ID, p.ID)}
		default:
			p.reply <- result{eval: responses[i].Evaluation}
		}
	}
	log.Trace().Int("size", len(batch)).Msg("batch-complete")
}

func (b *Batcher) drain() {
	for {
		select {
		case p := <-b.requests:
			p.reply <- result{err: ErrClosed}
		default:
			return
		}
	}
}

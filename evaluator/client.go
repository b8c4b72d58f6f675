package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gomoku/game"
	"gomoku/searcher"

	"github.com/google/uuid"
)

// Client evaluates positions on a remote server mounted with NewHandler.
type Client struct {
	serverURL string
	http      *http.Client
}

// NewClient initializes and returns a new Client.
func NewClient(serverURL string, timeout time.Duration) *Client {
	return &Client{
		serverURL: serverURL,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) Evaluate(ctx context.Context, board *game.Board, player int) (searcher.Evaluation, error) {
	req := Request{ID: uuid.NewString(), Board: board, Player: player}
	var resp Response
	if err := c.post(ctx, "/evaluate", req, &resp); err != nil {
		return searcher.Evaluation{}, err
	}
	if resp.ID != req.ID {
		return searcher.Evaluation{}, fmt.Errorf("response %s does not answer request %s", resp.ID, req.ID)
	}
	return resp.Evaluation, nil
}

// Batch evaluates requests in one round trip. It is a BatchFunc.
func (c *Client) Batch(ctx context.Context, requests []Request) ([]Response, error) {
	var responses []Response
	if err := c.post(ctx, "/evaluate/batch", requests, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach evaluator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("evaluator answered %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gomoku/game"
	"gomoku/metrics"
)

var ErrNoInput = errors.New("console input closed")

// Console is a line based terminal shared by every human agent of a match,
// so that buffered input is never split between two readers.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{scanner: bufio.NewScanner(in), out: out}
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// readLine returns the next input line without surrounding spaces.
func (c *Console) readLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrNoInput, err)
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(c.scanner.Text()), nil
}

type humanAgent struct {
	console *Console
	board   *game.Board
	player  int // To move on board
}

// NewHumanAgent returns an agent asking the console for every move, written
// as "x y" (row then column). Invalid or occupied cells are asked again.
func NewHumanAgent(console *Console) Agent {
	return &humanAgent{console: console}
}

func (a *humanAgent) FindMove(ctx context.Context) (int, metrics.SearchMetric, error) {
	if a.board == nil {
		return 0, metrics.SearchMetric{}, fmt.Errorf("human agent has no position, reset it first")
	}

	a.console.Printf("\n%s", a.board)
	for {
		if err := ctx.Err(); err != nil {
			return 0, metrics.SearchMetric{}, err
		}
		a.console.Printf("%s to move (x y): ", symbol(a.player))

		line, err := a.console.readLine()
		if err != nil {
			return 0, metrics.SearchMetric{}, err
		}
		action, err := a.parse(line)
		if err != nil {
			a.console.Printf("%v\n", err)
			continue
		}
		return action, metrics.SearchMetric{}, nil
	}
}

func (a *humanAgent) parse(line string) (int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, fmt.Errorf("expected two numbers, got %q", line)
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("invalid row %q", fields[0])
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("invalid column %q", fields[1])
	}
	if !a.board.InBounds(x, y) {
		return 0, fmt.Errorf("(%d, %d): %w", x, y, game.ErrOutOfBounds)
	}
	if a.board.At(x, y) != game.Empty {
		return 0, fmt.Errorf("(%d, %d): %w", x, y, game.ErrOccupied)
	}
	return game.ToAction(x, y, a.board.Size), nil
}

func (a *humanAgent) Commit(action int) error {
	if err := a.board.Play(action, a.player); err != nil {
		return err
	}
	a.player = game.Opponent(a.player)
	return nil
}

func (a *humanAgent) Reset(board *game.Board, player int) {
	a.board = board.Clone()
	a.player = player
}

func symbol(player int) string {
	if player == game.Black {
		return "X"
	}
	return "O"
}

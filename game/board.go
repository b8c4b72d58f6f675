package game

import (
	"fmt"
	"strings"
)

// Board is a square gomoku grid of cell owners. Cells[x][y] is the owner of
// row x, column y.
type Board struct {
	Size  int     `json:"size"`
	Cells [][]int `json:"cells"`
}

// NewBoard returns an empty board of the given size.
func NewBoard(size int) *Board {
	b := &Board{Size: size}
	b.Reset()
	return b
}

// Reset clears every cell.
func (b *Board) Reset() {
	b.Cells = make([][]int, b.Size)
	for x := range b.Cells {
		b.Cells[x] = make([]int, b.Size)
	}
}

func (b *Board) Clone() *Board {
	clone := &Board{Size: b.Size, Cells: make([][]int, b.Size)}
	for x := range b.Cells {
		clone.Cells[x] = make([]int, b.Size)
		copy(clone.Cells[x], b.Cells[x])
	}
	return clone
}

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Size && y < b.Size
}

func (b *Board) At(x, y int) int {
	return b.Cells[x][y]
}

// Place puts a stone of player on (x, y).
func (b *Board) Place(x, y, player int) error {
	if !b.InBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) on a %dx%d board", ErrOutOfBounds, x, y, b.Size, b.Size)
	}
	if b.Cells[x][y] != Empty {
		return fmt.Errorf("%w: (%d, %d) owned by player %d", ErrOccupied, x, y, b.Cells[x][y])
	}
	b.Cells[x][y] = player
	return nil
}

// Play places a stone of player on the cell addressed by action.
func (b *Board) Play(action, player int) error {
	if action < 0 || action >= b.Size*b.Size {
		return fmt.Errorf("%w: action %d", ErrOutOfBounds, action)
	}
	x, y := ToLoc(action, b.Size)
	return b.Place(x, y, player)
}

// EmptyActions lists the action indices of all empty cells in ascending order.
func (b *Board) EmptyActions() []int {
	actions := make([]int, 0, b.Size*b.Size)
	for x := 0; x < b.Size; x++ {
		for y := 0; y < b.Size; y++ {
			if b.Cells[x][y] == Empty {
				actions = append(actions, ToAction(x, y, b.Size))
			}
		}
	}
	return actions
}

func (b *Board) IsFull() bool {
	for x := range b.Cells {
		for _, owner := range b.Cells[x] {
			if owner == Empty {
				return false
			}
		}
	}
	return true
}

// IsWinningMove reports whether the stone on the cell addressed by action
// completes a run of runLength for player.
func (b *Board) IsWinningMove(action, player, runLength int) bool {
	x, y := ToLoc(action, b.Size)
	return IsWinningRun(x, y, b.Cells, b.Size, player, runLength)
}

// String renders the board one row per line: '.' empty, 'X' black, 'O' white.
func (b *Board) String() string {
	var sb strings.Builder
	for x := 0; x < b.Size; x++ {
		for y := 0; y < b.Size; y++ {
			switch b.Cells[x][y] {
			case Black:
				sb.WriteByte('X')
			case White:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

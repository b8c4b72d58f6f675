package game

import "errors"

// Cell owners. Players alternate strictly between Black and White.
const (
	Empty = 0
	Black = 1
	White = 2
)

// Number of stones in a row needed to win a standard game of gomoku
const DefaultRunLength = 5

var (
	ErrOutOfBounds = errors.New("cell is outside the board")
	ErrOccupied    = errors.New("cell is already occupied")
)

// Opponent returns the id of the player who moves after player.
func Opponent(player int) int {
	if player == Black {
		return White
	}
	return Black
}

// ToLoc converts an action index into board coordinates (row, column).
func ToLoc(action, size int) (x, y int) {
	return action / size, action % size
}

// ToAction converts board coordinates (row, column) into an action index.
func ToAction(x, y, size int) int {
	return x*size + y
}

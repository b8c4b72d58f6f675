package game

// IsWinningMove reports whether the stone player just placed on (x, y)
// completes five in a row in any direction.
func IsWinningMove(x, y int, cells [][]int, size, player int) bool {
	return IsWinningRun(x, y, cells, size, player, DefaultRunLength)
}

// IsWinningRun reports whether the stone player just placed on (x, y) is part
// of runLength consecutive stones of that player. Only the window of
// runLength-1 cells on either side of (x, y) is scanned, clipped to the board.
// The board is not modified. Empty cells never form a run.
func IsWinningRun(x, y int, cells [][]int, size, player, runLength int) bool {
	if player == Empty || runLength <= 0 || x < 0 || y < 0 || x >= size || y >= size {
		return false
	}

	// Directions: vertical, horizontal, main diagonal, anti diagonal
	directions := [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
	for _, d := range directions {
		lo := -(runLength - 1)
		hi := runLength - 1
		// Clip the window so that every scanned cell is on the board
		lo = max(lo, stepLimit(x, d[0], size, -1), stepLimit(y, d[1], size, -1))
		hi = min(hi, stepLimit(x, d[0], size, 1), stepLimit(y, d[1], size, 1))

		counter := 0
		for i := lo; i <= hi; i++ {
			if cells[x+i*d[0]][y+i*d[1]] == player {
				counter++
				if counter == runLength {
					return true
				}
			} else {
				counter = 0
			}
		}
	}
	return false
}

// stepLimit returns the furthest step count i, in the given sign, such that
// pos + i*delta stays within [0, size).
func stepLimit(pos, delta, size, sign int) int {
	switch delta * sign {
	case 0:
		// The coordinate does not move along this direction
		if sign < 0 {
			return -size
		}
		return size
	case 1:
		// Moving up towards size-1
		return sign * (size - 1 - pos)
	default:
		// Moving down towards 0
		return sign * pos
	}
}

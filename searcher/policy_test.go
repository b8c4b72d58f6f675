package searcher

import (
	"math"
	"testing"

	"gomoku/game"

	"github.com/stretchr/testify/require"
)

func TestPUCT(t *testing.T) {
	got := puct(0.25, 0.4, 16, 3, 1.5)
	expected := 0.25 + 1.5*0.4*math.Sqrt(16)/4
	require.InDelta(t, expected, got, 1e-12, "Should compute Q + c*P*sqrt(N)/(1+n)")
}

func TestSelectChild(t *testing.T) {
	t.Run("panics on a leaf", func(t *testing.T) {
		tree := NewTree(game.Black, 9)
		require.PanicsWithValue(t, ErrSelectionOnLeaf, func() {
			SelectChild(tree, tree.Root(), 1.0)
		})
	})

	t.Run("ties keep the first child", func(t *testing.T) {
		tree := NewTree(game.Black, 9)
		require.NoError(t, tree.Expand(tree.Root(), []int{5, 6, 7}, []float64{0.3, 0.3, 0.3}))
		tree.IncrementVisits(tree.Root())

		require.Equal(t, 0, SelectChild(tree, tree.Root(), 1.0))
	})

	t.Run("unvisited parent scores by Q only", func(t *testing.T) {
		tree := NewTree(game.Black, 9)
		require.NoError(t, tree.Expand(tree.Root(), []int{0, 1, 2}, []float64{0.1, 0.2, 0.7}))

		require.Equal(t, 0, SelectChild(tree, tree.Root(), 1.0), "All scores are 0 without parent visits")
	})

	t.Run("prior drives exploration", func(t *testing.T) {
		tree := NewTree(game.Black, 9)
		require.NoError(t, tree.Expand(tree.Root(), []int{0, 1, 2}, []float64{0.2, 0.5, 0.3}))
		tree.IncrementVisits(tree.Root())

		require.Equal(t, 1, SelectChild(tree, tree.Root(), 1.0))
	})

	t.Run("value beats exploration", func(t *testing.T) {
		tree := NewTree(game.Black, 9)
		require.NoError(t, tree.Expand(tree.Root(), []int{0, 1}, []float64{0.9, 0.1}))
		children := tree.Children(tree.Root())
		backupPath(tree, []NodeID{tree.Root(), children[0]}, Loss)
		backupPath(tree, []NodeID{tree.Root(), children[1]}, Win)

		// child 0: -1 + 0.9*sqrt(2)/2, child 1: 1 + 0.1*sqrt(2)/2
		require.Equal(t, 1, SelectChild(tree, tree.Root(), 1.0))
	})

	t.Run("virtual loss steers away", func(t *testing.T) {
		tree := NewTree(game.Black, 9)
		require.NoError(t, tree.Expand(tree.Root(), []int{0, 1}, []float64{0.5, 0.5}))
		tree.IncrementVisits(tree.Root())
		require.Equal(t, 0, SelectChild(tree, tree.Root(), 1.0))

		tree.addVirtualLoss(tree.Root(), 1)
		tree.addVirtualLoss(tree.Children(tree.Root())[0], 1)
		require.Equal(t, 1, SelectChild(tree, tree.Root(), 1.0))

		tree.removeVirtualLoss(tree.Root(), 1)
		tree.removeVirtualLoss(tree.Children(tree.Root())[0], 1)
		require.Equal(t, 0, SelectChild(tree, tree.Root(), 1.0))
	})
}

package searcher

import (
	"fmt"

	"gomoku/game"
)

// NodeID addresses a node inside its Tree. IDs are stable until Detach
// renumbers the kept subtree.
type NodeID int32

// NoNode is the parent of the root.
const NoNode NodeID = -1

type node struct {
	parent   NodeID
	player   int // Player to move at this node
	prior    float64
	q        float64 // Mean value for the player who moved into this node
	visits   int
	virtual  int // Pending virtual losses
	actions  []int
	children []NodeID
}

// Tree is an arena of search nodes. Each node owns its children through the
// arena, and refers to its parent by index, so dropping a subtree never walks
// pointers. A Tree is not safe for concurrent use.
type Tree struct {
	nodes      []node
	root       NodeID
	numActions int
}

// NewTree returns a tree holding only a root for player to move.
func NewTree(player, numActions int) *Tree {
	t := &Tree{numActions: numActions}
	t.root = t.add(NoNode, 1, player)
	return t
}

func (t *Tree) add(parent NodeID, prior float64, player int) NodeID {
	t.nodes = append(t.nodes, node{
		parent: parent,
		player: player,
		prior:  prior,
	})
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) NumActions() int {
	return t.numActions
}

func (t *Tree) IsLeaf(id NodeID) bool {
	return len(t.nodes[id].children) == 0
}

func (t *Tree) Visits(id NodeID) int {
	return t.nodes[id].visits
}

func (t *Tree) Q(id NodeID) float64 {
	return t.nodes[id].q
}

func (t *Tree) Prior(id NodeID) float64 {
	return t.nodes[id].prior
}

func (t *Tree) Player(id NodeID) int {
	return t.nodes[id].player
}

func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns a copy of the children of id in expansion order.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.nodes[id].children...)
}

// Actions returns a copy of the actions leading to the children of id.
func (t *Tree) Actions(id NodeID) []int {
	return append([]int(nil), t.nodes[id].actions...)
}

// Child finds the child of id reached by action.
func (t *Tree) Child(id NodeID, action int) (NodeID, bool) {
	for i, a := range t.nodes[id].actions {
		if a == action {
			return t.nodes[id].children[i], true
		}
	}
	return NoNode, false
}

// Expand creates one child per (action, prior) pair, in order. Children
// belong to the opponent of the player to move at id. A node is expanded at
// most once.
func (t *Tree) Expand(id NodeID, actions []int, priors []float64) error {
	if !t.IsLeaf(id) {
		return fmt.Errorf("%w: node %d already has %d children", ErrInvalidExpansion, id, len(t.nodes[id].children))
	}
	if len(actions) != len(priors) {
		return fmt.Errorf("%w: %d actions but %d priors", ErrInvalidExpansion, len(actions), len(priors))
	}
	if len(actions) > t.numActions {
		return fmt.Errorf("%w: %d actions exceed the action space of %d", ErrInvalidExpansion, len(actions), t.numActions)
	}

	next := game.Opponent(t.nodes[id].player)
	children := make([]NodeID, 0, len(actions))
	for i := range actions {
		children = append(children, t.add(id, priors[i], next))
	}
	// t.add may have moved the arena, index again
	t.nodes[id].actions = append(make([]int, 0, len(actions)), actions...)
	t.nodes[id].children = children
	return nil
}

// UpdateValue folds v into the running mean of id. It reads the visit count
// before IncrementVisits is applied for the same backup.
func (t *Tree) UpdateValue(id NodeID, v float64) {
	n := &t.nodes[id]
	n.q = (n.q*float64(n.visits) + v) / float64(1+n.visits)
}

func (t *Tree) IncrementVisits(id NodeID) {
	t.nodes[id].visits++
}

func (t *Tree) addVirtualLoss(id NodeID, loss int) {
	t.nodes[id].virtual += loss
}

func (t *Tree) removeVirtualLoss(id NodeID, loss int) {
	t.nodes[id].virtual -= loss
}

// Detach makes id the root of the tree and clears its parent reference. Every
// node outside the subtree of id, including its former siblings, is released.
// Statistics and children of the kept nodes are unchanged; node IDs are
// renumbered, with the new root at 0.
func (t *Tree) Detach(id NodeID) {
	if id == t.root {
		t.nodes[id].parent = NoNode
		return
	}

	var kept []node
	remap := make(map[NodeID]NodeID)

	// Breadth-first copy keeps parents ahead of their children
	queue := []NodeID{id}
	for len(queue) > 0 {
		old := queue[0]
		queue = queue[1:]

		remap[old] = NodeID(len(kept))
		n := t.nodes[old]
		n.children = append([]NodeID(nil), n.children...)
		n.actions = append([]int(nil), n.actions...)
		kept = append(kept, n)
		queue = append(queue, n.children...)
	}

	for i := range kept {
		if i == 0 {
			kept[i].parent = NoNode
		} else {
			kept[i].parent = remap[kept[i].parent]
		}
		for j, child := range kept[i].children {
			kept[i].children[j] = remap[child]
		}
	}

	t.nodes = kept
	t.root = 0
}

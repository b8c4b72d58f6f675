package searcher

import "math"

// puct scores a child for selection:
// Q + c_puct * P * sqrt(N_parent) / (1 + N)
func puct(q, prior float64, parentVisits, visits int, cPuct float64) float64 {
	return q + cPuct*prior*math.Sqrt(float64(parentVisits))/float64(1+visits)
}

// SelectChild returns the index, within the children of parent, of the child
// with the highest PUCT score. Ties keep the earliest child. Pending virtual
// losses count as lost visits. Calling it on a leaf is a logic error and
// panics with ErrSelectionOnLeaf.
func SelectChild(t *Tree, parent NodeID, cPuct float64) int {
	p := &t.nodes[parent]
	if len(p.children) == 0 {
		panic(ErrSelectionOnLeaf)
	}

	parentVisits := p.visits + p.virtual
	maxIndex := -1
	maxScore := math.Inf(-1)
	for i, id := range p.children {
		child := &t.nodes[id]
		visits := child.visits + child.virtual
		q := child.q
		if child.virtual > 0 {
			q = (child.q*float64(child.visits) + Loss*float64(child.virtual)) / float64(visits)
		}

		score := puct(q, child.prior, parentVisits, visits, cPuct)
		if score > maxScore {
			maxScore = score
			maxIndex = i
		}
	}
	if maxIndex < 0 {
		// Every score was NaN
		return 0
	}
	return maxIndex
}

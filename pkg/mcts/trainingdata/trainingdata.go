// Package trainingdata extracts the tree-derived view a training-data
// record needs from a searched node (spec.md §6): the byte-level record
// format itself lives outside this core's scope, so this package only
// produces the input the serializer consumes — per-child visit
// probabilities.
package trainingdata

import (
	"errors"
	"fmt"

	"github.com/Naphthalin/lc0/pkg/mcts"
)

// ErrInvalidVisitProbabilities is returned by VisitProbabilities when a
// node has more than one legal move but none of its children have been
// visited — an InvariantBreach (spec.md §7) the caller should treat as a
// reason to discard the sample rather than a programmer error.
var ErrInvalidVisitProbabilities = errors.New("trainingdata: total child visits is zero with more than one legal move")

// VisitProbabilities returns, for each of node's edges in order, the
// fraction of the node's total child visits that landed on that edge:
// p_i = n_i / sum(n_j). When the node has exactly one legal move the sole
// probability is always 1.0, even with zero visits (there was never a
// choice to record). Any other zero-visit-total case is an invariant
// breach.
func VisitProbabilities(node *mcts.Node) ([]float32, error) {
	numEdges := node.GetNumEdges()
	if numEdges == 0 {
		return nil, fmt.Errorf("trainingdata: node has no edges")
	}
	if numEdges == 1 {
		return []float32{1.0}, nil
	}

	visits := make([]int32, numEdges)
	var total int32
	it := node.Edges()
	for it.Next() {
		cur := it.Current()
		n := cur.GetN()
		visits[cur.Index()] = n
		total += n
	}
	if total == 0 {
		return nil, ErrInvalidVisitProbabilities
	}

	probs := make([]float32, numEdges)
	for i, n := range visits {
		probs[i] = float32(n) / float32(total)
	}
	return probs, nil
}

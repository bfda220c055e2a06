package mcts

import (
	"math"

	"github.com/Naphthalin/lc0/pkg/mcts/fastmath"
)

// SetPoliciesRENTS re-derives each child's stored policy as a blend of a
// Boltzmann-over-Q component and the raw prior (spec.md §4.8, the RENTS
// policy). Edges must already be sorted by descending prior (SortEdges);
// only edges whose prior clears a cutoff relative to the best prior and
// this node's own visit count participate, everything else gets policy 0.
func (n *Node) SetPoliciesRENTS(temp, lambda, cutoff, fpu float32) {
	if len(n.edges) == 0 {
		return
	}
	threshold := cutoff * n.edges[0].GetP() / float32(math.Sqrt(float64(n.GetN()+1)))

	qualifies := make([]bool, len(n.edges))
	values := make([]float32, len(n.edges))
	var total, policyTotal float32
	numQualifying := 0

	it := n.Edges()
	for it.Next() {
		cur := it.Current()
		p := cur.GetP()
		if p <= threshold {
			continue
		}
		i := cur.Index()
		qualifies[i] = true
		numQualifying++

		qChild := cur.GetQBetamcts(fpu)
		val := fastmath.FastExp((qChild - (-n.qBetamcts)) / temp)
		values[i] = val
		total += val
		policyTotal += p
	}

	effectiveLambda := lambda
	if policyTotal == 0 {
		effectiveLambda = 0
	}

	for i := range n.edges {
		if !qualifies[i] {
			n.edges[i].SetPolicy(0)
			continue
		}
		if total == 0 && policyTotal == 0 {
			n.edges[i].SetPolicy(1 / float32(numQualifying))
			continue
		}
		var fromQ, fromPrior float32
		if total > 0 {
			fromQ = values[i] / total
		}
		if policyTotal > 0 {
			fromPrior = n.edges[i].GetP() / policyTotal
		}
		n.edges[i].SetPolicy(fromQ*(1-effectiveLambda) + fromPrior*effectiveLambda)
	}
}

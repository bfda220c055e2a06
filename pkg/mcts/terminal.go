package mcts

import "sync/atomic"

// toScore converts a proved result (side-to-move's perspective) into the
// win/draw scalar pair a node stores: wl in [-1,1], d the probability mass
// on draw (spec.md §3, invariant 6).
func (r GameResult) toScore() (wl, d float32) {
	switch r {
	case Draw:
		return 0, 1
	default:
		return float32(r), 0
	}
}

// MakeTerminal proves this node's outcome (spec.md §4.9). For anything but
// a TwoFold repetition bound it sets lower == upper == result and seeds
// wl/d/q_betamcts from it; a losing terminal clears its own edge's prior,
// since a proven loss should never again attract policy-driven selection.
// When inflateTerminals is set, the node's effective visit mass is
// inflated and the edge's own relevance is dampened, so the certainty of
// a proven subtree propagates through beta-weighted rebackup quickly
// without one terminal child dominating its siblings outright.
func (n *Node) MakeTerminal(result GameResult, pliesLeft float32, typ Terminal, inflateTerminals bool) {
	n.terminalType = typ
	if typ != TwoFold {
		n.lowerBound = result
		n.upperBound = result
	}
	n.m = pliesLeft

	wl, d := result.toScore()
	n.wl = wl
	n.d = d
	n.qBetamcts = wl

	if result == BlackWon && n.parent != nil {
		n.GetOwnEdge().SetP(0)
	}

	if inflateTerminals {
		n.nBetamcts = 10
		if n.parent != nil {
			n.rBetamcts = 0.1
		}
	}
}

// MakeNotTerminal retracts a previously proved bound (spec.md §4.9): clears
// the terminal type, then re-aggregates wl and d over the node's own prior
// terminal score (weighted as one visit) plus every visited child's score,
// opponent-flipped and weighted by child n (node.cc: n_ = 1, then
// n_ += child.GetN() per child; wl_ accumulates onto its existing value the
// same way). n ends up 1 + sum(child n), not just 1, so a resumed subtree's
// visit count stays consistent with what its children actually recorded.
// q_betamcts is deliberately left untouched; the source this core follows
// carries the same gap (see DESIGN.md).
func (n *Node) MakeNotTerminal() {
	if n.terminalType == NonTerminal {
		panic("mcts: MakeNotTerminal called on a non-terminal node")
	}
	n.terminalType = NonTerminal
	n.lowerBound = BlackWon
	n.upperBound = WhiteWon

	if n.edges == nil {
		atomic.StoreInt32(&n.n, 0)
		n.invalidateBestChildCache()
		return
	}

	total := int32(1)
	wlSum, dSum := n.wl, n.d
	it := n.Edges()
	for it.Next() {
		c := it.Current().Node()
		if c == nil || c.GetN() == 0 {
			continue
		}
		childN := float32(c.GetN())
		wlSum += -c.GetWL() * childN
		dSum += c.GetD() * childN
		total += c.GetN()
	}
	n.wl = wlSum / float32(total)
	n.d = dSum / float32(total)
	atomic.StoreInt32(&n.n, total)
	n.invalidateBestChildCache()
}

package mcts

import "sync/atomic"

// TryStartScoreUpdate claims a visit for backup (spec.md §4.5, step 1). It
// fails only when this would be the node's first completed visit and
// another goroutine already has one in flight: the first finalized visit
// seeds wl/d/m, so two goroutines racing to seed it would corrupt the
// running mean. Every subsequent visit (n > 0) can always be claimed,
// since FinalizeScoreUpdate's incremental mean update is well defined
// regardless of how many visits are already in flight.
func (n *Node) TryStartScoreUpdate() bool {
	for {
		if atomic.LoadInt32(&n.n) == 0 {
			inFlight := atomic.LoadInt32(&n.nInFlight)
			if inFlight > 0 {
				return false
			}
			if atomic.CompareAndSwapInt32(&n.nInFlight, inFlight, inFlight+1) {
				return true
			}
			continue
		}
		atomic.AddInt32(&n.nInFlight, 1)
		return true
	}
}

// CancelScoreUpdate releases claimed-but-unfinalized visits, used on
// collisions and cancelled rollouts (spec.md §4.5, step 2).
func (n *Node) CancelScoreUpdate(multivisit int32) {
	atomic.AddInt32(&n.nInFlight, -multivisit)
	n.invalidateBestChildCache()
}

// FinalizeScoreUpdate folds (v, d, m) into this node's running means and
// beta-weighted statistics, converting multivisit in-flight visits into
// completed ones (spec.md §4.5, step 3). inflateTerminals inflates a
// terminal node's effective visit mass so its certainty propagates faster
// through the beta-weighted rebackup; fullBetaUpdate additionally runs a
// full RecalculateScoreBetamcts pass from this node's children once the
// node itself is updated.
func (n *Node) FinalizeScoreUpdate(v, d, m float32, multivisit, effectiveMultivisit int32, inflateTerminals, fullBetaUpdate bool) {
	oldN := atomic.LoadInt32(&n.n)
	firstVisit := oldN == 0

	if n.IsTerminal() && inflateTerminals {
		n.nBetamcts += float32(10 * multivisit)
	} else {
		n.nBetamcts += float32(multivisit)
	}

	newN := oldN + multivisit
	n.wl += float32(multivisit) * (v - n.wl) / float32(newN)
	n.d += float32(multivisit) * (d - n.d) / float32(newN)
	n.m += float32(multivisit) * (m - n.m) / float32(newN)

	if effectiveMultivisit != 0 {
		// The vanilla visit count n, not n_betamcts, is the divisor here
		// (spec.md §4.5; node.cc's q_betamcts_ update divides by n_ +
		// multivisit_eff) — n_betamcts can already be far larger than n
		// (e.g. an inflated terminal), which would otherwise understate
		// how much this single update should move q_betamcts.
		n.qBetamcts += float32(effectiveMultivisit) * (v - n.qBetamcts) / (float32(oldN) + float32(effectiveMultivisit))
		n.nBetamcts += float32(effectiveMultivisit)
	}

	if firstVisit {
		if n.parent != nil {
			n.parent.visitedPolicy += n.GetOwnEdge().GetP()
		}
		n.qBetamcts = v
		n.nBetamcts = float32(multivisit)
	}

	atomic.StoreInt32(&n.n, newN)
	atomic.AddInt32(&n.nInFlight, -multivisit)

	if fullBetaUpdate && n.edges != nil {
		n.RecalculateScoreBetamcts(DefaultRelevanceTrust, DefaultRelevancePrior)
	}
	n.invalidateBestChildCache()
}

// AdjustForTerminal folds a post-hoc terminal score into means that were
// already finalized against a provisional (non-terminal) score, without
// touching n: the visit was already counted when it was first backed up,
// so this only corrects wl/d/m (spec.md §4.9).
func (n *Node) AdjustForTerminal(v, d, m float32, multivisit int32) {
	total := atomic.LoadInt32(&n.n)
	if total == 0 {
		return
	}
	n.wl += float32(multivisit) * v / float32(total)
	n.d += float32(multivisit) * d / float32(total)
	n.m += float32(multivisit) * m / float32(total)
}

// RevertTerminalVisits undoes multivisit visits backed up with score
// (v, d, m), used when a node's terminal status is later retracted
// (spec.md §4.9, MakeNotTerminal). Dropping to zero or fewer visits resets
// the node to its first-visit defaults outright, including reducing the
// parent's visited_policy by this edge's prior; otherwise it inverse-
// updates the means and re-derives q_betamcts/n_betamcts/r_betamcts from
// whatever children remain.
func (n *Node) RevertTerminalVisits(v, d, m float32, multivisit int32) {
	newN := atomic.LoadInt32(&n.n) - multivisit
	if newN <= 0 {
		if n.parent != nil {
			n.parent.visitedPolicy -= n.GetOwnEdge().GetP()
		}
		n.wl = 0
		n.d = 1
		n.m = 0
		atomic.StoreInt32(&n.n, 0)
		n.nBetamcts = 0
		n.qBetamcts = 0
		n.rBetamcts = 1
	} else {
		n.wl -= float32(multivisit) * (v - n.wl) / float32(newN)
		n.d -= float32(multivisit) * (d - n.d) / float32(newN)
		n.m -= float32(multivisit) * (m - n.m) / float32(newN)
		atomic.StoreInt32(&n.n, newN)
		if n.edges != nil {
			n.RecalculateScoreBetamcts(DefaultRelevanceTrust, DefaultRelevancePrior)
		}
	}
	n.invalidateBestChildCache()
}

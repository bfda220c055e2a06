package mcts

// UpdateBestChild records the worker's chosen child for reuse by
// subsequent selection passes, valid only until n_in_flight reaches
// visitsAllowed further claims (spec.md §4.11). An edge with no completed
// visits yet is never cached: its ordering relative to its siblings is
// still unsettled, so caching it would pin a pick made on too little data.
func (n *Node) UpdateBestChild(edge EdgeAndNode, visitsAllowed int32) {
	if edge.GetN() == 0 {
		return
	}
	n.bestChildCached = edge.node
	n.bestChildCacheInFlightLimit = visitsAllowed + n.GetNInFlight()
}

// GetBestChildCached returns the cached best child, or nil if the cache is
// empty or has been exhausted by further in-flight claims.
func (n *Node) GetBestChildCached() *Node {
	if n.bestChildCached == nil {
		return nil
	}
	if n.GetNInFlight() >= n.bestChildCacheInFlightLimit {
		return nil
	}
	return n.bestChildCached
}

// invalidateBestChildCache clears the cache outright; called by any
// structural or statistic update that could make the cached choice stale.
func (n *Node) invalidateBestChildCache() {
	n.bestChildCached = nil
	n.bestChildCacheInFlightLimit = 0
}

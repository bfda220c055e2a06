package mcts

// MakeSolid converts this node's linked-list children into a contiguous
// array, one slot per edge (spec.md §4.10). It fails (returning false,
// leaving the node unchanged) if: it is already solid, has no edges, is
// terminal, any child that is itself a leaf (n <= 1) or terminal has an
// in-flight visit, or the sum of children's in-flight visits doesn't equal
// this node's own — any of these would mean a collision-only visit exists
// that the pointer rewrite below could silently invalidate.
func (n *Node) MakeSolid() bool {
	if n.solidChildren || n.edges == nil || n.IsTerminal() {
		return false
	}

	var childInFlightSum int32
	for c := n.child; c != nil; c = c.sibling {
		if c.GetN() <= 1 && c.GetNInFlight() > 0 {
			return false
		}
		if c.IsTerminal() && c.GetNInFlight() > 0 {
			return false
		}
		childInFlightSum += c.GetNInFlight()
	}
	if childInFlightSum != n.GetNInFlight() {
		return false
	}

	children := make([]Node, len(n.edges))
	for i := range children {
		children[i] = *newNode(n, int32(i))
	}

	oldHead := n.child
	for c := oldHead; c != nil; c = c.sibling {
		idx := c.index
		moved := *c
		moved.parent = n
		moved.index = idx
		moved.sibling = nil
		children[idx] = moved
		children[idx].updateOwnChildrenParents()
	}

	n.children = children
	n.child = nil
	n.solidChildren = true
	n.invalidateBestChildCache()

	globalReclaimer.enqueueLinked(oldHead)
	return true
}

// updateOwnChildrenParents repairs this node's own children's parent
// back-pointers after n itself has moved to a new address (spec.md §9,
// "Dual child layout"): the children's parent field still points at the
// pre-move location.
func (n *Node) updateOwnChildrenParents() {
	if n.solidChildren {
		for i := range n.children {
			n.children[i].parent = n
		}
		return
	}
	for c := n.child; c != nil; c = c.sibling {
		c.parent = n
	}
}

// UpdateChildrenParents is the exported form used by callers that relocate
// a node outside of MakeSolid's own bookkeeping (spec.md §6).
func (n *Node) UpdateChildrenParents() { n.updateOwnChildrenParents() }

// ReleaseChildren detaches every child of this node for asynchronous
// reclamation (spec.md §4.13), leaving the node childless.
func (n *Node) ReleaseChildren() {
	n.releaseChildrenExceptOne(nil)
}

// ReleaseChildrenExceptOne detaches every child except keep, which remains
// attached as this node's sole child (spec.md §4.12, used by
// NodeTree.MakeMove outside analyse mode). keep may be nil, in which case
// this behaves exactly like ReleaseChildren.
func (n *Node) ReleaseChildrenExceptOne(keep *Node) {
	n.releaseChildrenExceptOne(keep)
}

func (n *Node) releaseChildrenExceptOne(keep *Node) {
	if n.solidChildren {
		n.releaseSolidExceptOne(keep)
	} else {
		n.releaseLinkedExceptOne(keep)
	}
	n.invalidateBestChildCache()
}

func (n *Node) releaseLinkedExceptOne(keep *Node) {
	var kept *Node
	for c := n.child; c != nil; {
		next := c.sibling
		if c == keep {
			c.sibling = nil
			kept = c
		} else {
			c.sibling = nil
			globalReclaimer.enqueueLinked(c)
		}
		c = next
	}
	n.child = kept
}

// releaseSolidExceptOne can't selectively free individual slots of a
// contiguous allocation: the slot to keep is copied out into a freshly
// allocated standalone node (reverting this node back to linked-list
// mode with that single child), and the entire original array — including
// the stale copy of keep — is handed to the reclaimer as one solid job.
func (n *Node) releaseSolidExceptOne(keep *Node) {
	old := n.children
	n.children = nil
	n.solidChildren = false
	n.child = nil

	if keep != nil {
		moved := *keep
		moved.parent = n
		moved.sibling = nil
		copyNode := moved
		n.child = &copyNode
		n.child.updateOwnChildrenParents()
	}

	globalReclaimer.enqueueSolid(old)
}

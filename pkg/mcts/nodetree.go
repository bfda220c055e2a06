package mcts

// NodeTree owns the whole game tree via gamebeginNode and tracks the
// search head as the game (or analysis) progresses (spec.md §4.12).
// currentHead is a non-owning pointer somewhere inside the tree rooted at
// gamebeginNode; the position history always stays in lockstep with the
// path from one to the other.
type NodeTree struct {
	gamebeginNode *Node
	currentHead   *Node
	history       PositionHistory
	startFEN      string
}

// NewNodeTree creates an empty tree with a fresh root, tracking moves in
// history.
func NewNodeTree(history PositionHistory) *NodeTree {
	root := NewRootNode()
	return &NodeTree{gamebeginNode: root, currentHead: root, history: history}
}

// CurrentHead returns the node the next search should descend from.
func (t *NodeTree) CurrentHead() *Node { return t.currentHead }

// GetGamebeginNode returns the tree's owning root.
func (t *NodeTree) GetGamebeginNode() *Node { return t.gamebeginNode }

// GetPositionHistory returns the move history tracked alongside the tree.
func (t *NodeTree) GetPositionHistory() PositionHistory { return t.history }

// MakeMove advances current_head by the externally played move (spec.md
// §4.12). In analyse mode the previous head's other children (the played
// child's siblings) are left alone so they remain inspectable; otherwise
// they are handed to the
// reclaimer, since only the path actually played can ever be reached
// again.
func (t *NodeTree) MakeMove(move Move, analyseMode bool) {
	board := t.history.Last()
	actualMove := move
	if board.IsBlackToMove() {
		actualMove = move.Mirror()
	}
	legalMoves := board.GenerateLegalMoves()

	head := t.currentHead
	if analyseMode && head.GetNumEdges() == 0 {
		head.CreateEdges(legalMoves)
	}
	modernMove := board.GetModernMove(actualMove)

	var match EdgeAndNode
	found := false
	it := head.Edges()
	for it.Next() {
		cur := it.Current()
		if board.IsSameMove(cur.GetMove(false), modernMove) {
			match = cur
			found = true
			break
		}
	}

	var child *Node
	if found {
		child = match.GetOrSpawnNode(head)
		if child.IsTerminal() {
			child.MakeNotTerminal()
		}
		if !analyseMode {
			head.ReleaseChildrenExceptOne(child)
		}
	} else {
		child = head.CreateSingleChildNode(modernMove)
	}

	t.currentHead = child
	t.history.Append(modernMove)
}

// TrimTreeAtHead detaches the head's children for reclamation and
// re-initializes the head node in place, preserving its sibling link,
// parent, and index (spec.md §4.12) — the head's address must stay valid
// since other code may already hold a reference to it.
func (t *NodeTree) TrimTreeAtHead() {
	head := t.currentHead
	parent, sibling, index := head.parent, head.sibling, head.index

	if head.solidChildren {
		globalReclaimer.enqueueSolid(head.children)
	} else if head.child != nil {
		globalReclaimer.enqueueLinked(head.child)
	}

	fresh := newNode(parent, index)
	fresh.sibling = sibling
	*head = *fresh
}

// ResetToPosition re-synchronizes the tree to a new starting position and
// replays moves on top of it (spec.md §4.12). It deallocates the whole
// tree first if the starting board changed; it returns true iff the
// previous current_head was encountered while replaying moves, meaning
// the pre-existing subtree statistics are still usable for the resulting
// head.
func (t *NodeTree) ResetToPosition(fen string, moves []Move, analyseMode bool) bool {
	if t.startFEN != fen {
		t.DeallocateTree()
		t.startFEN = fen
	}
	if err := t.history.Reset(fen); err != nil {
		panic("mcts: ResetToPosition: invalid starting position: " + err.Error())
	}

	previousHead := t.currentHead
	t.currentHead = t.gamebeginNode
	seenPreviousHead := t.currentHead == previousHead

	for _, m := range moves {
		t.MakeMove(m, analyseMode)
		if t.currentHead == previousHead {
			seenPreviousHead = true
		}
	}

	if !seenPreviousHead && !analyseMode {
		t.TrimTreeAtHead()
	}
	return seenPreviousHead
}

// DeallocateTree hands the entire tree to the reclaimer and starts over
// from a fresh root (spec.md §4.12/§4.13).
func (t *NodeTree) DeallocateTree() {
	old := t.gamebeginNode
	if old.solidChildren {
		globalReclaimer.enqueueSolid(old.children)
	} else if old.child != nil {
		globalReclaimer.enqueueLinked(old.child)
	}
	root := NewRootNode()
	t.gamebeginNode = root
	t.currentHead = root
}

package mcts

// EdgeAndNode is a cursor over (edge, optional child) pulled out of an
// Iterator, exposing fused accessors that fall back to sensible defaults
// when the child has not been spawned yet.
type EdgeAndNode struct {
	edge  *Edge
	node  *Node
	index int32
}

// HasNode reports whether a child has been spawned for this edge.
func (e EdgeAndNode) HasNode() bool { return e.node != nil }

// Node returns the spawned child, or nil.
func (e EdgeAndNode) Node() *Node { return e.node }

// Edge returns the underlying edge.
func (e EdgeAndNode) Edge() *Edge { return e.edge }

// Index returns this cursor's position among its parent's edges.
func (e EdgeAndNode) Index() int32 { return e.index }

func (e EdgeAndNode) GetMove(asOpponent bool) Move { return e.edge.GetMove(asOpponent) }
func (e EdgeAndNode) GetP() float32                { return e.edge.GetP() }

func (e EdgeAndNode) GetN() int32 {
	if e.node == nil {
		return 0
	}
	return e.node.GetN()
}

func (e EdgeAndNode) GetNInFlight() int32 {
	if e.node == nil {
		return 0
	}
	return e.node.GetNInFlight()
}

func (e EdgeAndNode) GetWL(defaultValue float32) float32 {
	if e.node == nil {
		return defaultValue
	}
	return e.node.GetWL()
}

func (e EdgeAndNode) GetD(defaultValue float32) float32 {
	if e.node == nil {
		return defaultValue
	}
	return e.node.GetD()
}

func (e EdgeAndNode) GetM(defaultValue float32) float32 {
	if e.node == nil {
		return defaultValue
	}
	return e.node.GetM()
}

// GetQBetamcts returns the child's beta-MCTS mean, or fpu (first-play
// urgency) when the child hasn't been visited.
func (e EdgeAndNode) GetQBetamcts(fpu float32) float32 {
	if e.node == nil || e.node.GetN() == 0 {
		return fpu
	}
	return e.node.GetQBetamcts()
}

func (e EdgeAndNode) GetNBetamcts() float32 {
	if e.node == nil {
		return 0
	}
	return e.node.GetNBetamcts()
}

func (e EdgeAndNode) GetRBetamcts() float32 {
	if e.node == nil {
		return 1
	}
	return e.node.GetRBetamcts()
}

func (e EdgeAndNode) SetRBetamcts(r float32) {
	if e.node != nil {
		e.node.SetRBetamcts(r)
	}
}

func (e EdgeAndNode) IsTbTerminal() bool {
	return e.node != nil && e.node.IsTbTerminal()
}

// GetBounds returns the child's proved bounds, or the widest possible
// range (unproven) when the child hasn't been spawned.
func (e EdgeAndNode) GetBounds() (lower, upper GameResult) {
	if e.node == nil {
		return BlackWon, WhiteWon
	}
	return e.node.GetBounds()
}

// GetOrSpawnNode materializes a child for this edge if one doesn't exist
// yet: in linked-list mode it is pushed at the head of parent's sibling
// list; in solid mode the slot already exists and is simply returned.
func (e EdgeAndNode) GetOrSpawnNode(parent *Node) *Node {
	if e.node != nil {
		return e.node
	}
	if parent.solidChildren {
		return &parent.children[e.index]
	}
	child := newNode(parent, e.index)
	child.sibling = parent.child
	parent.child = child
	return child
}

func (e EdgeAndNode) String() string {
	if e.edge == nil {
		return "(no edge)"
	}
	s := e.edge.String() + " "
	if e.node != nil {
		s += e.node.String()
	} else {
		s += "(no node)"
	}
	return s
}

// Iterator walks a node's children uniformly across both physical child
// layouts, preserving edge order. It builds a one-time index->child lookup
// rather than advancing a single forward pointer through the linked list,
// since GetOrSpawnNode always inserts at the list's head and the list is
// therefore not necessarily ordered by index.
type Iterator struct {
	edges   []Edge
	byIndex []*Node
	pos     int
}

// Edges returns a fresh Iterator over this node's children.
func (n *Node) Edges() *Iterator {
	it := &Iterator{edges: n.edges, pos: -1}
	if len(n.edges) == 0 {
		return it
	}
	it.byIndex = make([]*Node, len(n.edges))
	if n.solidChildren {
		for i := range n.children {
			it.byIndex[i] = &n.children[i]
		}
	} else {
		for c := n.child; c != nil; c = c.sibling {
			if int(c.index) < len(it.byIndex) {
				it.byIndex[c.index] = c
			}
		}
	}
	return it
}

// Next advances the iterator, returning false once exhausted.
func (it *Iterator) Next() bool {
	it.pos++
	return it.pos < len(it.edges)
}

// Current returns the (edge, node) pair at the iterator's current position.
// Only valid after a call to Next that returned true.
func (it *Iterator) Current() EdgeAndNode {
	var node *Node
	if it.byIndex != nil {
		node = it.byIndex[it.pos]
	}
	return EdgeAndNode{edge: &it.edges[it.pos], node: node, index: int32(it.pos)}
}

// Len returns the total number of edges the iterator will walk.
func (it *Iterator) Len() int { return len(it.edges) }

package mcts

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Node corresponds to a position reached by a specific move from its
// parent. n and nInFlight participate in the start/cancel/finalize
// handshake and are accessed atomically so that the first-visit
// exclusivity check (TryStartScoreUpdate) is linearizable per node; the
// running-mean fields below them are updated non-atomically on purpose —
// readers may observe transiently stale values, which is accepted (see
// DESIGN.md, "Floating-point in shared state").
type Node struct {
	parent *Node
	index  int32 // this node's position among the parent's edges

	edges []Edge // one per legal move from this position, lazily created

	// Child container: a tagged variant. In linked-list mode `child` is the
	// head of a singly-linked chain (via `sibling`); in solid mode
	// `children` is a contiguous array with one slot per edge.
	solidChildren bool
	child         *Node // linked-list mode
	sibling       *Node // this node's next sibling in its parent's list
	children      []Node

	// n and nInFlight are accessed through the atomic package directly
	// (rather than as atomic.Int32) so that a Node value remains copyable:
	// MakeSolid and ReleaseChildrenExceptOne relocate nodes by value into a
	// new backing array, which sync/atomic's boxed integer types forbid.
	n         int32
	nInFlight int32

	wl            float32
	d             float32
	m             float32
	visitedPolicy float32

	qBetamcts float32
	nBetamcts float32
	rBetamcts float32 // this node's relevance, as seen by its parent

	terminalType Terminal
	lowerBound   GameResult
	upperBound   GameResult

	bestChildCached             *Node
	bestChildCacheInFlightLimit int32
}

// NewRootNode creates a singleton root with no parent.
func NewRootNode() *Node {
	return newNode(nil, 0)
}

func newNode(parent *Node, index int32) *Node {
	return &Node{
		parent:     parent,
		index:      index,
		d:          1,
		rBetamcts:  1,
		lowerBound: BlackWon,
		upperBound: WhiteWon,
	}
}

// GetParent returns the node's parent, or nil for the root.
func (n *Node) GetParent() *Node { return n.parent }

// GetIndex returns this node's position among its parent's edges.
func (n *Node) GetIndex() int32 { return n.index }

// GetNumEdges returns the number of legal moves at this position, 0 if
// edges have not been created yet.
func (n *Node) GetNumEdges() int { return len(n.edges) }

// GetEdgeToNode returns the edge in this node leading to child, panicking
// (PreconditionViolated, spec.md §7) if child is not actually this node's
// child.
func (n *Node) GetEdgeToNode(child *Node) *Edge {
	if child.parent != n {
		panic("mcts: GetEdgeToNode called with a non-child node")
	}
	if int(child.index) >= len(n.edges) {
		panic("mcts: GetEdgeToNode: child index out of range")
	}
	return &n.edges[child.index]
}

// GetOwnEdge returns the edge in this node's parent that leads to it.
// Panics if called on the root, which has no parent.
func (n *Node) GetOwnEdge() *Edge {
	return n.GetParent().GetEdgeToNode(n)
}

// GetN returns the number of completed (vanilla) visits.
func (n *Node) GetN() int32 { return atomic.LoadInt32(&n.n) }

// GetNInFlight returns the number of claimed-but-not-finalized visits.
func (n *Node) GetNInFlight() int32 { return atomic.LoadInt32(&n.nInFlight) }

func (n *Node) GetWL() float32 { return n.wl }
func (n *Node) GetD() float32  { return n.d }
func (n *Node) GetM() float32  { return n.m }

func (n *Node) GetQBetamcts() float32  { return n.qBetamcts }
func (n *Node) GetNBetamcts() float32  { return n.nBetamcts }
func (n *Node) GetRBetamcts() float32  { return n.rBetamcts }
func (n *Node) SetRBetamcts(r float32) { n.rBetamcts = r }

func (n *Node) GetVisitedPolicy() float32 { return n.visitedPolicy }

func (n *Node) IsTerminal() bool       { return n.terminalType != NonTerminal }
func (n *Node) IsTbTerminal() bool     { return n.terminalType == Tablebase }
func (n *Node) TerminalType() Terminal { return n.terminalType }

func (n *Node) GetBounds() (lower, upper GameResult) {
	return n.lowerBound, n.upperBound
}

// SetBounds records the proved worst/best outcome from this node.
func (n *Node) SetBounds(lower, upper GameResult) {
	n.lowerBound = lower
	n.upperBound = upper
}

// GetChildrenVisits sums the completed visits of all immediate children,
// used by RecalculateScoreBetamcts's vanilla-visit rollup.
func (n *Node) GetChildrenVisits() int32 {
	var total int32
	it := n.Edges()
	for it.Next() {
		if c := it.Current().Node(); c != nil {
			total += c.GetN()
		}
	}
	return total
}

// CreateEdges installs the move list as this node's edges. Requires no
// prior edges and no children (PreconditionViolated otherwise).
func (n *Node) CreateEdges(moves []Move) {
	if n.edges != nil {
		panic("mcts: CreateEdges called on a node that already has edges")
	}
	if n.child != nil || n.children != nil {
		panic("mcts: CreateEdges called on a node that already has children")
	}
	n.edges = EdgesFromMoveList(moves)
}

// CreateSingleChildNode installs a single edge for move and materializes
// its sole child at index 0, used when re-rooting onto a move that had not
// previously been explored (spec.md §4.10/§4.12).
func (n *Node) CreateSingleChildNode(move Move) *Node {
	if n.edges != nil {
		panic("mcts: CreateSingleChildNode called on a node that already has edges")
	}
	if n.child != nil {
		panic("mcts: CreateSingleChildNode called on a node that already has children")
	}
	n.edges = EdgesFromMoveList([]Move{move})
	child := newNode(n, 0)
	n.child = child
	return child
}

// SortEdges sorts edges in descending prior order. Sorting on the raw
// encoded prior is equivalent to sorting on the decoded float (prior.go)
// and is noticeably faster. Callable only while no child exists yet; in
// analyse mode a node can be expanded (child spawned) before its edges are
// sorted, in which case sorting would invalidate child indices and is
// skipped instead of panicking.
func (n *Node) SortEdges() {
	if n.edges == nil {
		panic("mcts: SortEdges called on a node with no edges")
	}
	if n.child != nil || n.children != nil {
		return
	}
	sort.Slice(n.edges, func(i, j int) bool { return n.edges[i].p > n.edges[j].p })
}

func (n *Node) String() string {
	return fmt.Sprintf(
		"Term:%v This:%p Parent:%p Index:%d Child:%p Sibling:%p WL:%v N:%d N_:%d Edges:%d Bounds:%v,%v Solid:%v",
		n.terminalType, n, n.parent, n.index, n.child, n.sibling, n.wl,
		n.GetN(), n.GetNInFlight(), len(n.edges), n.lowerBound, n.upperBound, n.solidChildren,
	)
}

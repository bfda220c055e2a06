package mcts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTree(fen string, legal []Move) *NodeTree {
	history := &testHistory{board: testBoard{legal: legal}, fen: fen}
	return NewNodeTree(history)
}

// TestMakeMoveRerootsAndReleasesSiblings implements scenario S6 (spec.md
// §8): advancing past a one-ply tree re-roots onto the played move and
// detaches the sibling subtree, leaving it unreachable from the new head.
func TestMakeMoveRerootsAndReleasesSiblings(t *testing.T) {
	tree := newTestTree("start", movesOf(1, 2))
	root := tree.GetGamebeginNode()
	root.CreateEdges(movesOf(1, 2))

	it := root.Edges()
	var played, other *Node
	for it.Next() {
		c := it.Current().GetOrSpawnNode(root)
		c.TryStartScoreUpdate()
		c.FinalizeScoreUpdate(0.1, 0.2, 5, 1, 1, false, false)
		if it.Current().GetMove(false).(testMove).id == 1 {
			played = c
		} else {
			other = c
		}
	}
	require.NotNil(t, played)
	require.NotNil(t, other)

	tree.MakeMove(testMove{id: 1}, false)

	require.Equal(t, played, tree.CurrentHead())
	require.Equal(t, root.child, played, "the played move's subtree remains attached")
	require.Nil(t, played.sibling, "the sibling subtree was detached for reclamation")
}

func TestMakeMoveAnalyseModeKeepsSiblings(t *testing.T) {
	tree := newTestTree("start", movesOf(1, 2))
	root := tree.GetGamebeginNode()

	tree.MakeMove(testMove{id: 1}, true)
	require.Equal(t, 2, root.GetNumEdges(), "analyse mode expands edges from the legal move list")

	tree.currentHead = root
	tree.MakeMove(testMove{id: 2}, true)

	// Both children should remain reachable since nothing was released.
	it := root.Edges()
	count := 0
	for it.Next() {
		if it.Current().HasNode() {
			count++
		}
	}
	require.Equal(t, 2, count)
}

func TestMakeMoveSpawnsSingleChildWhenUnmatched(t *testing.T) {
	tree := newTestTree("start", movesOf(1, 2))
	root := tree.GetGamebeginNode()

	// A played move is only looked up among edges already present; a head
	// with no edges at all (never expanded by a search) falls through to
	// a fresh single-child node instead.
	tree.MakeMove(testMove{id: 99}, false)

	require.Equal(t, 1, root.GetNumEdges())
	require.Equal(t, tree.CurrentHead(), root.child)
}

func TestMakeMoveRevivesTerminalChild(t *testing.T) {
	tree := newTestTree("start", movesOf(1))
	root := tree.GetGamebeginNode()
	root.CreateEdges(movesOf(1))
	it := root.Edges()
	it.Next()
	child := it.Current().GetOrSpawnNode(root)
	child.MakeTerminal(BlackWon, 0, EndOfGame, false)

	tree.MakeMove(testMove{id: 1}, false)

	require.False(t, child.IsTerminal(), "MakeMove should retract a now-reachable terminal bound")
}

func TestTrimTreeAtHeadPreservesAddressAndLinks(t *testing.T) {
	tree := newTestTree("start", movesOf(1))
	root := tree.GetGamebeginNode()
	root.CreateEdges(movesOf(1))
	it := root.Edges()
	it.Next()
	head := it.Current().GetOrSpawnNode(root)
	tree.currentHead = head
	head.CreateEdges(movesOf(2))
	it2 := head.Edges()
	it2.Next()
	it2.Current().GetOrSpawnNode(head)

	tree.TrimTreeAtHead()

	require.Same(t, head, tree.CurrentHead())
	require.Equal(t, root, head.GetParent())
	require.Equal(t, 0, head.GetNumEdges())
	require.Nil(t, head.child)
}

// TestResetToPositionReplaysMoves implements the second half of scenario S6:
// resetting to the same starting FEN and replaying the move that was just
// played finds the existing head rather than discarding it.
func TestResetToPositionReplaysMoves(t *testing.T) {
	tree := newTestTree("start", movesOf(1, 2))
	tree.startFEN = "start"
	root := tree.GetGamebeginNode()
	root.CreateEdges(movesOf(1, 2))
	it := root.Edges()
	for it.Next() {
		it.Current().GetOrSpawnNode(root)
	}
	tree.MakeMove(testMove{id: 1}, false)

	seen := tree.ResetToPosition("start", []Move{testMove{id: 1}}, false)

	require.True(t, seen, "replaying the already-played move should find the existing head")
}

func TestResetToPositionDeallocatesOnFenChange(t *testing.T) {
	tree := newTestTree("start", movesOf(1))
	originalRoot := tree.GetGamebeginNode()
	tree.startFEN = "start"

	tree.ResetToPosition("different-position", nil, false)

	require.NotSame(t, originalRoot, tree.GetGamebeginNode(), "a changed starting position deallocates the old tree")
}

func TestDeallocateTreeResetsToFreshRoot(t *testing.T) {
	tree := newTestTree("start", movesOf(1))
	root := tree.GetGamebeginNode()
	root.CreateEdges(movesOf(1))
	it := root.Edges()
	it.Next()
	it.Current().GetOrSpawnNode(root)

	tree.DeallocateTree()

	require.NotSame(t, root, tree.GetGamebeginNode())
	require.Equal(t, tree.GetGamebeginNode(), tree.CurrentHead())
	require.Equal(t, 0, tree.GetGamebeginNode().GetNumEdges())
}

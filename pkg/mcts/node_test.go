package mcts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSingleThreadedVisit implements scenario S1 (spec.md §8): a single
// legal move from the root, one full start/finalize pass on the child
// and then the root.
func TestSingleThreadedVisit(t *testing.T) {
	root := NewRootNode()
	root.CreateEdges(movesOf(1))
	root.edges[0].SetP(1.0)

	require.True(t, root.TryStartScoreUpdate())
	require.Equal(t, int32(1), root.GetNInFlight())

	edge := root.Edges()
	require.True(t, edge.Next())
	child := edge.Current().GetOrSpawnNode(root)

	require.True(t, child.TryStartScoreUpdate())
	child.FinalizeScoreUpdate(0.3, 0.2, 40, 1, 1, false, false)
	require.Equal(t, int32(1), child.GetN())
	require.InDelta(t, float32(0.3), child.GetWL(), 1e-6)
	require.InDelta(t, float32(0.2), child.GetD(), 1e-6)
	require.InDelta(t, float32(40), child.GetM(), 1e-6)

	root.FinalizeScoreUpdate(-0.3, 0.2, 41, 1, 1, false, false)
	require.Equal(t, int32(1), root.GetN())
	require.InDelta(t, float32(-0.3), root.GetWL(), 1e-6)
	require.InDelta(t, float32(1.0), root.GetVisitedPolicy(), 1e-6)
}

func TestCreateEdgesPreconditions(t *testing.T) {
	t.Run("panics on duplicate CreateEdges", func(t *testing.T) {
		n := NewRootNode()
		n.CreateEdges(movesOf(1))
		require.Panics(t, func() { n.CreateEdges(movesOf(1)) })
	})

	t.Run("panics on CreateSingleChildNode with existing edges", func(t *testing.T) {
		n := NewRootNode()
		n.CreateEdges(movesOf(1))
		require.Panics(t, func() { n.CreateSingleChildNode(testMove{id: 2}) })
	})
}

// TestSortEdges implements invariant 5 and 7 of spec.md §8: after
// SortEdges, edges are non-increasing in prior, and sorting is a no-op
// once a child exists rather than a panic (analyse-mode expansion may
// spawn a child before edges are finally sorted).
func TestSortEdges(t *testing.T) {
	n := NewRootNode()
	n.CreateEdges(movesOf(1, 2, 3))
	n.edges[0].SetP(0.1)
	n.edges[1].SetP(0.5)
	n.edges[2].SetP(0.3)

	n.SortEdges()

	require.GreaterOrEqual(t, n.edges[0].GetP(), n.edges[1].GetP())
	require.GreaterOrEqual(t, n.edges[1].GetP(), n.edges[2].GetP())

	t.Run("becomes a no-op once a child exists", func(t *testing.T) {
		n := NewRootNode()
		n.CreateEdges(movesOf(1, 2))
		n.edges[0].SetP(0.1)
		n.edges[1].SetP(0.9)
		it := n.Edges()
		it.Next()
		it.Current().GetOrSpawnNode(n)

		n.SortEdges()

		// The codec keeps priors to within 2^-11 relative error, so 0.1 reads
		// back as ~0.1000061.
		require.InDelta(t, float32(0.1), n.edges[0].GetP(), 0.1/2048, "order must be left untouched once a child exists")
	})
}

func TestGetEdgeToNodePreconditions(t *testing.T) {
	t.Run("panics for a non-child node", func(t *testing.T) {
		n := NewRootNode()
		n.CreateEdges(movesOf(1))
		other := NewRootNode()
		require.Panics(t, func() { n.GetEdgeToNode(other) })
	})
}

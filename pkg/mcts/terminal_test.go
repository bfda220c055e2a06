package mcts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeTerminal(t *testing.T) {
	t.Run("white win sets wl=1, d=0", func(t *testing.T) {
		root := NewRootNode()
		root.CreateEdges(movesOf(1))
		it := root.Edges()
		it.Next()
		child := it.Current().GetOrSpawnNode(root)

		child.MakeTerminal(WhiteWon, 0, EndOfGame, false)

		lower, upper := child.GetBounds()
		require.Equal(t, WhiteWon, lower)
		require.Equal(t, WhiteWon, upper)
		require.Equal(t, float32(1), child.GetWL())
		require.Equal(t, float32(0), child.GetD())
	})

	t.Run("draw sets wl=0, d=1", func(t *testing.T) {
		n := NewRootNode()
		n.MakeTerminal(Draw, 0, EndOfGame, false)
		require.Equal(t, float32(0), n.GetWL())
		require.Equal(t, float32(1), n.GetD())
	})

	t.Run("black win clears the edge's own prior", func(t *testing.T) {
		root := NewRootNode()
		root.CreateEdges(movesOf(1))
		root.edges[0].SetP(0.8)
		it := root.Edges()
		it.Next()
		child := it.Current().GetOrSpawnNode(root)

		child.MakeTerminal(BlackWon, 0, EndOfGame, false)

		require.Equal(t, float32(0), root.edges[0].GetP(), "a proven loss clears its own edge's prior")
	})

	t.Run("inflateTerminals boosts effective visit mass", func(t *testing.T) {
		root := NewRootNode()
		root.CreateEdges(movesOf(1))
		it := root.Edges()
		it.Next()
		child := it.Current().GetOrSpawnNode(root)

		child.MakeTerminal(WhiteWon, 0, EndOfGame, true)

		require.Equal(t, float32(10), child.GetNBetamcts())
		require.Equal(t, float32(0.1), child.GetRBetamcts())
	})
}

func TestMakeNotTerminalPanicsWhenNotTerminal(t *testing.T) {
	n := NewRootNode()
	require.Panics(t, func() { n.MakeNotTerminal() })
}

func TestMakeNotTerminalReaggregatesFromChildren(t *testing.T) {
	root := NewRootNode()
	root.CreateEdges(movesOf(1, 2))
	root.MakeTerminal(BlackWon, 5, EndOfGame, false)

	it := root.Edges()
	it.Next()
	c0 := it.Current().GetOrSpawnNode(root)
	c0.TryStartScoreUpdate()
	c0.FinalizeScoreUpdate(1, 0, 0, 1, 1, false, false)

	root.MakeNotTerminal()

	require.False(t, root.IsTerminal())
	require.Equal(t, int32(2), root.GetN(), "n grows by each visited child's n, starting from the node's own 1")
	require.InDelta(t, float32(-1), root.GetWL(), 1e-6, "wl is re-aggregated opponent-flipped from visited children")
}

package mcts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// These tests drive a private reclaimer instance directly through drain()
// rather than the background ticker, so they stay deterministic instead of
// racing the real ~100ms drain loop that globalReclaimer runs on.

func TestReclaimerDisposesLinkedSubtree(t *testing.T) {
	r := &reclaimer{wake: make(chan struct{}, 1), stop: make(chan struct{})}

	root := NewRootNode()
	root.CreateEdges(movesOf(1, 2))
	it := root.Edges()
	for it.Next() {
		it.Current().GetOrSpawnNode(root)
	}

	r.enqueueLinked(root.child)
	require.Len(t, r.queue, 1)

	r.drain()

	require.Empty(t, r.queue)
}

func TestReclaimerDisposesSolidSubtreeWithNestedLinkedChildren(t *testing.T) {
	r := &reclaimer{wake: make(chan struct{}, 1), stop: make(chan struct{})}

	root := NewRootNode()
	root.CreateEdges(movesOf(1, 2))
	it := root.Edges()
	for it.Next() {
		it.Current().GetOrSpawnNode(root)
	}
	require.True(t, root.MakeSolid())

	// Nest a further linked-list grandchild under one solid slot, so
	// disposeSolid's recursion into disposeLinked is actually exercised.
	grandparent := &root.children[0]
	grandparent.CreateEdges(movesOf(3))
	git := grandparent.Edges()
	git.Next()
	git.Current().GetOrSpawnNode(grandparent)

	r.enqueueSolid(root.children)
	require.Len(t, r.queue, 1)

	require.NotPanics(t, func() { r.drain() })
	require.Empty(t, r.queue)
}

func TestReclaimerEnqueueIgnoresEmptyJobs(t *testing.T) {
	r := &reclaimer{wake: make(chan struct{}, 1), stop: make(chan struct{})}

	r.enqueueLinked(nil)
	r.enqueueSolid(nil)

	require.Empty(t, r.queue)
}

func TestReclaimerDrainNoopWhenEmpty(t *testing.T) {
	r := &reclaimer{wake: make(chan struct{}, 1), stop: make(chan struct{})}
	require.NotPanics(t, func() { r.drain() })
}

package mcts

import "fmt"

// Edge is immutable after creation except for its compressed prior. It pairs
// a move with the (logical) ownership of a child node, which lives in the
// parent Node's child container rather than on the Edge itself.
type Edge struct {
	move Move
	p    uint16 // compressed prior, see prior.go
}

// EdgesFromMoveList builds one Edge per move, in the given order.
func EdgesFromMoveList(moves []Move) []Edge {
	edges := make([]Edge, len(moves))
	for i, m := range moves {
		edges[i].move = m
	}
	return edges
}

// GetMove returns the edge's move, mirrored if asOpponent is set.
func (e *Edge) GetMove(asOpponent bool) Move {
	if !asOpponent {
		return e.move
	}
	return e.move.Mirror()
}

// SetP stores p (in [0,1]) using the compressed prior codec.
func (e *Edge) SetP(p float32) { e.p = EncodePrior(p) }

// GetP decodes the stored prior.
func (e *Edge) GetP() float32 { return DecodePrior(e.p) }

// SetPolicy is an alias for SetP used by the RENTS policy rewrite (§4.8),
// matching the name node.cc's SetPoliciesRENTS calls through.
func (e *Edge) SetPolicy(p float32) { e.SetP(p) }

func (e *Edge) String() string {
	return fmt.Sprintf("Move: %s p_: %d GetP: %v", e.move, e.p, e.GetP())
}

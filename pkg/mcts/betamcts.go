package mcts

import (
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Naphthalin/lc0/pkg/mcts/fastmath"
)

// Default relevance-model hyperparameters (spec.md §4.6's "trust" and
// "prior" terms), used wherever a full beta rebackup is triggered without
// an explicit caller-supplied pair (FinalizeScoreUpdate's full_beta_update
// path, RevertTerminalVisits). The spec externalizes these as call
// parameters everywhere they appear explicitly; these defaults let the
// internally-triggered call sites exercise the same math without forcing
// every caller up the stack to thread tuning constants through (see
// DESIGN.md, "RecalculateScoreBetamcts parameters").
const (
	DefaultRelevanceTrust = float32(8.0)
	DefaultRelevancePrior = float32(1.0)
)

// betaParams derives (alpha, beta, logit, logitVariance) for a winrate w
// with effective sample size v, the shared inner step of both the parent
// and child side of CalculateRelevanceBetamcts.
func betaParams(w, v float32) (alpha, beta, logit, variance float32) {
	alpha = 1 + w*v
	beta = 1 + (1-w)*v
	logit = float32(math.Log(float64(alpha / beta)))
	variance = 1/alpha + 1/beta
	return
}

// CalculateRelevanceBetamcts re-derives r_betamcts on every child that has
// completed at least one vanilla visit, standardizing the logit gap
// between each child's (flipped) winrate and this node's own winrate
// under a Beta(alpha, beta) posterior (spec.md §4.6).
func (n *Node) CalculateRelevanceBetamcts(trust, prior float32) {
	w := (1 - n.qBetamcts) / 2
	v := n.nBetamcts*trust + prior
	_, _, logitP, varP := betaParams(w, v)

	it := n.Edges()
	for it.Next() {
		child := it.Current().Node()
		if child == nil || child.GetN() == 0 {
			continue
		}
		child.rBetamcts = calculateChildRelevance(child, n, trust, prior, logitP, varP)
	}
}

func calculateChildRelevance(child, parent *Node, trust, prior, logitP, varP float32) float32 {
	if parent.nBetamcts == 0 && child.nBetamcts == 0 {
		return 1
	}
	winrate := (1 + child.qBetamcts) / 2
	if winrate == 0 {
		return 0
	}
	vc := child.nBetamcts*trust + prior
	_, _, logitC, varC := betaParams(winrate, vc)
	return 1 + fastmath.FastErfLogistic((logitC-logitP)/float32(math.Sqrt(float64(2*(varC+varP)))))
}

// RecalculateScoreBetamcts re-derives q_betamcts, n_betamcts, d, and m at
// this node from its children, after first refreshing every child's
// r_betamcts via CalculateRelevanceBetamcts (spec.md §4.6). It also folds
// children's proved bounds and may promote this node to terminal.
func (n *Node) RecalculateScoreBetamcts(trust, prior float32) {
	n.CalculateRelevanceBetamcts(trust, prior)

	var nTemp, qTemp, dTemp, mTemp float32
	// Both bounds fold with max, seeded from the worst possible result
	// (spec.md §4.6; node.cc seeds lower = upper = BLACK_WON and takes
	// std::max against both): a single unproven child must keep upper at
	// WhiteWon, so upper cannot be tightened by intersecting it downward
	// against other children's bounds.
	lower, upper := BlackWon, BlackWon
	var haveWinningM, haveLosingM bool
	var winningM, losingM float32
	preferTb := false

	it := n.Edges()
	for it.Next() {
		cur := it.Current()
		// An edge whose child was never spawned reports the unproven range.
		childLower, childUpper := cur.GetBounds()
		if childLower > lower {
			lower = childLower
		}
		if childUpper > upper {
			upper = childUpper
		}
		child := cur.Node()
		if child == nil {
			continue
		}
		if child.lowerBound == child.upperBound {
			switch child.lowerBound {
			case WhiteWon:
				if child.terminalType != Tablebase && (!haveWinningM || child.m < winningM) {
					winningM = child.m
					haveWinningM = true
				}
			case BlackWon:
				if !haveLosingM || child.m > losingM {
					losingM = child.m
					haveLosingM = true
				}
			}
			if child.terminalType == Tablebase {
				preferTb = true
			}
		}

		if child.GetN() == 0 {
			continue
		}
		weight := child.rBetamcts * child.nBetamcts
		nTemp += weight
		qTemp += -child.qBetamcts * weight
		dTemp += child.d * weight
		mTemp += child.m * weight
	}

	n.lowerBound, n.upperBound = lower, upper

	if lower == upper && n.GetN() > 1 {
		typ := EndOfGame
		if preferTb && !haveWinningM {
			typ = Tablebase
		}
		var m float32
		if haveWinningM {
			m = winningM
		} else {
			m = losingM
		}
		n.MakeTerminal(upper.Negate(), m+1, typ, false)
		return
	}

	// When no visited child carries weight (for instance every child is a
	// proven loss, whose relevance is 0), q_betamcts, n_betamcts, d and m
	// are left as they were.
	if nTemp > 0 {
		n.qBetamcts = qTemp / nTemp
		n.nBetamcts = nTemp
		n.d = dTemp / nTemp
		n.m = mTemp/nTemp + 1
	}

	if wantN := 1 + n.GetChildrenVisits(); n.GetN() > 0 && wantN != n.GetN() {
		atomic.StoreInt32(&n.n, wantN)
		var visited float32
		jt := n.Edges()
		for jt.Next() {
			cur := jt.Current()
			if c := cur.Node(); c != nil && c.GetN() > 0 {
				visited += cur.GetP()
			}
		}
		n.visitedPolicy = visited
	}
	n.invalidateBestChildCache()
}

// stabilizeGroup collapses concurrent stabilization requests for the same
// node into a single run: several workers can notice a node's relevance
// looks stale and ask to stabilize it in the same instant, and since the
// operation is idempotent with respect to its end state, only one of them
// needs to actually do the work while the rest wait on and share its result.
var stabilizeGroup singleflight.Group

// StabilizeScoreBetamcts iterates RecalculateScoreBetamcts until q_betamcts
// stops moving by more than threshold or maxSteps is exhausted. Convergence
// is not guaranteed by the underlying fixed-point map; maxSteps exists
// purely to bound the work (spec.md §4.6).
func (n *Node) StabilizeScoreBetamcts(trust, prior float32, maxSteps int, threshold float32) {
	key := fmt.Sprintf("%p", n)
	stabilizeGroup.Do(key, func() (any, error) {
		n.stabilizeScoreBetamcts(trust, prior, maxSteps, threshold)
		return nil, nil
	})
}

func (n *Node) stabilizeScoreBetamcts(trust, prior float32, maxSteps int, threshold float32) {
	for i := 0; i < maxSteps; i++ {
		prev := n.qBetamcts
		n.RecalculateScoreBetamcts(trust, prior)
		if delta := n.qBetamcts - prev; delta < threshold && delta > -threshold {
			return
		}
	}
}

// GetLCBBetamcts returns the percentile-th quantile of the logit-normal
// distribution implied by this node's Beta(alpha, beta) posterior, using
// the non-flipped winrate (spec.md §4.7). Used for move ordering at the
// root: a move with fewer, noisier visits has a wider posterior and so a
// lower LCB than its raw q_betamcts would suggest.
func (n *Node) GetLCBBetamcts(trust, prior, percentile float32) float32 {
	if percentile <= 0 {
		return -1
	}
	if percentile >= 1 {
		return 1
	}
	winrate := (1 + n.qBetamcts) / 2
	v := n.nBetamcts*trust + prior
	_, _, logit, variance := betaParams(winrate, v)
	z := probitApprox(percentile)
	quantileLogit := logit + z*float32(math.Sqrt(float64(variance)))
	p := 1 / (1 + fastmath.FastExp(-quantileLogit))
	return 2*p - 1
}

// probitApprox approximates the standard normal quantile function via
// Acklam's rational approximation, adequate for the LCB percentiles move
// ordering actually uses (far from the extreme tails).
func probitApprox(p float32) float32 {
	x := float64(p)
	a := []float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02, 1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := []float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02, 6.680131188771972e+01, -1.328068155288572e+01}
	c := []float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00, -2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := []float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00, 3.754408661907416e+00}

	const pLow = 0.02425
	var q, r, result float64
	switch {
	case x < pLow:
		q = math.Sqrt(-2 * math.Log(x))
		result = (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case x <= 1-pLow:
		q = x - 0.5
		r = q * q
		result = (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q = math.Sqrt(-2 * math.Log(1-x))
		result = -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
	return float32(result)
}

package mser

// EvaluationNode tracks the history of one region lineage across the sweep.
// One node is created per emitted component, plus intermediate nodes that
// sample the thresholds a region lived through unchanged between emissions.
// Nodes form a singly linked ancestor chain through successive threshold
// eras. The chain reference is never owning: several later nodes may point
// at the same ancestor until it is superseded.
//
// The instability score of a node is the fraction of its pixels not present
// in its ancestor from delta threshold steps earlier:
//
//	score(R_i) = (size(R_i) - size(R_{i-delta})) / size(R_i)
//
// A node whose score is a local minimum along its lineage is an MSER
// candidate. Confirmation is one step delayed: a node is confirmed only once
// the next score on the lineage is known, with the comparison <= against the
// predecessor and < against the successor, so on a score plateau the
// earliest node wins and later equal scores are never re-flagged.
type EvaluationNode struct {
	pixels PixelList
	value  uint8
	size   int

	ancestor   *EvaluationNode
	score      float64
	scoreValid bool

	// minCandidate points at the node currently eligible to be confirmed as
	// the lineage's local minimum: this node, an earlier plateau node, or
	// nil. Once a candidate is superseded by a smaller score further down
	// the chain it is finalized and never reconsidered.
	minCandidate *EvaluationNode

	// isLocalMinimum is set when the node has been confirmed and handed to
	// the tree as an MSER candidate.
	isLocalMinimum bool

	// mserThisOrChildren holds the accepted regions along this and all
	// merged-in lineages that are reachable without crossing a later
	// accepted region. When this lineage produces a new accepted region,
	// these become its children and the collection collapses to the new
	// region alone.
	mserThisOrChildren []*Mser
}

// Size returns the pixel count of the node's region.
func (n *EvaluationNode) Size() int { return n.size }

// Value returns the threshold at which the node's region was sampled.
func (n *EvaluationNode) Value() uint8 { return n.value }

// Score returns the instability score and whether enough history existed to
// compute it.
func (n *EvaluationNode) Score() (float64, bool) { return n.score, n.scoreValid }

// emitNode consumes an emitted component: it bridges every contributing
// lineage up to the current threshold, links the new node into the ancestor
// chain of the largest contributor, scores it when enough history exists,
// and may confirm local minima, which notifies the tree. It must run before
// the component's merge list is cleared.
func (t *MserTree) emitNode(c *Component) *EvaluationNode {
	n := &EvaluationNode{
		pixels: c.Pixels(),
		value:  c.value,
		size:   c.Size(),
	}

	// Bridge the component's own previous era and every lineage merged into
	// it since. Bridging inserts an intermediate node when a lineage held
	// its minimal score strictly inside the value gap.
	var heads []*EvaluationNode
	if c.evalNode != nil {
		heads = append(heads, t.bridge(c.evalNode, c.value))
	}
	for _, ch := range c.children {
		heads = append(heads, t.bridge(ch.evalNode, c.value))
	}

	// The lineage continues from the largest contributor; the lineages of
	// the smaller constituents end at this threshold.
	var main *EvaluationNode
	for _, h := range heads {
		if main == nil || h.size > main.size {
			main = h
		}
	}
	n.ancestor = main

	t.computeScore(n)
	if n.scoreValid {
		t.updateMinimum(n)
	}

	// A lineage ending in this merge has the merged region as successor, so
	// its pending candidate is judged against the new score.
	for _, h := range heads {
		if h == main || !n.scoreValid {
			continue
		}
		if cand := h.minCandidate; cand != nil && cand.score < n.score {
			t.confirm(cand, h)
		}
	}

	// Collect surviving accepted regions from every contributing lineage.
	// This runs after minimum confirmation so that a region accepted just
	// now is seen instead of the children it subsumed.
	for _, h := range heads {
		n.mserThisOrChildren = append(n.mserThisOrChildren, h.mserThisOrChildren...)
	}

	c.evalNode = n
	return n
}

// bridge extends a lineage last sampled at p up to the threshold just
// before v2, across which the region existed unchanged. The score is
// non-increasing over such a span, so a single intermediate node placed
// at the earliest threshold attaining the span's final score preserves
// the per-threshold candidate tracking. When the span cannot improve on
// p's tracking state, p is returned as is.
func (t *MserTree) bridge(p *EvaluationNode, v2 uint8) *EvaluationNode {
	if t.cmp(p.value, v2) >= 0 {
		panic("mser: lineage emitted out of threshold order")
	}
	last := t.stepBack(v2)
	if t.cmp(p.value, last) >= 0 {
		return p
	}
	target := t.delta(last)
	q := p
	for q != nil && t.cmp(q.value, target) > 0 {
		q = q.ancestor
	}
	if q == nil {
		// still not enough history at the end of the span
		return p
	}
	score := float64(p.size-q.size) / float64(p.size)
	u := t.earliestAttainer(q.value)
	if p.scoreValid {
		if score > p.score {
			return p
		}
		if score == p.score {
			// A constant-score span carries an open candidate across
			// unchanged. After a confirmed rise, though, the plateau must
			// start a fresh candidate at the span's first threshold.
			if p.minCandidate != nil {
				return p
			}
			u = p.value
		}
	}
	v := &EvaluationNode{
		pixels:             p.pixels,
		value:              t.clampStep(u, p.value, last),
		size:               p.size,
		ancestor:           p,
		score:              score,
		scoreValid:         true,
		mserThisOrChildren: p.mserThisOrChildren,
	}
	t.updateMinimum(v)
	return v
}

// computeScore locates the ancestor at or beyond the delta-shifted
// threshold and derives the instability score. The score stays invalid
// while the chain is too short.
func (t *MserTree) computeScore(n *EvaluationNode) {
	target := t.delta(n.value)
	a := n.ancestor
	for a != nil && t.cmp(a.value, target) > 0 {
		a = a.ancestor
	}
	if a == nil {
		return
	}
	n.score = float64(n.size-a.size) / float64(n.size)
	n.scoreValid = true
}

// updateMinimum advances the lineage's minimum-candidate tracking with this
// node's fresh score and confirms the pending candidate once a strictly
// larger score proves it was a local minimum.
//
// Unscored nodes form a prefix of every lineage (a later node always has at
// least the history of an earlier one), so the direct ancestor of a scored
// node is either scored as well or this node holds the first score on its
// lineage.
func (t *MserTree) updateMinimum(n *EvaluationNode) {
	a := n.ancestor
	if a == nil || !a.scoreValid {
		n.minCandidate = n
		return
	}
	switch {
	case n.score < a.score:
		n.minCandidate = n
	case n.score == a.score:
		if a.minCandidate != nil {
			n.minCandidate = a.minCandidate
		} else {
			n.minCandidate = n
		}
	default:
		if cand := a.minCandidate; cand != nil {
			t.confirm(cand, a)
		}
		n.minCandidate = nil
	}
}

// confirm hands a confirmed local minimum to the candidate filter. When the
// candidate sits behind head on the chain, head inherited the candidate's
// accepted regions by copy, so head's collection is patched to show the
// newly accepted region instead of the children it subsumed.
func (t *MserTree) confirm(cand, head *EvaluationNode) {
	cand.isLocalMinimum = true
	subsumed := cand.mserThisOrChildren
	if m := t.foundNewMinimum(cand); m != nil && cand != head {
		head.mserThisOrChildren = replaceMsers(head.mserThisOrChildren, subsumed, m)
	}
}

// replaceMsers returns list with every member of subsumed removed and m
// appended.
func replaceMsers(list []*Mser, subsumed []*Mser, m *Mser) []*Mser {
	out := make([]*Mser, 0, len(list))
	for _, e := range list {
		keep := true
		for _, s := range subsumed {
			if e == s {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, e)
		}
	}
	return append(out, m)
}

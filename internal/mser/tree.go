// Package mser detects Maximally Stable Extremal Regions in grayscale
// images: connected regions whose pixel set changes little over a range of
// intensity thresholds. A single sequential sweep grows connected
// components threshold by threshold; each emitted component is scored
// against its ancestor a fixed delta earlier, local minima of the score
// become candidates, and accepted candidates are assembled into a forest
// that is finally pruned of near-duplicate nested regions.
package mser

import (
	"fmt"
	"image"
)

// Params configures MSER detection.
type Params struct {
	// Delta is the threshold offset used for the instability score.
	Delta uint8
	// MinSize and MaxSize bound the pixel count of accepted regions.
	MinSize int
	MaxSize int
	// MaxVar is the maximum instability score of an accepted region. 1.0
	// effectively disables the score filter.
	MaxVar float64
	// MinDiversity prunes a region whose size is within this fraction of
	// its accepted parent.
	MinDiversity float64
	// DarkToBright selects the sweep direction.
	DarkToBright bool
}

// Validate rejects configurations that would silently yield empty or
// nonsensical results.
func (p Params) Validate() error {
	if p.Delta < 1 {
		return fmt.Errorf("mser: delta must be >= 1 (got %d)", p.Delta)
	}
	if p.MinSize < 1 {
		return fmt.Errorf("mser: min size must be >= 1 (got %d)", p.MinSize)
	}
	if p.MinSize > p.MaxSize {
		return fmt.Errorf("mser: min size %d exceeds max size %d", p.MinSize, p.MaxSize)
	}
	if p.MaxVar < 0 {
		return fmt.Errorf("mser: max variation must be >= 0 (got %g)", p.MaxVar)
	}
	if p.MinDiversity < 0 || p.MinDiversity > 1 {
		return fmt.Errorf("mser: min diversity must be in [0,1] (got %g)", p.MinDiversity)
	}
	return nil
}

// MserTree gathers accepted regions during a sweep and assembles them into
// a forest. It implements ComponentHandler: the builder feeds it components
// in threshold order, each emission may confirm a local minimum, and the
// candidate filter decides acceptance. After the sweep, PruneDuplicates
// removes regions too similar to their parent.
//
// All methods must be called from a single goroutine; the sweep is a
// strictly sequential pass.
type MserTree struct {
	params Params
	cmp    Comparator
	delta  ComputeDelta

	roots map[*Mser]struct{}
	nodes []*Mser
}

// NewTree creates an MSER tree assembler for the given parameters.
func NewTree(params Params) (*MserTree, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	t := &MserTree{
		params: params,
		roots:  make(map[*Mser]struct{}),
	}
	if params.DarkToBright {
		t.cmp = DarkToBrightComparator
		t.delta = DarkToBrightDelta(params.Delta)
	} else {
		t.cmp = BrightToDarkComparator
		t.delta = BrightToDarkDelta(params.Delta)
	}
	return t, nil
}

// BuildTree runs the full detection over a grayscale image: threshold
// sweep, candidate acceptance, and duplicate pruning.
func BuildTree(gray *image.Gray, params Params) (*MserTree, error) {
	t, err := NewTree(params)
	if err != nil {
		return nil, err
	}
	BuildComponentTree(gray, t, params.DarkToBright)
	t.PruneDuplicates()
	return t, nil
}

// Emit consumes one component from the sweep. Separate valleys may be
// emitted out of global threshold order, but each lineage must advance
// strictly; a violation corrupts the ancestor chains and panics.
func (t *MserTree) Emit(c *Component) {
	t.emitNode(c)
	// The merge bookkeeping is consumed by the evaluation chain; drop it to
	// bound memory over the sweep.
	c.children = nil
}

// stepBack returns the threshold immediately before v in sweep order.
func (t *MserTree) stepBack(v uint8) uint8 {
	if t.params.DarkToBright {
		return v - 1
	}
	return v + 1
}

// earliestAttainer returns the earliest threshold in sweep order whose
// delta-shifted target reaches v. At the sweep's starting value the
// target is clamped there, so every threshold reaches it and the
// earliest is the start itself.
func (t *MserTree) earliestAttainer(v uint8) uint8 {
	if t.params.DarkToBright {
		if v == 0 {
			return 0
		}
		x := int(v) + int(t.params.Delta)
		if x > 255 {
			x = 255
		}
		return uint8(x)
	}
	if v == 255 {
		return 255
	}
	x := int(v) - int(t.params.Delta)
	if x < 0 {
		x = 0
	}
	return uint8(x)
}

// clampStep confines u to the thresholds strictly after lo and up to hi in
// sweep order. Saturated delta arithmetic can push u outside that span.
func (t *MserTree) clampStep(u, lo, hi uint8) uint8 {
	if t.cmp(u, lo) <= 0 {
		if t.params.DarkToBright {
			u = lo + 1
		} else {
			u = lo - 1
		}
	}
	if t.cmp(u, hi) > 0 {
		u = hi
	}
	return u
}

// foundNewMinimum filters a confirmed local minimum and, on acceptance,
// registers the new region: previously accepted regions along the lineage
// become its children and it replaces them in the root set. It returns the
// accepted region, or nil when the candidate is rejected.
func (t *MserTree) foundNewMinimum(n *EvaluationNode) *Mser {
	if n.size < t.params.MinSize || n.size > t.params.MaxSize || n.score > t.params.MaxVar {
		return nil
	}
	m := newMser(n)
	m.children = append(m.children, n.mserThisOrChildren...)
	n.mserThisOrChildren = []*Mser{m}

	for _, c := range m.children {
		c.parent = m
		delete(t.roots, c)
	}
	t.roots[m] = struct{}{}
	t.nodes = append(t.nodes, m)
	return m
}

// PruneDuplicates removes regions too similar to their parent. For a region
// A with parent B, A is discarded when (size(B)-size(A))/size(B) is not
// greater than MinDiversity; its children are then re-parented to B and
// visited in the same pass. The traversal is top-down on purpose: the
// larger enclosing region survives over near-duplicates nested inside it.
// Running it again on an already pruned tree is a no-op.
func (t *MserTree) PruneDuplicates() {
	t.nodes = t.nodes[:0]
	for m := range t.roots {
		t.pruneChildren(m)
	}
	for m := range t.roots {
		t.nodes = append(t.nodes, m)
	}
}

func (t *MserTree) pruneChildren(m *Mser) {
	var valid []*Mser
	// m.children grows while iterating: children of a discarded node are
	// appended and examined in the same pass.
	for i := 0; i < len(m.children); i++ {
		c := m.children[i]
		div := float64(m.Size()-c.Size()) / float64(m.Size())
		if div > t.params.MinDiversity {
			valid = append(valid, c)
			t.pruneChildren(c)
		} else {
			m.children = append(m.children, c.children...)
			for _, cc := range c.children {
				cc.parent = m
			}
		}
	}
	m.children = valid
	t.nodes = append(t.nodes, valid...)
}

// Size returns the number of detected regions.
func (t *MserTree) Size() int {
	return len(t.nodes)
}

// Nodes returns all surviving regions, in no particular order. The slice is
// owned by the tree.
func (t *MserTree) Nodes() []*Mser {
	return t.nodes
}

// Roots returns the regions with no enclosing accepted region.
func (t *MserTree) Roots() []*Mser {
	rs := make([]*Mser, 0, len(t.roots))
	for m := range t.roots {
		rs = append(rs, m)
	}
	return rs
}

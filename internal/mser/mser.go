package mser

import "image"

// Mser is an accepted maximally stable extremal region. It is created only
// when a confirmed local minimum passes the size and score filter, and never
// resurrected afterwards: it may be demoted from the root set when a larger
// enclosing region is accepted later, or merged away entirely during
// pruning, at which point its children are re-parented.
type Mser struct {
	pixels PixelList
	value  uint8
	score  float64

	parent   *Mser
	children []*Mser
}

func newMser(n *EvaluationNode) *Mser {
	return &Mser{
		pixels: n.pixels,
		value:  n.value,
		score:  n.score,
	}
}

// Size returns the number of pixels in the region.
func (m *Mser) Size() int { return m.pixels.Size() }

// Value returns the threshold at which the region was detected.
func (m *Mser) Value() uint8 { return m.value }

// Score returns the instability score of the region. Lower means more
// stable.
func (m *Mser) Score() float64 { return m.score }

// Parent returns the enclosing accepted region, or nil for a root.
func (m *Mser) Parent() *Mser { return m.parent }

// Children returns the accepted regions nested directly inside this one.
// The returned slice is owned by the tree and must not be modified.
func (m *Mser) Children() []*Mser { return m.children }

// Pixels returns the region's pixel list view.
func (m *Mser) Pixels() PixelList { return m.pixels }

// Points materializes the region's pixel coordinates.
func (m *Mser) Points() []image.Point { return m.pixels.Points() }

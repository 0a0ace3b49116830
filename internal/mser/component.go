package mser

// Component is a connected region at the current sweep threshold, as grown
// by the component-tree builder. The same Component object lives across
// several threshold eras: each time the threshold rises past its value it is
// emitted to the handler, then either merged into an enclosing component or
// kept with a raised value.
//
// The children list records the components merged into this one since its
// last emission; the handler consumes it to stitch evaluation histories
// together and clears it afterwards to bound memory.
type Component struct {
	pixels   PixelList
	value    uint8
	children []*Component

	// evalNode is the evaluation node created at this component's previous
	// emission, nil before the first emission.
	evalNode *EvaluationNode
}

func newComponent(arena *PixelArena, value uint8) *Component {
	return &Component{pixels: NewPixelList(arena), value: value}
}

// Value returns the threshold at which the component currently exists.
func (c *Component) Value() uint8 { return c.value }

// Size returns the number of pixels in the component.
func (c *Component) Size() int { return c.pixels.Size() }

// Pixels returns a snapshot view of the component's pixel list. The view
// stays valid after the component grows or is merged away.
func (c *Component) Pixels() PixelList { return c.pixels }

func (c *Component) addPixel(idx int32) {
	c.pixels.Append(idx)
}

// merge absorbs o into c. o must already have been emitted; it is recorded
// as a child so the handler can link its evaluation history.
func (c *Component) merge(o *Component) {
	c.pixels.Concat(o.pixels)
	c.children = append(c.children, o)
}

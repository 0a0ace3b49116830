package mser

import "image"

// ComponentHandler consumes components closed by the sweep, in threshold
// order. Every component contributing pixels to a later component is emitted
// strictly before it.
type ComponentHandler interface {
	Emit(c *Component)
}

// suspended is a pixel parked on the boundary queue together with the index
// of the next neighbor direction to examine when it is resumed.
type suspended struct {
	pix  int32
	edge uint8
}

// boundaryQueue is a bucket priority queue over threshold ranks. Grayscale
// values give exactly 256 buckets, so popping the minimum is O(1) amortized.
type boundaryQueue struct {
	buckets [256][]suspended
	min     int
	count   int
}

func (q *boundaryQueue) push(s suspended, rank int) {
	q.buckets[rank] = append(q.buckets[rank], s)
	q.count++
	if rank < q.min {
		q.min = rank
	}
}

func (q *boundaryQueue) pop() (suspended, int, bool) {
	if q.count == 0 {
		return suspended{}, 0, false
	}
	for len(q.buckets[q.min]) == 0 {
		q.min++
	}
	b := q.buckets[q.min]
	s := b[len(b)-1]
	q.buckets[q.min] = b[:len(b)-1]
	q.count--
	return s, q.min, true
}

type treeBuilder struct {
	values  []uint8
	visited []bool
	width   int
	height  int
	arena   *PixelArena
	rank    func(v uint8) int
	cmp     Comparator

	boundary boundaryQueue
	stack    []*Component
	handler  ComponentHandler
}

// BuildComponentTree sweeps the grayscale image in the direction given by
// darkToBright and emits every connected component, in threshold order, to
// the handler. It returns the pixel arena backing the emitted pixel lists.
//
// The sweep is a single sequential flood over the image: pixels are visited
// in comparator order via the boundary queue, open components live on a
// stack with strictly descending rank toward the top, and a rising
// threshold closes components from the top of the stack.
func BuildComponentTree(gray *image.Gray, handler ComponentHandler, darkToBright bool) *PixelArena {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	arena := NewPixelArena(bounds)
	if w == 0 || h == 0 {
		return arena
	}

	b := &treeBuilder{
		values:  make([]uint8, w*h),
		visited: make([]bool, w*h),
		width:   w,
		height:  h,
		arena:   arena,
		handler: handler,
	}
	if darkToBright {
		b.rank = func(v uint8) int { return int(v) }
		b.cmp = DarkToBrightComparator
	} else {
		b.rank = func(v uint8) int { return 255 - int(v) }
		b.cmp = BrightToDarkComparator
	}
	for y := 0; y < h; y++ {
		row := gray.Pix[gray.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < w; x++ {
			b.values[y*w+x] = row[x]
		}
	}

	b.flood()
	return arena
}

// neighbor returns the pixel adjacent to idx in direction edge (0..3:
// right, down, left, up), or ok=false at the image border.
func (b *treeBuilder) neighbor(idx int32, edge int) (int32, bool) {
	x := int(idx) % b.width
	y := int(idx) / b.width
	switch edge {
	case 0:
		if x+1 >= b.width {
			return 0, false
		}
		return idx + 1, true
	case 1:
		if y+1 >= b.height {
			return 0, false
		}
		return idx + int32(b.width), true
	case 2:
		if x == 0 {
			return 0, false
		}
		return idx - 1, true
	default:
		if y == 0 {
			return 0, false
		}
		return idx - int32(b.width), true
	}
}

func (b *treeBuilder) flood() {
	cur := int32(0)
	curVal := b.values[0]
	edge := 0
	b.visited[0] = true
	b.stack = append(b.stack, newComponent(b.arena, curVal))

	for {
		// Examine the remaining neighbors of the current pixel. Discovering
		// a pixel below the current threshold suspends the current pixel and
		// descends immediately.
		descended := false
		for ; edge < 4; edge++ {
			q, ok := b.neighbor(cur, edge)
			if !ok || b.visited[q] {
				continue
			}
			b.visited[q] = true
			if b.rank(b.values[q]) >= b.rank(curVal) {
				b.boundary.push(suspended{pix: q}, b.rank(b.values[q]))
				continue
			}
			b.boundary.push(suspended{pix: cur, edge: uint8(edge + 1)}, b.rank(curVal))
			cur = q
			curVal = b.values[q]
			edge = 0
			b.stack = append(b.stack, newComponent(b.arena, curVal))
			descended = true
			break
		}
		if descended {
			continue
		}

		// All neighbors examined: the pixel belongs to the open component.
		b.stack[len(b.stack)-1].addPixel(cur)

		s, _, ok := b.boundary.pop()
		if !ok {
			break
		}
		if v := b.values[s.pix]; b.rank(v) != b.rank(curVal) {
			b.processStack(v)
			curVal = v
		}
		cur, edge = s.pix, int(s.edge)
	}

	// Threshold sweep complete: close every remaining component, merging
	// each into its enclosing one so parents are emitted after children.
	for len(b.stack) > 0 {
		top := b.pop()
		b.handler.Emit(top)
		if len(b.stack) > 0 {
			b.stack[len(b.stack)-1].merge(top)
		}
	}
}

func (b *treeBuilder) pop() *Component {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return top
}

// processStack closes components whose value lies below newVal. A closed
// component is emitted, then merged into the next component on the stack,
// or pushed back with its value raised to newVal when no component at or
// below newVal is open. Re-pushing keeps the same object alive, so its next
// emission continues the same region history.
func (b *treeBuilder) processStack(newVal uint8) {
	for {
		top := b.pop()
		b.handler.Emit(top)
		if len(b.stack) == 0 || b.cmp(newVal, b.stack[len(b.stack)-1].value) < 0 {
			top.value = newVal
			b.stack = append(b.stack, top)
			return
		}
		under := b.stack[len(b.stack)-1]
		under.merge(top)
		if b.cmp(newVal, under.value) == 0 {
			return
		}
	}
}

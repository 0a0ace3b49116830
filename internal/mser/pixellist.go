package mser

import "image"

// PixelArena backs the linked pixel lists of a single sweep. For every pixel
// of the image it stores the index of the next pixel in whatever list the
// pixel belongs to. A pixel joins exactly one list and lists only ever grow
// by concatenation, so links written once are never rewritten except at a
// list tail. A PixelList snapshot taken before a concatenation therefore
// stays valid: it iterates exactly its recorded number of links.
type PixelArena struct {
	next   []int32
	width  int
	offset image.Point
}

// NewPixelArena creates an arena for an image with the given bounds.
func NewPixelArena(bounds image.Rectangle) *PixelArena {
	return &PixelArena{
		next:   make([]int32, bounds.Dx()*bounds.Dy()),
		width:  bounds.Dx(),
		offset: bounds.Min,
	}
}

// Point converts a linear pixel index back to image coordinates.
func (a *PixelArena) Point(idx int32) image.Point {
	return image.Point{
		X: int(idx)%a.width + a.offset.X,
		Y: int(idx)/a.width + a.offset.Y,
	}
}

// PixelList is a value-type view of a linked list of pixel indices in a
// PixelArena. The zero value is an empty list.
type PixelList struct {
	arena *PixelArena
	head  int32
	tail  int32
	size  int
}

// NewPixelList creates an empty list over the given arena.
func NewPixelList(arena *PixelArena) PixelList {
	return PixelList{arena: arena, head: -1, tail: -1}
}

// Size returns the number of pixels in the list.
func (l PixelList) Size() int {
	return l.size
}

// Append adds a pixel index to the end of the list. The pixel must not be a
// member of any other list.
func (l *PixelList) Append(idx int32) {
	if l.size == 0 {
		l.head = idx
	} else {
		l.arena.next[l.tail] = idx
	}
	l.tail = idx
	l.size++
}

// Concat appends the entire other list in O(1). The other list must not be
// used for further appends afterwards.
func (l *PixelList) Concat(o PixelList) {
	if o.size == 0 {
		return
	}
	if l.size == 0 {
		l.head = o.head
	} else {
		l.arena.next[l.tail] = o.head
	}
	l.tail = o.tail
	l.size += o.size
}

// ForEach calls fn for every pixel index in list order.
func (l PixelList) ForEach(fn func(idx int32)) {
	idx := l.head
	for i := 0; i < l.size; i++ {
		fn(idx)
		idx = l.arena.next[idx]
	}
}

// Points materializes the list as image coordinates.
func (l PixelList) Points() []image.Point {
	pts := make([]image.Point, 0, l.size)
	l.ForEach(func(idx int32) {
		pts = append(pts, l.arena.Point(idx))
	})
	return pts
}

package tracking

import (
	"fmt"
	"sort"

	"github.com/dshills/snipstorm/internal/engine/buffer"
)

// Bias selects how a RangeList treats insertions exactly at a range boundary.
type Bias uint8

const (
	// BiasReject never absorbs boundary insertions: an insertion at a range's
	// start shifts the range, an insertion at its end leaves it alone.
	BiasReject Bias = iota

	// BiasGrow absorbs insertions at either boundary into the range.
	BiasGrow
)

// String returns the bias name.
func (b Bias) String() string {
	if b == BiasGrow {
		return "grow"
	}
	return "reject"
}

// Range is a tracked span [Start, End] in document offsets.
// Types that embed Range satisfy Tracked through the promoted Bounds method.
type Range struct {
	Start buffer.ByteOffset
	End   buffer.ByteOffset
}

// Bounds returns r itself so a RangeList can adjust embedded ranges in place.
func (r *Range) Bounds() *Range {
	return r
}

// IsEmpty returns true if the range has zero width.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Len returns the width of the range.
func (r Range) Len() buffer.ByteOffset {
	return r.End - r.Start
}

// Contains reports whether pos lies within [Start, End], ends included.
func (r Range) Contains(pos buffer.ByteOffset) bool {
	return pos >= r.Start && pos <= r.End
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d]", r.Start, r.End)
}

// Tracked is implemented by values whose bounds a RangeList maintains.
type Tracked interface {
	Bounds() *Range
}

// RangeList keeps a position-sorted set of ranges correct as the document
// is edited.
//
// RangeList is not thread-safe; it is driven from the document's change
// notification, which is delivered synchronously.
type RangeList[T Tracked] struct {
	items []T
	bias  Bias
}

// NewRangeList creates an empty list with the given boundary bias.
func NewRangeList[T Tracked](bias Bias) *RangeList[T] {
	return &RangeList[T]{bias: bias}
}

// Bias returns the current boundary bias.
func (l *RangeList[T]) Bias() Bias {
	return l.bias
}

// SetBias changes the boundary bias used by subsequent edits.
func (l *RangeList[T]) SetBias(b Bias) {
	l.bias = b
}

// Len returns the number of tracked ranges.
func (l *RangeList[T]) Len() int {
	return len(l.items)
}

// Ranges returns a copy of the tracked ranges in position order.
func (l *RangeList[T]) Ranges() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// PointIndex searches the ranges from startIndex for pos.
//
// When pos lies inside a range the range's index is returned with inside
// set. Otherwise the returned index is where a range at pos would be
// inserted. With excludeEdges, a position on the boundary of a non-empty
// range does not count as inside it.
func (l *RangeList[T]) PointIndex(pos buffer.ByteOffset, excludeEdges bool, startIndex int) (index int, inside bool) {
	i := max(startIndex, 0)
	for ; i < len(l.items); i++ {
		r := l.items[i].Bounds()
		if pos > r.End {
			continue
		}
		if pos == r.End {
			if excludeEdges && pos != r.Start {
				return i + 1, false
			}
			return i, true
		}
		if pos > r.Start || (pos == r.Start && !excludeEdges) {
			return i, true
		}
		return i, false
	}
	return i, false
}

// Add inserts item in position order.
func (l *RangeList[T]) Add(item T) {
	r := item.Bounds()
	i := sort.Search(len(l.items), func(i int) bool {
		o := l.items[i].Bounds()
		if o.Start != r.Start {
			return o.Start > r.Start
		}
		return o.End > r.End
	})
	l.items = append(l.items, item)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = item
}

// Remove drops item from the list, reporting whether it was present.
func (l *RangeList[T]) Remove(item T) bool {
	target := item.Bounds()
	for i, it := range l.items {
		if it.Bounds() == target {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every range.
func (l *RangeList[T]) Clear() {
	l.items = nil
}

// ApplyEdit adjusts every range for d.
//
// Ranges before the edit are unaffected, ranges after it shift, and ranges
// spanning it are resized. Boundary insertions follow the list's bias. When
// one range ends where the next begins, only the earlier range absorbs the
// insertion.
//
// For removals, the returned ranges are those the removal swallowed: a
// non-empty range lying wholly inside [Start, End), or an empty range
// strictly inside it. They are left in the list, collapsed to d.Start; the
// caller decides whether to drop them.
func (l *RangeList[T]) ApplyEdit(d Delta) (collapsed []T) {
	switch d.Type {
	case ChangeInsert:
		l.applyInsert(d.Start, d.Len())
	case ChangeRemove:
		collapsed = l.applyRemove(d.Start, d.End)
	}
	return collapsed
}

// ApplyEditTo is like ApplyEdit, except that an insertion at a boundary of
// target grows target alone, whatever the bias. Other ranges touching the
// insertion point reject it.
func (l *RangeList[T]) ApplyEditTo(d Delta, target T) (collapsed []T) {
	if d.Type != ChangeInsert {
		return l.ApplyEdit(d)
	}
	p, n := d.Start, d.Len()
	t := target.Bounds()
	if !t.Contains(p) {
		l.applyInsert(p, n)
		return nil
	}
	for _, item := range l.items {
		r := item.Bounds()
		switch {
		case r == t:
			r.End += n
		case r.End < p:
		case r.Start > p, r.Start == p && r.End == p:
			r.Start += n
			r.End += n
		case r.End > p:
			if r.Start == p {
				r.Start += n
			}
			r.End += n
		}
	}
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i].Bounds(), l.items[j].Bounds()
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End < b.End
	})
	return nil
}

func (l *RangeList[T]) applyInsert(p, n buffer.ByteOffset) {
	absorbed := false
	for _, item := range l.items {
		r := item.Bounds()
		switch {
		case r.End < p:
			// before the edit
		case r.Start > p:
			r.Start += n
			r.End += n
		case r.Start < p && r.End > p:
			r.End += n
		case r.Start < p: // r.End == p
			if l.bias == BiasGrow {
				r.End += n
				absorbed = true
			}
		default: // r.Start == p
			if l.bias == BiasGrow && !absorbed {
				r.End += n
				absorbed = r.End > r.Start
				continue
			}
			r.Start += n
			r.End += n
		}
	}
}

func (l *RangeList[T]) applyRemove(a, b buffer.ByteOffset) []T {
	if b <= a {
		return nil
	}
	n := b - a
	mapPos := func(x buffer.ByteOffset) buffer.ByteOffset {
		switch {
		case x <= a:
			return x
		case x < b:
			return a
		default:
			return x - n
		}
	}

	var collapsed []T
	for _, item := range l.items {
		r := item.Bounds()
		if r.IsEmpty() {
			if r.Start > a && r.Start < b {
				collapsed = append(collapsed, item)
			}
		} else if r.Start >= a && r.End <= b {
			collapsed = append(collapsed, item)
		}
		r.Start = mapPos(r.Start)
		r.End = mapPos(r.End)
	}
	return collapsed
}

package tabstop

import (
	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/engine/tracking"
	"github.com/dshills/snipstorm/internal/snippet/token"
)

// Range is one live occurrence of a tabstop in the document.
type Range struct {
	tracking.Range

	// Linked marks a mirror that copies the primary range's text.
	Linked bool

	// Format transforms the primary's text for a mirror.
	Format *token.Format

	tabstop *Tabstop
	marker  engine.MarkerID
}

// Tabstop is a navigable field with a primary range and its mirrors.
type Tabstop struct {
	index   int
	choices []string
	parents []*Tabstop

	ranges  []*Range
	primary *Range
	list    *tracking.RangeList[*Range]
}

func newTabstop(index int, choices []string) *Tabstop {
	return &Tabstop{
		index:   index,
		choices: choices,
		list:    tracking.NewRangeList[*Range](tracking.BiasReject),
	}
}

// Index returns the tabstop's number within its expansion.
func (t *Tabstop) Index() int {
	return t.index
}

// Choices returns the candidates offered when the tabstop is selected.
func (t *Tabstop) Choices() []string {
	return t.choices
}

// Ranges returns the current bounds of every range, primary first.
func (t *Tabstop) Ranges() []tracking.Range {
	out := make([]tracking.Range, 0, len(t.ranges))
	if t.primary != nil {
		out = append(out, t.primary.Range)
	}
	for _, r := range t.ranges {
		if r != t.primary {
			out = append(out, r.Range)
		}
	}
	return out
}

// Primary returns the bounds of the primary range.
func (t *Tabstop) Primary() (tracking.Range, bool) {
	if t.primary == nil {
		return tracking.Range{}, false
	}
	return t.primary.Range, true
}

func (t *Tabstop) add(r *Range) {
	r.tabstop = t
	if !r.Linked && t.primary == nil {
		t.primary = r
	}
	t.ranges = append(t.ranges, r)
	t.list.Add(r)
}

// remove drops r, promoting the next range when r was the primary.
func (t *Tabstop) remove(r *Range) {
	for i, o := range t.ranges {
		if o == r {
			t.ranges = append(t.ranges[:i], t.ranges[i+1:]...)
			break
		}
	}
	t.list.Remove(r)
	if t.primary != r {
		return
	}
	t.primary = nil
	if len(t.ranges) > 0 {
		t.primary = t.ranges[0]
		t.primary.Linked = false
		t.primary.Format = nil
	}
}

func (t *Tabstop) hasLinked() bool {
	for _, r := range t.ranges {
		if r.Linked {
			return true
		}
	}
	return false
}

func (t *Tabstop) isParent(of *Tabstop) bool {
	if of == nil {
		return false
	}
	for _, p := range of.parents {
		if p == t {
			return true
		}
	}
	return false
}

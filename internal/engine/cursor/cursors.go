package cursor

import "sort"

// CursorSet manages multiple cursors/selections.
//
// Selections are kept sorted by position. Strictly overlapping or
// identical selections are merged; adjacent ones are kept apart so that
// neighbouring fields can be selected together. One selection is the
// primary; it is remembered across sorting.
type CursorSet struct {
	selections []Selection
	primary    int
}

// NewCursorSet creates a cursor set with a single selection.
func NewCursorSet(initial Selection) *CursorSet {
	return &CursorSet{selections: []Selection{initial}}
}

// NewCursorSetFromSlice creates a cursor set whose primary is sels[0].
func NewCursorSetFromSlice(sels []Selection) *CursorSet {
	cs := &CursorSet{}
	cs.SetAll(sels)
	return cs
}

// Primary returns the primary selection.
func (cs *CursorSet) Primary() Selection {
	if len(cs.selections) == 0 {
		return Selection{}
	}
	return cs.selections[cs.primary]
}

// All returns a copy of all selections in document order.
func (cs *CursorSet) All() []Selection {
	result := make([]Selection, len(cs.selections))
	copy(result, cs.selections)
	return result
}

// PrimaryFirst returns all selections with the primary moved to the front.
func (cs *CursorSet) PrimaryFirst() []Selection {
	result := make([]Selection, 0, len(cs.selections))
	if len(cs.selections) == 0 {
		return result
	}
	result = append(result, cs.selections[cs.primary])
	for i, sel := range cs.selections {
		if i != cs.primary {
			result = append(result, sel)
		}
	}
	return result
}

// Count returns the number of cursors/selections.
func (cs *CursorSet) Count() int {
	return len(cs.selections)
}

// IsMulti returns true if there are multiple selections.
func (cs *CursorSet) IsMulti() bool {
	return len(cs.selections) > 1
}

// Set replaces all selections with a single selection.
func (cs *CursorSet) Set(sel Selection) {
	cs.selections = []Selection{sel}
	cs.primary = 0
}

// SetAll replaces all selections. The first element becomes the primary.
func (cs *CursorSet) SetAll(sels []Selection) {
	if len(sels) == 0 {
		cs.Set(NewCursorSelection(0))
		return
	}
	cs.selections = make([]Selection, len(sels))
	copy(cs.selections, sels)
	cs.primary = 0
	cs.normalize()
}

// Clamp clamps all selections to the valid range [0, maxOffset].
func (cs *CursorSet) Clamp(maxOffset ByteOffset) {
	for i, sel := range cs.selections {
		cs.selections[i] = sel.Clamp(maxOffset)
	}
	cs.normalize()
}

// Clone returns a deep copy of the cursor set.
func (cs *CursorSet) Clone() *CursorSet {
	clone := &CursorSet{
		selections: make([]Selection, len(cs.selections)),
		primary:    cs.primary,
	}
	copy(clone.selections, cs.selections)
	return clone
}

// Equals returns true if two cursor sets have the same selections and primary.
func (cs *CursorSet) Equals(other *CursorSet) bool {
	if other == nil || cs.Count() != other.Count() || cs.primary != other.primary {
		return false
	}
	for i, sel := range cs.selections {
		if sel != other.selections[i] {
			return false
		}
	}
	return true
}

// normalize sorts selections and merges overlapping or identical ones,
// tracking where the primary ends up.
func (cs *CursorSet) normalize() {
	if len(cs.selections) <= 1 {
		cs.primary = 0
		return
	}

	type entry struct {
		sel     Selection
		primary bool
	}
	entries := make([]entry, len(cs.selections))
	for i, sel := range cs.selections {
		entries[i] = entry{sel: sel, primary: i == cs.primary}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		si, sj := entries[i].sel.Start(), entries[j].sel.Start()
		if si != sj {
			return si < sj
		}
		return entries[i].sel.End() > entries[j].sel.End()
	})

	merged := entries[:1]
	for _, e := range entries[1:] {
		last := &merged[len(merged)-1]
		if e.sel.Overlaps(last.sel) || e.sel.Range() == last.sel.Range() {
			last.sel = last.sel.Merge(e.sel)
			last.primary = last.primary || e.primary
			continue
		}
		merged = append(merged, e)
	}

	cs.selections = cs.selections[:0]
	cs.primary = 0
	for i, e := range merged {
		cs.selections = append(cs.selections, e.sel)
		if e.primary {
			cs.primary = i
		}
	}
}

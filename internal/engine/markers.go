package engine

import (
	"sort"

	"github.com/dshills/snipstorm/internal/engine/tracking"
)

// MarkerID identifies a visual marker.
type MarkerID uint64

// Marker is a decoration drawn over a live range.
type Marker struct {
	ID    MarkerID
	Class string
	Range Range
}

type markerEntry struct {
	class string
	span  tracking.Tracked
}

type markerSet struct {
	nextID  MarkerID
	entries map[MarkerID]markerEntry
}

func newMarkerSet() *markerSet {
	return &markerSet{entries: make(map[MarkerID]markerEntry)}
}

// AddMarker decorates span with class. The marker follows span's bounds as
// its owner updates them.
func (e *Engine) AddMarker(span tracking.Tracked, class string) MarkerID {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.markers.nextID++
	id := e.markers.nextID
	e.markers.entries[id] = markerEntry{class: class, span: span}
	return id
}

// RemoveMarker removes a marker. Unknown ids are ignored.
func (e *Engine) RemoveMarker(id MarkerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.markers.entries, id)
}

// Markers returns the current markers ordered by position.
func (e *Engine) Markers() []Marker {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Marker, 0, len(e.markers.entries))
	for id, entry := range e.markers.entries {
		b := entry.span.Bounds()
		out = append(out, Marker{ID: id, Class: entry.class, Range: Range{Start: b.Start, End: b.End}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.Start != out[j].Range.Start {
			return out[i].Range.Start < out[j].Range.Start
		}
		if out[i].Range.End != out[j].Range.End {
			return out[i].Range.End > out[j].Range.End
		}
		return out[i].ID < out[j].ID
	})
	return out
}

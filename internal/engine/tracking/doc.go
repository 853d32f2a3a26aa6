// Package tracking keeps document ranges correct while the document is
// edited.
//
// # Deltas
//
// [Delta] is the structured change the host document delivers to its
// listeners: an insertion of Text at Start, or a removal of [Start, End).
// Replacements arrive as a removal followed by an insertion.
//
// # Range lists
//
// [RangeList] holds a position-sorted set of values embedding [Range] and
// rewrites their bounds on every delta:
//
//	list := tracking.NewRangeList[*field](tracking.BiasGrow)
//	list.Add(f)
//	list.ApplyEdit(tracking.NewInsertDelta(f.End, "x")) // f grows by one
//
// The [Bias] decides what happens to an insertion sitting exactly on a
// range boundary. [BiasGrow] absorbs it, which is what the field being
// typed into wants. [BiasReject] keeps the range's extent, so unrelated
// edits never leak into it.
//
// A RangeList is not safe for concurrent use.
package tracking

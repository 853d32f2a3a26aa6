// Package expand turns a snippet template into the text to insert and the
// tabstops to navigate.
//
// Expansion runs in three passes over the token stream. Variables are
// resolved first and never change afterwards. Each tabstop id then gets a
// canonical value, and every occurrence of the id is written with a copy of
// it. Ids are finally renumbered to 1..N in ascending order, with 0 kept for
// the final stop:
//
//	x := expand.New(resolver)
//	out := x.Expand(ctx, "foo(${1:bar}, ${1/.*/\\U$0/})", nil)
//	// out.Text == "foo(bar, BAR)"
//	// out.Tabstops[1] has a primary range over "bar" and a linked
//	// range over "BAR" carrying the upper-case format.
//
// Positions are reported both as row/column pairs relative to the
// insertion point and as byte offsets into the expanded text.
package expand

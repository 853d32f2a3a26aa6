// Package tabstop keeps the fields of an inserted snippet live while the
// user fills them in.
//
// A Session owns the tabstops of one expansion. It listens to the host
// document and:
//
//   - adjusts every range as text is inserted or removed, letting the
//     selected tabstop and its parents absorb typing at their edges
//   - copies the selected tabstop's text into its mirrors, through each
//     mirror's format, after every edit
//   - moves the selection between tabstops with TabNext
//   - detaches when navigation ends, the selection leaves the fields, the
//     document is swapped or emptied, or Detach is called
//
// Sessions are driven synchronously from document notifications and are
// not safe for concurrent use.
package tabstop

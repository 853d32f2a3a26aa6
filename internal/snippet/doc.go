// Package snippet ties the snippet engine to a host document.
//
// A Manager expands templates at every selection of the host, or expands
// the snippet whose trigger precedes each cursor when Tab is pressed, and
// then runs a tabstop session over the inserted text. Keys are routed
// through an input handler whose mode follows the session: "snippet"
// while a session is attached and "choice" while the choice prompt is
// open.
//
//	m := snippet.NewManager(eng, reg, snippet.WithLogger(logger))
//	if !m.HandleKey(ev) {
//		// insert the key as text
//	}
//
// Sub-packages hold the pieces: token parses templates, variable resolves
// variables and format transforms, expand produces text and tabstop
// definitions, tabstop tracks live ranges, and registry stores, matches
// and loads snippet definitions.
package snippet

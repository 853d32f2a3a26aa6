// Package registry stores snippet definitions by scope and finds the
// snippet to expand at the cursor.
//
// Snippet files use a stanza format:
//
//	# comment
//	snippet for forloop
//		for (${1:i}=0; $1<${2:10}; $1++) {
//			$0
//		}
//
//	regex /\s/fn/(/
//	snippet fn
//		function ${1:name}($2)
//
// or object literals carrying the same fields:
//
//	{"name": "log", "tabTrigger": "log", "content": "console.log($1)"}
//
// A snippet matches when its guard and trigger match at the end of the
// text before the cursor and its end trigger and end guard match at the
// start of the text after it. Lookup walks the active scopes of a scope
// (itself, its include scopes, then the global scope "_"), newest
// registration first.
//
// Loader reads files matching a doublestar pattern from an afero file
// system; the file name picks the scope ("go.snippets" holds scope "go").
// Watcher reloads files as they change.
package registry

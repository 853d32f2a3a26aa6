// Package variable resolves snippet variables and applies regex format
// transforms.
//
// A Resolver owns a table of named values. Each is either a Literal or a
// Computed function of the editor Context; LuaComputed builds the latter
// from a Lua expression. The built-in table covers the cursor context
// (CURRENT_WORD, SELECTION, CURRENT_LINE, PREV_LINE, LINE_INDEX,
// LINE_NUMBER), indentation (SOFT_TABS, TAB_SIZE), CLIPBOARD, the file
// (FILEPATH, FILENAME, FILENAME_BASE, DIRECTORY), comment tokens, user
// names and the CURRENT_* date and time fields. A TM_ prefix is ignored.
//
// Numeric names resolve to the capture groups of the match being
// replaced; a capital letter followed by digits (M1, T0) resolves to a
// named store in the Scope. Unknown names resolve to "".
//
// Format replaces the first match of a guard (every match with the g
// flag) with a replacement resolved once per match. Case directives apply
// left to right: \u and \l change the next character, \U and \L change
// everything up to \E or the end.
package variable

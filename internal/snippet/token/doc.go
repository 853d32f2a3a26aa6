// Package token splits snippet templates into literal text and markers.
//
// A template is plain text interleaved with markers:
//
//	$1  ${1}  ${1:placeholder}  ${1|one,two|}  ${1/guard/replacement/flags}
//	$NAME  ${NAME}  ${NAME:default}  ${NAME/guard/replacement/flags}  ${NAME:/upcase}
//
// Inside a replacement, $n and ${n} refer to capture groups, \u \l \U \L \E
// change case, and ${n:+if}, ${n:?if:else} and ${n:-else} select text by
// whether the group matched.
//
// Tokenize never fails. A marker that is not closed before the end of the
// template is kept as literal text, with anything well formed inside it
// still tokenized.
package token

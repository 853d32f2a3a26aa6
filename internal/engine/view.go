package engine

import "strings"

// SelectionView exposes the editor context around one selection: the
// selected text, the word and line under its cursor, indentation settings
// and host-provided values. Snippet variables are resolved against it.
type SelectionView struct {
	e   *Engine
	sel Selection
}

// View returns the context for sel.
func (e *Engine) View(sel Selection) *SelectionView {
	return &SelectionView{e: e, sel: sel}
}

// PrimaryView returns the context for the primary selection.
func (e *Engine) PrimaryView() *SelectionView {
	return e.View(e.PrimarySelection())
}

// Selection returns the selection the view was taken for.
func (v *SelectionView) Selection() Selection {
	return v.sel
}

// Cursor returns the line/column of the selection's start.
func (v *SelectionView) Cursor() Point {
	return v.e.OffsetToPoint(v.sel.Start())
}

// SelectedText returns the selected text.
func (v *SelectionView) SelectedText() string {
	return v.e.TextRange(v.sel.Start(), v.sel.End())
}

// CurrentWord returns the word touching the selection head.
func (v *SelectionView) CurrentWord() string {
	r := v.e.WordRangeAt(v.sel.Head)
	return v.e.TextRange(r.Start, r.End)
}

// CurrentLine returns the text of the cursor line.
func (v *SelectionView) CurrentLine() string {
	return v.e.LineText(v.Cursor().Line)
}

// PreviousLine returns the text of the line above the cursor, or "".
func (v *SelectionView) PreviousLine() string {
	line := v.Cursor().Line
	if line == 0 {
		return ""
	}
	return v.e.LineText(line - 1)
}

// LineIndex returns the zero-based cursor line.
func (v *SelectionView) LineIndex() int {
	return int(v.Cursor().Line)
}

// TabWidth returns the configured tab width.
func (v *SelectionView) TabWidth() int {
	return v.e.TabWidth()
}

// SoftTabs reports whether soft tabs are enabled.
func (v *SelectionView) SoftTabs() bool {
	return v.e.SoftTabs()
}

// TabString returns the text of one indentation level.
func (v *SelectionView) TabString() string {
	return v.e.TabString()
}

// Clipboard returns the clipboard contents.
func (v *SelectionView) Clipboard() string {
	return v.e.Clipboard()
}

// FilePath returns the path of the edited file.
func (v *SelectionView) FilePath() string {
	return v.e.FilePath()
}

// BlockCommentStart returns the block comment opener of the syntax.
func (v *SelectionView) BlockCommentStart() string {
	return v.e.Comments().BlockStart
}

// BlockCommentEnd returns the block comment closer of the syntax.
func (v *SelectionView) BlockCommentEnd() string {
	return v.e.Comments().BlockEnd
}

// LineComment returns the line comment prefix of the syntax.
func (v *SelectionView) LineComment() string {
	return v.e.Comments().Line
}

// Indentation returns the leading whitespace of the cursor line, cut at the
// cursor column.
func (v *SelectionView) Indentation() string {
	line := v.CurrentLine()
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	if col := int(v.Cursor().Column); col < len(indent) {
		indent = indent[:col]
	}
	return indent
}

package engine

import (
	"io"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/snipstorm/internal/engine/buffer"
	"github.com/dshills/snipstorm/internal/engine/cursor"
	"github.com/dshills/snipstorm/internal/engine/tracking"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in the buffer.
	ByteOffset = buffer.ByteOffset

	// Point represents a line/column position.
	Point = buffer.Point

	// Range represents a byte range in the buffer.
	Range = buffer.Range

	// Edit represents an edit operation.
	Edit = buffer.Edit

	// Selection represents a cursor selection.
	Selection = cursor.Selection

	// LineEnding specifies the line ending style.
	LineEnding = buffer.LineEnding

	// RevisionID uniquely identifies a buffer revision.
	RevisionID = buffer.RevisionID

	// Delta is a structured change delivered to change listeners.
	Delta = tracking.Delta
)

// Re-export constants.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
	LineEndingCR   = buffer.LineEndingCR
)

// CommentTokens are the comment delimiters of the current syntax.
type CommentTokens struct {
	BlockStart string
	BlockEnd   string
	Line       string
}

// Engine is the in-memory host document the snippet engine edits.
//
// It combines the text buffer, the multi-selection, visual markers,
// change/selection/swap notifications and a named command table. State is
// guarded by a read-write mutex, but listeners are always invoked with the
// lock released so they may call back into the engine.
type Engine struct {
	mu sync.RWMutex

	// Core components
	buf     *buffer.Buffer
	cursors *cursor.CursorSet
	markers *markerSet

	// Notification
	listeners listenerTable
	editDepth int
	selDirty  bool

	// Commands
	commands map[string]CommandFunc

	// Host context
	tabWidth   int
	softTabs   bool
	lineEnding buffer.LineEnding
	scope      string
	filePath   string
	clipboard  string
	comments   CommentTokens
	readOnly   bool
	closed     bool

	// Initialization
	initContent string
}

// New creates a new Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		tabWidth:   DefaultTabWidth,
		softTabs:   true,
		lineEnding: buffer.LineEndingLF,
		commands:   make(map[string]CommandFunc),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.buf = buffer.NewBufferFromString(e.initContent, e.bufferOptions()...)
	e.cursors = cursor.NewCursorSet(cursor.NewCursorSelection(0))
	e.markers = newMarkerSet()
	return e
}

// NewFromReader creates an Engine from an io.Reader.
func NewFromReader(r io.Reader, opts ...Option) (*Engine, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(append(opts, WithContent(string(data)))...), nil
}

func (e *Engine) bufferOptions() []buffer.Option {
	return []buffer.Option{
		buffer.WithTabWidth(e.tabWidth),
		buffer.WithLineEnding(e.lineEnding),
	}
}

// ============================================================================
// Read Operations
// ============================================================================

// Text returns the full buffer content.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Text()
}

// TextRange returns text in the range [start, end).
func (e *Engine) TextRange(start, end ByteOffset) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.TextRange(start, end)
}

// Len returns the total byte length.
func (e *Engine) Len() ByteOffset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.Len()
}

// IsEmpty returns true if the document holds no text.
func (e *Engine) IsEmpty() bool {
	return e.Len() == 0
}

// LineCount returns the number of lines.
func (e *Engine) LineCount() uint32 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineCount()
}

// LineText returns the text of a line without its line ending.
func (e *Engine) LineText(line uint32) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineText(line)
}

// OffsetToPoint converts a byte offset to a line/column position.
func (e *Engine) OffsetToPoint(offset ByteOffset) Point {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.OffsetToPoint(offset)
}

// PointToOffset converts a line/column position to a byte offset.
func (e *Engine) PointToOffset(point Point) ByteOffset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.PointToOffset(point)
}

// LineStartOffset returns the byte offset of the start of a line.
func (e *Engine) LineStartOffset(line uint32) ByteOffset {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.buf.LineStartOffset(line)
}

// WordRangeAt returns the range of the identifier-like word touching offset.
// The range is empty when offset is not next to a word character.
func (e *Engine) WordRangeAt(offset ByteOffset) Range {
	e.mu.RLock()
	defer e.mu.RUnlock()

	text := e.buf.Text()
	pos := int(max(0, min(offset, ByteOffset(len(text)))))
	start, end := pos, pos
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	for end < len(text) {
		r, size := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	return Range{Start: ByteOffset(start), End: ByteOffset(end)}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ============================================================================
// Write Operations
// ============================================================================

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (e *Engine) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	return e.Replace(offset, offset, text)
}

// Delete removes text in the given range.
func (e *Engine) Delete(start, end ByteOffset) error {
	_, err := e.Replace(start, end, "")
	return err
}

// Replace replaces [start, end) with text.
//
// Listeners see a removal delta followed by an insertion delta. After-edit
// and selection listeners fire once the outermost edit returns.
func (e *Engine) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	e.beginEdit()
	defer e.endEdit()

	if err := e.writable(); err != nil {
		return 0, err
	}
	if start < 0 || start > end || end > e.Len() {
		return 0, ErrRangeInvalid
	}

	if start < end {
		if _, err := e.apply(buffer.NewDelete(start, end)); err != nil {
			return 0, err
		}
	}
	if text == "" {
		return start, nil
	}
	res, err := e.apply(buffer.NewInsert(start, text))
	if err != nil {
		return 0, err
	}
	return res.NewRange.End, nil
}

// Type inserts text at every selection, replacing selected text, and leaves
// a collapsed cursor after each insertion.
func (e *Engine) Type(text string) error {
	e.beginEdit()
	defer e.endEdit()

	if err := e.writable(); err != nil {
		return err
	}

	e.mu.RLock()
	sels := e.cursors.All()
	e.mu.RUnlock()

	for i := len(sels) - 1; i >= 0; i-- {
		// Earlier replacements only move text after sels[i].
		if _, err := e.Replace(sels[i].Start(), sels[i].End(), text); err != nil {
			return err
		}
	}

	e.mu.Lock()
	collapsed := e.cursors.PrimaryFirst()
	for i, sel := range collapsed {
		collapsed[i] = cursor.NewCursorSelection(sel.End())
	}
	e.cursors.SetAll(collapsed)
	e.selDirty = true
	e.mu.Unlock()
	return nil
}

// Load swaps in a new document. Swap listeners fire before the content
// changes; selections and markers are reset.
func (e *Engine) Load(content string) error {
	if err := e.writable(); err != nil {
		return err
	}
	e.notifySwap()

	e.mu.Lock()
	e.buf = buffer.NewBufferFromString(content, e.bufferOptions()...)
	e.cursors = cursor.NewCursorSet(cursor.NewCursorSelection(0))
	e.markers = newMarkerSet()
	e.mu.Unlock()
	return nil
}

// Close tears the engine down. Later writes fail with ErrClosed; marker and
// listener removal keep working so that detaching clients never fail.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

func (e *Engine) writable() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	switch {
	case e.closed:
		return ErrClosed
	case e.readOnly:
		return ErrReadOnly
	}
	return nil
}

// apply performs one primitive edit, transforms selections and notifies
// change listeners with the lock released.
func (e *Engine) apply(edit Edit) (buffer.EditResult, error) {
	e.mu.Lock()
	res, err := e.buf.ApplyEdit(edit)
	if err != nil {
		e.mu.Unlock()
		return res, err
	}
	before := e.cursors.Clone()
	cursor.TransformCursorSet(e.cursors, Edit{Range: res.OldRange, NewText: e.buf.TextRange(res.NewRange.Start, res.NewRange.End)})
	if !before.Equals(e.cursors) {
		e.selDirty = true
	}

	var d Delta
	if res.OldRange.IsEmpty() {
		d = tracking.NewInsertDelta(res.NewRange.Start, e.buf.TextRange(res.NewRange.Start, res.NewRange.End))
	} else {
		d = tracking.NewRemoveDelta(res.OldRange.Start, res.OldRange.End, res.OldText)
	}
	d.Revision = e.buf.RevisionID()
	e.mu.Unlock()

	e.notifyChange(d)
	return res, nil
}

func (e *Engine) beginEdit() {
	e.mu.Lock()
	e.editDepth++
	e.mu.Unlock()
}

func (e *Engine) endEdit() {
	e.mu.Lock()
	e.editDepth--
	outermost := e.editDepth == 0
	e.mu.Unlock()
	if !outermost {
		return
	}

	e.notifyAfterEdit()

	e.mu.Lock()
	dirty := e.selDirty
	e.selDirty = false
	e.mu.Unlock()
	if dirty {
		e.notifySelection()
	}
}

// ============================================================================
// Configuration and Host Context
// ============================================================================

// TabWidth returns the tab width.
func (e *Engine) TabWidth() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tabWidth
}

// SetTabWidth sets the tab width.
func (e *Engine) SetTabWidth(width int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if width > 0 {
		e.tabWidth = width
		e.buf.SetTabWidth(width)
	}
}

// SoftTabs reports whether tabs are inserted as spaces.
func (e *Engine) SoftTabs() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.softTabs
}

// SetSoftTabs selects whether tabs are inserted as spaces.
func (e *Engine) SetSoftTabs(soft bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.softTabs = soft
}

// TabString returns the text inserted for one level of indentation.
func (e *Engine) TabString() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.softTabs {
		return strings.Repeat(" ", e.tabWidth)
	}
	return "\t"
}

// LineEnding returns the line ending style.
func (e *Engine) LineEnding() LineEnding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lineEnding
}

// Scope returns the syntax scope of the document.
func (e *Engine) Scope() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scope
}

// SetScope changes the syntax scope of the document.
func (e *Engine) SetScope(scope string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scope = scope
}

// FilePath returns the path of the file being edited, if any.
func (e *Engine) FilePath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filePath
}

// SetFilePath records the path of the file being edited.
func (e *Engine) SetFilePath(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filePath = path
}

// Clipboard returns the clipboard contents.
func (e *Engine) Clipboard() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clipboard
}

// SetClipboard replaces the clipboard contents.
func (e *Engine) SetClipboard(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clipboard = text
}

// Comments returns the comment tokens of the current syntax.
func (e *Engine) Comments() CommentTokens {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.comments
}

// SetComments replaces the comment tokens of the current syntax.
func (e *Engine) SetComments(c CommentTokens) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.comments = c
}

// IsReadOnly returns true if the engine is read-only.
func (e *Engine) IsReadOnly() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.readOnly
}

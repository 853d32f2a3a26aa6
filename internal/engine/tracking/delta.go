package tracking

import (
	"fmt"

	"github.com/dshills/snipstorm/internal/engine/buffer"
)

// ChangeType categorizes a document delta.
type ChangeType uint8

const (
	// ChangeInsert indicates text was inserted at Start; End = Start + len(Text).
	ChangeInsert ChangeType = iota

	// ChangeRemove indicates [Start, End) was removed; Text holds the removed text.
	ChangeRemove
)

// String returns a human-readable representation of the change type.
func (ct ChangeType) String() string {
	switch ct {
	case ChangeInsert:
		return "insert"
	case ChangeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Delta is a single structured document change as delivered to change
// listeners. A replacement is delivered as a remove followed by an insert.
type Delta struct {
	Type  ChangeType
	Start buffer.ByteOffset
	End   buffer.ByteOffset
	Text  string

	// Revision is the buffer revision after this delta was applied.
	Revision buffer.RevisionID
}

// NewInsertDelta creates a delta representing an insertion.
func NewInsertDelta(offset buffer.ByteOffset, text string) Delta {
	return Delta{
		Type:  ChangeInsert,
		Start: offset,
		End:   offset + buffer.ByteOffset(len(text)),
		Text:  text,
	}
}

// NewRemoveDelta creates a delta representing a removal.
func NewRemoveDelta(start, end buffer.ByteOffset, oldText string) Delta {
	return Delta{
		Type:  ChangeRemove,
		Start: start,
		End:   end,
		Text:  oldText,
	}
}

// Len returns the number of bytes inserted or removed.
func (d Delta) Len() buffer.ByteOffset {
	return d.End - d.Start
}

// IsInsert returns true if this is an insertion.
func (d Delta) IsInsert() bool {
	return d.Type == ChangeInsert
}

// IsRemove returns true if this is a removal.
func (d Delta) IsRemove() bool {
	return d.Type == ChangeRemove
}

// String returns a human-readable representation of the delta.
func (d Delta) String() string {
	text := d.Text
	if len(text) > 20 {
		text = text[:17] + "..."
	}
	switch d.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert %q at %d", text, d.Start)
	case ChangeRemove:
		return fmt.Sprintf("Remove %q at [%d:%d)", text, d.Start, d.End)
	default:
		return "Unknown delta"
	}
}

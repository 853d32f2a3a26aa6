package variable

import (
	"strconv"

	"github.com/dshills/snipstorm/internal/plugin/lua"
)

type valueKind uint8

const (
	kindLiteral valueKind = iota
	kindComputed
)

// Value is the definition of a variable: fixed text or a function of the
// editor context.
type Value struct {
	kind valueKind
	text string
	fn   func(ctx Context, indentation string) (string, error)
}

// Literal returns a Value that always resolves to s.
func Literal(s string) Value {
	return Value{kind: kindLiteral, text: s}
}

// Computed returns a Value produced by fn at resolution time. indentation
// is the leading tab run of the template line being resolved.
func Computed(fn func(ctx Context, indentation string) string) Value {
	return Value{
		kind: kindComputed,
		fn: func(ctx Context, indentation string) (string, error) {
			return fn(ctx, indentation), nil
		},
	}
}

// LuaComputed returns a Value that evaluates expr in state. The expression
// sees the editor context as the ctx table.
func LuaComputed(state *lua.State, expr string) Value {
	return Value{
		kind: kindComputed,
		fn: func(ctx Context, indentation string) (string, error) {
			return state.Eval(expr, Globals(ctx, indentation))
		},
	}
}

// IsLiteral reports whether v is fixed text.
func (v Value) IsLiteral() bool {
	return v.kind == kindLiteral
}

func (v Value) resolve(ctx Context, indentation string) (string, error) {
	switch v.kind {
	case kindComputed:
		if ctx == nil {
			return "", nil
		}
		return v.fn(ctx, indentation)
	default:
		return v.text, nil
	}
}

// Globals returns the editor context as a flat map, the shape exposed to
// Lua expressions.
func Globals(ctx Context, indentation string) map[string]any {
	return map[string]any{
		"SELECTION":           ctx.SelectedText(),
		"CURRENT_WORD":        ctx.CurrentWord(),
		"CURRENT_LINE":        ctx.CurrentLine(),
		"PREV_LINE":           ctx.PreviousLine(),
		"LINE_INDEX":          ctx.LineIndex(),
		"LINE_NUMBER":         ctx.LineIndex() + 1,
		"TAB_SIZE":            ctx.TabWidth(),
		"SOFT_TABS":           ctx.SoftTabs(),
		"CLIPBOARD":           ctx.Clipboard(),
		"FILEPATH":            ctx.FilePath(),
		"BLOCK_COMMENT_START": ctx.BlockCommentStart(),
		"BLOCK_COMMENT_END":   ctx.BlockCommentEnd(),
		"LINE_COMMENT":        ctx.LineComment(),
		"INDENTATION":         indentation,
	}
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

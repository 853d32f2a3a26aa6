package variable

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"

	"github.com/dshills/snipstorm/internal/snippet/token"
)

// Resolver supplies values for snippet variables.
type Resolver struct {
	mu     sync.RWMutex
	values map[string]Value

	regexMu sync.Mutex
	regexes map[string]*regexp2.Regexp

	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report computed-variable failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithClock sets the time source for the CURRENT_* variables.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver returns a resolver with the built-in variable table.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		values:  make(map[string]Value),
		regexes: make(map[string]*regexp2.Regexp),
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.defineBuiltins()
	return r
}

// Define sets or replaces a variable. A TM_ prefix on name is ignored.
func (r *Resolver) Define(name string, v Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[strings.TrimPrefix(name, "TM_")] = v
}

// Undefine removes a variable.
func (r *Resolver) Undefine(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, strings.TrimPrefix(name, "TM_"))
}

// Names returns the defined variable names, sorted.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.values))
	for name := range r.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the value of name. scope may be nil.
func (r *Resolver) Resolve(ctx Context, scope *Scope, name, indentation string) string {
	if i, ok := groupRef(name); ok {
		return scope.group(i)
	}
	if letter, i, ok := storeRef(name); ok {
		return scope.store(letter, i)
	}

	name = strings.TrimPrefix(name, "TM_")
	r.mu.RLock()
	v, ok := r.values[name]
	r.mu.RUnlock()
	if !ok {
		return ""
	}

	s, err := v.resolve(ctx, indentation)
	if err != nil {
		r.logger.Warn().Err(err).Str("variable", name).Msg("variable resolution failed")
		return ""
	}
	return s
}

// Evaluate resolves v with its format and function applied. It returns
// either the text to emit, or (useBody) the branch of tokens the caller
// should continue with: the default when the value is empty, or the
// if/else branch of a conditional.
func (r *Resolver) Evaluate(ctx Context, scope *Scope, v *token.Variable, indentation string) (text string, body []token.Token, useBody bool) {
	value := r.Resolve(ctx, scope, v.Name, indentation)
	if v.Format != nil {
		value = r.Format(ctx, scope, value, v.Format)
	}
	value = applyFunc(v.Func, value)

	switch v.Cond {
	case token.CondIf:
		if value != "" {
			return "", v.If, true
		}
		return "", nil, true
	case token.CondIfElse:
		if value != "" {
			return "", v.If, true
		}
		return "", v.Else, true
	}

	if value != "" {
		return value, nil, false
	}
	return "", v.Default, true
}

func applyFunc(fn, value string) string {
	switch fn {
	case "upcase":
		return upper(value)
	case "downcase":
		return lower(value)
	default:
		return value
	}
}

func (r *Resolver) defineBuiltins() {
	ctxValue := func(fn func(ctx Context) string) Value {
		return Computed(func(ctx Context, _ string) string { return fn(ctx) })
	}
	clock := func(layout string) Value {
		return Computed(func(Context, string) string { return r.now().Format(layout) })
	}

	selection := Computed(func(ctx Context, indentation string) string {
		return reindent(ctx.SelectedText(), indentation)
	})

	builtins := map[string]Value{
		"CURRENT_WORD":        ctxValue(Context.CurrentWord),
		"SELECTION":           selection,
		"SELECTED_TEXT":       selection,
		"CURRENT_LINE":        ctxValue(Context.CurrentLine),
		"PREV_LINE":           ctxValue(Context.PreviousLine),
		"LINE_INDEX":          ctxValue(func(ctx Context) string { return itoa(ctx.LineIndex()) }),
		"LINE_NUMBER":         ctxValue(func(ctx Context) string { return itoa(ctx.LineIndex() + 1) }),
		"SOFT_TABS":           ctxValue(func(ctx Context) string { return yesNo(ctx.SoftTabs()) }),
		"TAB_SIZE":            ctxValue(func(ctx Context) string { return itoa(ctx.TabWidth()) }),
		"CLIPBOARD":           ctxValue(Context.Clipboard),
		"FILEPATH":            ctxValue(Context.FilePath),
		"FILENAME":            ctxValue(func(ctx Context) string { return fileName(ctx.FilePath()) }),
		"FILENAME_BASE":       ctxValue(func(ctx Context) string { return fileBase(ctx.FilePath()) }),
		"DIRECTORY":           ctxValue(func(ctx Context) string { return directory(ctx.FilePath()) }),
		"WORKSPACE_NAME":      Literal("Unknown"),
		"FULLNAME":            Literal("Unknown"),
		"BLOCK_COMMENT_START": ctxValue(Context.BlockCommentStart),
		"BLOCK_COMMENT_END":   ctxValue(Context.BlockCommentEnd),
		"LINE_COMMENT":        ctxValue(Context.LineComment),

		"CURRENT_YEAR":             clock("2006"),
		"CURRENT_YEAR_SHORT":       clock("06"),
		"CURRENT_MONTH":            clock("01"),
		"CURRENT_MONTH_NAME":       clock("January"),
		"CURRENT_MONTH_NAME_SHORT": clock("Jan"),
		"CURRENT_DATE":             clock("02"),
		"CURRENT_DAY_NAME":         clock("Monday"),
		"CURRENT_DAY_NAME_SHORT":   clock("Mon"),
		"CURRENT_HOUR":             clock("15"),
		"CURRENT_MINUTE":           clock("04"),
		"CURRENT_SECOND":           clock("05"),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, v := range builtins {
		r.values[name] = v
	}
}

var continuation = regexp2.MustCompile(`\n\r?([ \t]*\S)`, regexp2.ECMAScript)

// reindent prefixes every non-blank continuation line with indentation.
func reindent(text, indentation string) string {
	if indentation == "" || !strings.Contains(text, "\n") {
		return text
	}
	out, err := continuation.ReplaceFunc(text, func(m regexp2.Match) string {
		return "\n" + indentation + m.GroupByNumber(1).String()
	}, -1, -1)
	if err != nil {
		return text
	}
	return out
}

func fileName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func fileBase(path string) string {
	name := fileName(path)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}

func directory(path string) string {
	return path[:len(path)-len(fileName(path))]
}

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/dshills/snipstorm/internal/app"
	"github.com/dshills/snipstorm/internal/engine"
	"github.com/dshills/snipstorm/internal/snippet"
	"github.com/dshills/snipstorm/internal/snippet/tabstop"
)

// errNoTrigger is returned when Tab expansion finds no snippet.
var errNoTrigger = errors.New("no snippet trigger before the cursor")

type expandFlags struct {
	file  string
	line  int
	col   int
	scope string
	name  string
}

// newExpandCmd creates the expand command.
func newExpandCmd(g *globalFlags) *cobra.Command {
	flags := &expandFlags{}

	cmd := &cobra.Command{
		Use:   "expand [TEMPLATE|-]",
		Short: "Expand a snippet into a document and show its tabstops",
		Long: `Expand a snippet into a document and show its tabstops.

The document is the content of --file, or empty. The snippet is the TEMPLATE
argument, the template read from stdin when TEMPLATE is "-", or the snippet
named by --name. Without any of these the command behaves like pressing Tab:
the snippet whose trigger ends at the cursor is expanded.`,
		Example: `  snipstorm expand 'for ${1:i} := 0; $1 < ${2:n}; $1++ {\n\t$0\n}'
  snipstorm expand --file main.go --line 12 --col 3 -s ./snippets
  echo 'fmt.Println($1)' | snipstorm expand -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, g, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Document to expand into")
	cmd.Flags().IntVarP(&flags.line, "line", "l", 0, "Cursor line, 1-based (default: last line)")
	cmd.Flags().IntVar(&flags.col, "col", 0, "Cursor column in bytes, 1-based (default: end of line)")
	cmd.Flags().StringVar(&flags.scope, "scope", "", "Snippet scope (default: derived from --file)")
	cmd.Flags().StringVarP(&flags.name, "name", "n", "", "Expand the registered snippet with this name")

	return cmd
}

func runExpand(cmd *cobra.Command, g *globalFlags, flags *expandFlags, args []string) error {
	if flags.name != "" && len(args) > 0 {
		return errors.New("--name and TEMPLATE are mutually exclusive")
	}

	template := ""
	if len(args) == 1 {
		template = args[0]
		if template == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return errors.Errorf("reading template: %w", err)
			}
			template = strings.TrimSuffix(string(data), "\n")
		}
	}

	content, err := readDocument(flags.file)
	if err != nil {
		return err
	}

	opts := g.options(cmd)
	opts.FilePath = flags.file
	opts.Scope = flags.scope
	opts.Content = content
	application, err := app.New(opts)
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	eng := application.Engine()
	eng.SetCursor(cursorOffset(eng, flags.line, flags.col))

	m := application.Manager()
	switch {
	case flags.name != "":
		err = m.InsertByName(flags.name)
	case len(args) == 1:
		err = m.InsertSnippet(template)
	default:
		if !m.ExpandWithTab() {
			err = errNoTrigger
		}
	}
	if err != nil {
		return err
	}

	printExpansion(cmd.OutOrStdout(), eng, m)
	return nil
}

// readDocument returns the content of path, or "" when path is empty or
// does not exist yet.
func readDocument(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// cursorOffset converts a 1-based line and column to an offset. Zero values
// select the last line and the end of the line.
func cursorOffset(eng *engine.Engine, line, col int) engine.ByteOffset {
	if line <= 0 {
		return eng.Len()
	}
	row := uint32(line - 1)
	if col <= 0 {
		return eng.PointToOffset(engine.Point{Line: row, Column: uint32(len(eng.LineText(row)))})
	}
	return eng.PointToOffset(engine.Point{Line: row, Column: uint32(col - 1)})
}

func printExpansion(w io.Writer, eng *engine.Engine, m *snippet.Manager) {
	st := newStyles(w)
	text := eng.Text()

	if !m.Active() {
		fmt.Fprintln(w, text)
		p := eng.OffsetToPoint(eng.PrimarySelection().Head)
		fmt.Fprintln(w, st.paint(st.dim, fmt.Sprintf("cursor %d:%d", p.Line+1, p.Column+1)))
		return
	}

	s := m.Session()
	stops := s.Tabstops()
	fmt.Fprintln(w, highlight(text, stops, s.Selected(), st))

	// Navigation order: 1..N, then the final stop.
	sort.SliceStable(stops, func(i, j int) bool {
		return order(stops[i]) < order(stops[j])
	})

	fmt.Fprintln(w, st.paint(st.heading, "tabstops"))
	for _, ts := range stops {
		mark := " "
		if ts == s.Selected() {
			mark = "*"
		}
		var spans []string
		for _, r := range ts.Ranges() {
			spans = append(spans, fmt.Sprintf("%d-%d", r.Start, r.End))
		}
		value := ""
		if r, ok := ts.Primary(); ok {
			value = fmt.Sprintf("%q", eng.TextRange(r.Start, r.End))
		}
		line := fmt.Sprintf("%s $%-2d %-16s %s", mark, ts.Index(), strings.Join(spans, ","), value)
		if choices := ts.Choices(); len(choices) > 0 {
			line += " " + st.paint(st.dim, strings.Join(choices, "|"))
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func order(ts *tabstop.Tabstop) int {
	if ts.Index() == 0 {
		return int(^uint(0) >> 1)
	}
	return ts.Index()
}

// highlight paints tabstop ranges in text, the selected tabstop strongest.
// Empty ranges are shown as a cursor mark when styling is enabled.
func highlight(text string, stops []*tabstop.Tabstop, selected *tabstop.Tabstop, st styleSet) string {
	if !st.enabled {
		return text
	}

	const (
		plain = iota
		field
		active
	)
	class := make([]int, len(text))
	cursors := make(map[int]bool)
	for _, ts := range stops {
		c := field
		if ts == selected {
			c = active
		}
		for _, r := range ts.Ranges() {
			if r.Start == r.End {
				cursors[int(r.Start)] = true
				continue
			}
			for i := r.Start; i < r.End && int(i) < len(class); i++ {
				class[i] = max(class[i], c)
			}
		}
	}

	styles := map[int]func(string) string{
		plain:  func(s string) string { return s },
		field:  func(s string) string { return st.paint(st.field, s) },
		active: func(s string) string { return st.paint(st.active, s) },
	}

	var b strings.Builder
	start := 0
	flush := func(end int) {
		if end > start {
			b.WriteString(styles[class[start]](text[start:end]))
		}
		start = end
	}
	for i := 0; i <= len(text); i++ {
		if cursors[i] {
			flush(i)
			b.WriteString(st.paint(st.cursor, "▏"))
		}
		if i == len(text) || (i > start && class[i] != class[start]) {
			flush(i)
		}
	}
	return b.String()
}

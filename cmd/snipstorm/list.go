package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dshills/snipstorm/internal/app"
	"github.com/dshills/snipstorm/internal/snippet/registry"
)

type listFlags struct {
	scope string
}

// newListCmd creates the list command.
func newListCmd(g *globalFlags) *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list [DIR...]",
		Short: "List loaded snippets by scope",
		Long: `List loaded snippets by scope.

Snippets are loaded from the configured directories, --snippets and DIR.
With --scope only the snippets active in that scope are listed: the scope
itself, its included scopes and the global scope.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.options(cmd)
			opts.SnippetDirs = append(append([]string(nil), opts.SnippetDirs...), args...)
			application, err := app.New(opts)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			printSnippets(cmd.OutOrStdout(), application.Registry(), flags.scope)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.scope, "scope", "", "Only list snippets active in this scope")

	return cmd
}

func printSnippets(w io.Writer, reg *registry.Registry, scope string) {
	st := newStyles(w)

	scopes := reg.Scopes()
	if scope != "" {
		scopes = reg.ActiveScopes(scope)
	}

	for _, name := range scopes {
		snippets := reg.Snippets(name)
		if len(snippets) == 0 {
			continue
		}
		sort.SliceStable(snippets, func(i, j int) bool {
			return label(snippets[i]) < label(snippets[j])
		})

		fmt.Fprintln(w, st.paint(st.heading, name))
		for _, s := range snippets {
			fmt.Fprintf(w, "  %-20s %-20s %s\n", label(s), trigger(s), st.paint(st.dim, s.Source))
		}
	}
}

func label(s *registry.Snippet) string {
	if s.Name != "" {
		return s.Name
	}
	return s.TabTrigger
}

func trigger(s *registry.Snippet) string {
	switch {
	case s.TabTrigger != "":
		return s.TabTrigger
	case s.Trigger != "":
		return "/" + s.Trigger + "/"
	case s.EndTrigger != "":
		return "/" + s.EndTrigger + "/ (after)"
	}
	return "-"
}

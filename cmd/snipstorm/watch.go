package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/snipstorm/internal/app"
)

// newWatchCmd creates the watch command.
func newWatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [DIR...]",
		Short: "Reload snippet files as they change",
		Long: `Load snippet directories and reload snippet files as they change,
reporting each reload until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			st := newStyles(out)

			opts := g.options(cmd)
			opts.SnippetDirs = append(append([]string(nil), opts.SnippetDirs...), args...)
			opts.Watch = true
			opts.OnReload = func(path string, n int, err error) {
				if err != nil {
					fmt.Fprintf(out, "%s %s: %v\n", st.paint(st.active, "error"), path, err)
					return
				}
				fmt.Fprintf(out, "%s %s (%d snippets)\n", st.paint(st.cursor, "reloaded"), path, n)
			}

			application, err := app.New(opts)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			fmt.Fprintf(out, "watching %d snippet directories, %d snippets loaded\n",
				len(application.SnippetDirs()), application.Registry().Len())
			return application.Run(cmd.Context())
		},
	}
}

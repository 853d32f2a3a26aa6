package main

import (
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/dshills/snipstorm/internal/snippet/registry"
)

type parseFlags struct {
	scope string
	check bool
}

// newParseCmd creates the parse command.
func newParseCmd() *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse FILE...",
		Short: "Print the snippet definitions in snippet files as YAML",
		Long: `Print the snippet definitions in snippet files as YAML.

With --check every definition is also compiled, and invalid trigger or
guard patterns are reported as errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.scope, "scope", "", "Scope for definitions without one (default: from the file name)")
	cmd.Flags().BoolVar(&flags.check, "check", false, "Compile every definition and report errors")

	return cmd
}

func runParse(cmd *cobra.Command, flags *parseFlags, args []string) error {
	var (
		all  []registry.Definition
		errs error
	)
	reg := registry.New()
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = multierr.Append(errs, errors.Errorf("reading %s: %w", path, err))
			continue
		}

		scope := flags.scope
		if scope == "" {
			scope = registry.ScopeForFile(path)
		}
		defs := registry.ParseFile(string(data))
		for i := range defs {
			defs[i].Source = path
			if defs[i].Scope == "" {
				defs[i].Scope = scope
			}
		}
		if flags.check {
			errs = multierr.Append(errs, reg.Register(defs, scope))
		}
		all = append(all, defs...)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(all); err != nil {
		return errors.Errorf("encoding definitions: %w", err)
	}
	if err := enc.Close(); err != nil {
		return errors.Errorf("encoding definitions: %w", err)
	}
	return errs
}

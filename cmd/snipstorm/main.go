// Package main is the entry point for the snipstorm command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dshills/snipstorm/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, short, date)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(buildVersion())); err != nil {
		return 1
	}
	return 0
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	config    string
	snippets  []string
	logLevel  string
	ignoreEnv bool
}

// options builds application options from the persistent flags.
func (g *globalFlags) options(cmd *cobra.Command) app.Options {
	return app.Options{
		ConfigPath:  g.config,
		SnippetDirs: g.snippets,
		LogLevel:    g.logLevel,
		LogOutput:   cmd.ErrOrStderr(),
		IgnoreEnv:   g.ignoreEnv,
	}
}

// newRootCmd creates the root command for the snipstorm CLI.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "snipstorm",
		Short: "Expand snippets and drive tabstop sessions",
		Long: `Snipstorm expands snippet templates with tabstops, placeholders, choices,
variables and regex transforms, and manages the snippet files they come from.

Snippet files are named after their scope (go.snippets, _.snippets) and are
loaded from the directories in the configuration and from --snippets.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&g.config, "config", "c", "", "Path to configuration file")
	cmd.PersistentFlags().StringSliceVarP(&g.snippets, "snippets", "s", nil, "Additional snippet directories")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&g.ignoreEnv, "ignore-env", false, "Ignore SNIPSTORM_* environment overrides")

	lipgloss.SetHasDarkBackground(true)

	cmd.AddGroup(&cobra.Group{ID: "snippets", Title: "Snippet Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "files", Title: "File Commands:"})

	addGroupedCommand(cmd, newExpandCmd(g), "snippets")
	addGroupedCommand(cmd, newListCmd(g), "snippets")
	addGroupedCommand(cmd, newTryCmd(g), "snippets")
	addGroupedCommand(cmd, newParseCmd(), "files")
	addGroupedCommand(cmd, newWatchCmd(g), "files")

	return cmd
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}

// styleSet holds lipgloss styles for command output.
type styleSet struct {
	enabled bool
	heading lipgloss.Style
	active  lipgloss.Style
	field   lipgloss.Style
	cursor  lipgloss.Style
	dim     lipgloss.Style
}

// newStyles returns a TTY-aware style set. Without a terminal every style
// renders text unchanged.
func newStyles(w io.Writer) styleSet {
	if !app.IsTerminal(w) {
		return styleSet{}
	}
	base := lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return styleSet{
		enabled: true,
		heading: base.Bold(true),
		active:  base.Reverse(true).Foreground(lipgloss.AdaptiveColor{Light: "12", Dark: "12"}),
		field:   base.Underline(true).Foreground(lipgloss.AdaptiveColor{Light: "12", Dark: "12"}),
		cursor:  base.Foreground(lipgloss.AdaptiveColor{Light: "10", Dark: "10"}),
		dim:     base.Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "7"}),
	}
}

// paint renders s line by line so multi-line text keeps its shape.
func (st styleSet) paint(style lipgloss.Style, s string) string {
	if !st.enabled || s == "" {
		return s
	}
	var out []byte
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '\n' {
			continue
		}
		if i > start {
			out = append(out, style.Render(s[start:i])...)
		}
		if i < len(s) {
			out = append(out, '\n')
		}
		start = i + 1
	}
	return string(out)
}

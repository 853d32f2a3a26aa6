package config

import "strings"

// EditorSection holds indentation settings for the host document.
type EditorSection struct {
	// TabWidth is the number of columns a tab spans.
	TabWidth int `toml:"tab_width" yaml:"tab_width"`

	// SoftTabs inserts spaces for template tabs.
	SoftTabs bool `toml:"soft_tabs" yaml:"soft_tabs"`
}

// TabString returns the text a template tab expands to.
func (e EditorSection) TabString() string {
	if !e.SoftTabs {
		return "\t"
	}
	return strings.Repeat(" ", max(e.TabWidth, 1))
}

// SnippetsSection configures snippet discovery.
type SnippetsSection struct {
	// Dirs are searched for snippet files.
	Dirs []string `toml:"dirs" yaml:"dirs"`

	// Pattern is a doublestar glob, relative to each dir, selecting
	// snippet files.
	Pattern string `toml:"pattern" yaml:"pattern"`

	// Watch reloads changed snippet files.
	Watch bool `toml:"watch" yaml:"watch"`

	// Nested lets an expansion inside an active session add to it
	// instead of replacing it.
	Nested bool `toml:"nested" yaml:"nested"`

	// Include maps a scope to the scopes it also draws snippets from.
	Include map[string][]string `toml:"include" yaml:"include"`
}

// KeymapsSection configures user key bindings.
type KeymapsSection struct {
	// Dirs are searched for keymap files, which override the defaults.
	Dirs []string `toml:"dirs" yaml:"dirs"`
}

// UserSection supplies the FULLNAME and WORKSPACE_NAME variables.
type UserSection struct {
	FullName      string `toml:"full_name" yaml:"full_name"`
	WorkspaceName string `toml:"workspace_name" yaml:"workspace_name"`
}

// LogSection configures logging.
type LogSection struct {
	// Level is one of trace, debug, info, warn, error or disabled.
	Level string `toml:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `toml:"format" yaml:"format"`

	// File receives log output instead of stderr when set.
	File string `toml:"file" yaml:"file"`
}

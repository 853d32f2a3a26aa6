// Package config loads snipstorm settings.
//
// Settings come from three places, later ones winning: built-in defaults,
// a TOML or YAML file, and SNIPSTORM_* environment variables. Indentation
// can further be overridden per file by .editorconfig rules through
// EditorFor.
//
//	[editor]
//	tab_width = 2
//	soft_tabs = true
//
//	[snippets]
//	dirs = ["~/.config/snipstorm/snippets"]
//	pattern = "**/*.snippets"
//	watch = true
//
//	[variables]
//	AUTHOR = "Jane"
//	SHOUT = "lua: string.upper(ctx.CURRENT_WORD)"
package config

package app

import (
	"path/filepath"
	"strings"
)

// ScopeForPath returns the snippet scope for a file, derived from its
// extension. Unknown extensions map to the extension itself.
func ScopeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case "":
		return ""
	case ".go":
		return "go"
	case ".rs":
		return "rust"
	case ".ts", ".tsx":
		return "typescript"
	case ".js", ".jsx", ".mjs":
		return "javascript"
	case ".py":
		return "python"
	case ".rb":
		return "ruby"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".cxx", ".hpp":
		return "cpp"
	case ".cs":
		return "csharp"
	case ".htm", ".html":
		return "html"
	case ".md", ".markdown":
		return "markdown"
	case ".sh", ".bash", ".zsh":
		return "sh"
	case ".yml", ".yaml":
		return "yaml"
	}
	return ext[1:]
}

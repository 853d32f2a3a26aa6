package config

import (
	"strconv"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"gitlab.com/tozd/go/errors"
)

// EditorFor returns the editor settings for the file at path: the
// configured values overlaid with any .editorconfig rules that apply to it.
func (c *Config) EditorFor(path string) (EditorSection, error) {
	out := c.Editor
	if path == "" {
		return out, nil
	}

	def, err := editorconfig.GetDefinitionForFilename(path)
	if err != nil {
		return out, errors.Errorf("reading editorconfig for %s: %w", path, err)
	}
	applyDefinition(&out, def)
	return out, nil
}

func applyDefinition(e *EditorSection, def *editorconfig.Definition) {
	switch def.IndentStyle {
	case editorconfig.IndentStyleTab:
		e.SoftTabs = false
	case editorconfig.IndentStyleSpaces:
		e.SoftTabs = true
	}

	if size, err := strconv.Atoi(def.IndentSize); err == nil && size > 0 {
		e.TabWidth = size
	} else if def.TabWidth > 0 {
		e.TabWidth = def.TabWidth
	}
}

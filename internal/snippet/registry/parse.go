package registry

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile parses snippet file text.
//
// A "snippet <trigger> [<name>]" line starts a definition. "key value"
// lines set its fields; "regex /guard/trigger/endTrigger/endGuard/" sets
// all four patterns. The following tab-indented lines, with one tab
// stripped, are the template. A line starting with "{" opens an object
// literal carrying the same fields. Lines starting with "#" are comments.
// Malformed object literals are skipped.
func ParseFile(text string) []Definition {
	lines := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")

	var (
		list    []Definition
		current Definition
		started bool
	)
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "{"):
			end := objectEnd(lines, i)
			var d Definition
			if err := yaml.Unmarshal([]byte(strings.Join(lines[i:end+1], "\n")), &d); err == nil {
				if d.Content != "" {
					list = append(list, d)
					current, started = Definition{}, false
				} else {
					current, started = d, d.TabTrigger != ""
				}
			}
			i = end
		case strings.HasPrefix(line, "\t"):
			end := bodyEnd(lines, i)
			body := make([]string, 0, end-i)
			for _, l := range lines[i:end] {
				body = append(body, strings.TrimPrefix(l, "\t"))
			}
			current.Content = strings.Join(body, "\n")
			list = append(list, current)
			current, started = Definition{}, false
			i = end - 1
		default:
			key, val, ok := strings.Cut(line, " ")
			if !ok || key == "" {
				continue
			}
			if key == "snippet" && started {
				current = Definition{}
			}
			if current.set(key, val) {
				started = true
			}
		}
	}
	return list
}

// set applies one stanza line and reports whether it started a snippet.
func (d *Definition) set(key, val string) bool {
	switch key {
	case "snippet":
		trigger, name, _ := strings.Cut(val, " ")
		d.TabTrigger = trigger
		if d.Name == "" {
			d.Name = strings.TrimSpace(name)
		}
		if d.Name == "" {
			d.Name = trigger
		}
		return true
	case "regex":
		parts := regexParts(val)
		for i, p := range []*string{&d.Guard, &d.Trigger, &d.EndTrigger, &d.EndGuard} {
			if i < len(parts) {
				*p = parts[i]
			}
		}
	case "name":
		d.Name = val
	case "tabTrigger":
		d.TabTrigger = val
	case "trigger":
		d.Trigger = val
	case "guard":
		d.Guard = val
	case "endTrigger":
		d.EndTrigger = val
	case "endGuard":
		d.EndGuard = val
	case "scope":
		d.Scope = val
	default:
		if d.Meta == nil {
			d.Meta = make(map[string]string)
		}
		d.Meta[key] = val
	}
	return false
}

// regexParts splits "/a/b/c/d/" on unescaped slashes. Escapes are kept.
func regexParts(val string) []string {
	start := strings.IndexByte(val, '/')
	if start < 0 {
		return nil
	}

	var (
		parts []string
		b     strings.Builder
	)
	for i := start + 1; i < len(val); i++ {
		switch c := val[i]; {
		case c == '\\' && i+1 < len(val):
			b.WriteByte(c)
			b.WriteByte(val[i+1])
			i++
		case c == '/':
			parts = append(parts, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(parts, b.String())
}

// bodyEnd returns the index just past the template starting at lines[i].
// Blank lines inside the template are kept; trailing ones are not.
func bodyEnd(lines []string, i int) int {
	end := i + 1
	for j := i + 1; j < len(lines); j++ {
		if strings.HasPrefix(lines[j], "\t") {
			end = j + 1
			continue
		}
		if lines[j] != "" {
			break
		}
	}
	return end
}

// objectEnd returns the index of the line closing the object literal
// opened at lines[i], or the last line when it never closes.
func objectEnd(lines []string, i int) int {
	depth := 0
	var quote byte
	for j := i; j < len(lines); j++ {
		line := lines[j]
		for k := 0; k < len(line); k++ {
			c := line[k]
			switch {
			case quote != 0:
				if c == '\\' {
					k++
				} else if c == quote {
					quote = 0
				}
			case c == '"' || c == '\'':
				quote = c
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					return j
				}
			}
		}
	}
	return len(lines) - 1
}

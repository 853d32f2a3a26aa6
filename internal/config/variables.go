package config

import (
	"maps"
	"slices"
	"strings"

	"github.com/dshills/snipstorm/internal/plugin/lua"
	"github.com/dshills/snipstorm/internal/snippet/variable"
)

// LuaPrefix marks a variable value as a Lua expression.
const LuaPrefix = "lua:"

// DefineVariables registers the user section and the variables table with
// r. Lua expressions run in state; without a state they are skipped.
func (c *Config) DefineVariables(r *variable.Resolver, state *lua.State) []string {
	if c.User.FullName != "" {
		r.Define("FULLNAME", variable.Literal(c.User.FullName))
	}
	if c.User.WorkspaceName != "" {
		r.Define("WORKSPACE_NAME", variable.Literal(c.User.WorkspaceName))
	}

	var skipped []string
	for _, name := range slices.Sorted(maps.Keys(c.Variables)) {
		value := c.Variables[name]
		expr, isLua := strings.CutPrefix(value, LuaPrefix)
		switch {
		case !isLua:
			r.Define(name, variable.Literal(value))
		case state != nil:
			r.Define(name, variable.LuaComputed(state, strings.TrimSpace(expr)))
		default:
			skipped = append(skipped, name)
		}
	}
	return skipped
}

// HasLuaVariables reports whether any variable needs a Lua state.
func (c *Config) HasLuaVariables() bool {
	for _, v := range c.Variables {
		if strings.HasPrefix(v, LuaPrefix) {
			return true
		}
	}
	return false
}

// Package lua hosts the sandboxed Lua runtime used for computed snippet
// variables.
//
// A State wraps a gopher-lua LState with only the base, table, string and
// math libraries opened. File loading and dynamic code loading are
// removed, and require only resolves whitelisted modules.
//
//	state, err := lua.NewState(lua.WithExecutionTimeout(time.Second))
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	out, err := state.Eval(`string.upper(ctx.FILENAME)`, map[string]any{
//	    "FILENAME": "main.go",
//	})
//
// Eval exposes its globals as the ctx table and converts the result to a
// string: strings and numbers verbatim, booleans as "true"/"false", nil as
// ErrNoResult. The Bridge type converts values in both directions.
package lua

package interp

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/shipshell/shipshell/core/shell"
)

// envValue exposes the session environment table to scripts as a
// mapping: env["KEY"], env["KEY"] = "value", "KEY" in env, plus get,
// delete, keys and items methods. Writes go straight through the shell
// state so subsequently spawned processes observe them.
type envValue struct {
	state *shell.State
}

var (
	_ starlark.Mapping   = (*envValue)(nil)
	_ starlark.HasSetKey = (*envValue)(nil)
	_ starlark.HasAttrs  = (*envValue)(nil)
)

func (e *envValue) String() string        { return "<env>" }
func (e *envValue) Type() string          { return "env" }
func (e *envValue) Freeze()               {}
func (e *envValue) Truth() starlark.Bool  { return starlark.True }
func (e *envValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: env") }

func (e *envValue) Get(k starlark.Value) (starlark.Value, bool, error) {
	key, ok := starlark.AsString(k)
	if !ok {
		return nil, false, fmt.Errorf("env key must be a string, got %s", k.Type())
	}
	val, found := e.state.LookupEnv(key)
	if !found {
		return nil, false, nil
	}
	return starlark.String(val), true, nil
}

func (e *envValue) SetKey(k, v starlark.Value) error {
	key, ok := starlark.AsString(k)
	if !ok {
		return fmt.Errorf("env key must be a string, got %s", k.Type())
	}
	val, ok := starlark.AsString(v)
	if !ok {
		return fmt.Errorf("env value must be a string, got %s", v.Type())
	}
	e.state.Setenv(key, val)
	return nil
}

func (e *envValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "get":
		return starlark.NewBuiltin("get", e.get), nil
	case "delete":
		return starlark.NewBuiltin("delete", e.delete), nil
	case "keys":
		return starlark.NewBuiltin("keys", e.keys), nil
	case "items":
		return starlark.NewBuiltin("items", e.items), nil
	}
	return nil, nil
}

func (e *envValue) AttrNames() []string {
	return []string{"delete", "get", "items", "keys"}
}

func (e *envValue) get(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string
	var fallback starlark.Value = starlark.None
	if err := starlark.UnpackArgs("get", args, kwargs, "key", &key, "default?", &fallback); err != nil {
		return nil, err
	}
	if val, found := e.state.LookupEnv(key); found {
		return starlark.String(val), nil
	}
	return fallback, nil
}

func (e *envValue) delete(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key string
	if err := starlark.UnpackArgs("delete", args, kwargs, "key", &key); err != nil {
		return nil, err
	}
	if err := e.state.Unsetenv(key); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (e *envValue) keys(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("keys", args, kwargs); err != nil {
		return nil, err
	}
	var out []starlark.Value
	for _, k := range e.state.Keys() {
		out = append(out, starlark.String(k))
	}
	return starlark.NewList(out), nil
}

func (e *envValue) items(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("items", args, kwargs); err != nil {
		return nil, err
	}
	var out []starlark.Value
	for _, k := range e.state.Keys() {
		out = append(out, starlark.Tuple{starlark.String(k), starlark.String(e.state.Getenv(k))})
	}
	return starlark.NewList(out), nil
}

package interp

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/shipshell/shipshell/core/exec"
	"github.com/shipshell/shipshell/core/shell"
)

// progBuiltin implements prog(name): a program reference with no
// resolution performed.
func (in *Interp) progBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs("prog", args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("prog: empty program name")
	}
	return &programValue{in: in, prog: exec.Prog(name)}, nil
}

// pipeBuiltin implements pipe(r1, ..., rn): a flattened pipeline of at
// least two stages.
func (in *Interp) pipeBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("pipe: unexpected keyword arguments")
	}

	runnables := make([]exec.Runnable, len(args))
	for i, a := range args {
		rv, ok := a.(runnableValue)
		if !ok {
			return nil, fmt.Errorf("pipe: argument %d is a %s, want a runnable", i+1, a.Type())
		}
		runnables[i] = rv.asRunnable()
	}

	p, err := exec.Pipe(runnables...)
	if err != nil {
		return nil, err
	}
	return &pipelineValue{in: in, pipe: p}, nil
}

// subBuiltin implements sub(r): an isolation boundary around one
// runnable.
func (in *Interp) subBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var v starlark.Value
	if err := starlark.UnpackArgs("sub", args, kwargs, "runnable", &v); err != nil {
		return nil, err
	}
	rv, ok := v.(runnableValue)
	if !ok {
		return nil, fmt.Errorf("sub: argument is a %s, want a runnable", v.Type())
	}
	return &subshellValue{in: in, sub: exec.Sub(rv.asRunnable())}, nil
}

// cdBuiltin implements cd(path=None). No path means HOME; "-" means
// OLDPWD, echoing the target like interactive shells do.
func (in *Interp) cdBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var path string
	if err := starlark.UnpackArgs("cd", args, kwargs, "path?", &path); err != nil {
		return nil, err
	}

	if path == "-" {
		old, ok := in.state.LookupEnv(shell.EnvOldPWD)
		if !ok {
			return nil, fmt.Errorf("cd: OLDPWD not set")
		}
		if err := in.state.Chdir(old); err != nil {
			return nil, err
		}
		fmt.Fprintln(in.stdout, old)
		return starlark.None, nil
	}

	if err := in.state.Chdir(path); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// pwdBuiltin implements pwd() -> str.
func (in *Interp) pwdBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("pwd", args, kwargs); err != nil {
		return nil, err
	}
	return starlark.String(in.state.Getwd()), nil
}

// pushdBuiltin implements pushd(path).
func (in *Interp) pushdBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var path string
	if err := starlark.UnpackArgs("pushd", args, kwargs, "path", &path); err != nil {
		return nil, err
	}
	if err := in.state.Pushd(path); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// popdBuiltin implements popd() -> str, returning the directory changed
// to.
func (in *Interp) popdBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("popd", args, kwargs); err != nil {
		return nil, err
	}
	dir, err := in.state.Popd()
	if err != nil {
		return nil, err
	}
	return starlark.String(dir), nil
}

// dirsBuiltin implements dirs() -> list, newest-first with the current
// directory first.
func (in *Interp) dirsBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("dirs", args, kwargs); err != nil {
		return nil, err
	}
	var out []starlark.Value
	for _, d := range in.state.Dirs() {
		out = append(out, starlark.String(d))
	}
	return starlark.NewList(out), nil
}

// whichBuiltin implements which(name) -> str, resolving against the
// live PATH.
func (in *Interp) whichBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackArgs("which", args, kwargs, "name", &name); err != nil {
		return nil, err
	}
	path, err := exec.LookPath(in.state, name)
	if err != nil {
		return nil, err
	}
	return starlark.String(path), nil
}

// sourceBuiltin implements source(filename): execute a file against the
// current namespace under the nested evaluation context.
func (in *Interp) sourceBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var filename string
	if err := starlark.UnpackArgs("source", args, kwargs, "filename", &filename); err != nil {
		return nil, err
	}
	if err := in.Source(filename); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

// exitBuiltin implements exit(code=0) and quit(code=0).
func (in *Interp) exitBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	code := 0
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "code?", &code); err != nil {
		return nil, err
	}
	in.exit(code)
	return starlark.None, nil
}

package interp

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/shipshell/shipshell/core/exec"
)

// runnableValue is implemented by the Starlark wrappers around the four
// runnable kinds. Every runnableValue is uninvoked by construction;
// invocation always produces a fresh resultValue.
type runnableValue interface {
	starlark.Value
	asRunnable() exec.Runnable
}

// invoke runs a runnable on the interpreter's engine, honoring the
// capture keyword.
func (in *Interp) invoke(r exec.Runnable, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var capture bool
	if err := starlark.UnpackArgs("run", args, kwargs, "capture?", &capture); err != nil {
		return nil, err
	}

	var res *exec.Result
	var err error
	if capture {
		res, err = in.engine.RunCaptured(r)
	} else {
		res, err = in.engine.Run(r)
	}
	if err != nil {
		return nil, err
	}
	return &resultValue{res: res}, nil
}

// pipeWith builds a pipeline value from the two operands of a `|`
// expression, preserving operand order.
func pipeWith(in *Interp, self runnableValue, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	other, ok := y.(runnableValue)
	if !ok {
		return nil, nil // unsupported operand; starlark reports it
	}

	var p *exec.Pipeline
	var err error
	if side == starlark.Left {
		p, err = exec.Pipe(self.asRunnable(), other.asRunnable())
	} else {
		p, err = exec.Pipe(other.asRunnable(), self.asRunnable())
	}
	if err != nil {
		return nil, err
	}
	return &pipelineValue{in: in, pipe: p}, nil
}

// programValue wraps an unresolved program reference. Calling it with
// string arguments builds a command.
type programValue struct {
	in   *Interp
	prog *exec.Program
}

var (
	_ starlark.Callable  = (*programValue)(nil)
	_ starlark.HasBinary = (*programValue)(nil)
	_ runnableValue      = (*programValue)(nil)
)

func (p *programValue) String() string            { return fmt.Sprintf("<program %q>", p.prog.Name) }
func (p *programValue) Type() string              { return "program" }
func (p *programValue) Freeze()                   {}
func (p *programValue) Truth() starlark.Bool      { return starlark.True }
func (p *programValue) Hash() (uint32, error)     { return starlark.String(p.prog.Name).Hash() }
func (p *programValue) Name() string              { return p.prog.Name }
func (p *programValue) asRunnable() exec.Runnable { return p.prog }

func (p *programValue) CallInternal(thread *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", p.prog.Name)
	}

	strs := make([]string, len(args))
	for i, a := range args {
		s, ok := starlark.AsString(a)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is a %s, want string", p.prog.Name, i+1, a.Type())
		}
		strs[i] = s
	}
	return &commandValue{in: p.in, cmd: p.prog.Command(strs...)}, nil
}

func (p *programValue) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	if op != syntax.PIPE {
		return nil, nil
	}
	return pipeWith(p.in, p, y, side)
}

// commandValue wraps a program bound to literal arguments. Calling it
// with no positional arguments invokes it.
type commandValue struct {
	in  *Interp
	cmd *exec.Command
}

var (
	_ starlark.Callable  = (*commandValue)(nil)
	_ starlark.HasBinary = (*commandValue)(nil)
	_ runnableValue      = (*commandValue)(nil)
)

func (c *commandValue) String() string            { return fmt.Sprintf("<command %q>", c.cmd.String()) }
func (c *commandValue) Type() string              { return "command" }
func (c *commandValue) Freeze()                   {}
func (c *commandValue) Truth() starlark.Bool      { return starlark.True }
func (c *commandValue) Hash() (uint32, error)     { return 0, fmt.Errorf("unhashable type: command") }
func (c *commandValue) Name() string              { return c.cmd.Prog.Name }
func (c *commandValue) asRunnable() exec.Runnable { return c.cmd }

func (c *commandValue) CallInternal(thread *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return c.in.invoke(c.cmd, args, kwargs)
}

func (c *commandValue) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	if op != syntax.PIPE {
		return nil, nil
	}
	return pipeWith(c.in, c, y, side)
}

// pipelineValue wraps a flattened pipeline.
type pipelineValue struct {
	in   *Interp
	pipe *exec.Pipeline
}

var (
	_ starlark.Callable  = (*pipelineValue)(nil)
	_ starlark.HasBinary = (*pipelineValue)(nil)
	_ runnableValue      = (*pipelineValue)(nil)
)

func (p *pipelineValue) String() string            { return fmt.Sprintf("<pipeline %q>", p.pipe.String()) }
func (p *pipelineValue) Type() string              { return "pipeline" }
func (p *pipelineValue) Freeze()                   {}
func (p *pipelineValue) Truth() starlark.Bool      { return starlark.True }
func (p *pipelineValue) Hash() (uint32, error)     { return 0, fmt.Errorf("unhashable type: pipeline") }
func (p *pipelineValue) Name() string              { return "pipeline" }
func (p *pipelineValue) asRunnable() exec.Runnable { return p.pipe }

func (p *pipelineValue) CallInternal(thread *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return p.in.invoke(p.pipe, args, kwargs)
}

func (p *pipelineValue) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	if op != syntax.PIPE {
		return nil, nil
	}
	return pipeWith(p.in, p, y, side)
}

// subshellValue wraps an isolation boundary around one runnable.
type subshellValue struct {
	in  *Interp
	sub *exec.Subshell
}

var (
	_ starlark.Callable = (*subshellValue)(nil)
	_ runnableValue     = (*subshellValue)(nil)
)

func (s *subshellValue) String() string            { return fmt.Sprintf("<subshell %q>", s.sub.String()) }
func (s *subshellValue) Type() string              { return "subshell" }
func (s *subshellValue) Freeze()                   {}
func (s *subshellValue) Truth() starlark.Bool      { return starlark.True }
func (s *subshellValue) Hash() (uint32, error)     { return 0, fmt.Errorf("unhashable type: subshell") }
func (s *subshellValue) Name() string              { return "subshell" }
func (s *subshellValue) asRunnable() exec.Runnable { return s.sub }

func (s *subshellValue) CallInternal(thread *starlark.Thread, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	return s.in.invoke(s.sub, args, kwargs)
}

// resultValue is the outcome of an invocation. It is truthy when the
// exit code is zero, so `if cmd(): ...` reads naturally.
type resultValue struct {
	res *exec.Result
}

var _ starlark.HasAttrs = (*resultValue)(nil)

func (r *resultValue) String() string {
	if r.res.Signal != 0 {
		return fmt.Sprintf("<result signal=%q>", r.res.Signal.String())
	}
	return fmt.Sprintf("<result exit_code=%d>", r.res.ExitCode)
}

func (r *resultValue) Type() string          { return "result" }
func (r *resultValue) Freeze()               {}
func (r *resultValue) Truth() starlark.Bool  { return starlark.Bool(r.res.Success()) }
func (r *resultValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: result") }

func (r *resultValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "exit_code":
		return starlark.MakeInt(r.res.ExitCode), nil
	case "signal":
		if r.res.Signal == 0 {
			return starlark.None, nil
		}
		return starlark.String(r.res.Signal.String()), nil
	case "stdout":
		if r.res.Stdout == nil {
			return starlark.None, nil
		}
		return starlark.String(string(r.res.Stdout)), nil
	case "stderr":
		if r.res.Stderr == nil {
			return starlark.None, nil
		}
		return starlark.String(string(r.res.Stderr)), nil
	case "success":
		return starlark.NewBuiltin("success", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if err := starlark.UnpackArgs("success", args, kwargs); err != nil {
				return nil, err
			}
			return starlark.Bool(r.res.Success()), nil
		}), nil
	}
	return nil, nil
}

func (r *resultValue) AttrNames() []string {
	return []string{"exit_code", "signal", "stderr", "stdout", "success"}
}

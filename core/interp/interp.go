// Package interp embeds the Starlark interpreter that serves as
// ShipShell's host scripting language.
//
// Runnables are ordinary Starlark values built by the prog, pipe, and
// sub builtins (or the | operator); invoking one is a plain call. The
// interactive loop layers the auto-execution policy on top: a runnable
// that is the direct result of an expression typed at the prompt is
// invoked implicitly, everywhere else it stays a value.
package interp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/shipshell/shipshell/core/config"
	"github.com/shipshell/shipshell/core/exec"
	"github.com/shipshell/shipshell/core/shell"
)

// Interp is one interactive session: a shell state, an execution
// engine, and a Starlark namespace shared by the prompt and every
// sourced file.
type Interp struct {
	cfg    *config.Configuration
	state  *shell.State
	engine *exec.Engine

	thread      *starlark.Thread
	globals     starlark.StringDict
	predeclared starlark.StringDict
	opts        *syntax.FileOptions

	stdout io.Writer
	stderr io.Writer

	// exit terminates the process; replaceable for tests.
	exit func(code int)
}

// Option configures an Interp.
type Option func(*Interp)

// WithStdio redirects the interpreter's own output (print, value echo,
// diagnostics) and the engine's passthrough stdio.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(in *Interp) {
		in.stdout = stdout
		in.stderr = stderr
		in.engine.Stdin = stdin
		in.engine.Stdout = stdout
		in.engine.Stderr = stderr
	}
}

// New builds a session over the given configuration and state.
func New(cfg *config.Configuration, state *shell.State, opts ...Option) *Interp {
	in := &Interp{
		cfg:    cfg,
		state:  state,
		engine: exec.New(state),
		globals: make(starlark.StringDict),
		opts: &syntax.FileOptions{
			Set:               true,
			While:             true,
			TopLevelControl:   true,
			GlobalReassign:    true,
			LoadBindsGlobally: true,
			Recursion:         true,
		},
		stdout: os.Stdout,
		stderr: os.Stderr,
		exit:   os.Exit,
	}
	if cfg.PipelineExitStatus == config.StatusFirstFailure {
		in.engine.StatusPolicy = exec.FirstFailure
	}

	in.thread = &starlark.Thread{
		Name: "shipshell",
		Print: func(_ *starlark.Thread, msg string) {
			fmt.Fprintln(in.stdout, msg)
		},
	}

	in.predeclared = starlark.StringDict{
		"prog":               starlark.NewBuiltin("prog", in.progBuiltin),
		"pipe":               starlark.NewBuiltin("pipe", in.pipeBuiltin),
		"sub":                starlark.NewBuiltin("sub", in.subBuiltin),
		"cd":                 starlark.NewBuiltin("cd", in.cdBuiltin),
		"pwd":                starlark.NewBuiltin("pwd", in.pwdBuiltin),
		"pushd":              starlark.NewBuiltin("pushd", in.pushdBuiltin),
		"popd":               starlark.NewBuiltin("popd", in.popdBuiltin),
		"dirs":               starlark.NewBuiltin("dirs", in.dirsBuiltin),
		"which":              starlark.NewBuiltin("which", in.whichBuiltin),
		"source":             starlark.NewBuiltin("source", in.sourceBuiltin),
		"exit":               starlark.NewBuiltin("exit", in.exitBuiltin),
		"quit":               starlark.NewBuiltin("quit", in.exitBuiltin),
		"wire_path_programs": starlark.NewBuiltin("wire_path_programs", in.wireBuiltin),
		"env":                &envValue{state: state},
	}

	// The REPL resolver looks names up in the globals dict, so the
	// builtin surface is seeded there; predeclared keeps the pristine
	// set for wire_path_programs collision checks.
	for k, v := range in.predeclared {
		in.globals[k] = v
	}

	for _, opt := range opts {
		opt(in)
	}
	return in
}

// State returns the session's shell state.
func (in *Interp) State() *shell.State { return in.state }

// ExecChunk evaluates one complete unit of input under the
// auto-execution policy. A sole expression is evaluated and, when the
// policy fires, its runnable result is invoked; any other chunk
// executes as statements against the shared namespace.
func (in *Interp) ExecChunk(f *syntax.File) error {
	ctx := Classify(f)

	if expr := soleExpr(f); expr != nil {
		v, err := starlark.EvalExprOptions(f.Options, in.thread, expr, in.globals)
		if err != nil {
			return err
		}

		if ShouldAutoRun(ctx, v) {
			res, err := in.engine.Run(v.(runnableValue).asRunnable())
			if err != nil {
				return err
			}
			if !res.Success() {
				fmt.Fprintf(in.stdout, "Exit code: %d\n", res.ExitCode)
			}
			return nil
		}

		if v != starlark.None {
			fmt.Fprintln(in.stdout, v.String())
		}
		return nil
	}

	return starlark.ExecREPLChunk(f, in.thread, in.globals)
}

// ExecInput parses and executes a source string as one chunk, as if
// typed at the prompt. It exists for the run path and for tests; the
// REPL itself parses incrementally.
func (in *Interp) ExecInput(name, src string) error {
	f, err := in.opts.Parse(name, src, 0)
	if err != nil {
		return err
	}
	return in.ExecChunk(f)
}

// Source executes a file against the current interactive namespace
// under the nested evaluation context: runnables it constructs never
// auto-execute.
func (in *Interp) Source(path string) error {
	resolved, err := in.resolveScriptPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return err
	}

	f, err := in.opts.Parse(resolved, data, 0)
	if err != nil {
		return err
	}
	return starlark.ExecREPLChunk(f, in.thread, in.globals)
}

// resolveScriptPath expands ~ and resolves relative paths against the
// session cwd rather than the process cwd.
func (in *Interp) resolveScriptPath(path string) (string, error) {
	switch {
	case path == "~" || strings.HasPrefix(path, "~/"):
		home, ok := in.state.LookupEnv(shell.EnvHome)
		if !ok {
			return "", fmt.Errorf("source: %s: HOME not set", path)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	case filepath.IsAbs(path):
		return path, nil
	default:
		return filepath.Join(in.state.Getwd(), path), nil
	}
}

package exec

import (
	"bytes"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"syscall"

	"github.com/shipshell/shipshell/core/shell"
)

// StatusPolicy selects how a pipeline's overall exit status is derived
// from its stages.
type StatusPolicy int

const (
	// LastStage reports the exit status of the final stage, the usual
	// shell default.
	LastStage StatusPolicy = iota

	// FirstFailure reports the first non-zero stage status, like
	// `set -o pipefail`.
	FirstFailure
)

// Engine executes Runnables against a shell state.
//
// The engine is synchronous from the caller's point of view: Run blocks
// until the invocation completes. Internally a pipeline run keeps all of
// its stage processes alive concurrently.
type Engine struct {
	State *shell.State

	// Stdin, Stdout and Stderr are the passthrough stdio for spawned
	// processes. Nil fields default to the engine process's own stdio.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	StatusPolicy StatusPolicy
}

// New creates an engine over state with passthrough stdio.
func New(state *shell.State) *Engine {
	return &Engine{State: state}
}

// Run invokes a runnable. Spawned processes inherit the engine's stdio.
// Non-zero exits and signal deaths are reported in the Result, not as
// errors; only engine-level failures (resolution, spawn) return an
// error.
func (e *Engine) Run(r Runnable) (*Result, error) {
	return e.run(r, false)
}

// RunCaptured invokes a runnable with its stdout and stderr redirected
// into the Result's buffers instead of the engine's stdio. For a
// pipeline only the final stage is captured.
func (e *Engine) RunCaptured(r Runnable) (*Result, error) {
	return e.run(r, true)
}

func (e *Engine) run(r Runnable, capture bool) (*Result, error) {
	switch v := r.(type) {
	case *Program:
		return e.runCommand(v.Command(), capture)
	case *Command:
		return e.runCommand(v, capture)
	case *Pipeline:
		return e.runPipeline(v, capture)
	case *Subshell:
		return e.runSubshell(v, capture)
	default:
		return nil, fmt.Errorf("unknown runnable type %T", r)
	}
}

// runSubshell executes the body against a snapshot of the shell state.
// Restoration is unconditional: normal completion, a failing result, and
// a raised engine error all leave the parent state exactly as it was.
func (e *Engine) runSubshell(s *Subshell, capture bool) (*Result, error) {
	snap := e.State.Snapshot()
	defer e.State.Restore(snap)
	return e.run(s.Body, capture)
}

func (e *Engine) runCommand(c *Command, capture bool) (*Result, error) {
	if fn, ok := Builtin(c.Prog.Name); ok {
		return e.runBuiltin(fn, c, capture)
	}

	path, err := LookPath(e.State, c.Prog.Name)
	if err != nil {
		return nil, err
	}

	cmd := &osexec.Cmd{
		Path:  path,
		Args:  append([]string{c.Prog.Name}, c.Args...),
		Dir:   e.State.Getwd(),
		Env:   e.State.Environ(),
		Stdin: e.stdin(),
	}

	var stdout, stderr bytes.Buffer
	if capture {
		// os/exec drains these with internal copier goroutines, so the
		// child never blocks behind an unread buffer.
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = e.stdout()
		cmd.Stderr = e.stderr()
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Path: path, Err: err}
	}
	_ = cmd.Wait() // exit status is data, inspected below

	res := resultFrom(cmd.ProcessState)
	if capture {
		res.Stdout = stdout.Bytes()
		res.Stderr = stderr.Bytes()
	}
	return res, nil
}

// runBuiltin executes a builtin in process against the engine state.
func (e *Engine) runBuiltin(fn BuiltinFunc, c *Command, capture bool) (*Result, error) {
	var stdout, stderr bytes.Buffer
	outW, errW := e.stdout(), e.stderr()
	if capture {
		outW, errW = &stdout, &stderr
	}

	code := fn(e.State, c.Args, e.stdin(), outW, errW)

	res := &Result{ExitCode: code}
	if capture {
		res.Stdout = stdout.Bytes()
		res.Stderr = stderr.Bytes()
	}
	return res, nil
}

func (e *Engine) runPipeline(p *Pipeline, capture bool) (*Result, error) {
	n := len(p.Stages)

	// Resolve every stage before anything is spawned.
	dir := e.State.Getwd()
	env := e.State.Environ()
	cmds := make([]*osexec.Cmd, n)
	for i, stage := range p.Stages {
		path, err := LookPath(e.State, stage.Prog.Name)
		if err != nil {
			return nil, err
		}
		cmds[i] = &osexec.Cmd{
			Path:   path,
			Args:   append([]string{stage.Prog.Name}, stage.Args...),
			Dir:    dir,
			Env:    env,
			Stderr: e.stderr(),
		}
	}

	cmds[0].Stdin = e.stdin()
	var stdout, stderr bytes.Buffer
	if capture {
		cmds[n-1].Stdout = &stdout
		cmds[n-1].Stderr = &stderr
	} else {
		cmds[n-1].Stdout = e.stdout()
	}

	// Wire adjacent stages with OS pipes. The parent keeps a copy of
	// every end until all stages have started, then closes them all so
	// end-of-stream propagates to readers.
	var parentEnds []*os.File
	closeParentEnds := func() {
		for _, f := range parentEnds {
			f.Close()
		}
		parentEnds = nil
	}
	for i := 0; i < n-1; i++ {
		// Not a SpawnError: no stage was involved yet.
		r, w, err := os.Pipe()
		if err != nil {
			closeParentEnds()
			return nil, fmt.Errorf("creating pipe: %w", err)
		}
		cmds[i].Stdout = w
		cmds[i+1].Stdin = r
		parentEnds = append(parentEnds, r, w)
	}

	// Start every stage before waiting on any: a stage blocks once its
	// output pipe fills until the downstream stage drains it, so
	// start-then-wait one at a time deadlocks on non-trivial data.
	for i := range cmds {
		if err := cmds[i].Start(); err != nil {
			closeParentEnds()
			// Unwind the partially spawned pipeline: nothing is left
			// orphaned.
			for j := 0; j < i; j++ {
				_ = cmds[j].Process.Kill()
				_ = cmds[j].Wait()
			}
			return nil, &SpawnError{Path: cmds[i].Path, Err: err}
		}
	}
	closeParentEnds()

	results := make([]*Result, n)
	for i := range cmds {
		_ = cmds[i].Wait()
		results[i] = resultFrom(cmds[i].ProcessState)
	}

	chosen := results[n-1]
	if e.StatusPolicy == FirstFailure {
		for _, r := range results {
			if !r.Success() {
				chosen = r
				break
			}
		}
	}

	out := &Result{ExitCode: chosen.ExitCode, Signal: chosen.Signal}
	if capture {
		out.Stdout = stdout.Bytes()
		out.Stderr = stderr.Bytes()
	}
	return out, nil
}

func (e *Engine) stdin() io.Reader {
	if e.Stdin != nil {
		return e.Stdin
	}
	return os.Stdin
}

func (e *Engine) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

func (e *Engine) stderr() io.Writer {
	if e.Stderr != nil {
		return e.Stderr
	}
	return os.Stderr
}

func resultFrom(ps *os.ProcessState) *Result {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		sig := ws.Signal()
		return &Result{ExitCode: 128 + int(sig), Signal: sig}
	}
	return &Result{ExitCode: ps.ExitCode()}
}

// Package exec models not-yet-run shell actions and executes them as
// operating system processes.
//
// A Runnable is an immutable description of work: a Program reference, a
// Command (program plus literal arguments), a Pipeline of commands, or a
// Subshell isolation boundary. Construction is pure; nothing touches the
// OS until a Runnable is handed to an Engine.
package exec

import (
	"fmt"
	"strings"
)

// Runnable is the closed set of composable shell actions.
//
// Exactly four types implement it: *Program, *Command, *Pipeline and
// *Subshell. Each invocation of a Runnable is independent; there is no
// shared process handle between invocations.
type Runnable interface {
	// String renders the runnable roughly the way a user composed it.
	String() string

	runnable()
}

// Program is a named, not-yet-resolved executable reference. Path lookup
// is deferred until invocation so that PATH changes are observable.
type Program struct {
	Name string
}

// Prog creates a program reference by name. No resolution happens here.
func Prog(name string) *Program {
	return &Program{Name: name}
}

// Command binds the program to a literal argument list.
//
// Arguments are opaque strings: no word-splitting, globbing, or quote
// interpretation is ever applied to them.
func (p *Program) Command(args ...string) *Command {
	return &Command{Prog: p, Args: append([]string(nil), args...)}
}

func (p *Program) String() string { return p.Name }
func (p *Program) runnable()      {}

// Command is a Program bound to an ordered argument list.
type Command struct {
	Prog *Program
	Args []string
}

func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Prog.Name
	}
	return c.Prog.Name + " " + strings.Join(c.Args, " ")
}

func (c *Command) runnable() {}

// Pipeline is an ordered sequence of at least two commands connected by
// OS pipes. Pipelines never nest; see Pipe.
type Pipeline struct {
	Stages []*Command
}

func (p *Pipeline) String() string {
	parts := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}

func (p *Pipeline) runnable() {}

// Subshell is an isolation boundary around one Runnable. Shell state
// mutations made while its body runs never escape to the parent state.
type Subshell struct {
	Body Runnable
}

// Sub wraps a runnable in a subshell.
func Sub(r Runnable) *Subshell {
	return &Subshell{Body: r}
}

func (s *Subshell) String() string { return "(" + s.Body.String() + ")" }
func (s *Subshell) runnable()      {}

// Pipe composes runnables into a pipeline.
//
// Flattening is recursive: a Pipeline argument contributes its stages in
// order, so Pipe(Pipe(a, b), c) and Pipe(a, b, c) are indistinguishable.
// A bare Program is promoted to a zero-argument Command. Subshells cannot
// be pipeline stages. Fewer than two resulting stages is an error.
func Pipe(runnables ...Runnable) (*Pipeline, error) {
	var stages []*Command
	for _, r := range runnables {
		switch v := r.(type) {
		case *Program:
			stages = append(stages, v.Command())
		case *Command:
			stages = append(stages, v)
		case *Pipeline:
			stages = append(stages, v.Stages...)
		case *Subshell:
			return nil, fmt.Errorf("pipe: subshell %q cannot be a pipeline stage", v)
		default:
			return nil, fmt.Errorf("pipe: unknown runnable type %T", r)
		}
	}

	if len(stages) < 2 {
		return nil, fmt.Errorf("pipe: need at least 2 stages, got %d", len(stages))
	}
	return &Pipeline{Stages: stages}, nil
}

package interp

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// EvalContext describes where an evaluated value came from. Only values
// produced directly at the interactive prompt are eligible for automatic
// invocation; everywhere else a runnable stays a plain value until it is
// called explicitly.
type EvalContext int

const (
	// ContextInteractive marks the direct result of an expression typed
	// at the prompt.
	ContextInteractive EvalContext = iota

	// ContextAssignment marks a value being bound to a name.
	ContextAssignment

	// ContextNested marks values arising inside function bodies, loops,
	// conditionals, and sourced files.
	ContextNested
)

func (c EvalContext) String() string {
	switch c {
	case ContextInteractive:
		return "interactive"
	case ContextAssignment:
		return "assignment"
	default:
		return "nested"
	}
}

// Classify determines the evaluation context of a parsed compound
// statement: a sole expression statement is interactive, a sole
// assignment is an assignment, and everything else is nested.
func Classify(f *syntax.File) EvalContext {
	if len(f.Stmts) != 1 {
		return ContextNested
	}
	switch f.Stmts[0].(type) {
	case *syntax.ExprStmt:
		return ContextInteractive
	case *syntax.AssignStmt:
		return ContextAssignment
	default:
		return ContextNested
	}
}

// soleExpr returns the expression of a single-expression chunk, or nil.
func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
			return stmt.X
		}
	}
	return nil
}

// ShouldAutoRun decides whether an evaluated value is invoked
// implicitly: it must be an uninvoked runnable and the context must be
// interactive. Scripts and function bodies stay explicit about side
// effects.
func ShouldAutoRun(ctx EvalContext, v starlark.Value) bool {
	if ctx != ContextInteractive {
		return false
	}
	_, ok := v.(runnableValue)
	return ok
}

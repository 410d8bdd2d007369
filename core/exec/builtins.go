package exec

import (
	"fmt"
	"io"
	"strings"

	"github.com/shipshell/shipshell/core/shell"
)

// BuiltinFunc is a shell builtin runnable as a command. It executes in
// process against the engine's shell state, which is what lets
// sub(prog("cd")("/tmp")) mutate and then restore the state rather than
// a child process's copy.
type BuiltinFunc func(state *shell.State, args []string, stdin io.Reader, stdout, stderr io.Writer) int

// Builtin returns the builtin for name, if there is one. Builtins are
// consulted before PATH resolution for single commands and subshell
// bodies; pipeline stages always resolve to external programs because
// an in-process stage would mutate live state from a concurrent
// pipeline leg.
func Builtin(name string) (BuiltinFunc, bool) {
	fn, ok := builtins[name]
	return fn, ok
}

var builtins = map[string]BuiltinFunc{
	"cd":    cdBuiltin,
	"pwd":   pwdBuiltin,
	"pushd": pushdBuiltin,
	"popd":  popdBuiltin,
	"dirs":  dirsBuiltin,
	"which": whichBuiltin,
}

func cdBuiltin(state *shell.State, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	target := ""
	if len(args) > 1 {
		fmt.Fprintln(stderr, "cd: too many arguments")
		return 1
	}
	if len(args) == 1 {
		target = args[0]
	}

	if target == "-" {
		old, ok := state.LookupEnv(shell.EnvOldPWD)
		if !ok {
			fmt.Fprintln(stderr, "cd: OLDPWD not set")
			return 1
		}
		if err := state.Chdir(old); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, old)
		return 0
	}

	if err := state.Chdir(target); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func pwdBuiltin(state *shell.State, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, state.Getwd())
	return 0
}

func pushdBuiltin(state *shell.State, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "pushd: expected exactly one directory")
		return 1
	}
	if err := state.Pushd(args[0]); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func popdBuiltin(state *shell.State, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	dir, err := state.Popd()
	if err != nil {
		fmt.Fprintf(stderr, "popd: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, dir)
	return 0
}

func dirsBuiltin(state *shell.State, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, strings.Join(state.Dirs(), " "))
	return 0
}

func whichBuiltin(state *shell.State, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "which: expected a program name")
		return 1
	}

	code := 0
	for _, name := range args {
		path, err := LookPath(state, name)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			code = 1
			continue
		}
		fmt.Fprintln(stdout, path)
	}
	return code
}

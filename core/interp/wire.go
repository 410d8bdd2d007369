package interp

import (
	"os"
	"path/filepath"
	"regexp"

	"go.starlark.net/starlark"

	"github.com/shipshell/shipshell/core/exec"
	"github.com/shipshell/shipshell/core/shell"
)

var identifierRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// reservedWords are Starlark keywords (current and reserved) plus the
// predeclared constants; a program with one of these names is bound
// with a trailing underscore.
var reservedWords = map[string]bool{
	"and": true, "break": true, "continue": true, "def": true,
	"elif": true, "else": true, "for": true, "if": true, "in": true,
	"lambda": true, "load": true, "not": true, "or": true, "pass": true,
	"return": true, "while": true,
	"as": true, "assert": true, "async": true, "await": true,
	"class": true, "del": true, "except": true, "finally": true,
	"from": true, "global": true, "import": true, "is": true,
	"nonlocal": true, "raise": true, "try": true, "with": true,
	"yield": true,
	"None": true, "True": true, "False": true,
}

// wireBuiltin implements wire_path_programs(): every executable on the
// search path whose name is a valid identifier becomes a global program
// value, so `ls("-la")` works without prog(). Earlier PATH entries win;
// names of builtins are left alone.
func (in *Interp) wireBuiltin(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs("wire_path_programs", args, kwargs); err != nil {
		return nil, err
	}

	path := in.state.Getenv(shell.EnvPath)
	if path == "" {
		return starlark.None, nil
	}

	seen := make(map[string]bool)
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // unreadable PATH entries are skipped, like a shell
		}

		for _, entry := range entries {
			name := entry.Name()
			if !identifierRE.MatchString(name) {
				continue
			}

			info, err := entry.Info()
			if err != nil || info.IsDir() || info.Mode().Perm()&0111 == 0 {
				continue
			}

			varName := name
			if reservedWords[varName] {
				varName += "_"
			}
			if seen[varName] {
				continue
			}
			if _, isBuiltin := in.predeclared[varName]; isBuiltin {
				continue
			}

			seen[varName] = true
			in.globals[varName] = &programValue{in: in, prog: exec.Prog(name)}
		}
	}

	return starlark.None, nil
}

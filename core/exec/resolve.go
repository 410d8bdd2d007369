package exec

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultPath is the search path used when PATH is unset, matching the
// usual login defaults.
const DefaultPath = "/usr/local/bin:/usr/bin:/bin"

// Env supplies environment and working-directory lookups during program
// resolution. It is satisfied by *shell.State.
type Env interface {
	Getenv(key string) string
	Getwd() string
}

// LookPath resolves an executable name following POSIX command search
// rules:
//
//  1. A name containing a path separator is a literal path.
//  2. Otherwise each PATH directory is searched in order; an empty PATH
//     element means the current directory.
//
// Relative names and PATH entries resolve against the session working
// directory, not the process one, and the returned path is absolute so
// the stat performed here and the later spawn agree on the same file.
// Nothing is cached, so a changed PATH is observed by the next
// invocation.
func LookPath(env Env, name string) (string, error) {
	if strings.Contains(name, string(os.PathSeparator)) {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(env.Getwd(), path)
		}
		if err := findExecutable(path); err != nil {
			return "", &ResolutionError{Name: name, Err: err}
		}
		return path, nil
	}

	path := env.Getenv("PATH")
	if path == "" {
		path = DefaultPath
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means ".".
			dir = env.Getwd()
		}
		candidate := filepath.Join(dir, name)
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(env.Getwd(), candidate)
		}
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", &ResolutionError{Name: name, Err: ErrNotFound}
}

func findExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return ErrNotFound
	}
	if info.IsDir() {
		return ErrNotExecutable
	}
	if info.Mode().Perm()&0111 == 0 {
		return ErrNotExecutable
	}
	return nil
}

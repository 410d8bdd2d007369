// Package shell holds the mutable state of a shell session: the working
// directory, the directory stack, and the environment table.
//
// There is exactly one authoritative State per session and it is threaded
// explicitly through everything that needs it; nothing in this package is
// a global. Subshell isolation is snapshot-and-restore around the nested
// invocation, not global push/pop.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const (
	EnvHome   = "HOME"
	EnvPWD    = "PWD"
	EnvOldPWD = "OLDPWD"
	EnvPath   = "PATH"
)

// State is the live shell state for one session.
//
// State is not safe for concurrent use; mutation only ever happens from
// the single driving execution path.
type State struct {
	fs       afero.Fs
	cwd      string
	dirStack []string
	env      map[string]string
	mirrorOS bool
}

// Option configures a State during construction.
type Option func(*State)

// WithFs substitutes the filesystem used to validate directory targets.
// Tests use an in-memory filesystem here.
func WithFs(fs afero.Fs) Option {
	return func(s *State) { s.fs = fs }
}

// WithCwd overrides the initial working directory.
func WithCwd(dir string) Option {
	return func(s *State) { s.cwd = dir }
}

// WithEnviron replaces the inherited environment with the given
// "key=value" list.
func WithEnviron(environ []string) Option {
	return func(s *State) {
		s.env = make(map[string]string, len(environ))
		for _, e := range environ {
			split := strings.SplitN(e, "=", 2)
			key, value := split[0], ""
			if len(split) > 1 {
				value = split[1]
			}
			s.env[key] = value
		}
	}
}

// WithOSMirror makes environment writes flow through to the OS process
// environment. Live sessions turn this on so anything else in the
// process observes shell env changes; tests leave it off.
func WithOSMirror() Option {
	return func(s *State) { s.mirrorOS = true }
}

// New creates a session state seeded from the current process: real
// filesystem, current working directory, inherited environment.
func New(opts ...Option) (*State, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	s := &State{
		fs:  afero.NewOsFs(),
		cwd: cwd,
	}
	WithEnviron(os.Environ())(s)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Getwd returns the current working directory.
func (s *State) Getwd() string { return s.cwd }

// Chdir changes the working directory.
//
// An empty path means the home directory; "~" and "~/..." expand against
// HOME; relative paths resolve against the current directory. The target
// must exist and be a directory, otherwise a PathError is returned and
// the state is unchanged. On success PWD and OLDPWD are updated.
func (s *State) Chdir(path string) error {
	target, err := s.resolveDir("cd", path)
	if err != nil {
		return err
	}

	info, err := s.fs.Stat(target)
	if err != nil {
		return &PathError{Op: "cd", Path: target, Err: os.ErrNotExist}
	}
	if !info.IsDir() {
		return &PathError{Op: "cd", Path: target, Err: fmt.Errorf("not a directory")}
	}

	s.Setenv(EnvOldPWD, s.cwd)
	s.cwd = target
	s.Setenv(EnvPWD, target)
	return nil
}

// Pushd pushes the current directory onto the stack, then changes to
// path. A failed change leaves both the stack and cwd untouched.
func (s *State) Pushd(path string) error {
	prev := s.cwd
	if err := s.Chdir(path); err != nil {
		return err
	}
	s.dirStack = append(s.dirStack, prev)
	return nil
}

// Popd pops the top stack entry and changes to it. An empty stack is
// ErrStackUnderflow, never a no-op.
func (s *State) Popd() (string, error) {
	if len(s.dirStack) == 0 {
		return "", ErrStackUnderflow
	}
	top := s.dirStack[len(s.dirStack)-1]
	if err := s.Chdir(top); err != nil {
		return "", err
	}
	s.dirStack = s.dirStack[:len(s.dirStack)-1]
	return top, nil
}

// Dirs returns the directory stack newest-first with the current
// directory implicitly first.
func (s *State) Dirs() []string {
	out := make([]string, 0, len(s.dirStack)+1)
	out = append(out, s.cwd)
	for i := len(s.dirStack) - 1; i >= 0; i-- {
		out = append(out, s.dirStack[i])
	}
	return out
}

func (s *State) resolveDir(op, path string) (string, error) {
	switch {
	case path == "" || path == "~":
		home, ok := s.LookupEnv(EnvHome)
		if !ok {
			return "", &PathError{Op: op, Path: "~", Err: fmt.Errorf("HOME not set")}
		}
		return home, nil

	case strings.HasPrefix(path, "~/"):
		home, ok := s.LookupEnv(EnvHome)
		if !ok {
			return "", &PathError{Op: op, Path: path, Err: fmt.Errorf("HOME not set")}
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil

	case filepath.IsAbs(path):
		return filepath.Clean(path), nil

	default:
		return filepath.Join(s.cwd, path), nil
	}
}

// Getenv returns the value for key, or "" if unset.
func (s *State) Getenv(key string) string {
	val, _ := s.LookupEnv(key)
	return val
}

// LookupEnv returns the value for key and whether it is set.
func (s *State) LookupEnv(key string) (string, bool) {
	val, ok := s.env[key]
	return val, ok
}

// Setenv sets key in the session table, mirroring into the OS process
// environment when the mirror is enabled so subsequently spawned
// children observe the write.
func (s *State) Setenv(key, value string) {
	s.env[key] = value
	if s.mirrorOS {
		_ = os.Setenv(key, value)
	}
}

// Unsetenv removes key from the table and the OS environment. Removing
// an absent key is an EnvKeyError.
func (s *State) Unsetenv(key string) error {
	if _, ok := s.env[key]; !ok {
		return &EnvKeyError{Key: key}
	}
	delete(s.env, key)
	if s.mirrorOS {
		_ = os.Unsetenv(key)
	}
	return nil
}

// Environ returns the environment as a sorted "key=value" list, suitable
// for exec.Cmd.Env.
func (s *State) Environ() []string {
	out := make([]string, 0, len(s.env))
	for k, v := range s.env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Keys returns the set environment variable names, sorted.
func (s *State) Keys() []string {
	out := make([]string, 0, len(s.env))
	for k := range s.env {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Snapshot captures a deep copy of the state for later restoration.
type Snapshot struct {
	cwd      string
	dirStack []string
	env      map[string]string
}

// Snapshot returns a copy of the current cwd, directory stack, and
// environment table.
func (s *State) Snapshot() *Snapshot {
	env := make(map[string]string, len(s.env))
	for k, v := range s.env {
		env[k] = v
	}
	return &Snapshot{
		cwd:      s.cwd,
		dirStack: append([]string(nil), s.dirStack...),
		env:      env,
	}
}

// Restore rolls the state back to a snapshot. With the OS mirror
// enabled, keys added since the snapshot are unset and changed keys are
// written back, so the process environment tracks the table.
func (s *State) Restore(snap *Snapshot) {
	if s.mirrorOS {
		for k := range s.env {
			if _, ok := snap.env[k]; !ok {
				_ = os.Unsetenv(k)
			}
		}
		for k, v := range snap.env {
			if cur, ok := s.env[k]; !ok || cur != v {
				_ = os.Setenv(k, v)
			}
		}
	}

	s.cwd = snap.cwd
	s.dirStack = append([]string(nil), snap.dirStack...)
	env := make(map[string]string, len(snap.env))
	for k, v := range snap.env {
		env[k] = v
	}
	s.env = env
}

package shell

import (
	"errors"
	"fmt"
)

// ErrStackUnderflow is returned by Popd when the directory stack is
// empty. Underflow is never a silent no-op.
var ErrStackUnderflow = errors.New("directory stack empty")

// PathError reports a directory change that couldn't be performed. The
// state is left untouched whenever one is returned.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// EnvKeyError reports deletion of an environment key that isn't set.
type EnvKeyError struct {
	Key string
}

func (e *EnvKeyError) Error() string {
	return fmt.Sprintf("environment variable %q is not set", e.Key)
}

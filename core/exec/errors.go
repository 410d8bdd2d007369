package exec

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the program wasn't found on the search path.
	ErrNotFound = errors.New("command not found")

	// ErrNotExecutable indicates a matching file exists but can't be run.
	ErrNotExecutable = errors.New("permission denied")
)

// ResolutionError reports a failure to turn an executable name into a
// path. It is raised at invocation time, never at construction.
type ResolutionError struct {
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// SpawnError reports that the operating system refused to create a
// process. Any pipeline construction already performed is unwound before
// this is returned.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

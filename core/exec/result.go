package exec

import (
	"fmt"
	"syscall"
)

// Result is the outcome of invoking a Runnable.
//
// A non-zero exit code or a signal death is ordinary data, not an error:
// command failure is common in shells and is inspected, not raised.
type Result struct {
	// ExitCode is the process exit status. For a pipeline this is the
	// status selected by the engine's StatusPolicy. A signal death is
	// reported as 128+signo by convention.
	ExitCode int

	// Signal is the signal that terminated the process, or zero.
	Signal syscall.Signal

	// Stdout and Stderr hold captured output. They are nil unless the
	// invocation requested capture.
	Stdout []byte
	Stderr []byte
}

// Success reports whether the invocation exited cleanly.
func (r *Result) Success() bool { return r.ExitCode == 0 }

func (r *Result) String() string {
	if r.Signal != 0 {
		return fmt.Sprintf("signal: %v", r.Signal)
	}
	return fmt.Sprintf("exit code: %d", r.ExitCode)
}

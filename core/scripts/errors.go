package scripts

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a RunError.
type ErrorKind int

const (
	// KindIO means a filesystem or process spawn operation failed.
	KindIO ErrorKind = iota + 1
	// KindScriptNotFound means no configured directory holds the script.
	KindScriptNotFound
)

// Exit codes reported for failures that happen before the script runs.
const (
	ExitFailure  = 1
	ExitNotFound = 127
)

// ErrScriptNotFound matches any RunError of kind KindScriptNotFound with
// errors.Is.
var ErrScriptNotFound = errors.New("script not found")

// RunError is returned by Run when the script couldn't be started.
type RunError struct {
	Kind ErrorKind
	// Name of the requested script.
	Name string
	// Err is the underlying cause for KindIO.
	Err error
}

func (e *RunError) Error() string {
	switch e.Kind {
	case KindScriptNotFound:
		return fmt.Sprintf("Script %q could not be found.", e.Name)
	default:
		return fmt.Sprintf("I/O operation failed: %v", e.Err)
	}
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func (e *RunError) Is(target error) bool {
	return target == ErrScriptNotFound && e.Kind == KindScriptNotFound
}

// ExitCode is the process exit code that reports the failure.
func (e *RunError) ExitCode() int {
	if e.Kind == KindScriptNotFound {
		return ExitNotFound
	}
	return ExitFailure
}

func notFound(name string) *RunError {
	return &RunError{Kind: KindScriptNotFound, Name: name}
}

func ioFailure(name string, err error) *RunError {
	return &RunError{Kind: KindIO, Name: name, Err: err}
}

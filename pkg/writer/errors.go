package writer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a WriteError.
type ErrorKind string

const (
	// ComponentTreeInconsistent means the tree has dangling parents, cycles
	// or fields that do not fit their kind.
	ComponentTreeInconsistent ErrorKind = "ComponentTreeInconsistent"
	// UnresolvedImport wraps a resolver.ResolutionError.
	UnresolvedImport ErrorKind = "UnresolvedImport"
	// IncompatibleSource means the target file has no component the tree can
	// be written into.
	IncompatibleSource ErrorKind = "IncompatibleSource"
	// InvalidPropValue means a prop value does not match its kind or type.
	InvalidPropValue ErrorKind = "InvalidPropValue"
	// InvalidOutput means the rewritten file no longer parses.
	InvalidOutput ErrorKind = "InvalidOutput"
)

// WriteError is returned when a file cannot be rewritten. The source is
// never partially rewritten.
type WriteError struct {
	Kind     ErrorKind
	Filepath string
	Message  string
	Err      error
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Filepath, e.Kind, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a WriteError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var we *WriteError
	return errors.As(err, &we) && we.Kind == kind
}

// valueError is raised while printing a prop value; Write attaches the path.
type valueError struct {
	prop string
	msg  string
}

func (e *valueError) Error() string {
	return fmt.Sprintf("prop %q: %s", e.prop, e.msg)
}

func badValue(prop, format string, args ...any) error {
	return &valueError{prop: prop, msg: fmt.Sprintf(format, args...)}
}

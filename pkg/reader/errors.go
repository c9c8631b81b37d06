package reader

import (
	"errors"
	"fmt"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uisync/pkg/parser"
)

// ErrorKind classifies a ParseError.
type ErrorKind string

const (
	NoDefaultExport     ErrorKind = "NoDefaultExport"
	NoReturnStatement   ErrorKind = "NoReturnStatement"
	UnresolvedComponent ErrorKind = "UnresolvedComponent"
	MalformedAttribute  ErrorKind = "MalformedAttribute"
	UnsupportedMarkup   ErrorKind = "UnsupportedMarkup"
	InvalidSyntax       ErrorKind = "InvalidSyntax"
)

// ParseError is returned when a file cannot be read into a component tree.
// No partial tree accompanies it.
type ParseError struct {
	Kind     ErrorKind
	Filepath string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s: %s", e.Filepath, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Filepath, e.Line, e.Column, e.Kind, e.Message)
}

// IsKind reports whether err is a ParseError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == kind
}

func newError(kind ErrorKind, path string, node *ts.Node, format string, args ...any) *ParseError {
	e := &ParseError{Kind: kind, Filepath: path, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		pos := parser.PositionOf(node)
		e.Line, e.Column = pos.Line, pos.Column
	}
	return e
}

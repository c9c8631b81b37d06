package model

import (
	"errors"
	"fmt"
)

// ErrDropInsideSelection is returned when a move targets a node that is part
// of (or nested inside) the selection being moved.
var ErrDropInsideSelection = errors.New("drop target is inside the dragged selection")

// TreeError reports a structural problem with a component tree.
type TreeError struct {
	UUID    string
	Message string
}

func (e *TreeError) Error() string {
	if e.UUID == "" {
		return "component tree: " + e.Message
	}
	return fmt.Sprintf("component tree: node %s: %s", e.UUID, e.Message)
}

func treeErrorf(uuid, format string, args ...any) *TreeError {
	return &TreeError{UUID: uuid, Message: fmt.Sprintf(format, args...)}
}

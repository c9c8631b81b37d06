package parser

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// Position is a 1-based line and column in a source file.
type Position struct {
	Line   int
	Column int
}

// PositionOf returns the 1-based start position of node.
func PositionOf(node *ts.Node) Position {
	p := node.StartPosition()
	return Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

// FirstSyntaxError returns the first ERROR or MISSING node below root in
// document order, or nil when the tree is clean.
func FirstSyntaxError(root *ts.Node) *ts.Node {
	if root == nil || !root.HasError() {
		return nil
	}
	if root.IsError() || root.IsMissing() {
		return root
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if child.IsError() || child.IsMissing() {
			return child
		}
		if child.HasError() {
			if found := FirstSyntaxError(child); found != nil {
				return found
			}
		}
	}
	return root
}

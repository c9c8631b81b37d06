package sourcefile

import (
	ts "github.com/tree-sitter/go-tree-sitter"
)

// Component is the default-exported component function.
type Component struct {
	Name string
	// Statement is the top-level statement declaring the function.
	Statement Span
	Node      *ts.Node

	// Params is the parameter list, parentheses included. It is the zero
	// span for an arrow function with a single bare parameter.
	Params     Span
	ParamCount int
	// PropsParam is the identifier the first parameter binds, empty when the
	// parameter is destructured or absent.
	PropsParam string
	// PropsType is the annotated type of the first parameter when it is a
	// plain type name.
	PropsType string

	// Return is nil when the body has no return statement.
	Return *Return
	// ExprBody marks an arrow function whose body is the returned expression.
	ExprBody bool
}

// Return is the returned markup expression of the component.
type Return struct {
	Statement Span
	// Expr is the region holding the returned expression, parentheses
	// included. It is the zero span for a bare `return;`.
	Expr Span
	// Markup is the returned expression with parentheses removed.
	Markup *ts.Node
	Bare   bool
	// Indent is the indentation of the line the return starts on.
	Indent string
}

type declarations struct {
	funcs        map[string]funcDecl
	types        map[string]*TypeDecl
	initialProps *ValueDecl
	defaultStmt  *ts.Node
}

type funcDecl struct {
	stmt *ts.Node
	fn   *ts.Node
}

func isFunctionNode(n *ts.Node) bool {
	switch n.Kind() {
	case "function_declaration", "function_expression", "function", "arrow_function":
		return true
	}
	return false
}

// scanDeclarations indexes the top-level statements of a program.
func scanDeclarations(root *ts.Node, source []byte) *declarations {
	d := &declarations{
		funcs: make(map[string]funcDecl),
		types: make(map[string]*TypeDecl),
	}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		stmt := root.NamedChild(i)
		target := stmt
		exported := false
		if stmt.Kind() == "export_statement" {
			if isDefaultExport(stmt) {
				d.defaultStmt = stmt
			}
			decl := stmt.ChildByFieldName("declaration")
			if decl == nil {
				continue
			}
			target = decl
			exported = true
		}

		switch target.Kind() {
		case "function_declaration":
			if name := target.ChildByFieldName("name"); name != nil {
				d.funcs[name.Utf8Text(source)] = funcDecl{stmt: stmt, fn: target}
			}
		case "lexical_declaration", "variable_declaration":
			for j := uint(0); j < target.NamedChildCount(); j++ {
				declarator := target.NamedChild(j)
				if declarator.Kind() != "variable_declarator" {
					continue
				}
				name := declarator.ChildByFieldName("name")
				value := declarator.ChildByFieldName("value")
				if name == nil || value == nil {
					continue
				}
				ident := name.Utf8Text(source)
				if isFunctionNode(value) {
					d.funcs[ident] = funcDecl{stmt: stmt, fn: value}
				}
				if ident == InitialPropsName && d.initialProps == nil {
					d.initialProps = newValueDecl(stmt, declarator, value, exported, source)
				}
			}
		case "interface_declaration", "type_alias_declaration":
			decl := newTypeDecl(stmt, target, exported, source)
			if decl != nil {
				d.types[decl.Name] = decl
			}
		}
	}
	return d
}

func isDefaultExport(stmt *ts.Node) bool {
	for i := uint(0); i < stmt.ChildCount(); i++ {
		if stmt.Child(i).Kind() == "default" {
			return true
		}
	}
	return false
}

// locateComponent resolves the default export to a function.
func locateComponent(d *declarations, source []byte) *Component {
	stmt := d.defaultStmt
	if stmt == nil {
		return nil
	}

	var name string
	fn := stmt.ChildByFieldName("declaration")
	if fn == nil {
		fn = unwrapParens(stmt.ChildByFieldName("value"))
	}
	if fn == nil {
		return nil
	}

	if fn.Kind() == "identifier" {
		name = fn.Utf8Text(source)
		decl, ok := d.funcs[name]
		if !ok {
			return nil
		}
		stmt, fn = decl.stmt, decl.fn
	}
	if !isFunctionNode(fn) {
		return nil
	}
	if n := fn.ChildByFieldName("name"); n != nil {
		name = n.Utf8Text(source)
	}

	c := &Component{Name: name, Statement: spanOf(stmt), Node: fn}
	readParams(c, fn, source)

	body := fn.ChildByFieldName("body")
	if body == nil {
		return c
	}
	if body.Kind() != "statement_block" {
		c.ExprBody = true
		c.Return = &Return{
			Statement: spanOf(body),
			Expr:      spanOf(body),
			Markup:    unwrapParens(body),
			Indent:    lineIndent(source, c.Statement.Start),
		}
		return c
	}

	var ret *ts.Node
	for i := uint(0); i < body.NamedChildCount(); i++ {
		if child := body.NamedChild(i); child.Kind() == "return_statement" {
			ret = child
		}
	}
	if ret == nil {
		return c
	}

	r := &Return{Statement: spanOf(ret), Indent: lineIndent(source, int(ret.StartByte()))}
	var expr *ts.Node
	for i := uint(0); i < ret.NamedChildCount(); i++ {
		if child := ret.NamedChild(i); child.Kind() != "comment" {
			expr = child
			break
		}
	}
	if expr == nil {
		r.Bare = true
	} else {
		r.Expr = spanOf(expr)
		r.Markup = unwrapParens(expr)
	}
	c.Return = r
	return c
}

func readParams(c *Component, fn *ts.Node, source []byte) {
	if single := fn.ChildByFieldName("parameter"); single != nil {
		c.ParamCount = 1
		if single.Kind() == "identifier" {
			c.PropsParam = single.Utf8Text(source)
		}
		return
	}

	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return
	}
	c.Params = spanOf(params)

	var first *ts.Node
	for i := uint(0); i < params.NamedChildCount(); i++ {
		child := params.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		if first == nil {
			first = child
		}
		c.ParamCount++
	}
	if first == nil {
		return
	}

	pattern := first
	switch first.Kind() {
	case "required_parameter", "optional_parameter":
		pattern = first.ChildByFieldName("pattern")
		if annotation := first.ChildByFieldName("type"); annotation != nil {
			if t := firstNamedChild(annotation); t != nil && t.Kind() == "type_identifier" {
				c.PropsType = t.Utf8Text(source)
			}
		}
	case "assignment_pattern":
		pattern = first.ChildByFieldName("left")
	}
	if pattern != nil && pattern.Kind() == "identifier" {
		c.PropsParam = pattern.Utf8Text(source)
	}
}

// unwrapParens strips any number of enclosing parenthesized_expression nodes.
func unwrapParens(n *ts.Node) *ts.Node {
	for n != nil && n.Kind() == "parenthesized_expression" {
		inner := firstNamedChild(n)
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

// firstNamedChild returns the first named child that is not a comment.
func firstNamedChild(n *ts.Node) *ts.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

func findChildByKind(node *ts.Node, kind string) *ts.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == kind {
			return child
		}
	}
	return nil
}

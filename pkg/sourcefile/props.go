package sourcefile

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uisync/pkg/model"
)

// InitialPropsName is the conventional name of the initial props declaration.
const InitialPropsName = "initialProps"

// TypeDecl is a located `interface X {}` or `type X = ...` declaration.
type TypeDecl struct {
	Name string
	// Statement covers the declaration including any export keyword.
	Statement Span
	Exported  bool
	Interface bool
	// Object is set when the declared type is an object literal type whose
	// fields can be edited in place.
	Object bool
	// Body covers the braces of the object type.
	Body   Span
	Fields []Field
}

// Field returns the field called name.
func (d *TypeDecl) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Shape converts the declared fields into a prop shape.
func (d *TypeDecl) Shape() model.PropShape {
	shape := make(model.PropShape, len(d.Fields))
	for _, f := range d.Fields {
		shape[f.Name] = f.Meta
	}
	return shape
}

// Field is one property signature of a props declaration.
type Field struct {
	Name string
	// Span covers the leading doc comment, when present, through the end of
	// the signature.
	Span Span
	// Signature covers the property signature alone.
	Signature Span
	Meta      model.PropMetadata
}

// ValueDecl is a located `const initialProps = ...` declaration.
type ValueDecl struct {
	Statement Span
	Exported  bool
	// TypeName is the text of the declared type annotation, if any.
	TypeName string
	Value    *ts.Node
	// Object is set when the value is an object literal.
	Object  bool
	Entries []Entry
}

// Entry is one property of an object literal.
type Entry struct {
	Key   string
	Span  Span
	Value *ts.Node
}

// Entry returns the entry called key.
func (d *ValueDecl) Entry(key string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

func newTypeDecl(stmt, decl *ts.Node, exported bool, source []byte) *TypeDecl {
	name := decl.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	td := &TypeDecl{
		Name:      name.Utf8Text(source),
		Statement: spanOf(stmt),
		Exported:  exported,
		Interface: decl.Kind() == "interface_declaration",
	}

	var body *ts.Node
	if td.Interface {
		body = decl.ChildByFieldName("body")
		if body == nil {
			body = findChildByKind(decl, "interface_body")
		}
		if body == nil {
			body = findChildByKind(decl, "object_type")
		}
	} else if value := decl.ChildByFieldName("value"); value != nil && value.Kind() == "object_type" {
		body = value
	}
	if body == nil {
		return td
	}

	td.Object = true
	td.Body = spanOf(body)
	td.Fields = fieldsOf(body, source)
	return td
}

// fieldsOf extracts the property signatures of an interface body or object
// type together with their doc comments.
func fieldsOf(body *ts.Node, source []byte) []Field {
	var fields []Field
	var pending *ts.Node
	lastEndRow := -1

	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		switch child.Kind() {
		case "comment":
			// A comment on the row a signature ends on trails that signature.
			if int(child.StartPosition().Row) == lastEndRow {
				continue
			}
			pending = child
		case "property_signature":
			f := fieldOf(child, source)
			if f == nil {
				pending = nil
				continue
			}
			if pending != nil {
				f.Span.Start = int(pending.StartByte())
				f.Meta.Doc = parseJSDoc(pending.Utf8Text(source))
			}
			fields = append(fields, *f)
			pending = nil
			lastEndRow = int(child.EndPosition().Row)
		}
	}
	return fields
}

func fieldOf(sig *ts.Node, source []byte) *Field {
	nameNode := sig.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	optional := findChildByKind(sig, "?") != nil
	meta := model.PropMetadata{Type: model.TypeUnknown, Required: !optional}
	if annotation := sig.ChildByFieldName("type"); annotation != nil {
		if t := firstNamedChild(annotation); t != nil {
			classifyType(t, source, &meta)
		}
	}

	return &Field{
		Name:      unquoteSimple(nameNode.Utf8Text(source)),
		Span:      spanOf(sig),
		Signature: spanOf(sig),
		Meta:      meta,
	}
}

// classifyType maps a type node onto the prop value types the editor knows.
// Types it cannot express are kept verbatim in RawType.
func classifyType(node *ts.Node, source []byte, meta *model.PropMetadata) {
	text := node.Utf8Text(source)
	switch node.Kind() {
	case "predefined_type":
		switch text {
		case "string":
			meta.Type = model.TypeString
		case "number":
			meta.Type = model.TypeNumber
		case "boolean":
			meta.Type = model.TypeBoolean
		default:
			meta.Type = model.TypeUnknown
			meta.RawType = text
		}
	case "literal_type":
		if isStringLiteral(text) {
			meta.Type = model.TypeString
			meta.Unions = []string{unquoteSimple(text)}
			return
		}
		meta.Type = inferLiteralType(text)
		meta.RawType = text
	case "union_type":
		members := flattenUnionMembers(node, source)
		var literals []string
		for _, m := range members {
			if m.kind != "literal_type" || !isStringLiteral(m.text) {
				literals = nil
				break
			}
			literals = append(literals, unquoteSimple(m.text))
		}
		if len(literals) > 0 {
			meta.Type = model.TypeString
			meta.Unions = literals
			return
		}
		meta.Type = model.TypeUnknown
		meta.RawType = text
	case "parenthesized_type":
		if inner := firstNamedChild(node); inner != nil {
			classifyType(inner, source, meta)
			return
		}
		meta.Type = model.TypeUnknown
		meta.RawType = text
	case "array_type", "tuple_type":
		meta.Type = model.TypeArray
		meta.RawType = text
	case "generic_type":
		meta.Type = model.TypeUnknown
		if name := node.ChildByFieldName("name"); name != nil {
			switch name.Utf8Text(source) {
			case "Array", "ReadonlyArray":
				meta.Type = model.TypeArray
			case "Record":
				meta.Type = model.TypeObject
			}
		}
		meta.RawType = text
	case "object_type":
		meta.Type = model.TypeObject
		meta.RawType = text
	default:
		meta.Type = model.TypeUnknown
		meta.RawType = text
	}
}

type unionMember struct {
	kind string
	text string
}

// flattenUnionMembers flattens the left-recursive union tree into leaves.
func flattenUnionMembers(node *ts.Node, source []byte) []unionMember {
	if node.Kind() != "union_type" {
		return []unionMember{{kind: node.Kind(), text: node.Utf8Text(source)}}
	}
	var members []unionMember
	for i := uint(0); i < node.NamedChildCount(); i++ {
		members = append(members, flattenUnionMembers(node.NamedChild(i), source)...)
	}
	return members
}

func inferLiteralType(text string) model.PropValueType {
	if text == "true" || text == "false" {
		return model.TypeBoolean
	}
	if len(text) > 0 && (text[0] >= '0' && text[0] <= '9' || text[0] == '-') {
		return model.TypeNumber
	}
	return model.TypeUnknown
}

// parseJSDoc extracts the description of a doc comment. Tag lines are
// dropped.
func parseJSDoc(comment string) string {
	comment = strings.TrimSpace(comment)
	if strings.HasPrefix(comment, "//") {
		return strings.TrimSpace(strings.TrimPrefix(comment, "//"))
	}
	if !strings.HasPrefix(comment, "/*") {
		return ""
	}

	comment = strings.TrimPrefix(comment, "/**")
	comment = strings.TrimPrefix(comment, "/*")
	comment = strings.TrimSuffix(comment, "*/")

	var parts []string
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

func newValueDecl(stmt, declarator, value *ts.Node, exported bool, source []byte) *ValueDecl {
	vd := &ValueDecl{
		Statement: spanOf(stmt),
		Exported:  exported,
		Value:     value,
	}
	if annotation := declarator.ChildByFieldName("type"); annotation != nil {
		if t := firstNamedChild(annotation); t != nil {
			vd.TypeName = t.Utf8Text(source)
		}
	}
	if value.Kind() != "object" {
		return vd
	}

	vd.Object = true
	for i := uint(0); i < value.NamedChildCount(); i++ {
		child := value.NamedChild(i)
		switch child.Kind() {
		case "pair":
			key := child.ChildByFieldName("key")
			if key == nil {
				continue
			}
			vd.Entries = append(vd.Entries, Entry{
				Key:   unquoteSimple(key.Utf8Text(source)),
				Span:  spanOf(child),
				Value: child.ChildByFieldName("value"),
			})
		case "shorthand_property_identifier":
			vd.Entries = append(vd.Entries, Entry{
				Key:  child.Utf8Text(source),
				Span: spanOf(child),
			})
		}
	}
	return vd
}

func isStringLiteral(s string) bool {
	return len(s) >= 2 &&
		(strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"") ||
			strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'"))
}

// unquoteSimple strips matching quotes without processing escapes.
func unquoteSimple(s string) string {
	if isStringLiteral(s) {
		return s[1 : len(s)-1]
	}
	return s
}

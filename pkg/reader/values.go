package reader

import (
	"html"
	"regexp"
	"slices"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uisync/pkg/model"
)

// attributes converts attribute nodes into props and their source order.
// When entry carries a prop shape, undeclared attributes and contradicting
// literals are rejected. With template set the repeat marker is consumed
// and reported.
func (w *walker) attributes(attrs []*ts.Node, entry *model.RegistryEntry, template bool) (model.PropValues, []string, bool, error) {
	var shape model.PropShape
	if entry != nil {
		shape = entry.Metadata.PropShape
	}

	props := make(model.PropValues, len(attrs))
	order := make([]string, 0, len(attrs))
	marker := false
	for _, attr := range attrs {
		if attr.Kind() == "jsx_expression" {
			return nil, nil, false, w.fail(MalformedAttribute, attr, "spread attributes are not supported: %s", w.text(attr))
		}

		nameNode := attr.NamedChild(0)
		if nameNode == nil {
			return nil, nil, false, w.fail(MalformedAttribute, attr, "attribute without a name")
		}
		name := w.text(nameNode)
		var valueNode *ts.Node
		if attr.NamedChildCount() > 1 {
			valueNode = attr.NamedChild(1)
		}

		if template && name == repeatMarker {
			if valueNode == nil || valueNode.Kind() != "jsx_expression" || firstNamed(valueNode) == nil ||
				w.text(firstNamed(valueNode)) != "index" {
				return nil, nil, false, w.fail(UnsupportedMarkup, attr, "repeated element needs %s={index}", repeatMarker)
			}
			marker = true
			continue
		}

		var meta model.PropMetadata
		declared := false
		if len(shape) > 0 {
			meta, declared = shape[name]
			if !declared && name != "key" && name != "children" {
				return nil, nil, false, w.fail(MalformedAttribute, attr, "%s does not declare prop %q", entry.Name, name)
			}
		}

		value, err := w.attributeValue(attr, valueNode, meta.Type)
		if err != nil {
			return nil, nil, false, err
		}
		if declared {
			if msg := mismatch(value, meta); msg != "" {
				return nil, nil, false, w.fail(MalformedAttribute, attr, "prop %q of %s: %s", name, entry.Name, msg)
			}
		}
		if _, dup := props[name]; !dup {
			order = append(order, name)
		}
		props[name] = value
	}
	return props, order, marker, nil
}

func (w *walker) attributeValue(attr, valueNode *ts.Node, expected model.PropValueType) (model.PropValue, error) {
	if valueNode == nil {
		return model.BoolLiteral(true), nil
	}

	switch valueNode.Kind() {
	case "string":
		// JSX attribute strings take no escapes, only HTML entities.
		return model.StringLiteral(decodeEntities(unquoteRaw(w.text(valueNode)))), nil
	case "jsx_expression":
		inner := firstNamed(valueNode)
		if inner == nil {
			return model.PropValue{}, w.fail(MalformedAttribute, attr, "empty attribute expression")
		}
		if inner.Kind() == "spread_element" {
			return model.PropValue{}, w.fail(MalformedAttribute, attr, "spread in attribute value")
		}
		return w.value(inner, expected, true)
	default:
		return model.Expression(w.text(valueNode), expected), nil
	}
}

// value converts an expression into a prop value. propRefs enables reading
// `props.x` as a reference to the host's prop.
func (w *walker) value(node *ts.Node, expected model.PropValueType, propRefs bool) (model.PropValue, error) {
	if propRefs && node.Kind() == "member_expression" {
		object := node.ChildByFieldName("object")
		property := node.ChildByFieldName("property")
		if object != nil && property != nil && w.propsParam != "" &&
			object.Kind() == "identifier" && w.text(object) == w.propsParam &&
			property.Kind() == "property_identifier" {
			return model.PropRef(w.text(property)), nil
		}
	}

	if lit, ok := w.literal(node); ok {
		return lit, nil
	}

	switch node.Kind() {
	case "object":
		if expected == "" {
			expected = model.TypeObject
		}
	case "array":
		if expected == "" {
			expected = model.TypeArray
		}
	}
	return model.Expression(w.text(node), expected), nil
}

// literal reads node as a literal made only of strings, numbers, booleans,
// object literals and arrays.
func (w *walker) literal(node *ts.Node) (model.PropValue, bool) {
	text := w.text(node)
	switch node.Kind() {
	case "string":
		s, err := unquoteJS(text)
		if err != nil {
			return model.PropValue{}, false
		}
		return model.StringLiteral(s), true
	case "number":
		if n, ok := parseNumber(text); ok {
			return model.NumberLiteral(n), true
		}
	case "unary_expression":
		operator := node.ChildByFieldName("operator")
		argument := node.ChildByFieldName("argument")
		if operator != nil && argument != nil && w.text(operator) == "-" && argument.Kind() == "number" {
			if n, ok := parseNumber(w.text(argument)); ok {
				return model.NumberLiteral(-n), true
			}
		}
	case "true":
		return model.BoolLiteral(true), true
	case "false":
		return model.BoolLiteral(false), true
	case "parenthesized_expression":
		if inner := firstNamed(node); inner != nil {
			return w.literal(inner)
		}
	case "object":
		obj := make(model.PropValues)
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child.Kind() == "comment" {
				continue
			}
			if child.Kind() != "pair" {
				return model.PropValue{}, false
			}
			key := child.ChildByFieldName("key")
			val := child.ChildByFieldName("value")
			if key == nil || val == nil {
				return model.PropValue{}, false
			}
			keyName, ok := w.propertyKey(key)
			if !ok {
				return model.PropValue{}, false
			}
			v, ok := w.literal(val)
			if !ok {
				return model.PropValue{}, false
			}
			obj[keyName] = v
		}
		return model.PropValue{Kind: model.ValueKindLiteral, ValueType: model.TypeObject, Value: obj}, true
	case "array":
		items := []model.PropValue{}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child.Kind() == "comment" {
				continue
			}
			v, ok := w.literal(child)
			if !ok {
				return model.PropValue{}, false
			}
			items = append(items, v)
		}
		return model.List(items...), true
	}
	return model.PropValue{}, false
}

func (w *walker) propertyKey(key *ts.Node) (string, bool) {
	switch key.Kind() {
	case "property_identifier":
		return w.text(key), true
	case "string":
		s, err := unquoteJS(w.text(key))
		return s, err == nil
	case "number":
		return w.text(key), true
	}
	return "", false
}

// mismatch explains why a literal contradicts its declared metadata, or
// returns "".
func mismatch(v model.PropValue, meta model.PropMetadata) string {
	if v.Kind != model.ValueKindLiteral && v.Kind != model.ValueKindList {
		return ""
	}
	switch meta.Type {
	case model.TypeString, model.TypeNumber, model.TypeBoolean, model.TypeObject, model.TypeArray:
	default:
		return ""
	}
	if v.ValueType != meta.Type {
		return "expected " + string(meta.Type) + ", got " + string(v.ValueType)
	}
	if s, ok := v.Value.(string); ok && len(meta.Unions) > 0 && !slices.Contains(meta.Unions, s) {
		return "value " + s + " is not one of the allowed values"
	}
	return ""
}

// unquoteRaw strips the quotes of a JSX attribute string.
func unquoteRaw(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

// entityPattern matches the character references JSX decodes in attribute
// strings. Unlike HTML, JSX requires the closing semicolon.
var entityPattern = regexp.MustCompile(`&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[A-Za-z][A-Za-z0-9]*);`)

// decodeEntities replaces character references with the text they stand
// for. Unknown names are kept as written.
func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityPattern.ReplaceAllStringFunc(s, html.UnescapeString)
}

package reader

import (
	"strings"
	"unicode"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/sourcefile"
)

// repeatMarker is the attribute that ties a repeated template to its
// iteration index.
const repeatMarker = "key"

// walker converts one markup root into a flat component tree.
type walker struct {
	file       *sourcefile.File
	registry   model.Registry
	uuids      model.UUIDGenerator
	propsParam string
	modules    string

	tree []model.ComponentState
}

func (w *walker) fail(kind ErrorKind, node *ts.Node, format string, args ...any) *ParseError {
	return newError(kind, w.file.Path, node, format, args...)
}

func (w *walker) text(n *ts.Node) string {
	return n.Utf8Text(w.file.Source)
}

func (w *walker) root(markup *ts.Node) error {
	if markup == nil {
		return w.fail(NoReturnStatement, nil, "empty return statement")
	}
	switch markup.Kind() {
	case "null":
		return nil
	case "jsx_element", "jsx_self_closing_element":
		return w.element(markup, "")
	case "call_expression":
		return w.repeater(markup, "")
	}
	return w.fail(UnsupportedMarkup, markup, "component must return markup or null, found %s", markup.Kind())
}

// element appends node and its subtree under parent.
func (w *walker) element(node *ts.Node, parent string) error {
	state, children, err := w.describe(node, false)
	if err != nil {
		return err
	}
	state.UUID = w.uuids.NewUUID()
	state.ParentUUID = parent
	w.tree = append(w.tree, state)
	return w.children(children, state.UUID)
}

func (w *walker) children(nodes []*ts.Node, parent string) error {
	for _, child := range nodes {
		switch child.Kind() {
		case "jsx_text":
			if strings.TrimSpace(w.text(child)) != "" {
				return w.fail(UnsupportedMarkup, child, "text children are not supported: %q", strings.TrimSpace(w.text(child)))
			}
		case "jsx_element", "jsx_self_closing_element":
			if err := w.element(child, parent); err != nil {
				return err
			}
		case "jsx_expression":
			if err := w.embedded(child, parent); err != nil {
				return err
			}
		case "comment":
		default:
			return w.fail(UnsupportedMarkup, child, "unsupported markup %s", child.Kind())
		}
	}
	return nil
}

// describe builds the state of one element without identity and returns
// its child nodes. With template set the element must carry the repeat
// marker, which is dropped from its props.
func (w *walker) describe(node *ts.Node, template bool) (model.ComponentState, []*ts.Node, error) {
	var open *ts.Node
	var children []*ts.Node
	if node.Kind() == "jsx_self_closing_element" {
		open = node
	} else {
		open = node.ChildByFieldName("open_tag")
		if open == nil {
			return model.ComponentState{}, nil, w.fail(UnsupportedMarkup, node, "element without opening tag")
		}
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			switch child.Kind() {
			case "jsx_opening_element", "jsx_closing_element":
			default:
				children = append(children, child)
			}
		}
	}

	state, entry, err := w.classify(open)
	if err != nil {
		return state, nil, err
	}

	attrs := attributesOf(open)
	if state.Kind == model.KindFragment {
		if len(attrs) > 0 {
			return state, nil, w.fail(MalformedAttribute, attrs[0], "fragments take no attributes")
		}
		if template {
			return state, nil, w.fail(UnsupportedMarkup, node, "a fragment cannot be repeated")
		}
		return state, children, nil
	}

	props, order, marker, err := w.attributes(attrs, entry, template)
	if err != nil {
		return state, nil, err
	}
	if template && !marker {
		return state, nil, w.fail(UnsupportedMarkup, open, "repeated element needs %s={index}", repeatMarker)
	}
	if len(props) > 0 {
		state.Props = props
	}
	if len(order) > 1 {
		state.PropOrder = order
	}
	return state, children, nil
}

// classify decides the kind of an element from its tag name.
func (w *walker) classify(open *ts.Node) (model.ComponentState, *model.RegistryEntry, error) {
	nameNode := open.ChildByFieldName("name")
	if nameNode == nil {
		return model.ComponentState{Kind: model.KindFragment}, nil, nil
	}

	name := w.text(nameNode)
	if name == "Fragment" || name == "React.Fragment" {
		return model.ComponentState{Kind: model.KindFragment}, nil, nil
	}
	if nameNode.Kind() != "identifier" {
		return model.ComponentState{}, nil, w.fail(UnsupportedMarkup, nameNode, "unsupported tag %s", name)
	}

	first := []rune(name)[0]
	if !unicode.IsUpper(first) {
		return model.ComponentState{Kind: model.KindBuiltIn, ComponentName: name}, nil, nil
	}

	imp, ok := sourcefile.FindBinding(w.file.Imports, name)
	if !ok {
		return model.ComponentState{}, nil, w.fail(UnresolvedComponent, nameNode, "%s is not imported", name)
	}

	entry, found := model.Lookup(w.registry, name)
	if !found {
		for _, n := range imp.Named {
			if n.Local() == name && n.Name != name {
				entry, found = model.Lookup(w.registry, n.Name)
			}
		}
	}

	resolved := resolveSpecifier(w.file.Path, imp.Source)
	state := model.ComponentState{Kind: model.KindStandard, ComponentName: name}
	switch {
	case found && entry.Metadata.Kind == model.FileKindModule:
		state.Kind = model.KindModule
	case !found && inSegment(resolved, w.modules):
		state.Kind = model.KindModule
	}

	state.MetadataUUID = model.MetadataUUIDFor(resolved)
	if found && entry.Metadata.MetadataUUID != "" {
		state.MetadataUUID = entry.Metadata.MetadataUUID
	}
	if !found {
		return state, nil, nil
	}
	return state, &entry, nil
}

// attributesOf returns the attribute nodes of an opening element, spread
// attributes included.
func attributesOf(open *ts.Node) []*ts.Node {
	var attrs []*ts.Node
	for i := uint(0); i < open.NamedChildCount(); i++ {
		child := open.NamedChild(i)
		switch child.Kind() {
		case "jsx_attribute", "jsx_expression":
			attrs = append(attrs, child)
		}
	}
	return attrs
}

// embedded reads a `{...}` child of an element, which may only hold a
// repeater.
func (w *walker) embedded(expr *ts.Node, parent string) error {
	call := firstNamed(expr)
	if call == nil {
		if expr.NamedChildCount() > 0 {
			return w.fail(UnsupportedMarkup, expr, "comments in markup are not supported")
		}
		return w.fail(UnsupportedMarkup, expr, "empty expression in markup")
	}
	if call.Kind() != "call_expression" {
		return w.fail(UnsupportedMarkup, call, "embedded expressions are not supported: %s", w.text(call))
	}
	return w.repeater(call, parent)
}

// repeater reads `LIST.map((item, index) => <Tag key={index} ... />)`,
// either embedded in markup or returned on its own.
func (w *walker) repeater(call *ts.Node, parent string) error {
	callee := call.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "member_expression" {
		return w.fail(UnsupportedMarkup, call, "only list.map(...) may appear in markup")
	}
	property := callee.ChildByFieldName("property")
	list := callee.ChildByFieldName("object")
	if property == nil || list == nil || w.text(property) != "map" {
		return w.fail(UnsupportedMarkup, call, "only list.map(...) may appear in markup")
	}

	args := call.ChildByFieldName("arguments")
	var callback *ts.Node
	if args != nil && args.NamedChildCount() == 1 {
		callback = args.NamedChild(0)
	}
	if callback == nil || callback.Kind() != "arrow_function" {
		return w.fail(UnsupportedMarkup, call, "map callback must be an arrow function")
	}
	if !w.repeaterParams(callback) {
		return w.fail(UnsupportedMarkup, callback, "map callback must take (item, index)")
	}

	body := callback.ChildByFieldName("body")
	for body != nil && body.Kind() == "parenthesized_expression" {
		body = firstNamed(body)
	}
	if body == nil || (body.Kind() != "jsx_element" && body.Kind() != "jsx_self_closing_element") {
		return w.fail(UnsupportedMarkup, callback, "map callback must return one element")
	}

	template, children, err := w.describe(body, true)
	if err != nil {
		return err
	}
	state := model.ComponentState{
		Kind:              model.KindRepeater,
		UUID:              w.uuids.NewUUID(),
		ParentUUID:        parent,
		ListExpression:    w.text(list),
		RepeatedComponent: &template,
	}
	w.tree = append(w.tree, state)
	return w.children(children, state.UUID)
}

func (w *walker) repeaterParams(arrow *ts.Node) bool {
	if single := arrow.ChildByFieldName("parameter"); single != nil {
		return w.text(single) == "item"
	}
	params := arrow.ChildByFieldName("parameters")
	if params == nil {
		return false
	}
	var names []string
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p.Kind() == "comment" {
			continue
		}
		if pattern := p.ChildByFieldName("pattern"); pattern != nil {
			p = pattern
		}
		if p.Kind() != "identifier" {
			return false
		}
		names = append(names, w.text(p))
	}
	switch len(names) {
	case 1:
		return names[0] == "item"
	case 2:
		return names[0] == "item" && names[1] == "index"
	}
	return false
}

func firstNamed(n *ts.Node) *ts.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child.Kind() != "comment" {
			return child
		}
	}
	return nil
}

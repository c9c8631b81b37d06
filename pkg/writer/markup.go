package writer

import (
	"strings"

	"github.com/gnana997/uisync/pkg/model"
)

const indentUnit = "  "

// repeatMarker is written on a repeated template so the reader can tell it
// apart from a plain element.
const repeatMarker = "key"

// markupPrinter renders a flat component tree as JSX.
type markupPrinter struct {
	values   *valuePrinter
	children map[string][]model.ComponentState
	b        strings.Builder
}

// printMarkup renders tree as the expression of a return statement whose
// line is indented by indent. An empty tree renders as null; several roots
// share a fragment; a lone repeater is returned as its map call.
func printMarkup(tree []model.ComponentState, values *valuePrinter, indent string) (string, error) {
	roots := model.Roots(tree)
	if len(roots) == 0 {
		return "null", nil
	}

	p := &markupPrinter{values: values, children: model.ChildrenByParent(tree)}
	if len(roots) == 1 && roots[0].Kind == model.KindRepeater {
		if err := p.repeater(roots[0], indent, false); err != nil {
			return "", err
		}
		// The last line break belongs to the return statement.
		return strings.TrimSuffix(strings.TrimPrefix(p.b.String(), indent), "\n"), nil
	}

	p.b.WriteString("(\n")
	inner := indent + indentUnit
	if len(roots) == 1 {
		if err := p.node(roots[0], inner); err != nil {
			return "", err
		}
	} else {
		p.line(inner, "<>")
		for _, root := range roots {
			if err := p.node(root, inner+indentUnit); err != nil {
				return "", err
			}
		}
		p.line(inner, "</>")
	}
	p.b.WriteString(indent)
	p.b.WriteString(")")
	return p.b.String(), nil
}

func (p *markupPrinter) line(indent, text string) {
	p.b.WriteString(indent)
	p.b.WriteString(text)
	p.b.WriteByte('\n')
}

func (p *markupPrinter) node(c model.ComponentState, indent string) error {
	if c.Kind == model.KindRepeater {
		return p.repeater(c, indent, true)
	}

	open, name, err := p.openTag(c, false)
	if err != nil {
		return err
	}
	return p.element(open, name, c.UUID, indent)
}

// element writes an opening tag followed by the children of uuid.
func (p *markupPrinter) element(open, name, uuid, indent string) error {
	kids := p.children[uuid]
	if len(kids) == 0 {
		if name == "" {
			p.line(indent, "<></>")
		} else {
			p.line(indent, open+" />")
		}
		return nil
	}

	p.line(indent, open+">")
	for _, kid := range kids {
		if err := p.node(kid, indent+indentUnit); err != nil {
			return err
		}
	}
	p.line(indent, "</"+name+">")
	return nil
}

// openTag returns the opening tag without its closing bracket, and the tag
// name, empty for fragments.
func (p *markupPrinter) openTag(c model.ComponentState, template bool) (string, string, error) {
	if c.Kind == model.KindFragment {
		return "<", "", nil
	}

	attrs := make([]string, 0, len(c.Props)+1)
	if template {
		attrs = append(attrs, repeatMarker+"={index}")
	}
	for _, name := range c.PropNames() {
		attr, err := p.values.attribute(name, c.Props[name])
		if err != nil {
			return "", "", err
		}
		attrs = append(attrs, attr)
	}

	open := "<" + c.ComponentName
	if len(attrs) > 0 {
		open += " " + strings.Join(attrs, " ")
	}
	return open, c.ComponentName, nil
}

// repeater writes `LIST.map((item, index) => <Tag key={index} ... />)`,
// in braces when it is embedded in markup.
func (p *markupPrinter) repeater(c model.ComponentState, indent string, embedded bool) error {
	tpl := c.Template()
	open, name, err := p.openTag(tpl, true)
	if err != nil {
		return err
	}

	lbrace, rbrace := "", ""
	if embedded {
		lbrace, rbrace = "{", "}"
	}
	head := lbrace + c.ListExpression + ".map((item, index) => "
	kids := p.children[c.UUID]
	if len(kids) == 0 {
		p.line(indent, head+open+" />)"+rbrace)
		return nil
	}

	p.line(indent, head+"(")
	if err := p.element(open, name, c.UUID, indent+indentUnit); err != nil {
		return err
	}
	p.line(indent, "))"+rbrace)
	return nil
}

package writer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gnana997/uisync/pkg/model"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// valuePrinter prints prop values as attribute values or as expressions.
type valuePrinter struct {
	// propsParam names the host's props parameter for PropRef values.
	propsParam string
	quote      byte
	attrQuote  byte // delimits plain attribute strings
}

// attribute prints `name=value` for one prop.
func (p *valuePrinter) attribute(name string, v model.PropValue) (string, error) {
	if v.Kind == model.ValueKindLiteral && v.ValueType == model.TypeString {
		s, ok := v.Value.(string)
		if !ok {
			return "", badValue(name, "string literal holds %T", v.Value)
		}
		q := p.attrQuote
		if q != '\'' {
			q = '"'
		}
		// Attribute strings cannot escape their quote or span lines, and
		// JSX would decode any character reference in them.
		if !strings.ContainsAny(s, string(q)+"\n&") {
			return name + "=" + string(q) + s + string(q), nil
		}
	}

	expr, err := p.expression(name, v)
	if err != nil {
		return "", err
	}
	return name + "={" + expr + "}", nil
}

// expression prints v as a JavaScript expression.
func (p *valuePrinter) expression(name string, v model.PropValue) (string, error) {
	switch v.Kind {
	case model.ValueKindLiteral:
		return p.literal(name, v)
	case model.ValueKindList:
		items, ok := v.Value.([]model.PropValue)
		if !ok {
			return "", badValue(name, "list holds %T", v.Value)
		}
		parts := make([]string, 0, len(items))
		for i, item := range items {
			s, err := p.expression(fmt.Sprintf("%s[%d]", name, i), item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case model.ValueKindPropRef:
		ref, ok := v.Value.(string)
		if !ok || !identifierPattern.MatchString(ref) {
			return "", badValue(name, "prop reference %v is not an identifier", v.Value)
		}
		if p.propsParam == "" {
			return "", badValue(name, "the component has no props parameter to reference")
		}
		return p.propsParam + "." + ref, nil
	case model.ValueKindExpression:
		text, ok := v.Value.(string)
		if !ok || strings.TrimSpace(text) == "" {
			return "", badValue(name, "expression must be non-empty source text")
		}
		return text, nil
	}
	return "", badValue(name, "unknown value kind %q", v.Kind)
}

func (p *valuePrinter) literal(name string, v model.PropValue) (string, error) {
	switch v.ValueType {
	case model.TypeString:
		s, ok := v.Value.(string)
		if !ok {
			return "", badValue(name, "string literal holds %T", v.Value)
		}
		return quoteJS(s, p.quote), nil
	case model.TypeNumber:
		var n float64
		switch x := v.Value.(type) {
		case float64:
			n = x
		case int:
			n = float64(x)
		case int64:
			n = float64(x)
		default:
			return "", badValue(name, "number literal holds %T", v.Value)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", badValue(name, "number literal %v has no source form", n)
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case model.TypeBoolean:
		b, ok := v.Value.(bool)
		if !ok {
			return "", badValue(name, "boolean literal holds %T", v.Value)
		}
		return strconv.FormatBool(b), nil
	case model.TypeObject:
		obj, ok := v.Value.(model.PropValues)
		if !ok {
			return "", badValue(name, "object literal holds %T", v.Value)
		}
		if len(obj) == 0 {
			return "{}", nil
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			s, err := p.expression(name+"."+k, obj[k])
			if err != nil {
				return "", err
			}
			parts = append(parts, p.propertyKey(k)+": "+s)
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil
	}
	return "", badValue(name, "literal of type %q", v.ValueType)
}

func (p *valuePrinter) propertyKey(k string) string {
	if identifierPattern.MatchString(k) {
		return k
	}
	return quoteJS(k, p.quote)
}

// quoteJS prints s as a JavaScript string literal delimited by quote.
func quoteJS(s string, quote byte) string {
	if quote != '\'' {
		quote = '"'
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case rune(quote):
			b.WriteByte('\\')
			b.WriteByte(quote)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte(quote)
	return b.String()
}

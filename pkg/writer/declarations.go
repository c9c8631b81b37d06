package writer

import (
	"sort"
	"strings"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/sourcefile"
)

// declarationWriter upserts the props type declaration and the initial props
// declaration of one file.
type declarationWriter struct {
	file     *sourcefile.File
	typeName string
	quote    byte
	edits    *edits
	// above collects new declarations that go right above the component.
	above []string
}

// typeText prints the declared type of one prop.
func typeText(meta model.PropMetadata, quote byte) string {
	if len(meta.Unions) > 0 {
		members := make([]string, 0, len(meta.Unions))
		for _, u := range meta.Unions {
			members = append(members, quoteJS(u, quote))
		}
		return strings.Join(members, " | ")
	}
	if meta.RawType != "" {
		return meta.RawType
	}
	switch meta.Type {
	case model.TypeString, model.TypeNumber, model.TypeBoolean:
		return string(meta.Type)
	case model.TypeObject:
		return "Record<string, unknown>"
	case model.TypeArray:
		return "unknown[]"
	}
	return "unknown"
}

func (d *declarationWriter) key(name string) string {
	if identifierPattern.MatchString(name) {
		return name
	}
	return quoteJS(name, d.quote)
}

func (d *declarationWriter) signature(name string, meta model.PropMetadata) string {
	sig := d.key(name)
	if !meta.Required {
		sig += "?"
	}
	return sig + ": " + typeText(meta, d.quote)
}

func docComment(doc string) string {
	return "/** " + strings.ReplaceAll(doc, "*/", "* /") + " */"
}

// fieldText prints a field, doc comment included, as it appears after indent.
func (d *declarationWriter) fieldText(name string, meta model.PropMetadata, indent string) string {
	sig := d.signature(name, meta)
	if meta.Doc == "" {
		return sig
	}
	return docComment(meta.Doc) + "\n" + indent + sig
}

// body prints a complete `{ ... }` object type for shape.
func (d *declarationWriter) body(shape model.PropShape, indent, sep string) string {
	if len(shape) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	inner := indent + indentUnit
	for _, name := range sortedKeys(shape) {
		b.WriteString(inner)
		b.WriteString(d.fieldText(name, shape[name], inner))
		b.WriteString(sep)
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	b.WriteString("}")
	return b.String()
}

func (d *declarationWriter) interfaceDecl(shape model.PropShape, exported bool, indent string) string {
	text := "interface " + d.typeName + " " + d.body(shape, indent, ";")
	if exported {
		text = "export " + text
	}
	return text
}

// upsertPropShape edits the existing declaration field by field, regenerates
// it when it is not an object type, or adds a new one.
func (d *declarationWriter) upsertPropShape(shape model.PropShape) {
	src := d.file.Source
	decl := d.file.PropsDecl
	if decl == nil {
		if len(shape) > 0 {
			d.above = append(d.above, d.interfaceDecl(shape, true, ""))
		}
		return
	}

	declIndent := sourcefile.LineIndent(src, decl.Statement.Start)
	if !decl.Object {
		d.edits.replace(decl.Statement, d.interfaceDecl(shape, decl.Exported, declIndent), "props declaration")
		return
	}

	var added []string
	for _, name := range sortedKeys(shape) {
		if _, ok := decl.Field(name); !ok {
			added = append(added, name)
		}
	}
	sep := separatorAfter(src, decl.Fields, ";")
	closing := decl.Body.End - 1
	if len(added) > 0 && (len(decl.Fields) == 0 || !aloneOnLine(src, closing)) {
		d.edits.replace(decl.Body, d.body(shape, declIndent, sep), "props declaration body")
		return
	}

	indent := declIndent + indentUnit
	if len(decl.Fields) > 0 {
		indent = sourcefile.LineIndent(src, decl.Fields[0].Span.Start)
	}
	for _, f := range decl.Fields {
		meta, keep := shape[f.Name]
		switch {
		case !keep:
			d.edits.remove(sourcefile.RemovalSpan(src, f.Span), "drop prop "+f.Name)
		case meta.Doc != f.Meta.Doc:
			d.edits.replace(f.Span, d.fieldText(f.Name, meta, indent), "document prop "+f.Name)
		case !sameType(f.Meta, meta, d.quote):
			d.edits.replace(f.Signature, d.signature(f.Name, meta), "retype prop "+f.Name)
		}
	}

	if len(added) == 0 {
		return
	}
	var b strings.Builder
	for _, name := range added {
		b.WriteString(indent)
		b.WriteString(d.fieldText(name, shape[name], indent))
		b.WriteString(sep)
		b.WriteByte('\n')
	}
	d.edits.insert(lineStart(src, closing), b.String(), "add props")
}

func sameType(a, b model.PropMetadata, quote byte) bool {
	return a.Required == b.Required && typeText(a, quote) == typeText(b, quote)
}

// objectLiteral prints values as a multi-line object literal.
func (d *declarationWriter) objectLiteral(values model.PropValues, indent string) (string, error) {
	if len(values) == 0 {
		return "{}", nil
	}
	vp := &valuePrinter{quote: d.quote}
	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range sortedKeys(values) {
		v, err := vp.expression(k, values[k])
		if err != nil {
			return "", err
		}
		b.WriteString(indent + indentUnit + d.key(k) + ": " + v + ",\n")
	}
	b.WriteString(indent + "}")
	return b.String(), nil
}

// upsertInitialProps keeps entries whose printed value is unchanged, so
// hand-written expressions survive.
func (d *declarationWriter) upsertInitialProps(values model.PropValues, typed, semicolons bool) error {
	src := d.file.Source
	decl := d.file.InitialProps
	if decl == nil {
		if len(values) == 0 {
			return nil
		}
		obj, err := d.objectLiteral(values, "")
		if err != nil {
			return err
		}
		text := "export const " + sourcefile.InitialPropsName
		if typed {
			text += ": " + d.typeName
		}
		text += " = " + obj
		if semicolons {
			text += ";"
		}
		d.above = append(d.above, text)
		return nil
	}

	valueSpan := sourcefile.Span{Start: int(decl.Value.StartByte()), End: int(decl.Value.EndByte())}
	declIndent := sourcefile.LineIndent(src, decl.Statement.Start)
	vp := &valuePrinter{quote: d.quote}

	var added []string
	var surviving []sourcefile.Entry
	for _, k := range sortedKeys(values) {
		if _, ok := decl.Entry(k); !ok {
			added = append(added, k)
		}
	}
	for _, e := range decl.Entries {
		if _, ok := values[e.Key]; ok {
			surviving = append(surviving, e)
		}
	}

	closing := valueSpan.End - 1
	if !decl.Object || (len(added) > 0 && (len(surviving) == 0 || !aloneOnLine(src, closing))) {
		obj, err := d.objectLiteral(values, declIndent)
		if err != nil {
			return err
		}
		d.edits.replace(valueSpan, obj, "initial props")
		return nil
	}

	for _, e := range decl.Entries {
		v, keep := values[e.Key]
		if !keep {
			d.edits.remove(sourcefile.RemovalSpan(src, e.Span), "drop initial "+e.Key)
			continue
		}
		text, err := vp.expression(e.Key, v)
		if err != nil {
			return err
		}
		if e.Value == nil {
			if text != e.Key {
				d.edits.replace(e.Span, d.key(e.Key)+": "+text, "initial "+e.Key)
			}
			continue
		}
		if text != d.file.Text(e.Value) {
			d.edits.replace(sourcefile.Span{Start: int(e.Value.StartByte()), End: int(e.Value.EndByte())}, text, "initial "+e.Key)
		}
	}

	if len(added) == 0 {
		return nil
	}
	last := surviving[len(surviving)-1]
	if !followedBy(src, last.Span.End, ',') {
		d.edits.insert(last.Span.End, ",", "separate initial props")
	}
	indent := sourcefile.LineIndent(src, last.Span.Start)
	var b strings.Builder
	for _, k := range added {
		text, err := vp.expression(k, values[k])
		if err != nil {
			return err
		}
		b.WriteString(indent + d.key(k) + ": " + text + ",\n")
	}
	d.edits.insert(lineStart(src, closing), b.String(), "add initial props")
	return nil
}

// separatorAfter returns the member separator the declaration uses.
func separatorAfter(src []byte, fields []sourcefile.Field, fallback string) string {
	for _, f := range fields {
		if followedBy(src, f.Signature.End, ';') {
			return ";"
		}
		if followedBy(src, f.Signature.End, ',') {
			return ","
		}
	}
	if len(fields) > 0 {
		return ""
	}
	return fallback
}

func followedBy(src []byte, offset int, c byte) bool {
	for offset < len(src) && (src[offset] == ' ' || src[offset] == '\t') {
		offset++
	}
	return offset < len(src) && src[offset] == c
}

func lineStart(src []byte, offset int) int {
	for offset > 0 && src[offset-1] != '\n' {
		offset--
	}
	return offset
}

// aloneOnLine reports whether only whitespace precedes offset on its line.
func aloneOnLine(src []byte, offset int) bool {
	for i := lineStart(src, offset); i < offset; i++ {
		if src[i] != ' ' && src[i] != '\t' {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

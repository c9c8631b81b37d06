// Package writer rewrites a component file so it renders a given component
// tree. Only the regions the tree owns change: the returned markup, the
// component and stylesheet imports, the props declaration and the initial
// props declaration. Every other byte is kept.
package writer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/parser/queries"
	"github.com/gnana997/uisync/pkg/resolver"
	"github.com/gnana997/uisync/pkg/sourcefile"
)

// Input is what a file should contain after Write.
type Input struct {
	ComponentTree []model.ComponentState
	CSSImports    []string
	// FileMetadata, when set, upserts the props declaration (if PropShape is
	// non-nil) and the initial props declaration (if InitialProps is
	// non-nil). Nil leaves both declarations untouched.
	FileMetadata *model.FileMetadata
	// KeepMarkup leaves the return expression as it is, for callers that know
	// the tree matches the file.
	KeepMarkup bool
}

// Writer rewrites component files. It holds no per-file state and is safe
// for concurrent use on distinct files.
type Writer struct {
	analyzer *sourcefile.Analyzer
	queries  *queries.QueryManager
	logger   *slog.Logger
}

// New creates a Writer.
func New(analyzer *sourcefile.Analyzer, qm *queries.QueryManager, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{analyzer: analyzer, queries: qm, logger: logger}
}

// Write returns source rewritten to match in. registry may be nil, in which
// case only components the file already imports and renders can be placed.
//
// Every failure is a *WriteError and no output is produced.
func (w *Writer) Write(source []byte, filePath string, in Input, registry model.Registry) ([]byte, error) {
	fail := func(kind ErrorKind, err error, format string, args ...any) error {
		return &WriteError{Kind: kind, Filepath: filePath, Message: fmt.Sprintf(format, args...), Err: err}
	}

	if err := model.Validate(in.ComponentTree); err != nil {
		return nil, fail(ComponentTreeInconsistent, err, "invalid component tree")
	}

	file, err := w.analyzer.Analyze(source, filePath)
	if err != nil {
		return nil, fail(IncompatibleSource, err, "cannot read target file")
	}
	defer file.Close()

	comp := file.Component
	if comp == nil {
		return nil, fail(IncompatibleSource, nil, "no default-exported component function")
	}
	if comp.Return == nil {
		return nil, fail(IncompatibleSource, nil, "component %s has no return statement",
			sourcefile.ComponentName(comp, filePath))
	}

	resolving, managing, err := w.importedComponents(file, registry)
	if err != nil {
		return nil, fail(IncompatibleSource, err, "cannot list rendered components")
	}
	want, err := resolver.Resolve(in.ComponentTree, resolving, filePath)
	if err != nil {
		return nil, fail(UnresolvedImport, err, "cannot resolve imports")
	}

	var es edits
	md := in.FileMetadata
	typeName := file.PropsTypeName()
	declaresProps := file.PropsDecl != nil || (md != nil && len(md.PropShape) > 0)

	propsParam := comp.PropsParam
	if propsParam == "" && comp.ParamCount == 0 && comp.Params.End > comp.Params.Start &&
		(usesPropRefs(in.ComponentTree) || (md != nil && md.PropShape != nil && declaresProps)) {
		propsParam = "props"
		param := "(props)"
		if declaresProps {
			param = "(props: " + typeName + ")"
		}
		es.replace(comp.Params, param, "props parameter")
	}

	if !in.KeepMarkup {
		values := &valuePrinter{propsParam: propsParam, quote: file.Style.Quote, attrQuote: file.Style.AttrQuote}
		markup, err := printMarkup(in.ComponentTree, values, comp.Return.Indent)
		if err != nil {
			return nil, w.valueFailure(filePath, err)
		}
		if comp.Return.Bare {
			stmt := "return " + markup
			if file.Style.Semicolons {
				stmt += ";"
			}
			es.replace(comp.Return.Statement, stmt, "return statement")
		} else {
			es.replace(comp.Return.Expr, markup, "return expression")
		}
	}

	plan := resolver.Reconcile(file.Imports, want, in.CSSImports, managing)
	importEdits(file, plan, &es)

	if md != nil {
		d := &declarationWriter{file: file, typeName: typeName, quote: file.Style.Quote, edits: &es}
		if md.PropShape != nil {
			d.upsertPropShape(md.PropShape)
		}
		if md.InitialProps != nil {
			if err := d.upsertInitialProps(md.InitialProps, declaresProps, file.Style.Semicolons); err != nil {
				return nil, w.valueFailure(filePath, err)
			}
		}
		if len(d.above) > 0 {
			es.insert(comp.Statement.Start, strings.Join(d.above, "\n\n")+"\n\n", "new declarations")
		}
	}

	if len(es) == 0 {
		return append([]byte(nil), source...), nil
	}
	out, err := es.apply(source)
	if err != nil {
		return nil, fail(InvalidOutput, err, "conflicting edits")
	}

	check, err := w.analyzer.Analyze(out, filePath)
	if err != nil {
		return nil, fail(InvalidOutput, err, "rewritten file does not parse")
	}
	defer check.Close()
	if check.Component == nil {
		return nil, fail(InvalidOutput, nil, "rewritten file lost its default export")
	}

	w.logger.Debug("rewrote component file",
		"path", filePath,
		"edits", len(es),
		"imports_added", len(plan.Additions),
		"keep_markup", in.KeepMarkup)
	return out, nil
}

func (w *Writer) valueFailure(filePath string, err error) error {
	var ve *valueError
	if errors.As(err, &ve) {
		return &WriteError{Kind: InvalidPropValue, Filepath: filePath, Message: ve.Error()}
	}
	return &WriteError{Kind: InvalidPropValue, Filepath: filePath, Message: "invalid prop value", Err: err}
}

func usesPropRefs(tree []model.ComponentState) bool {
	var inValue func(v model.PropValue) bool
	inValue = func(v model.PropValue) bool {
		switch v.Kind {
		case model.ValueKindPropRef:
			return true
		case model.ValueKindList:
			items, _ := v.Value.([]model.PropValue)
			for _, item := range items {
				if inValue(item) {
					return true
				}
			}
		case model.ValueKindLiteral:
			obj, _ := v.Value.(model.PropValues)
			for _, item := range obj {
				if inValue(item) {
					return true
				}
			}
		}
		return false
	}
	for _, c := range tree {
		for _, v := range c.Template().Props {
			if inValue(v) {
				return true
			}
		}
	}
	return false
}

// importFallback answers from base first and then from the file's own
// imports. Hidden names are unknown to it.
type importFallback struct {
	base   model.Registry
	local  map[string]model.RegistryEntry
	hidden map[string]bool
}

func (r importFallback) Lookup(name string) (model.RegistryEntry, bool) {
	if r.hidden[name] {
		return model.RegistryEntry{}, false
	}
	if entry, ok := model.Lookup(r.base, name); ok {
		return entry, true
	}
	entry, ok := r.local[name]
	return entry, ok
}

// importedComponents extends registry with the file's existing component
// imports. The first registry knows every capitalised binding, so a tree may
// keep using what the file imports. The second knows only the bindings the
// current markup renders and hides those rendered elsewhere in the file:
// the writer owns and may remove the former, never the latter.
func (w *Writer) importedComponents(file *sourcefile.File, registry model.Registry) (model.Registry, model.Registry, error) {
	bound := make(map[string]model.RegistryEntry)
	for _, imp := range file.Imports {
		if imp.TypeOnly {
			continue
		}
		if isComponentName(imp.Default) {
			bound[imp.Default] = model.RegistryEntry{Name: imp.Default, ImportPath: imp.Source}
		}
		for _, n := range imp.Named {
			if !n.TypeOnly && isComponentName(n.Local()) {
				bound[n.Local()] = model.RegistryEntry{Name: n.Local(), ImportPath: imp.Source, NamedExport: true}
			}
		}
	}

	rendered := make(map[string]model.RegistryEntry)
	elsewhere := make(map[string]bool)
	if ret := file.Component.Return; ret != nil && !ret.Bare {
		matches, err := w.queries.Run(file.Tree(), file.Grammar, queries.QueryTypeTags, file.Source)
		if err != nil {
			return nil, nil, err
		}
		for _, m := range matches {
			c, ok := m.Capture("tag.name")
			if !ok {
				continue
			}
			at := int(c.Node.StartByte())
			if at < ret.Expr.Start || at >= ret.Expr.End {
				elsewhere[c.Text] = true
				continue
			}
			if entry, ok := bound[c.Text]; ok {
				rendered[c.Text] = entry
			}
		}
	}

	for name := range rendered {
		delete(elsewhere, name)
	}
	return importFallback{base: registry, local: bound},
		importFallback{base: registry, local: rendered, hidden: elsewhere}, nil
}

func isComponentName(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper([]rune(name)[0])
}

// importEdits applies plan: removals and rewrites in place, additions after
// the last declaration that stays.
func importEdits(file *sourcefile.File, plan resolver.Plan, es *edits) {
	src := file.Source
	anchor := -1
	for i, d := range plan.Decisions {
		switch d.Action {
		case resolver.Remove:
			span := sourcefile.RemovalSpan(src, d.Import.Span)
			if i == len(plan.Decisions)-1 && anchor < 0 && len(plan.Additions) == 0 {
				// The import block is gone; so is the gap below it.
				span.End = skipBlankLines(src, span.End)
			}
			es.remove(span, "remove import "+d.Import.Source)
		case resolver.Rewrite:
			es.replace(d.Import.Span, d.Text, "rewrite import "+d.Import.Source)
			anchor = d.Import.Span.End
		default:
			anchor = d.Import.Span.End
		}
	}
	if len(plan.Additions) == 0 {
		return
	}

	lines := make([]string, 0, len(plan.Additions))
	for _, add := range plan.Additions {
		lines = append(lines, resolver.FormatAddition(add, file.Style))
	}
	text := strings.Join(lines, "\n")

	switch {
	case anchor >= 0:
		es.insert(anchor, "\n"+text, "add imports")
	case len(plan.Decisions) > 0:
		first := sourcefile.RemovalSpan(src, plan.Decisions[0].Import.Span)
		es.insert(first.Start, text+"\n", "add imports")
	default:
		es.insert(0, text+"\n\n", "add imports")
	}
}

// skipBlankLines returns the start of the first non-blank line at or after
// offset, which must be a line start.
func skipBlankLines(src []byte, offset int) int {
	i := offset
	for i < len(src) {
		j := i
		for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\r') {
			j++
		}
		if j < len(src) && src[j] != '\n' {
			break
		}
		if j == len(src) {
			return j
		}
		i = j + 1
	}
	return i
}

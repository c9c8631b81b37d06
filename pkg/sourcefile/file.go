// Package sourcefile locates the regions of a component file that the
// reader interprets and the writer rewrites: import declarations, the
// default-exported component, its return expression, the props type
// declaration and the initial props declaration.
package sourcefile

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uisync/pkg/parser"
	"github.com/gnana997/uisync/pkg/parser/queries"
)

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int
	End   int
}

func spanOf(n *ts.Node) Span {
	return Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

// SyntaxError reports source text the grammar rejects.
type SyntaxError struct {
	Path   string
	Line   int
	Column int
	Near   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error near %q", e.Path, e.Line, e.Column, e.Near)
}

// Style captures formatting conventions detected in a file so generated
// declarations blend in.
type Style struct {
	Quote      byte
	Semicolons bool
	AttrQuote  byte // delimits string attributes in markup
}

// File is the located structure of one component file. It keeps the parse
// tree alive and must be closed.
type File struct {
	Path    string
	Source  []byte
	Grammar parser.Grammar

	Imports      []Import
	Component    *Component
	PropsDecl    *TypeDecl
	InitialProps *ValueDecl
	Style        Style

	tree *ts.Tree
}

// Close frees the parse tree.
func (f *File) Close() {
	if f.tree != nil {
		f.tree.Close()
		f.tree = nil
	}
}

// Tree returns the parse tree, or nil once the file is closed.
func (f *File) Tree() *ts.Tree {
	return f.tree
}

// Text returns the source text of n.
func (f *File) Text(n *ts.Node) string {
	return n.Utf8Text(f.Source)
}

// ImportsEnd returns the offset just past the last import declaration, or -1
// when the file has none.
func (f *File) ImportsEnd() int {
	if len(f.Imports) == 0 {
		return -1
	}
	return f.Imports[len(f.Imports)-1].Span.End
}

// PropsTypeName is the name the props declaration has, or should get.
func (f *File) PropsTypeName() string {
	if f.PropsDecl != nil {
		return f.PropsDecl.Name
	}
	if f.Component != nil && f.Component.PropsType != "" {
		return f.Component.PropsType
	}
	return ComponentName(f.Component, f.Path) + "Props"
}

// ComponentName returns the declared name of c, falling back to the file's
// base name for anonymous default exports.
func ComponentName(c *Component, path string) string {
	if c != nil && c.Name != "" {
		return c.Name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Analyzer parses and locates component files. It is safe for concurrent
// use.
type Analyzer struct {
	parsers *parser.ParserManager
	queries *queries.QueryManager
	logger  *slog.Logger
}

// NewAnalyzer creates an Analyzer over shared parser and query managers.
func NewAnalyzer(pm *parser.ParserManager, qm *queries.QueryManager, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{parsers: pm, queries: qm, logger: logger}
}

// Analyze parses source and locates its structure. Source that does not
// parse cleanly fails with *SyntaxError. A file without a default-exported
// component is not an error here: File.Component is nil.
func (a *Analyzer) Analyze(source []byte, path string) (*File, error) {
	grammar := parser.GrammarFor(path)
	if !grammar.SupportsJSX() {
		return nil, fmt.Errorf("%s: not a component file", path)
	}

	tree, err := a.parsers.Parse(source, grammar)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if bad := parser.FirstSyntaxError(root); bad != nil {
		tree.Close()
		pos := parser.PositionOf(bad)
		near := bad.Utf8Text(source)
		if len(near) > 40 {
			near = near[:40]
		}
		return nil, &SyntaxError{Path: path, Line: pos.Line, Column: pos.Column, Near: near}
	}

	f := &File{Path: path, Source: source, Grammar: grammar, tree: tree}

	matches, err := a.queries.Run(tree, grammar, queries.QueryTypeImports, source)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locate imports in %s: %w", path, err)
	}
	for _, m := range matches {
		stmt, ok := m.Capture("import.statement")
		if !ok {
			continue
		}
		f.Imports = append(f.Imports, parseImport(stmt.Node, source))
	}

	decls := scanDeclarations(root, source)
	f.Component = locateComponent(decls, source)
	f.PropsDecl = decls.types[f.PropsTypeName()]
	f.InitialProps = decls.initialProps
	f.Style = detectStyle(f)

	a.logger.Debug("analyzed component file",
		"path", path,
		"imports", len(f.Imports),
		"component", f.Component != nil,
		"props_decl", f.PropsDecl != nil)
	return f, nil
}

func detectStyle(f *File) Style {
	style := Style{Quote: '"', Semicolons: true, AttrQuote: '"'}
	if f.Component != nil && f.Component.Return != nil && f.Component.Return.Markup != nil {
		if q := attributeQuote(f.Component.Return.Markup, f.Source); q != 0 {
			style.AttrQuote = q
		}
	}
	if len(f.Imports) == 0 {
		if f.Component != nil && f.Component.Return != nil && !f.Component.ExprBody {
			stmt := f.Component.Return.Statement
			style.Semicolons = strings.HasSuffix(string(f.Source[stmt.Start:stmt.End]), ";")
		}
		return style
	}
	first := f.Imports[0]
	if first.Quote != 0 {
		style.Quote = first.Quote
	}
	style.Semicolons = first.Semicolon
	return style
}

// attributeQuote returns the quote of the first string attribute under n,
// or 0 when there is none.
func attributeQuote(n *ts.Node, source []byte) byte {
	if n.Kind() == "jsx_attribute" && n.NamedChildCount() > 1 {
		if v := n.NamedChild(1); v.Kind() == "string" {
			return source[v.StartByte()]
		}
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if q := attributeQuote(n.NamedChild(i), source); q != 0 {
			return q
		}
	}
	return 0
}

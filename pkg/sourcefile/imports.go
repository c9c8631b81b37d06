package sourcefile

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ImportName is one specifier of a named import list.
type ImportName struct {
	Name     string
	Alias    string
	TypeOnly bool
}

// Local returns the binding the specifier introduces.
func (n ImportName) Local() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// Import is one located import declaration.
type Import struct {
	Span      Span
	Line      int
	Source    string
	Quote     byte
	Default   string
	Namespace string
	Named     []ImportName
	TypeOnly  bool
	Semicolon bool
}

// SideEffect reports a bare `import "x";` declaration.
func (imp Import) SideEffect() bool {
	return imp.Default == "" && imp.Namespace == "" && len(imp.Named) == 0
}

// Bindings returns every local name the declaration introduces.
func (imp Import) Bindings() []string {
	var out []string
	if imp.Default != "" {
		out = append(out, imp.Default)
	}
	if imp.Namespace != "" {
		out = append(out, imp.Namespace)
	}
	for _, n := range imp.Named {
		out = append(out, n.Local())
	}
	return out
}

// Binds reports whether the declaration introduces local.
func (imp Import) Binds(local string) bool {
	for _, b := range imp.Bindings() {
		if b == local {
			return true
		}
	}
	return false
}

// IsStylesheet reports whether the import pulls in a stylesheet.
func (imp Import) IsStylesheet() bool {
	return IsStylesheet(imp.Source)
}

// IsStylesheet reports whether specifier names a stylesheet file.
func IsStylesheet(specifier string) bool {
	lower := strings.ToLower(specifier)
	for _, ext := range []string{".css", ".scss", ".sass", ".less"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// FindBinding returns the import that introduces local.
func FindBinding(imports []Import, local string) (Import, bool) {
	for _, imp := range imports {
		if !imp.TypeOnly && imp.Binds(local) {
			return imp, true
		}
	}
	return Import{}, false
}

func parseImport(stmt *ts.Node, source []byte) Import {
	imp := Import{
		Span: spanOf(stmt),
		Line: int(stmt.StartPosition().Row) + 1,
	}
	imp.Semicolon = strings.HasSuffix(stmt.Utf8Text(source), ";")

	if src := stmt.ChildByFieldName("source"); src != nil {
		text := src.Utf8Text(source)
		if len(text) >= 2 {
			imp.Quote = text[0]
			imp.Source = text[1 : len(text)-1]
		}
	}

	for i := uint(0); i < stmt.ChildCount(); i++ {
		child := stmt.Child(i)
		switch child.Kind() {
		case "type":
			imp.TypeOnly = true
		case "import_clause":
			parseImportClause(child, source, &imp)
		}
	}
	return imp
}

func parseImportClause(clause *ts.Node, source []byte, imp *Import) {
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		child := clause.NamedChild(i)
		switch child.Kind() {
		case "identifier":
			imp.Default = child.Utf8Text(source)
		case "namespace_import":
			if id := findChildByKind(child, "identifier"); id != nil {
				imp.Namespace = id.Utf8Text(source)
			}
		case "named_imports":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				spec := child.NamedChild(j)
				if spec.Kind() != "import_specifier" {
					continue
				}
				name := ImportName{}
				if n := spec.ChildByFieldName("name"); n != nil {
					name.Name = unquoteSimple(n.Utf8Text(source))
				}
				if a := spec.ChildByFieldName("alias"); a != nil {
					name.Alias = a.Utf8Text(source)
				}
				name.TypeOnly = findChildByKind(spec, "type") != nil
				imp.Named = append(imp.Named, name)
			}
		}
	}
}

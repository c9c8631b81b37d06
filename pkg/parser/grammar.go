package parser

import (
	"path/filepath"
	"strings"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Grammar selects the tree-sitter grammar used for a component file.
type Grammar int

const (
	// GrammarTSX is TypeScript with JSX (.tsx)
	GrammarTSX Grammar = iota
	// GrammarTypeScript is plain TypeScript (.ts, .mts, .cts)
	GrammarTypeScript
	// GrammarJavaScript covers JavaScript and JSX (.js, .jsx, .mjs, .cjs)
	GrammarJavaScript
	// GrammarUnknown marks an unsupported file
	GrammarUnknown
)

// String returns the string representation of the grammar.
func (g Grammar) String() string {
	switch g {
	case GrammarTSX:
		return "tsx"
	case GrammarTypeScript:
		return "typescript"
	case GrammarJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// SupportsJSX reports whether markup parses under this grammar.
func (g Grammar) SupportsJSX() bool {
	return g == GrammarTSX || g == GrammarJavaScript
}

// SupportsTypes reports whether interface and type alias declarations parse
// under this grammar.
func (g Grammar) SupportsTypes() bool {
	return g == GrammarTSX || g == GrammarTypeScript
}

// pointer returns the raw tree-sitter language of the grammar.
func (g Grammar) pointer() unsafe.Pointer {
	switch g {
	case GrammarTSX:
		return ts_typescript.LanguageTSX()
	case GrammarTypeScript:
		return ts_typescript.LanguageTypescript()
	case GrammarJavaScript:
		return ts_javascript.Language()
	default:
		return nil
	}
}

// Language returns the tree-sitter language of the grammar, or nil for
// GrammarUnknown. Query compilation uses it.
func (g Grammar) Language() *ts.Language {
	ptr := g.pointer()
	if ptr == nil {
		return nil
	}
	return ts.NewLanguage(ptr)
}

// GrammarFor picks the grammar from a file extension.
func GrammarFor(filePath string) Grammar {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".tsx":
		return GrammarTSX
	case ".ts", ".mts", ".cts":
		return GrammarTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return GrammarJavaScript
	default:
		return GrammarUnknown
	}
}

// IsComponentFile reports whether filePath can hold a component definition.
func IsComponentFile(filePath string) bool {
	return GrammarFor(filePath).SupportsJSX()
}

// SupportedGrammars returns every grammar the manager can parse.
func SupportedGrammars() []Grammar {
	return []Grammar{GrammarTSX, GrammarTypeScript, GrammarJavaScript}
}

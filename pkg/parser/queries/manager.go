// Package queries provides tree-sitter query compilation, caching, and execution.
package queries

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uisync/pkg/parser"
	"github.com/gnana997/uisync/pkg/parser/queries/imports"
	"github.com/gnana997/uisync/pkg/parser/queries/tags"
)

// QueryType identifies which query to execute.
type QueryType int

const (
	// QueryTypeImports locates top-level import declarations
	QueryTypeImports QueryType = iota
	// QueryTypeTags lists rendered element names
	QueryTypeTags
)

// String returns the string representation of a QueryType.
func (qt QueryType) String() string {
	switch qt {
	case QueryTypeImports:
		return "imports"
	case QueryTypeTags:
		return "tags"
	default:
		return "unknown"
	}
}

type queryKey struct {
	grammar parser.Grammar
	qtype   QueryType
}

// QueryManager compiles queries lazily and caches them per grammar. It is
// safe for concurrent use; compiled queries are freed by Close.
//
// Usage:
//
//	qm := NewQueryManager(logger)
//	defer qm.Close()
//
//	matches, err := qm.Run(tree, parser.GrammarTSX, QueryTypeImports, source)
type QueryManager struct {
	cache  map[queryKey]*ts.Query
	mutex  sync.RWMutex
	logger *slog.Logger
}

// NewQueryManager creates a new query manager. Logger can be nil.
func NewQueryManager(logger *slog.Logger) *QueryManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryManager{
		cache:  make(map[queryKey]*ts.Query),
		logger: logger,
	}
}

// GetQuery returns the compiled query for grammar and qtype.
//
// Returns an error if the grammar is unknown, the query type is unknown or
// the grammar cannot express the query (tags on plain TypeScript).
func (qm *QueryManager) GetQuery(grammar parser.Grammar, qtype QueryType) (*ts.Query, error) {
	key := queryKey{grammar: grammar, qtype: qtype}

	qm.mutex.RLock()
	query, exists := qm.cache[key]
	qm.mutex.RUnlock()
	if exists {
		return query, nil
	}

	qm.mutex.Lock()
	defer qm.mutex.Unlock()
	if query, exists = qm.cache[key]; exists {
		return query, nil
	}

	source, err := queryString(grammar, qtype)
	if err != nil {
		return nil, err
	}
	lang := grammar.Language()
	if lang == nil {
		return nil, fmt.Errorf("no language for grammar %s", grammar)
	}

	query, qerr := ts.NewQuery(lang, source)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile %s query for %s: %s", qtype, grammar, qerr.Message)
	}
	qm.cache[key] = query

	qm.logger.Debug("compiled query",
		"grammar", grammar.String(),
		"type", qtype.String())
	return query, nil
}

func queryString(grammar parser.Grammar, qtype QueryType) (string, error) {
	if grammar == parser.GrammarUnknown {
		return "", fmt.Errorf("unsupported grammar: %s", grammar)
	}
	switch qtype {
	case QueryTypeImports:
		return imports.Query, nil
	case QueryTypeTags:
		if !grammar.SupportsJSX() {
			return "", fmt.Errorf("tag queries need a JSX grammar, got %s", grammar)
		}
		return tags.Query, nil
	default:
		return "", fmt.Errorf("unknown query type: %d", qtype)
	}
}

// Run compiles (or reuses) the query and executes it over tree.
func (qm *QueryManager) Run(tree *ts.Tree, grammar parser.Grammar, qtype QueryType, source []byte) ([]QueryMatch, error) {
	query, err := qm.GetQuery(grammar, qtype)
	if err != nil {
		return nil, err
	}
	return qm.ExecuteQuery(tree, query, source)
}

// ExecuteQuery runs a compiled query on a parse tree and returns its matches
// in document order.
func (qm *QueryManager) ExecuteQuery(tree *ts.Tree, query *ts.Query, source []byte) ([]QueryMatch, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	if query == nil {
		return nil, fmt.Errorf("query is nil")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	iter := cursor.Matches(query, tree.RootNode(), source)
	captureNames := query.CaptureNames()

	var matches []QueryMatch
	for {
		match := iter.Next()
		if match == nil {
			break
		}

		var captures []QueryCapture
		for _, capture := range match.Captures {
			var name string
			if int(capture.Index) < len(captureNames) {
				name = captureNames[capture.Index]
			}
			category, field := parseCaptureName(name)
			node := capture.Node
			captures = append(captures, QueryCapture{
				Name:     name,
				Category: category,
				Field:    field,
				Node:     &node,
				Text:     node.Utf8Text(source),
				Location: nodeLocation(&node),
			})
		}

		matches = append(matches, QueryMatch{
			PatternIndex: uint32(match.PatternIndex),
			Captures:     captures,
		})
	}
	return matches, nil
}

// Close releases all compiled queries.
func (qm *QueryManager) Close() error {
	qm.mutex.Lock()
	defer qm.mutex.Unlock()

	for key, query := range qm.cache {
		query.Close()
		delete(qm.cache, key)
	}
	return nil
}

// QueryMatch represents a single pattern match from query execution.
type QueryMatch struct {
	PatternIndex uint32
	Captures     []QueryCapture
}

// Capture returns the first capture with the given full name.
func (m QueryMatch) Capture(name string) (QueryCapture, bool) {
	for _, c := range m.Captures {
		if c.Name == name {
			return c, true
		}
	}
	return QueryCapture{}, false
}

// QueryCapture represents a single captured node from a query match.
type QueryCapture struct {
	// Name is the full capture name (e.g., "import.source")
	Name string

	// Category is the part before the dot ("import")
	Category string

	// Field is the part after the dot ("source"), empty without a dot
	Field string

	Node     *ts.Node
	Text     string
	Location Location
}

// Location represents a position in source code.
type Location struct {
	StartLine   uint32 // 1-based line number
	StartColumn uint32 // 1-based column number
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32 // 0-based byte offset
	EndByte     uint32
}

// parseCaptureName splits "import.source" into ("import", "source").
func parseCaptureName(name string) (category, field string) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

func nodeLocation(node *ts.Node) Location {
	start := node.StartPosition()
	end := node.EndPosition()

	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}

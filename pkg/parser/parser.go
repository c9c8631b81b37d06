// Package parser wraps tree-sitter parsing of component files behind
// per-grammar parser pools.
package parser

import (
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// ParserManager owns one parser pool per grammar and is safe for concurrent
// use. Pools are created on first use.
//
// Callers own the returned trees and must call tree.Close().
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	tree, err := manager.ParseFile(source, "src/pages/index.tsx")
//	if err != nil {
//	    return err
//	}
//	defer tree.Close()
type ParserManager struct {
	pools    map[Grammar]*parserPool
	poolSize int
	mutex    sync.RWMutex
	logger   *slog.Logger

	parses int
}

// NewParserManager creates a ParserManager sized for the current machine.
func NewParserManager(logger *slog.Logger) *ParserManager {
	return NewParserManagerWithPoolSize(logger, 0)
}

// NewParserManagerWithPoolSize creates a ParserManager holding at most size
// parsers per grammar. A size of 0 selects the CPU-based default.
func NewParserManagerWithPoolSize(logger *slog.Logger, size int) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserManager{
		pools:    make(map[Grammar]*parserPool),
		poolSize: poolSize(size),
		logger:   logger,
	}
}

// Parse parses source with the given grammar.
//
// Syntax errors do not fail the call: the tree is returned with error nodes
// in it, and callers that require a clean tree check it with FirstSyntaxError.
func (pm *ParserManager) Parse(source []byte, grammar Grammar) (*ts.Tree, error) {
	if grammar == GrammarUnknown {
		return nil, fmt.Errorf("cannot parse unknown grammar")
	}

	pm.mutex.Lock()
	pm.parses++
	pm.mutex.Unlock()

	pool := pm.getOrCreatePool(grammar)
	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire %s parser: %w", grammar, err)
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned no tree for %s source", grammar)
	}
	if tree.RootNode().HasError() {
		pm.logger.Debug("parse tree contains errors", "grammar", grammar.String())
	}
	return tree, nil
}

// ParseFile picks the grammar from filePath's extension and parses source.
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	grammar := GrammarFor(filePath)
	if grammar == GrammarUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	return pm.Parse(source, grammar)
}

func (pm *ParserManager) getOrCreatePool(grammar Grammar) *parserPool {
	pm.mutex.RLock()
	pool, ok := pm.pools[grammar]
	pm.mutex.RUnlock()
	if ok {
		return pool
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	if pool, ok = pm.pools[grammar]; ok {
		return pool
	}
	pool = newParserPool(grammar, pm.poolSize, pm.logger)
	pm.pools[grammar] = pool
	pm.logger.Debug("created parser pool",
		"grammar", grammar.String(),
		"maxSize", pm.poolSize)
	return pool
}

// Close releases every pooled parser. The manager cannot be used afterwards.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	closed := 0
	for _, pool := range pm.pools {
		closed += pool.close()
	}
	pm.pools = make(map[Grammar]*parserPool)

	pm.logger.Debug("closed ParserManager",
		"parsers_closed", closed,
		"parses_called", pm.parses)
	return nil
}

// Stats returns parser usage counters.
func (pm *ParserManager) Stats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	created := 0
	for _, pool := range pm.pools {
		created += pool.createdCount()
	}
	return ParserStats{ParsersCreated: created, ParsesCalled: pm.parses}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	ParsersCreated int
	ParsesCalled   int
}

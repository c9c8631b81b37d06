package parser

import (
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uisync/pkg/util"
)

// parserPool hands out tree-sitter parsers bound to one grammar.
//
// Parsers are created lazily up to maxSize and recycled through a buffered
// channel. When every parser is busy, acquire blocks until one is released.
type parserPool struct {
	pool    chan *ts.Parser
	grammar Grammar
	maxSize int

	// mutex guards created
	mutex   sync.Mutex
	created int

	logger *slog.Logger
}

// poolSize returns the parser count per grammar. It must match the indexer's
// worker count so workers never wait on parsers.
func poolSize(override int) int {
	return util.GetOptimalPoolSizeWithOverride(override)
}

func newParserPool(grammar Grammar, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		grammar: grammar,
		maxSize: maxSize,
		logger:  logger,
	}
}

// acquire returns an idle parser, creating one if the pool has room.
func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
		return p.createOrWait()
	}
}

func (p *parserPool) createOrWait() (*ts.Parser, error) {
	p.mutex.Lock()
	if p.created >= p.maxSize {
		p.mutex.Unlock()
		return <-p.pool, nil
	}
	defer p.mutex.Unlock()

	parser := ts.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("failed to create parser")
	}
	if err := parser.SetLanguage(p.grammar.Language()); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set %s language: %w", p.grammar, err)
	}

	p.created++
	p.logger.Debug("created parser in pool",
		"grammar", p.grammar.String(),
		"pool_size", p.created)
	return parser, nil
}

// release returns a parser to the pool.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}
	select {
	case p.pool <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser",
			"grammar", p.grammar.String())
	}
}

// close frees every idle parser. The pool is unusable afterwards.
func (p *parserPool) close() int {
	close(p.pool)
	count := 0
	for parser := range p.pool {
		parser.Close()
		count++
	}
	return count
}

func (p *parserPool) createdCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}

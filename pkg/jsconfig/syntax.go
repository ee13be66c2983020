package jsconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// requireQuery captures the first argument of every require() call, plus any
// ES module syntax, which the evaluator cannot run.
const requireQuery = `
(call_expression
  function: (identifier) @_callee
  arguments: (arguments . (_) @require.arg)
  (#eq? @_callee "require"))

(import_statement
  source: (string) @import.source)

(export_statement) @export
`

// Require is one require() call found in a config file.
type Require struct {
	Module string `json:"module"`
	Line   uint32 `json:"line"`
	// Dynamic is set when the argument is not a string literal.
	Dynamic bool `json:"dynamic,omitempty"`
}

// ErrClosed is returned by an Importer used after Close.
var ErrClosed = errors.New("importer is closed")

// parserPool hands out JavaScript parsers to concurrent imports.
// Parsers are created lazily up to maxSize; acquire blocks after that.
// The pool channel is never closed: done wakes blocked acquirers, and
// parsers released after close are closed instead of pooled.
type parserPool struct {
	pool    chan *ts.Parser
	done    chan struct{}
	lang    *ts.Language
	maxSize int

	mutex   sync.Mutex
	created int
	closed  bool

	logger *slog.Logger
}

func newParserPool(lang *ts.Language, maxSize int, logger *slog.Logger) *parserPool {
	if maxSize < 1 {
		maxSize = 1
	}
	return &parserPool{
		pool:    make(chan *ts.Parser, maxSize),
		done:    make(chan struct{}),
		lang:    lang,
		maxSize: maxSize,
		logger:  logger,
	}
}

func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case <-p.done:
		return nil, ErrClosed
	default:
	}
	select {
	case parser := <-p.pool:
		return parser, nil
	default:
	}

	p.mutex.Lock()
	if p.closed {
		p.mutex.Unlock()
		return nil, ErrClosed
	}
	if p.created >= p.maxSize {
		p.mutex.Unlock()
		select {
		case parser := <-p.pool:
			return parser, nil
		case <-p.done:
			return nil, ErrClosed
		}
	}
	parser := ts.NewParser()
	if err := parser.SetLanguage(p.lang); err != nil {
		p.mutex.Unlock()
		parser.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	p.created++
	p.logger.Debug("created javascript parser", "pool_size", p.created)
	p.mutex.Unlock()
	return parser, nil
}

func (p *parserPool) release(parser *ts.Parser) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		parser.Close()
		return
	}
	select {
	case p.pool <- parser:
	default:
		parser.Close()
	}
}

// close releases idle parsers. It is idempotent.
func (p *parserPool) close() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.done)
	for {
		select {
		case parser := <-p.pool:
			parser.Close()
		default:
			return
		}
	}
}

// syntax runs the static pre-flight over config sources.
type syntax struct {
	pool   *parserPool
	query  *ts.Query
	logger *slog.Logger

	// mu guards query against close while a pre-flight runs.
	mu     sync.RWMutex
	closed bool
}

func newSyntax(poolSize int, logger *slog.Logger) (*syntax, error) {
	lang := ts.NewLanguage(ts_javascript.Language())
	query, qerr := ts.NewQuery(lang, requireQuery)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile require query: %s", qerr.Message)
	}
	return &syntax{
		pool:   newParserPool(lang, poolSize, logger),
		query:  query,
		logger: logger,
	}, nil
}

// requires lists every require() call in source, in source order. ES module
// import/export statements are reported as errors.
func (s *syntax) requires(source []byte) ([]Require, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	parser, err := s.pool.acquire()
	if err != nil {
		return nil, err
	}
	tree := parser.Parse(source, nil)
	s.pool.release(parser)
	if tree == nil {
		return nil, fmt.Errorf("parser returned no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		s.logger.Warn("config source contains syntax errors")
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := s.query.CaptureNames()
	var out []Require
	matches := cursor.Matches(s.query, root, source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, capture := range match.Captures {
			if int(capture.Index) >= len(names) {
				continue
			}
			line := uint32(capture.Node.StartPosition().Row + 1)
			switch names[capture.Index] {
			case "import.source", "export":
				return nil, fmt.Errorf("line %d: ES module syntax is not supported, use require() and module.exports", line)
			case "require.arg":
				out = append(out, requireFromNode(&capture.Node, source, line))
			}
		}
	}
	return out, nil
}

func requireFromNode(node *ts.Node, source []byte, line uint32) Require {
	text := node.Utf8Text(source)
	if node.Kind() != "string" || len(text) < 2 {
		return Require{Module: text, Line: line, Dynamic: true}
	}
	return Require{Module: strings.TrimSpace(text[1 : len(text)-1]), Line: line}
}

func (s *syntax) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.pool.close()
	s.query.Close()
}

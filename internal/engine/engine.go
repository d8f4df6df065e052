// Package engine discovers source files and extracts their generic ASTs.
// Every file gets its own builder, so files are extracted in parallel and a
// failure in one never affects another.
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/leapstack-labs/gast/internal/state"
	"github.com/leapstack-labs/gast/pkg/grammar"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultMaxFileSize int64 = 2 << 20
	DefaultDebounce          = 200 * time.Millisecond
)

// DefaultExclude lists directory names skipped during discovery.
var DefaultExclude = []string{".git", "node_modules", "build", "target", "vendor"}

// Config holds engine configuration.
type Config struct {
	// Roots are the files and directories to extract. Defaults to ".".
	Roots []string
	// Grammars restricts extraction to the named grammars. Empty means all
	// registered grammars.
	Grammars []string
	// Exclude lists directory names that are not descended into.
	Exclude []string
	// Workers bounds the number of files extracted at once.
	Workers int
	// Strict fails a file on its first syntax error.
	Strict bool
	// MaxFileSize skips larger files. Negative disables the limit.
	MaxFileSize int64
	// Debounce is the quiet period before a changed file is re-extracted
	// in watch mode.
	Debounce time.Duration
	// Store persists results when set.
	Store state.Store
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine extracts generic ASTs from source trees.
type Engine struct {
	roots       []string
	grammars    []*grammar.Grammar
	byExt       map[string]*grammar.Grammar
	exclude     map[string]bool
	workers     int
	strict      bool
	maxFileSize int64
	debounce    time.Duration
	store       state.Store
	logger      *slog.Logger
}

// New creates an engine, resolving the configured grammars.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		byExt:       make(map[string]*grammar.Grammar),
		exclude:     make(map[string]bool),
		workers:     cfg.Workers,
		strict:      cfg.Strict,
		maxFileSize: cfg.MaxFileSize,
		debounce:    cfg.Debounce,
		store:       cfg.Store,
		logger:      logger,
	}
	if e.workers <= 0 {
		e.workers = runtime.NumCPU()
	}
	if e.maxFileSize == 0 {
		e.maxFileSize = DefaultMaxFileSize
	}
	if e.debounce <= 0 {
		e.debounce = DefaultDebounce
	}

	for _, r := range cfg.Roots {
		e.roots = append(e.roots, filepath.Clean(r))
	}
	if len(e.roots) == 0 {
		e.roots = []string{"."}
	}

	exclude := cfg.Exclude
	if exclude == nil {
		exclude = DefaultExclude
	}
	for _, name := range exclude {
		e.exclude[name] = true
	}

	names := cfg.Grammars
	if len(names) == 0 {
		names = grammar.List()
	}
	for _, name := range names {
		g, ok := grammar.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", grammar.ErrUnknownGrammar, name)
		}
		e.grammars = append(e.grammars, g)
		for _, ext := range g.Extensions {
			e.byExt[strings.ToLower(ext)] = g
		}
	}

	logger.Debug("engine initialized",
		slog.Any("roots", e.roots),
		slog.Any("grammars", names),
		slog.Int("workers", e.workers))
	return e, nil
}

// Grammar returns the enabled grammar for path's extension.
func (e *Engine) Grammar(path string) (*grammar.Grammar, bool) {
	g, ok := e.byExt[strings.ToLower(filepath.Ext(path))]
	return g, ok
}

// Roots returns the cleaned roots the engine extracts.
func (e *Engine) Roots() []string { return e.roots }

func (e *Engine) excluded(dirName string) bool {
	return e.exclude[dirName]
}

// inScope reports whether path lies under one of the roots.
func (e *Engine) inScope(path string) bool {
	path = filepath.Clean(path)
	for _, root := range e.roots {
		if path == root {
			return true
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

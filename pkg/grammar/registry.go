// Package grammar registers the source grammars gast can extract from and
// runs the parse, walk and build pipeline for one file.
package grammar

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/leapstack-labs/gast/pkg/cst"
	"github.com/leapstack-labs/gast/pkg/gast"
)

// Grammar registry
var (
	grammarsMu sync.RWMutex
	grammars   = make(map[string]*Grammar)
	extensions = make(map[string]string)
)

// ErrUnknownGrammar is returned when no grammar matches a name or file.
var ErrUnknownGrammar = errors.New("unknown grammar")

// Adapter is a listener that translates one file's events into builder
// operations and hands back the finished tree.
type Adapter interface {
	cst.Listener
	Finish() (*gast.Node, error)
}

// Options configure a new adapter.
type Options struct {
	Logger *slog.Logger
}

// Grammar describes one supported source language.
type Grammar struct {
	Name       string
	Extensions []string
	Language   func() *sitter.Language
	NewAdapter func(fileID string, opts Options) Adapter
}

// Get returns a grammar by name.
func Get(name string) (*Grammar, bool) {
	grammarsMu.RLock()
	defer grammarsMu.RUnlock()
	g, ok := grammars[strings.ToLower(name)]
	return g, ok
}

// Register registers a grammar in the global registry.
// Called by grammar implementations in their init() functions.
func Register(g *Grammar) {
	grammarsMu.Lock()
	defer grammarsMu.Unlock()
	name := strings.ToLower(g.Name)
	grammars[name] = g
	for _, ext := range g.Extensions {
		extensions[strings.ToLower(ext)] = name
	}
}

// List returns all registered grammar names (sorted).
func List() []string {
	grammarsMu.RLock()
	defer grammarsMu.RUnlock()
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForFile returns the grammar registered for path's extension.
func ForFile(path string) (*Grammar, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	grammarsMu.RLock()
	name, ok := extensions[ext]
	grammarsMu.RUnlock()
	if !ok {
		return nil, false
	}
	return Get(name)
}

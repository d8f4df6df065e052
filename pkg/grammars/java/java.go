// Package java registers the Java grammar. Its adapter folds the shapes
// tree-sitter-java uses for calls, if chains and declarations onto the
// canonical builder operations.
package java

import (
	tsjava "github.com/smacker/go-tree-sitter/java"

	"github.com/leapstack-labs/gast/pkg/grammar"
)

// Name is the registry name of the grammar.
const Name = "java"

func init() {
	grammar.Register(&grammar.Grammar{
		Name:       Name,
		Extensions: []string{".java"},
		Language:   tsjava.GetLanguage,
		NewAdapter: newListener,
	})
}

// Package python registers the Python grammar. tree-sitter-python already
// produces flat if/elif/else chains, so its adapter mostly deals with
// attribute calls and Python's parameter forms.
package python

import (
	tspython "github.com/smacker/go-tree-sitter/python"

	"github.com/leapstack-labs/gast/pkg/grammar"
)

// Name is the registry name of the grammar.
const Name = "python"

func init() {
	grammar.Register(&grammar.Grammar{
		Name:       Name,
		Extensions: []string{".py", ".pyi"},
		Language:   tspython.GetLanguage,
		NewAdapter: newListener,
	})
}

package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gast/internal/cli/output"
	"github.com/leapstack-labs/gast/pkg/grammar"
)

// GrammarOutput describes a registered grammar.
type GrammarOutput struct {
	Name       string   `json:"name" yaml:"name"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// NewGrammarsCommand creates the grammars command.
func NewGrammarsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grammars",
		Short: "List supported grammars",
		Long:  `List the grammars gast can extract and the file extensions mapped to each.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContext(cmd).Renderer

			var list []GrammarOutput
			for _, name := range grammar.List() {
				g, _ := grammar.Get(name)
				list = append(list, GrammarOutput{Name: g.Name, Extensions: g.Extensions})
			}

			if r.Mode() == output.ModeJSON || r.Mode() == output.ModeYAML {
				return r.Encode(list)
			}

			rows := make([][]any, 0, len(list))
			for _, g := range list {
				rows = append(rows, []any{g.Name, strings.Join(g.Extensions, " ")})
			}
			r.Table([]string{"Grammar", "Extensions"}, rows)
			return nil
		},
	}
}

package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gast/internal/state"
	"github.com/leapstack-labs/gast/pkg/format"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	var (
		spans bool
		depth int
	)

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Show the stored tree of a file",
		Long: `Print the tree persisted for a file by 'gast extract --store' without
parsing it again. The path must be given as it was extracted.`,
		Example: `  gast extract --store --summary src
  gast show src/Main.java --depth 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			store, cleanup, err := cc.OpenStore()
			defer cleanup()
			if err != nil {
				return err
			}

			root, err := store.LoadTree(filepath.Clean(args[0]))
			if errors.Is(err, state.ErrNotFound) {
				return fmt.Errorf("%w\nHint: run 'gast extract --store' first", err)
			}
			if err != nil {
				return err
			}
			return cc.Renderer.Tree(root, format.Options{Spans: spans, MaxDepth: depth})
		},
	}

	cmd.Flags().BoolVar(&spans, "spans", false, "Show source spans in text output")
	cmd.Flags().IntVar(&depth, "depth", 0, "Limit printed tree depth (0 = unlimited)")
	return cmd
}

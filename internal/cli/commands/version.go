package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display gast version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "gast v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Generic AST extractor built with Go %s and tree-sitter\n", runtime.Version())
		},
	}
}

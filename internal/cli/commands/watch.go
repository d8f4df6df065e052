package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gast/internal/cli/output"
	"github.com/leapstack-labs/gast/internal/engine"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var store bool

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-extract files as they change",
		Long: `Extract the given paths once, then watch them and re-extract each
source file shortly after it changes. Runs until interrupted.`,
		Example: `  gast watch --store src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)

			st, cleanup, err := cc.MaybeStore(store)
			defer cleanup()
			if err != nil {
				return err
			}
			eng, err := cc.NewEngine(args, st)
			if err != nil {
				return err
			}

			sum, err := eng.ExtractAll(cmd.Context())
			if err != nil {
				return err
			}
			r := cc.Renderer
			for _, res := range sum.Results {
				printWatchResult(r, res)
			}

			return eng.Watch(cmd.Context(), func(res engine.Result) {
				printWatchResult(r, res)
			})
		},
	}

	cmd.Flags().BoolVar(&store, "store", false, "Persist results to the state database")
	return cmd
}

func printWatchResult(r *output.Renderer, res engine.Result) {
	if r.Mode() == output.ModeJSON || r.Mode() == output.ModeYAML {
		fo := FileOutput{Path: res.Path, Grammar: res.Grammar, Status: string(res.Status), Nodes: res.Stats.Nodes}
		if res.Err != nil {
			fo.Error = res.Err.Error()
		}
		_ = r.Encode(fo)
		return
	}

	styles := r.Styles()
	switch res.Status {
	case engine.StatusExtracted:
		r.Printf("%s %s %s\n", styles.StatusSuccess.String(), res.Path,
			styles.Muted.Render(fmt.Sprintf("(%d nodes, %s)", res.Stats.Nodes, res.Duration.Round(time.Microsecond))))
	case engine.StatusFailed:
		r.Error(res.Err.Error())
	case engine.StatusRemoved:
		r.Printf("%s %s %s\n", styles.StatusSkipped.String(), res.Path, styles.Muted.Render("(removed)"))
	case engine.StatusUnchanged, engine.StatusSkipped:
		r.Printf("%s %s %s\n", styles.StatusSkipped.String(), res.Path, styles.Muted.Render("("+string(res.Status)+")"))
	}
}

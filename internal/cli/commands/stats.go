package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gast/internal/cli/output"
	"github.com/leapstack-labs/gast/pkg/gast"
)

// StatsOutput is the encoded output of gast stats.
type StatsOutput struct {
	Files    int            `json:"files" yaml:"files"`
	Failed   int            `json:"failed" yaml:"failed"`
	Nodes    int            `json:"nodes" yaml:"nodes"`
	MaxDepth int            `json:"max_depth" yaml:"max_depth"`
	ByKind   map[string]int `json:"by_kind" yaml:"by_kind"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	var store bool

	cmd := &cobra.Command{
		Use:   "stats [paths...]",
		Short: "Show node counts by kind",
		Long: `Extract the given paths and summarize the resulting trees: the number
of nodes of each kind, the total and the deepest nesting.`,
		Example: `  gast stats src
  gast stats -o json .`,
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

			out := StatsOutput{
				Files:    sum.Extracted,
				Failed:   sum.Failed,
				Nodes:    sum.Stats.Nodes,
				MaxDepth: sum.Stats.MaxDepth,
				ByKind:   make(map[string]int, len(sum.Stats.ByKind)),
			}
			for k, v := range sum.Stats.ByKind {
				out.ByKind[string(k)] = v
			}

			r := cc.Renderer
			if r.Mode() == output.ModeJSON || r.Mode() == output.ModeYAML {
				return r.Encode(out)
			}
			statsText(r, sum.Stats, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&store, "store", false, "Persist results to the state database")
	return cmd
}

func statsText(r *output.Renderer, stats gast.Stats, out StatsOutput) {
	styles := r.Styles()

	rows := make([][]any, 0, len(stats.ByKind))
	for _, k := range stats.SortedKinds() {
		n := stats.ByKind[k]
		rows = append(rows, []any{
			styles.KindStyle(k).Render(string(k)),
			n,
			fmt.Sprintf("%.1f%%", 100*float64(n)/float64(stats.Nodes)),
		})
	}

	r.Header(1, "node statistics")
	r.Table([]string{"Kind", "Count", "Share"}, rows, "Total", stats.Nodes, "")
	r.Printf("%d files, max depth %d", out.Files, out.MaxDepth)
	if out.Failed > 0 {
		r.Printf(", %s", styles.Error.Render(fmt.Sprintf("%d failed", out.Failed)))
	}
	r.Println("")
}

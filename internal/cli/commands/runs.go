package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gast/internal/cli/output"
	"github.com/leapstack-labs/gast/internal/state"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent extraction runs",
		Long:  `List the runs recorded in the state database, most recent first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			store, cleanup, err := cc.OpenStore()
			defer cleanup()
			if err != nil {
				return err
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}

			r := cc.Renderer
			if r.Mode() == output.ModeJSON || r.Mode() == output.ModeYAML {
				if runs == nil {
					runs = []*state.Run{}
				}
				return r.Encode(runs)
			}

			if len(runs) == 0 {
				r.Println(r.Styles().Muted.Render("No runs recorded yet"))
				return nil
			}

			styles := r.Styles()
			rows := make([][]any, 0, len(runs))
			for _, run := range runs {
				status := styles.Warning.Render(r.Title(string(run.Status)))
				switch run.Status {
				case state.RunStatusCompleted:
					status = styles.Success.Render(r.Title(string(run.Status)))
				case state.RunStatusFailed:
					status = styles.Error.Render(r.Title(string(run.Status)))
				}
				duration := "-"
				if run.CompletedAt != nil {
					duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
				}
				rows = append(rows, []any{
					shortID(run.ID),
					status,
					run.StartedAt.Local().Format(time.DateTime),
					duration,
					run.Files,
					run.Failures,
				})
			}
			r.Table([]string{"Run", "Status", "Started", "Duration", "Files", "Failures"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

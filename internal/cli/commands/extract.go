package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gast/internal/cli/output"
	"github.com/leapstack-labs/gast/internal/engine"
	"github.com/leapstack-labs/gast/pkg/format"
	"github.com/leapstack-labs/gast/pkg/gast"
)

// FileOutput is the encoded result of one file.
type FileOutput struct {
	Path    string         `json:"path" yaml:"path"`
	Grammar string         `json:"grammar" yaml:"grammar"`
	Status  string         `json:"status" yaml:"status"`
	Nodes   int            `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
	Tree    *gast.Exchange `json:"tree,omitempty" yaml:"tree,omitempty"`
}

// SummaryOutput is the encoded summary of a run.
type SummaryOutput struct {
	Files      int   `json:"files" yaml:"files"`
	Extracted  int   `json:"extracted" yaml:"extracted"`
	Unchanged  int   `json:"unchanged" yaml:"unchanged"`
	Skipped    int   `json:"skipped" yaml:"skipped"`
	Failed     int   `json:"failed" yaml:"failed"`
	Nodes      int   `json:"nodes" yaml:"nodes"`
	DurationMS int64 `json:"duration_ms" yaml:"duration_ms"`
}

// ExtractOutput is the encoded output of gast extract.
type ExtractOutput struct {
	RunID   string        `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Files   []FileOutput  `json:"files" yaml:"files"`
	Summary SummaryOutput `json:"summary" yaml:"summary"`
}

type extractOptions struct {
	store   bool
	summary bool
	spans   bool
	depth   int
}

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [paths...]",
		Short: "Extract generic ASTs from source files",
		Long: `Parse every source file of a supported grammar under the given paths
and print its generic AST.

Files are extracted in parallel. A file that fails is reported and the
others are still extracted; the command exits non-zero if any file failed.`,
		Example: `  # Print the tree of every Java and Python file under src
  gast extract src

  # Encode trees as JSON
  gast extract -o json Foo.java

  # Persist results and skip files unchanged since the last run
  gast extract --store --summary .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.store, "store", false, "Persist results to the state database")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print only the run summary")
	cmd.Flags().BoolVar(&opts.spans, "spans", false, "Show source spans in text output")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "Limit printed tree depth (0 = unlimited)")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string, opts *extractOptions) error {
	cc := NewCommandContext(cmd)

	store, cleanup, err := cc.MaybeStore(opts.store)
	defer cleanup()
	if err != nil {
		return err
	}

	eng, err := cc.NewEngine(args, store)
	if err != nil {
		return err
	}

	sum, err := eng.ExtractAll(cmd.Context())
	if err != nil {
		return err
	}

	r := cc.Renderer
	switch r.Mode() {
	case output.ModeJSON, output.ModeYAML:
		if err := r.Encode(toExtractOutput(sum, !opts.summary)); err != nil {
			return err
		}
	default:
		if err := extractText(r, sum, opts); err != nil {
			return err
		}
	}

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", sum.Failed, len(sum.Results))
	}
	return nil
}

func toExtractOutput(sum *engine.Summary, trees bool) ExtractOutput {
	out := ExtractOutput{
		RunID: sum.RunID,
		Files: make([]FileOutput, 0, len(sum.Results)),
		Summary: SummaryOutput{
			Files:      len(sum.Results),
			Extracted:  sum.Extracted,
			Unchanged:  sum.Unchanged,
			Skipped:    sum.Skipped,
			Failed:     sum.Failed,
			Nodes:      sum.Stats.Nodes,
			DurationMS: sum.Duration.Milliseconds(),
		},
	}
	for _, res := range sum.Results {
		fo := FileOutput{
			Path:    res.Path,
			Grammar: res.Grammar,
			Status:  string(res.Status),
			Nodes:   res.Stats.Nodes,
		}
		if res.Err != nil {
			fo.Error = res.Err.Error()
		}
		if trees && res.Root != nil {
			ex := res.Root.Exchange()
			fo.Tree = &ex
		}
		out.Files = append(out.Files, fo)
	}
	return out
}

func extractText(r *output.Renderer, sum *engine.Summary, opts *extractOptions) error {
	styles := r.Styles()

	for _, res := range sum.Results {
		switch res.Status {
		case engine.StatusExtracted:
			if opts.summary {
				continue
			}
			if err := r.Tree(res.Root, format.Options{Spans: opts.spans, MaxDepth: opts.depth}); err != nil {
				return err
			}
			r.Println("")
		case engine.StatusFailed:
			r.Error(res.Err.Error())
		case engine.StatusSkipped:
			r.Println(styles.StatusSkipped.String() + " " + styles.Muted.Render(res.Err.Error()))
		}
	}

	line := fmt.Sprintf("Extracted %d files (%d nodes)", sum.Extracted, sum.Stats.Nodes)
	if sum.Unchanged > 0 {
		line += fmt.Sprintf(", %d unchanged", sum.Unchanged)
	}
	if sum.Skipped > 0 {
		line += fmt.Sprintf(", %d skipped", sum.Skipped)
	}
	if sum.Failed > 0 {
		line += fmt.Sprintf(", %d failed", sum.Failed)
	}
	line += " in " + sum.Duration.Round(time.Millisecond).String()

	if sum.Failed > 0 {
		r.Println(styles.Warning.Render(line))
	} else {
		r.Success(line)
	}
	if sum.RunID != "" {
		r.Println(styles.Muted.Render("Run " + sum.RunID))
	}
	return nil
}

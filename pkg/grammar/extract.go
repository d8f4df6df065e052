package grammar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/gast/pkg/cst"
	"github.com/leapstack-labs/gast/pkg/gast"
)

// ExtractOptions control a single-file extraction.
type ExtractOptions struct {
	// Strict fails the file on the first syntax error instead of skipping
	// the erroneous subtree.
	Strict bool
	Logger *slog.Logger
}

// Extract parses src with g and builds its generic AST. Syntax errors are
// reported as *cst.SyntaxError, adapter failures wrap a
// *gast.ContractViolation.
func (g *Grammar) Extract(ctx context.Context, fileID string, src []byte, opts ExtractOptions) (*gast.Node, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tree, err := cst.Parse(ctx, g.Language(), src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileID, err)
	}
	defer tree.Close()

	if se := cst.FirstSyntaxError(tree.RootNode(), src, fileID); se != nil {
		if opts.Strict {
			return nil, se
		}
		logger.Warn("syntax error, skipping erroneous subtree",
			slog.String("file", fileID),
			slog.String("pos", se.Pos.String()),
			slog.String("detail", se.Message))
	}

	adapter := g.NewAdapter(fileID, Options{Logger: logger})
	if err := cst.Walk(tree, src, adapter); err != nil {
		return nil, err
	}
	return adapter.Finish()
}

// Extract resolves the grammar from fileID's extension and extracts src.
func Extract(ctx context.Context, fileID string, src []byte, opts ExtractOptions) (*gast.Node, error) {
	g, ok := ForFile(fileID)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrUnknownGrammar, fileID)
	}
	return g.Extract(ctx, fileID, src, opts)
}

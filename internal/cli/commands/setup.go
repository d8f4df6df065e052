package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gast/internal/cli/config"
	"github.com/leapstack-labs/gast/internal/cli/output"
	"github.com/leapstack-labs/gast/internal/engine"
	"github.com/leapstack-labs/gast/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext builds the context from the config and logger the root
// command stored.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}

// OpenStore opens the state database. The cleanup func closes it.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, func(), error) {
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, func() {}, fmt.Errorf("failed to open state database: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// MaybeStore opens the state database when persist is set. Otherwise the
// returned store is nil.
func (c *CommandContext) MaybeStore(persist bool) (state.Store, func(), error) {
	if !persist {
		return nil, func() {}, nil
	}
	store, cleanup, err := c.OpenStore()
	if err != nil {
		return nil, cleanup, err
	}
	return store, cleanup, nil
}

// NewEngine creates an engine over roots, falling back to the configured
// roots when none are given.
func (c *CommandContext) NewEngine(roots []string, store state.Store) (*engine.Engine, error) {
	if len(roots) == 0 {
		roots = c.Cfg.Roots
	}
	return engine.New(engine.Config{
		Roots:       roots,
		Grammars:    c.Cfg.Grammars,
		Exclude:     c.Cfg.Exclude,
		Workers:     c.Cfg.Workers,
		Strict:      c.Cfg.Strict,
		MaxFileSize: c.Cfg.MaxFileSize,
		Store:       store,
		Logger:      c.Logger,
	})
}

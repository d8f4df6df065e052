package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gast/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extraction over HTTP",
		Long: `Start an HTTP server exposing the extractor:

  POST /v1/extract?grammar=java&file=Foo.java   source body in, tree JSON out
  GET  /v1/grammars                             supported grammars
  GET  /v1/events                               watch results (with --watch)
  GET  /healthz                                 liveness`,
		Example: `  gast serve --port 8787
  curl --data-binary @Foo.java 'localhost:8787/v1/extract?file=Foo.java'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			cfg := cc.Cfg

			srvCfg := server.Config{
				Port:    cfg.Server.Port,
				MaxBody: cfg.Server.MaxBody,
				Strict:  cfg.Strict,
				Watch:   cfg.Server.Watch,
				Logger:  cc.Logger,
			}
			if cfg.Server.Watch {
				store, cleanup, err := cc.OpenStore()
				defer cleanup()
				if err != nil {
					return err
				}
				eng, err := cc.NewEngine(nil, store)
				if err != nil {
					return err
				}
				srvCfg.Engine = eng
			}

			cc.Renderer.Printf("Serving on http://localhost:%d\n", cfg.Server.Port)
			return server.New(srvCfg).Serve(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 0, "Port to listen on (default 8787)")
	cmd.Flags().Int64("max-body", 0, "Maximum request body in bytes (default 4 MiB)")
	cmd.Flags().Bool("watch", false, "Watch the configured roots and stream results on /v1/events")
	return cmd
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridboard/internal/api"
	"github.com/matzehuels/gridboard/pkg/dragdrop"
	"github.com/matzehuels/gridboard/pkg/observability"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard layout over HTTP",
		Long: `Serve the dashboard layout as a JSON API until interrupted.

Pending changes are flushed to the store on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.commandContext(cmd)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			s, err := c.openSessionWith(ctx, cfg, sessionOptions{})
			if err != nil {
				return err
			}

			ctrl := dragdrop.New(s.mgr,
				dragdrop.WithConfig(cfg.DragDrop()),
				dragdrop.WithHooks(observability.NewLogHooks(c.Logger)),
				dragdrop.WithLogger(c.Logger),
			)
			srv := api.New(s.mgr, ctrl, c.Logger)

			printInfo("Serving dashboard %s on http://%s", cfg.Store.Dashboard, addr)
			err = srv.ListenAndServe(ctx, addr)
			if cerr := s.close(context.WithoutCancel(ctx)); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}

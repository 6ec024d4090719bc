package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"resale-explorer/server"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard over HTTP",
		Long: `Serve loads the dataset once and serves the dashboard page, its JSON API
and Prometheus metrics until interrupted.

Routes:
  GET /               dashboard page
  GET /api/options    filter options and defaults
  GET /api/dashboard  dashboard for the filters in the query string
  GET /health         liveness
  GET /metrics        Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, g)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(cmd, g, map[string]string{"server.addr": "addr"})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	a.logger.Info("[cli] Loaded %d of %d rows from %s (%d dropped)",
		a.report.RowsKept, a.report.RowsRead, a.report.Source, a.report.DroppedTotal())

	srv := server.New(a.dashboard, a.defaults, server.Options{
		Addr:      cfg.Server.Addr,
		CacheTTL:  cfg.Server.CacheTTL,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	}, a.logger)
	return srv.Run(ctx)
}

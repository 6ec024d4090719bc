package cli

import (
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"resale-explorer/server"
	"resale-explorer/snapshot"
)

func newSnapshotCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the dashboard page as a PNG using headless Chrome",
		Long: `Snapshot renders the dashboard in headless Chrome and writes a full-page
PNG. Without --url the dashboard is served in-process from the configured
dataset. Repeat --capture-town to capture several towns in one run; each
town gets its own file next to --output.

Example:
  resale-explorer snapshot --output out/dashboard.png
  resale-explorer snapshot --capture-town QUEENSTOWN --capture-town BISHAN --flat-type "5 ROOM"
  resale-explorer snapshot --url http://localhost:8080/?town=TAMPINES`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, g)
		},
	}

	addCriteriaFlags(cmd.Flags())
	cmd.Flags().StringArray("capture-town", nil, "town to capture, repeatable")
	cmd.Flags().String("url", "", "capture a dashboard that is already running at this URL")
	cmd.Flags().StringP("output", "o", "", "PNG path (default ./output/dashboard.png)")
	cmd.Flags().String("chrome-bin", "", "Chrome/Chromium binary")
	cmd.Flags().Int("width", 0, "viewport width (default 1400)")
	cmd.Flags().Int("height", 0, "viewport height (default 900)")
	cmd.Flags().Duration("timeout", 0, "per-page timeout (default 60s)")
	return cmd
}

func runSnapshot(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(cmd, g, map[string]string{
		"snapshot.output":     "output",
		"snapshot.chrome_bin": "chrome-bin",
		"snapshot.width":      "width",
		"snapshot.height":     "height",
		"snapshot.timeout":    "timeout",
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	towns, _ := cmd.Flags().GetStringArray("capture-town")
	rawURL, _ := cmd.Flags().GetString("url")
	logger := newLogger(cmd, cfg.Verbose)

	var targets []snapshot.Target
	if rawURL != "" {
		if targets, err = snapshot.URLTargets(rawURL, towns, cfg.Snapshot.Output); err != nil {
			return err
		}
	} else {
		a, err := loadApp(ctx, cmd, cfg)
		if err != nil {
			return err
		}
		criteria, err := server.ParseCriteria(criteriaQuery(cmd.Flags()), a.defaults)
		if err != nil {
			return err
		}
		srv := server.New(a.dashboard, a.defaults, server.Options{CacheTTL: cfg.Server.CacheTTL}, a.logger)
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()
		targets = snapshot.TownTargets(ts.URL, criteria, towns, cfg.Snapshot.Output)
	}

	exporter := snapshot.New(snapshot.Options{
		ChromeBin:   cfg.Snapshot.ChromeBin,
		Width:       cfg.Snapshot.Width,
		Height:      cfg.Snapshot.Height,
		Timeout:     cfg.Snapshot.Timeout,
		Retries:     cfg.Snapshot.Retries,
		Concurrency: cfg.Snapshot.Concurrency,
		Interval:    cfg.Snapshot.Interval,
	}, logger)
	_, err = exporter.Export(ctx, targets)
	return err
}

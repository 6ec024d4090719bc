package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"resale-explorer/config"
	"resale-explorer/models"
	"resale-explorer/services"
	"resale-explorer/storage"
	"resale-explorer/utils"
)

// app is the loaded dataset plus everything needed to render it.
type app struct {
	cfg       *config.Config
	logger    *utils.Logger
	dashboard *services.Dashboard
	defaults  models.FilterCriteria
	report    *models.LoadReport
}

func newLogger(cmd *cobra.Command, verbose bool) *utils.Logger {
	logger := utils.NewLoggerTo(cmd.ErrOrStderr(), cmd.ErrOrStderr())
	logger.SetVerbose(verbose)
	return logger
}

// loadApp reads the configured dataset once and prepares the dashboard.
func loadApp(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*app, error) {
	logger := newLogger(cmd, cfg.Verbose)
	if cfg.File != "" {
		logger.Debug("[config] Using config file %s", cfg.File)
	}
	if cfg.DotEnv {
		logger.Debug("[config] Loaded .env")
	}

	policy, err := services.ParseMalformedPolicy(cfg.Load.Malformed)
	if err != nil {
		return nil, err
	}

	source, err := openSource(ctx, cfg, logger)
	if err != nil {
		return nil, &services.LoadError{Source: sourceName(cfg), Err: err}
	}
	defer source.Close()

	loader := services.NewLoader(source, services.NewNormalizer(logger, policy), logger)
	table, report, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	defaults := services.DefaultCriteria(services.BuildOptions(table), services.CriteriaDefaults{
		Town:        cfg.Pipeline.DefaultTown,
		FlatType:    cfg.Pipeline.DefaultFlatType,
		FlatModels:  cfg.Pipeline.DefaultFlatModels,
		MonthWindow: cfg.Pipeline.MonthWindow,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		dashboard: services.NewDashboard(table, cfg.Pipeline.TopN, logger),
		defaults:  defaults,
		report:    report,
	}, nil
}

func openSource(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.RecordSource, error) {
	if cfg.Load.Driver == config.DriverCSV {
		return storage.NewCSVReader(cfg.Load.Source), nil
	}

	retry := &utils.RetryConfig{
		MaxAttempts: cfg.Load.ConnectRetries,
		BaseDelay:   time.Second,
		Logger:      logger,
	}
	r, err := storage.NewSQLReader(ctx, cfg.Load.Driver, cfg.Load.Source, cfg.Load.Table, retry)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// sourceName identifies the dataset in errors without leaking a DSN.
func sourceName(cfg *config.Config) string {
	if cfg.Load.Driver == config.DriverCSV {
		return cfg.Load.Source
	}
	return cfg.Load.Driver + ":" + cfg.Load.Table
}

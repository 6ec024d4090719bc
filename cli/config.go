package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "resale-explorer.yaml"

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage resale-explorer configuration",
		Long: `Manage resale-explorer configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (RESALE_*, e.g. RESALE_LOAD_SOURCE)
3. Config file (./resale-explorer.yaml or --config)
4. Defaults`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if cfg.File != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Configuration file: %s\n\n", cfg.File)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "No configuration file found (using defaults)\n\n")
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			cfg, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			header := "# resale-explorer configuration\n" +
				"# Environment variables (RESALE_*) and CLI flags override these values.\n\n"
			if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created configuration: %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(show, initCmd)
	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"resale-explorer/config"
)

// version is set at build time with -ldflags "-X resale-explorer/cli.version=..."
var version = "dev"

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	cfgFile string
}

// persistentKeys maps config keys to the persistent flags that override them.
var persistentKeys = map[string]string{
	"verbose":        "verbose",
	"load.driver":    "driver",
	"load.source":    "source",
	"load.table":     "table",
	"load.malformed": "malformed",
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "resale-explorer",
		Short: "Explore HDB resale transactions and find good-value flats",
		Long: `resale-explorer loads a table of HDB resale transactions once, then answers
filter queries with a ranked list of good-value flats plus chart data:
average price by street, price trends by floor level and price
distribution by floor area.

Data can come from a CSV file or from a postgres or sqlite table.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.cfgFile, "config", "", "config file (default: ./resale-explorer.yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.String("driver", "", "dataset driver: csv, postgres or sqlite")
	pf.String("source", "", "CSV path or database DSN")
	pf.String("table", "", "database table holding the transactions")
	pf.String("malformed", "", "what to do with malformed rows: drop or reject")

	root.AddCommand(
		newServeCmd(g),
		newRecommendCmd(g),
		newSnapshotCmd(g),
		newConfigCmd(g),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "resale-explorer %s\n", version)
		},
	}
}

// loadConfig resolves the configuration for cmd. keys maps config keys to
// the names of cmd's own flags that override them.
func loadConfig(cmd *cobra.Command, g *globalOptions, keys map[string]string) (*config.Config, error) {
	flags := make(map[string]*pflag.Flag, len(persistentKeys)+len(keys))
	for key, name := range persistentKeys {
		flags[key] = cmd.Flags().Lookup(name)
	}
	for key, name := range keys {
		flags[key] = cmd.Flags().Lookup(name)
	}
	return config.Load(g.cfgFile, flags)
}

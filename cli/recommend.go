package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"resale-explorer/server"
	"resale-explorer/terminal"
)

func newRecommendCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the ranked recommendations and chart summaries for a filter",
		Long: `Recommend runs the dashboard pipeline once for the given filters and
prints the result to the terminal. Filters that are not given fall back to
the dashboard defaults.

Example:
  resale-explorer recommend --town QUEENSTOWN --flat-type "4 ROOM"
  resale-explorer recommend --flat-model "Model A" --flat-model DBSS --lease-min 70
  resale-explorer recommend --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, g)
		},
	}

	addCriteriaFlags(cmd.Flags())
	cmd.Flags().Int("top-n", 0, "number of recommendations (default 20)")
	cmd.Flags().BoolP("interactive", "i", false, "browse the recommendations with the arrow keys")
	return cmd
}

func runRecommend(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(cmd, g, map[string]string{"pipeline.top_n": "top-n"})
	if err != nil {
		return err
	}

	a, err := loadApp(cmd.Context(), cmd, cfg)
	if err != nil {
		return err
	}

	criteria, err := server.ParseCriteria(criteriaQuery(cmd.Flags()), a.defaults)
	if err != nil {
		return err
	}
	d := a.dashboard.Render(criteria)

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive && !d.NoData {
		err := terminal.Browse(os.Stdin, cmd.OutOrStdout(), d.Recommendations)
		if !errors.Is(err, terminal.ErrNotTerminal) {
			return err
		}
		a.logger.Warn("[cli] --interactive needs a terminal, printing the report instead")
	}

	a.dashboard.Insights().Print(cmd.OutOrStdout(), d)
	return nil
}

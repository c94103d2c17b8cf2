package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/reports"
)

var (
	reportFormat string
	reportNames  []string
	reportsSQL   bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the analytical reports against the warehouse",
	Long: `Run the analytical reports against the star schema and print them as
text tables, YAML or JSON. All reports run unless --name is given.

Example:
  pgedge-costdw report --name top_big_mac --name cheapest_countries --format json`,
	RunE: runReport,
}

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List available reports",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available reports:")
		cmd.Println()
		for _, def := range reports.All() {
			cmd.Printf("  %-26s %s\n", def.Name, def.Title)
			cmd.Printf("  %-26s %s\n", "", def.Description)
			if reportsSQL {
				for _, line := range strings.Split(strings.TrimSpace(def.SQL), "\n") {
					cmd.Printf("      %s\n", line)
				}
			}
			cmd.Println()
		}
		cmd.Println("Use 'pgedge-costdw report --name <report>' to run one report.")
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "",
		"output format: text, yaml or json")
	reportCmd.Flags().StringSliceVar(&reportNames, "name", nil,
		"report to run (repeatable; default: all)")

	reportsCmd.Flags().BoolVar(&reportsSQL, "sql", false,
		"show the SQL of every report")
}

func runReport(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if reportFormat != "" {
		cfg.Report.Format = reportFormat
	}
	if len(reportNames) > 0 {
		cfg.Report.Names = reportNames
	}

	if err := cfg.ValidateReport(); err != nil {
		return err
	}
	defs, err := reports.Select(cfg.Report.Names)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext()
	defer cancel()

	d, err := openStore(ctx, cfg.Warehouse)
	if err != nil {
		return err
	}
	defer d.Close()

	results := make([]*reports.Result, 0, len(defs))
	for _, def := range defs {
		res, err := def.Run(ctx, d)
		if err != nil {
			return err
		}
		logging.Debug().Str("report", def.Name).Int("rows", len(res.Rows)).Msg("Ran report")
		results = append(results, res)
	}

	return reports.Render(cmd.OutOrStdout(), cfg.Report.Format, results)
}

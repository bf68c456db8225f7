package cli

import (
	"github.com/spf13/cobra"

	"github.com/rigour-dev/rigour/internal/config"
	"github.com/rigour-dev/rigour/internal/report"
)

var reportLast bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the last run's results",
	Long: `Report renders the persisted summary of the most recent run from the
configured report directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := loadResolvedConfig(&config.CLIOverrides{})
		if err != nil {
			return err
		}

		stored, err := report.Load(rc.Config.Project.ReportDir)
		if err != nil {
			return err
		}

		report.RenderStored(cmd.OutOrStdout(), stored)
		return nil
	},
}

func init() {
	// Only the most recent run is persisted; --last is accepted for
	// symmetry with run output hints.
	reportCmd.Flags().BoolVar(&reportLast, "last", true, "Show the most recent run")
	rootCmd.AddCommand(reportCmd)
}

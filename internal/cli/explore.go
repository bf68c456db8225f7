package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rigour-dev/rigour/internal/config"
)

// Explore command flags.
var (
	exploreMax    int
	exploreModel  string
	exploreEffort string
)

var exploreCmd = &cobra.Command{
	Use:   "explore <scene file>",
	Short: "Suggest edge cases for a scene without running them",
	Long: `Explore asks the oracle for edge-case variations of a single scene and
prints the suggestions. Nothing is executed; use it to preview what the
exploration stage of a run would cover.`,
	Example: `  rigour explore scenes/login.yaml
  rigour explore scenes/checkout.feature --max 12`,
	Args: cobra.ExactArgs(1),
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().IntVar(&exploreMax, "max", 0, "Maximum suggestions to request")
	exploreCmd.Flags().StringVar(&exploreModel, "model", "", "Oracle model identifier")
	exploreCmd.Flags().StringVar(&exploreEffort, "effort", "", "Oracle reasoning effort (low, medium, high)")
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	o := &config.CLIOverrides{}
	if cmd.Flags().Changed("max") {
		o.MaxEdgeCases = &exploreMax
	}
	if cmd.Flags().Changed("model") {
		o.OracleModel = &exploreModel
	}
	if cmd.Flags().Changed("effort") {
		o.OracleEffort = &exploreEffort
	}

	rc, err := loadResolvedConfig(o)
	if err != nil {
		return err
	}
	cfg := rc.Config

	orc := buildOracle(cfg)

	scenes, err := parseSceneFile(cmd, orc, args[0])
	if err != nil {
		return err
	}
	sc := scenes[0]

	suggestions := orc.SuggestEdgeCases(cmd.Context(), sc, cfg.Pipeline.MaxEdgeCases)
	if len(suggestions) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No edge-case suggestions for %q\n", sc.Title)
		return nil
	}

	bold := lipgloss.NewStyle().Bold(true)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	fmt.Fprintf(cmd.OutOrStdout(), "%s %q\n\n", bold.Render("Edge cases for"), sc.Title)
	for i, s := range suggestions {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s", i+1, bold.Render(s.Name))
		if s.Priority != "" {
			fmt.Fprintf(cmd.OutOrStdout(), " %s", muted.Render("["+s.Priority+"]"))
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if s.Description != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "     %s\n", s.Description)
		}
		if s.ExpectedBehavior != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "     %s\n", muted.Render("expect: "+s.ExpectedBehavior))
		}
	}
	return nil
}

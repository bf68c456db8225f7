package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rigour-dev/rigour/internal/config"
	"github.com/rigour-dev/rigour/internal/logging"
)

// Init command flags.
var (
	initName    string
	initBaseURL string
	initEnv     string
	initForce   bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a new Rigour project",
	Long: `Init creates a rigour.toml, a connection file, and an example scenes
directory in the target directory (default: current directory). Existing
files are left untouched unless --force is given.`,
	Example: `  rigour init
  rigour init my-api-tests --name my-api --base-url https://api.example.com
  rigour init --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Project name (default: directory name)")
	initCmd.Flags().StringVar(&initBaseURL, "base-url", "http://localhost:8000", "Base URL of the system under test")
	initCmd.Flags().StringVar(&initEnv, "env", "local", "Connection environment name")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.New("init")

	destDir := "."
	if len(args) == 1 {
		destDir = args[0]
	}
	absDir, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("resolving directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absDir, err)
	}

	existing := filepath.Join(absDir, config.ConfigFileName)
	if _, err := os.Stat(existing); err == nil && !initForce {
		return fmt.Errorf("%s already exists in %s (use --force to overwrite)", config.ConfigFileName, absDir)
	}

	name := initName
	if name == "" {
		name = filepath.Base(absDir)
	}

	vars := config.TemplateVars{
		ProjectName: name,
		BaseURL:     initBaseURL,
		Environment: initEnv,
	}

	created, err := config.RenderTemplate("default", absDir, vars, initForce)
	if err != nil {
		return fmt.Errorf("scaffolding project: %w", err)
	}
	logger.Debug("project scaffolded", "dir", absDir, "files", len(created))

	bold := lipgloss.NewStyle().Bold(true)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold.Render("Initialized Rigour project:"), name)
	for _, f := range created {
		rel, relErr := filepath.Rel(absDir, f)
		if relErr != nil {
			rel = f
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  created %s\n", rel)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nNext: edit %s, then run %s\n",
		filepath.Join(destDir, "connection.yaml"), bold.Render("rigour run"))
	return nil
}

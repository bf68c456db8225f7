package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/rigour-dev/rigour/internal/agent"
	"github.com/rigour-dev/rigour/internal/config"
	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/logging"
	"github.com/rigour-dev/rigour/internal/oracle"
	"github.com/rigour-dev/rigour/internal/report"
	"github.com/rigour-dev/rigour/internal/runner"
	"github.com/rigour-dev/rigour/internal/scene"
	"github.com/rigour-dev/rigour/internal/target"
)

// Run command flags.
var (
	runEnv          string
	runScenesDir    string
	runConnection   string
	runMaxEdgeCases int
	runTimeout      int
	runWorkers      int
	runModel        string
	runEffort       string
	runNoExplore    bool
	runNoHeal       bool
	runNoJudge      bool
)

var runCmd = &cobra.Command{
	Use:   "run [scene files or globs...]",
	Short: "Run test scenes through the full pipeline",
	Long: `Run drives scenes through the pipeline: the oracle generates a test plan
for each scene, the plan executes in a sandboxed subprocess, passing scenes
are explored with edge-case variations, failing scenes are diagnosed and
healed, and final responses are judged for quality.

Scene files may be YAML (.yaml, .yml), Gherkin (.feature), or natural
language (.txt, .md). Arguments accept glob patterns, including ** for
recursive matching. Without arguments, all YAML scenes under the configured
scenes directory are run.`,
	Example: `  rigour run
  rigour run scenes/login.yaml
  rigour run "scenes/**/*.feature" --env staging
  rigour run scenes/checkout.md --no-explore --timeout 120`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runEnv, "env", "", "Connection environment to use (env: RIGOUR_ENVIRONMENT)")
	runCmd.Flags().StringVar(&runScenesDir, "scenes", "", "Directory searched for scenes when no arguments are given")
	runCmd.Flags().StringVar(&runConnection, "connection", "", "Path to the connection YAML file")
	runCmd.Flags().IntVar(&runMaxEdgeCases, "max-edge-cases", 0, "Maximum edge-case variations per scene")
	runCmd.Flags().IntVar(&runTimeout, "timeout", 0, "Per-execution timeout in seconds")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Parallel workers for edge-case batches")
	runCmd.Flags().StringVar(&runModel, "model", "", "Oracle model identifier")
	runCmd.Flags().StringVar(&runEffort, "effort", "", "Oracle reasoning effort (low, medium, high)")
	runCmd.Flags().BoolVar(&runNoExplore, "no-explore", false, "Skip edge-case exploration")
	runCmd.Flags().BoolVar(&runNoHeal, "no-heal", false, "Skip self-healing of failed tests")
	runCmd.Flags().BoolVar(&runNoJudge, "no-judge", false, "Skip response quality judgment")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := logging.New("run")

	rc, err := loadResolvedConfig(runOverrides(cmd))
	if err != nil {
		return err
	}
	cfg := rc.Config

	orc := buildOracle(cfg)

	scenes, err := collectScenes(cmd, orc, args, cfg.Project.ScenesDir)
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		return fmt.Errorf("no scenes found; create one under %s or pass a file", cfg.Project.ScenesDir)
	}
	logger.Info("scenes loaded", "count", len(scenes))

	conn, err := loadConnection(cfg)
	if err != nil {
		return err
	}

	executor := engine.NewExecutor(
		engine.WithTimeout(time.Duration(cfg.Executor.TimeoutSeconds)*time.Second),
		engine.WithWorkers(cfg.Executor.Workers),
		engine.WithRunnerCommand(cfg.Executor.Command),
		engine.WithArtifactSuffix(cfg.Executor.ArtifactSuffix),
		engine.WithExecutorLogger(logging.New("engine")),
	)

	opts := []runner.Option{
		runner.WithConnection(conn),
		runner.WithPipeline(cfg.Pipeline),
		runner.WithLogger(logging.New("runner")),
	}
	if !flagQuiet {
		opts = append(opts, runner.WithReporter(report.NewConsoleReporter(cmd.OutOrStdout())))
	}

	r := runner.NewRunner(orc, executor, opts...)

	rr, runErr := r.Run(cmd.Context(), scenes)

	if err := report.Save(cfg.Project.ReportDir, rr); err != nil {
		logger.Warn("could not persist report", "err", err)
	}

	if runErr != nil {
		return runErr
	}
	if rr.Failed() {
		failed := 0
		for _, sr := range rr.Scenes {
			if !sr.Passed {
				failed++
			}
		}
		return fmt.Errorf("%d of %d scene(s) failed", failed, len(rr.Scenes))
	}
	return nil
}

// runOverrides translates explicitly-set run flags into config overrides.
func runOverrides(cmd *cobra.Command) *config.CLIOverrides {
	o := &config.CLIOverrides{}
	if cmd.Flags().Changed("env") {
		o.Environment = &runEnv
	}
	if cmd.Flags().Changed("scenes") {
		o.ScenesDir = &runScenesDir
	}
	if cmd.Flags().Changed("connection") {
		o.Connection = &runConnection
	}
	if cmd.Flags().Changed("max-edge-cases") {
		o.MaxEdgeCases = &runMaxEdgeCases
	}
	if cmd.Flags().Changed("timeout") {
		o.Timeout = &runTimeout
	}
	if cmd.Flags().Changed("workers") {
		o.Workers = &runWorkers
	}
	if cmd.Flags().Changed("model") {
		o.OracleModel = &runModel
	}
	if cmd.Flags().Changed("effort") {
		o.OracleEffort = &runEffort
	}
	if runNoExplore {
		o.NoExplore = &runNoExplore
	}
	if runNoHeal {
		o.NoHealing = &runNoHeal
	}
	if runNoJudge {
		o.NoJudgment = &runNoJudge
	}
	return o
}

// buildOracle wires the model CLI agent behind the oracle. A missing agent
// binary is not fatal: the oracle falls back to deterministic plan
// generation.
func buildOracle(cfg *config.Config) oracle.Oracle {
	logger := logging.New("oracle")

	ag := agent.NewCLIAgent(agent.Config{
		Command: cfg.Oracle.Command,
		Model:   cfg.Oracle.Model,
		Effort:  cfg.Oracle.Effort,
	}, logging.New("agent"))

	if err := ag.CheckPrerequisites(); err != nil {
		logger.Warn("oracle agent unavailable, using fallback generation", "err", err)
	}
	return oracle.NewCLIOracle(ag, logger)
}

// loadConnection reads the configured connection file, falling back to
// RIGOUR_* environment variables when no file exists.
func loadConnection(cfg *config.Config) (*target.Connection, error) {
	path := cfg.Project.ConnectionFile
	if path == "" {
		return target.FromEnv(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return target.FromEnv(), nil
	}
	return target.LoadFile(path, cfg.Project.Environment)
}

// collectScenes expands the arguments (or the default scenes-dir glob) and
// parses every matched file by extension.
func collectScenes(cmd *cobra.Command, orc oracle.Oracle, args []string, scenesDir string) ([]*scene.Scene, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = []string{filepath.Join(scenesDir, "**", "*.{yaml,yml}")}
	}

	var paths []string
	seen := map[string]bool{}
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad scene pattern %q: %w", pattern, err)
		}
		// A literal path that matched nothing should still error usefully.
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr == nil {
				matches = []string{pattern}
			} else {
				return nil, fmt.Errorf("no scene files match %q", pattern)
			}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	var scenes []*scene.Scene
	for _, path := range paths {
		parsed, err := parseSceneFile(cmd, orc, path)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, parsed...)
	}
	return scenes, nil
}

// parseSceneFile dispatches on file extension: YAML is parsed structurally,
// Gherkin is parsed line-by-line, and free-form text goes through the
// oracle.
func parseSceneFile(cmd *cobra.Command, orc oracle.Oracle, path string) ([]*scene.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return scene.ParseYAMLFile(path)

	case ".feature":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		s, err := scene.ParseGherkin(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return []*scene.Scene{s}, nil

	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		s, err := orc.ParseScene(cmd.Context(), string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return []*scene.Scene{s}, nil

	default:
		return nil, fmt.Errorf("unsupported scene file type: %s", path)
	}
}

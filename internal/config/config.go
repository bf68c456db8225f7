// Package config loads, resolves, and validates the rigour.toml
// configuration. Values are merged from built-in defaults, the config
// file, RIGOUR_* environment variables, and CLI flags, in that order of
// increasing priority.
package config

// Config is the top-level configuration structure mapping to rigour.toml.
type Config struct {
	Project  ProjectConfig  `toml:"project"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Executor ExecutorConfig `toml:"executor"`
	Oracle   OracleConfig   `toml:"oracle"`
}

// ProjectConfig maps to the [project] section in rigour.toml.
type ProjectConfig struct {
	// Name identifies the project in reports.
	Name string `toml:"name"`

	// Environment selects the entry in a multi-environment connection file.
	Environment string `toml:"environment"`

	// ScenesDir is where scene files live.
	ScenesDir string `toml:"scenes_dir"`

	// ConnectionFile is the target connection config path.
	ConnectionFile string `toml:"connection_file"`

	// ReportDir is where run reports are written.
	ReportDir string `toml:"report_dir"`
}

// PipelineConfig maps to the [pipeline] section in rigour.toml. The full
// pipeline is on by default; the toggles are spelled as disables so the
// TOML zero value keeps every stage enabled.
type PipelineConfig struct {
	// DisableExploration skips edge-case exploration after a passing
	// primary execution.
	DisableExploration bool `toml:"disable_exploration"`

	// DisableHealing skips diagnosis and repair of failing tests.
	DisableHealing bool `toml:"disable_healing"`

	// DisableJudgment skips semantic quality judgment of responses.
	DisableJudgment bool `toml:"disable_judgment"`

	// MaxEdgeCases caps how many edge-case variations are explored per
	// scene. This is the single authoritative cap; nothing else bounds the
	// batch.
	MaxEdgeCases int `toml:"max_edge_cases"`

	// SequentialEdgeCases runs the edge-case batch one at a time instead
	// of on the worker pool.
	SequentialEdgeCases bool `toml:"sequential_edge_cases"`
}

// ExecutorConfig maps to the [executor] section in rigour.toml.
type ExecutorConfig struct {
	// TimeoutSeconds bounds a single test execution.
	TimeoutSeconds int `toml:"timeout"`

	// Workers is the parallel batch worker-pool size.
	Workers int `toml:"workers"`

	// Command is the runner invocation; the artifact path is appended.
	Command []string `toml:"command"`

	// ArtifactSuffix is the file extension for written artifacts.
	ArtifactSuffix string `toml:"artifact_suffix"`
}

// OracleConfig maps to the [oracle] section in rigour.toml.
type OracleConfig struct {
	// Command is the model CLI executable name.
	Command string `toml:"command"`

	// Model is the model identifier passed to the CLI.
	Model string `toml:"model"`

	// Effort controls the reasoning-effort level.
	Effort string `toml:"effort"`
}

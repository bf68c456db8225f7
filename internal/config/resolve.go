package config

import "strconv"

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the rigour.toml config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
// The Config field contains the merged values; Sources tracks where each came from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "oracle.model"
	Path    string                  // path to the config file used (empty if none)
}

// CLIOverrides captures flag values that can override configuration.
// Nil values mean "not set" (do not override). A *string that is nil
// means "not overridden"; a *string pointing to "" means "override to
// empty string."
type CLIOverrides struct {
	Environment  *string
	ScenesDir    *string
	Connection   *string
	MaxEdgeCases *int
	Timeout      *int
	Workers      *int
	OracleModel  *string
	OracleEffort *string
	NoExplore    *bool
	NoHealing    *bool
	NoJudgment   *bool
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// The fileConfig parameter is the parsed rigour.toml and may be nil when
// no file was found. Returns the fully-resolved config with source
// annotations.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}

	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	resolveFromDefaults(rc, defaults)
	if fileConfig != nil {
		resolveFromFile(rc, fileConfig)
	}
	resolveFromEnv(rc, envFn)
	resolveFromCLI(rc, overrides)

	return rc
}

// --- Layer 1: Defaults ---

func resolveFromDefaults(rc *ResolvedConfig, d *Config) {
	c := rc.Config

	setString(&c.Project.Name, d.Project.Name, "project.name", SourceDefault, rc.Sources)
	setString(&c.Project.Environment, d.Project.Environment, "project.environment", SourceDefault, rc.Sources)
	setString(&c.Project.ScenesDir, d.Project.ScenesDir, "project.scenes_dir", SourceDefault, rc.Sources)
	setString(&c.Project.ConnectionFile, d.Project.ConnectionFile, "project.connection_file", SourceDefault, rc.Sources)
	setString(&c.Project.ReportDir, d.Project.ReportDir, "project.report_dir", SourceDefault, rc.Sources)

	c.Pipeline = d.Pipeline
	rc.Sources["pipeline.disable_exploration"] = SourceDefault
	rc.Sources["pipeline.disable_healing"] = SourceDefault
	rc.Sources["pipeline.disable_judgment"] = SourceDefault
	rc.Sources["pipeline.max_edge_cases"] = SourceDefault
	rc.Sources["pipeline.sequential_edge_cases"] = SourceDefault

	c.Executor.TimeoutSeconds = d.Executor.TimeoutSeconds
	rc.Sources["executor.timeout"] = SourceDefault
	c.Executor.Workers = d.Executor.Workers
	rc.Sources["executor.workers"] = SourceDefault
	if len(d.Executor.Command) > 0 {
		c.Executor.Command = append([]string(nil), d.Executor.Command...)
	}
	rc.Sources["executor.command"] = SourceDefault
	setString(&c.Executor.ArtifactSuffix, d.Executor.ArtifactSuffix, "executor.artifact_suffix", SourceDefault, rc.Sources)

	setString(&c.Oracle.Command, d.Oracle.Command, "oracle.command", SourceDefault, rc.Sources)
	setString(&c.Oracle.Model, d.Oracle.Model, "oracle.model", SourceDefault, rc.Sources)
	setString(&c.Oracle.Effort, d.Oracle.Effort, "oracle.effort", SourceDefault, rc.Sources)
}

// --- Layer 2: File ---

// resolveFromFile merges the parsed file on top of the defaults. An empty
// or zero value in the file means "not set" and keeps the lower layer;
// the disable toggles OR in, so a file can only switch stages off.
func resolveFromFile(rc *ResolvedConfig, f *Config) {
	c := rc.Config

	mergeString(&c.Project.Name, f.Project.Name, "project.name", SourceFile, rc.Sources)
	mergeString(&c.Project.Environment, f.Project.Environment, "project.environment", SourceFile, rc.Sources)
	mergeString(&c.Project.ScenesDir, f.Project.ScenesDir, "project.scenes_dir", SourceFile, rc.Sources)
	mergeString(&c.Project.ConnectionFile, f.Project.ConnectionFile, "project.connection_file", SourceFile, rc.Sources)
	mergeString(&c.Project.ReportDir, f.Project.ReportDir, "project.report_dir", SourceFile, rc.Sources)

	if f.Pipeline.DisableExploration {
		c.Pipeline.DisableExploration = true
		rc.Sources["pipeline.disable_exploration"] = SourceFile
	}
	if f.Pipeline.DisableHealing {
		c.Pipeline.DisableHealing = true
		rc.Sources["pipeline.disable_healing"] = SourceFile
	}
	if f.Pipeline.DisableJudgment {
		c.Pipeline.DisableJudgment = true
		rc.Sources["pipeline.disable_judgment"] = SourceFile
	}
	if f.Pipeline.SequentialEdgeCases {
		c.Pipeline.SequentialEdgeCases = true
		rc.Sources["pipeline.sequential_edge_cases"] = SourceFile
	}
	if f.Pipeline.MaxEdgeCases > 0 {
		c.Pipeline.MaxEdgeCases = f.Pipeline.MaxEdgeCases
		rc.Sources["pipeline.max_edge_cases"] = SourceFile
	}

	if f.Executor.TimeoutSeconds > 0 {
		c.Executor.TimeoutSeconds = f.Executor.TimeoutSeconds
		rc.Sources["executor.timeout"] = SourceFile
	}
	if f.Executor.Workers > 0 {
		c.Executor.Workers = f.Executor.Workers
		rc.Sources["executor.workers"] = SourceFile
	}
	if len(f.Executor.Command) > 0 {
		c.Executor.Command = append([]string(nil), f.Executor.Command...)
		rc.Sources["executor.command"] = SourceFile
	}
	mergeString(&c.Executor.ArtifactSuffix, f.Executor.ArtifactSuffix, "executor.artifact_suffix", SourceFile, rc.Sources)

	mergeString(&c.Oracle.Command, f.Oracle.Command, "oracle.command", SourceFile, rc.Sources)
	mergeString(&c.Oracle.Model, f.Oracle.Model, "oracle.model", SourceFile, rc.Sources)
	mergeString(&c.Oracle.Effort, f.Oracle.Effort, "oracle.effort", SourceFile, rc.Sources)
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	RIGOUR_ENVIRONMENT     -> project.environment
//	RIGOUR_SCENES_DIR      -> project.scenes_dir
//	RIGOUR_CONNECTION_FILE -> project.connection_file
//	RIGOUR_MAX_EDGE_CASES  -> pipeline.max_edge_cases
//	RIGOUR_EXEC_TIMEOUT    -> executor.timeout
//	RIGOUR_EXEC_WORKERS    -> executor.workers
//	RIGOUR_ORACLE_MODEL    -> oracle.model
//	RIGOUR_ORACLE_EFFORT   -> oracle.effort
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) {
	c := rc.Config

	if val, ok := envFn("RIGOUR_ENVIRONMENT"); ok {
		c.Project.Environment = val
		rc.Sources["project.environment"] = SourceEnv
	}
	if val, ok := envFn("RIGOUR_SCENES_DIR"); ok {
		c.Project.ScenesDir = val
		rc.Sources["project.scenes_dir"] = SourceEnv
	}
	if val, ok := envFn("RIGOUR_CONNECTION_FILE"); ok {
		c.Project.ConnectionFile = val
		rc.Sources["project.connection_file"] = SourceEnv
	}
	if val, ok := envFn("RIGOUR_MAX_EDGE_CASES"); ok {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			c.Pipeline.MaxEdgeCases = n
			rc.Sources["pipeline.max_edge_cases"] = SourceEnv
		}
	}
	if val, ok := envFn("RIGOUR_EXEC_TIMEOUT"); ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.Executor.TimeoutSeconds = n
			rc.Sources["executor.timeout"] = SourceEnv
		}
	}
	if val, ok := envFn("RIGOUR_EXEC_WORKERS"); ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.Executor.Workers = n
			rc.Sources["executor.workers"] = SourceEnv
		}
	}
	if val, ok := envFn("RIGOUR_ORACLE_MODEL"); ok {
		c.Oracle.Model = val
		rc.Sources["oracle.model"] = SourceEnv
	}
	if val, ok := envFn("RIGOUR_ORACLE_EFFORT"); ok {
		c.Oracle.Effort = val
		rc.Sources["oracle.effort"] = SourceEnv
	}
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, o *CLIOverrides) {
	c := rc.Config

	if o.Environment != nil {
		c.Project.Environment = *o.Environment
		rc.Sources["project.environment"] = SourceCLI
	}
	if o.ScenesDir != nil {
		c.Project.ScenesDir = *o.ScenesDir
		rc.Sources["project.scenes_dir"] = SourceCLI
	}
	if o.Connection != nil {
		c.Project.ConnectionFile = *o.Connection
		rc.Sources["project.connection_file"] = SourceCLI
	}
	if o.MaxEdgeCases != nil {
		c.Pipeline.MaxEdgeCases = *o.MaxEdgeCases
		rc.Sources["pipeline.max_edge_cases"] = SourceCLI
	}
	if o.Timeout != nil {
		c.Executor.TimeoutSeconds = *o.Timeout
		rc.Sources["executor.timeout"] = SourceCLI
	}
	if o.Workers != nil {
		c.Executor.Workers = *o.Workers
		rc.Sources["executor.workers"] = SourceCLI
	}
	if o.OracleModel != nil {
		c.Oracle.Model = *o.OracleModel
		rc.Sources["oracle.model"] = SourceCLI
	}
	if o.OracleEffort != nil {
		c.Oracle.Effort = *o.OracleEffort
		rc.Sources["oracle.effort"] = SourceCLI
	}
	if o.NoExplore != nil && *o.NoExplore {
		c.Pipeline.DisableExploration = true
		rc.Sources["pipeline.disable_exploration"] = SourceCLI
	}
	if o.NoHealing != nil && *o.NoHealing {
		c.Pipeline.DisableHealing = true
		rc.Sources["pipeline.disable_healing"] = SourceCLI
	}
	if o.NoJudgment != nil && *o.NoJudgment {
		c.Pipeline.DisableJudgment = true
		rc.Sources["pipeline.disable_judgment"] = SourceCLI
	}
}

// --- Helpers ---

// setString unconditionally sets the target to the given value and records the source.
func setString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource) {
	*target = value
	sources[path] = source
}

// mergeString overwrites the target only if value is non-empty (non-zero string).
// For file-layer merging, an empty string in the file means "not set in file",
// so it does not override the default.
func mergeString(target *string, value string, path string, source ConfigSource, sources map[string]ConfigSource) {
	if value != "" {
		*target = value
		sources[path] = source
	}
}

package config

// NewDefaults returns a Config populated with all default values: a full
// pipeline (exploration, healing, judgment all on), the pytest runner,
// and an eight edge-case cap.
func NewDefaults() *Config {
	return &Config{
		Project: ProjectConfig{
			Environment:    "",
			ScenesDir:      "scenes",
			ConnectionFile: "connection.yaml",
			ReportDir:      ".rigour",
		},
		Pipeline: PipelineConfig{
			MaxEdgeCases: 8,
		},
		Executor: ExecutorConfig{
			TimeoutSeconds: 60,
			Workers:        4,
			Command:        []string{"python3", "-m", "pytest", "-v", "--tb=short"},
			ArtifactSuffix: ".py",
		},
		Oracle: OracleConfig{
			Command: "claude",
			Effort:  "medium",
		},
	}
}

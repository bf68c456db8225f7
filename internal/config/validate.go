package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "executor.timeout"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// validEfforts is the set of valid values for oracle effort.
var validEfforts = map[string]bool{
	"":       true,
	"low":    true,
	"medium": true,
	"high":   true,
}

// Validate checks the configuration for correctness and completeness.
// It performs structural validation, semantic validation, and unknown key
// detection.
//
// The meta parameter is the TOML metadata from BurntSushi/toml and may be
// nil when no file was loaded. Check HasErrors() on the result to
// determine if the config is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateProject(vr, &cfg.Project)
	validatePipeline(vr, &cfg.Pipeline)
	validateExecutor(vr, &cfg.Executor)
	validateOracle(vr, &cfg.Oracle)
	validateUnknownKeys(vr, meta)

	return vr
}

// validateProject checks the [project] section.
func validateProject(vr *ValidationResult, p *ProjectConfig) {
	// Warning: scenes_dir does not exist.
	if p.ScenesDir != "" {
		if _, err := os.Stat(p.ScenesDir); err != nil {
			addWarning(vr, "project.scenes_dir",
				fmt.Sprintf("directory %q does not exist", p.ScenesDir))
		}
	}

	// Warning: connection_file does not exist.
	if p.ConnectionFile != "" {
		if _, err := os.Stat(p.ConnectionFile); err != nil {
			addWarning(vr, "project.connection_file",
				fmt.Sprintf("file %q does not exist", p.ConnectionFile))
		}
	}
}

// validatePipeline checks the [pipeline] section.
func validatePipeline(vr *ValidationResult, p *PipelineConfig) {
	if p.MaxEdgeCases < 0 {
		addError(vr, "pipeline.max_edge_cases", "must not be negative")
	}
}

// validateExecutor checks the [executor] section.
func validateExecutor(vr *ValidationResult, e *ExecutorConfig) {
	if e.TimeoutSeconds < 0 {
		addError(vr, "executor.timeout", "must not be negative")
	}
	if e.Workers < 0 {
		addError(vr, "executor.workers", "must not be negative")
	}
	for i, part := range e.Command {
		if part == "" {
			addError(vr, fmt.Sprintf("executor.command[%d]", i),
				"must not be an empty string")
		}
	}
	if e.ArtifactSuffix != "" && !strings.HasPrefix(e.ArtifactSuffix, ".") {
		addError(vr, "executor.artifact_suffix",
			fmt.Sprintf("must start with a dot, got %q", e.ArtifactSuffix))
	}
}

// validateOracle checks the [oracle] section.
func validateOracle(vr *ValidationResult, o *OracleConfig) {
	if !validEfforts[o.Effort] {
		addError(vr, "oracle.effort",
			fmt.Sprintf("unrecognized effort %q; must be one of: low, medium, high, or empty", o.Effort))
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		path := strings.Join(key, ".")
		addWarning(vr, path, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}

// Package engine contains the execution substrate: test plans generated
// from scenes, the sandboxed executor that runs them, and the data types
// that flow out of an execution.
package engine

import "time"

// ExecutionStatus is the classified outcome of a test execution.
type ExecutionStatus string

const (
	StatusPassed  ExecutionStatus = "passed"
	StatusFailed  ExecutionStatus = "failed"
	StatusError   ExecutionStatus = "error"
	StatusSkipped ExecutionStatus = "skipped"
)

// TestPlan is a generated test ready for execution. Plans are derived, not
// hand-authored: the oracle (or the mechanical fallback) produces the
// Artifact from a scene, and the orchestrator owns the plan for the
// duration of one scene run.
type TestPlan struct {
	// ID is unique per generation.
	ID string `json:"id"`

	// SceneID references the scene this plan was derived from.
	SceneID string `json:"scene_id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Artifact is the generated executable test source. The engine treats
	// it as an opaque text blob; only the configured runner interprets it.
	Artifact string `json:"artifact"`

	// StepsCount is the number of scenario steps the plan covers.
	StepsCount int `json:"steps_count"`

	// EstimatedDuration is a rough execution time estimate, serialized as
	// nanoseconds (default Go behavior for time.Duration).
	EstimatedDuration time.Duration `json:"estimated_duration"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// ExecutionResult captures the outcome of executing one TestPlan. A result
// is created fresh per execution and never mutated after the executing
// call returns, except to attach a quality score into Metadata.
type ExecutionResult struct {
	PlanID string `json:"plan_id"`

	Status ExecutionStatus `json:"status"`

	// Passed is derived from the process exit code. It stays consistent
	// with Status: StatusPassed implies Passed == true.
	Passed bool `json:"passed"`

	// Duration is the wall-clock execution time, recorded regardless of
	// outcome. Serialized as nanoseconds.
	Duration time.Duration `json:"duration"`

	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`

	AssertionsPassed int `json:"assertions_passed"`
	AssertionsFailed int `json:"assertions_failed"`

	// ErrorMessage is the first FAILED/ERROR line from the captured
	// output, or a description of the timeout or spawn failure.
	ErrorMessage string `json:"error_message,omitempty"`

	// ResponseData holds structured response data emitted by the test,
	// when any. Quality judgment only runs when this is non-nil.
	ResponseData map[string]any `json:"response_data,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// Metadata may later hold a quality score under "quality_score"; an
	// explicit nil value there means judgment ran but had no data to
	// score, which is distinct from the key being absent.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Diagnosis is the oracle's root-cause analysis of a failed execution.
type Diagnosis struct {
	TestID string `json:"test_id"`

	RootCause string `json:"root_cause"`

	// FailureType classifies the failure: assertion, timeout, network,
	// syntax, error.
	FailureType string `json:"failure_type"`

	// IsFlaky is the oracle's guess whether the failure is intermittent.
	IsFlaky bool `json:"is_flaky"`

	SuggestedFixes []string `json:"suggested_fixes,omitempty"`
}

// JudgmentResult is the oracle's semantic quality verdict on a response.
type JudgmentResult struct {
	Passed bool `json:"passed"`

	// Score is in [0, 1].
	Score float64 `json:"score"`

	Reasoning   string   `json:"reasoning"`
	Suggestions []string `json:"suggestions,omitempty"`
}

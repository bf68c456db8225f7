// Package runner orchestrates the test pipeline: each scene is planned by
// the oracle, executed in the sandbox, explored for edge cases when it
// passes, healed when it fails, and judged for response quality. Scenes
// run sequentially; only the edge-case batch within a scene fans out.
package runner

import (
	"time"

	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/oracle"
	"github.com/rigour-dev/rigour/internal/scene"
)

// SceneResult aggregates everything the pipeline produced for one scene.
type SceneResult struct {
	Scene *scene.Scene `json:"scene"`

	// Plan is the primary test plan generated for the scene.
	Plan *engine.TestPlan `json:"plan"`

	// Primary is the execution result of the primary plan.
	Primary *engine.ExecutionResult `json:"primary"`

	// Suggestions are the oracle's edge-case proposals, present only when
	// exploration ran.
	Suggestions []oracle.EdgeCaseSuggestion `json:"suggestions,omitempty"`

	// EdgePlans and EdgeResults hold the explored edge-case batch, with
	// EdgeResults[i] corresponding to EdgePlans[i].
	EdgePlans   []*engine.TestPlan        `json:"edge_plans,omitempty"`
	EdgeResults []*engine.ExecutionResult `json:"edge_results,omitempty"`

	// Diagnosis is the oracle's analysis of a failed primary execution.
	Diagnosis *engine.Diagnosis `json:"diagnosis,omitempty"`

	// HealedPlan and Healed are set when self-healing produced and ran a
	// repaired plan. The primary result is retained alongside.
	HealedPlan *engine.TestPlan        `json:"healed_plan,omitempty"`
	Healed     *engine.ExecutionResult `json:"healed,omitempty"`

	// Judgment is the oracle's quality verdict, present only when judgment
	// ran and the final result carried response data.
	Judgment *engine.JudgmentResult `json:"judgment,omitempty"`

	// Passed is the scene's verdict: true when the primary execution
	// passed, or when a healed execution passed after a primary failure.
	Passed bool `json:"passed"`

	// Duration is the wall-clock time the scene spent in the pipeline.
	Duration time.Duration `json:"duration"`
}

// Final returns the execution result that represents the scene's outcome:
// the healed result when healing ran, otherwise the primary.
func (sr *SceneResult) Final() *engine.ExecutionResult {
	if sr.Healed != nil {
		return sr.Healed
	}
	return sr.Primary
}

// RunResult aggregates a full pipeline run over a set of scenes. Scene
// results appear in input order.
type RunResult struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Scenes     []*SceneResult `json:"scenes"`
}

// Duration is the wall-clock time of the whole run.
func (rr *RunResult) Duration() time.Duration {
	return rr.FinishedAt.Sub(rr.StartedAt)
}

// Failed reports whether any scene in the run failed.
func (rr *RunResult) Failed() bool {
	for _, sr := range rr.Scenes {
		if !sr.Passed {
			return true
		}
	}
	return false
}

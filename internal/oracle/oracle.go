// Package oracle provides the reasoning capabilities of the pipeline:
// turning scenes into executable test plans, proposing edge-case
// variations, diagnosing and repairing failures, parsing natural-language
// scenarios, and judging response quality. The default implementation
// shells out to a model CLI through the agent package and extracts
// structured JSON from the model's freeform output.
package oracle

import (
	"context"

	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/scene"
	"github.com/rigour-dev/rigour/internal/target"
)

// EdgeCaseSuggestion is a proposed variation of a scene that probes a
// boundary, an abuse path, or an unusual input.
type EdgeCaseSuggestion struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	Strategy         string `json:"strategy"`
	ExpectedBehavior string `json:"expected_behavior"`
	Priority         string `json:"priority"`
}

// Oracle is the reasoning interface consumed by the pipeline orchestrator.
//
// Plan, SuggestEdgeCases, and Diagnose are fail-soft: implementations
// return a safe default instead of an error when reasoning fails, so a
// degraded oracle degrades the pipeline rather than halting it. Heal and
// ParseScene surface errors so callers can skip or abort. Judge surfaces
// errors because a broken judge invalidates quality verdicts.
type Oracle interface {
	// Plan generates an executable test plan for a scene against the given
	// target connection. On reasoning failure it returns a mechanically
	// generated fallback plan, never an error.
	Plan(ctx context.Context, sc *scene.Scene, conn *target.Connection) *engine.TestPlan

	// SuggestEdgeCases proposes up to max edge-case variations of a scene.
	// On reasoning failure it returns an empty slice.
	SuggestEdgeCases(ctx context.Context, sc *scene.Scene, max int) []EdgeCaseSuggestion

	// Diagnose analyzes a failed execution and returns a root-cause
	// diagnosis. On reasoning failure it returns a generic diagnosis with
	// root cause "Unknown" and failure type "error".
	Diagnose(ctx context.Context, plan *engine.TestPlan, result *engine.ExecutionResult) *engine.Diagnosis

	// Heal produces a repaired version of a failed plan guided by its
	// diagnosis. Returns an error when no repair could be generated.
	Heal(ctx context.Context, plan *engine.TestPlan, diag *engine.Diagnosis) (*engine.TestPlan, error)

	// Judge evaluates the semantic quality of a response against the
	// scene's intent. Errors are surfaced, not swallowed.
	Judge(ctx context.Context, sc *scene.Scene, response map[string]any) (*engine.JudgmentResult, error)

	// ParseScene turns a natural-language scenario description into a
	// structured scene. Unparsable output is a hard error.
	ParseScene(ctx context.Context, text string) (*scene.Scene, error)
}

package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rigour-dev/rigour/internal/agent"
	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/jsonutil"
	"github.com/rigour-dev/rigour/internal/scene"
	"github.com/rigour-dev/rigour/internal/target"
)

// Compile-time check that CLIOracle implements Oracle.
var _ Oracle = (*CLIOracle)(nil)

// CLIOracle implements Oracle by prompting a model CLI through an Agent
// and extracting structured JSON from its freeform reply.
type CLIOracle struct {
	agent  agent.Agent
	logger *log.Logger
}

// NewCLIOracle creates a CLIOracle backed by the given agent. The logger
// may be nil.
func NewCLIOracle(a agent.Agent, logger *log.Logger) *CLIOracle {
	return &CLIOracle{agent: a, logger: logger}
}

// ask runs a prompt through the agent and decodes the structured JSON in
// its reply into out.
func (o *CLIOracle) ask(ctx context.Context, prompt string, out any) error {
	res, err := o.agent.Run(ctx, agent.RunOpts{Prompt: prompt})
	if err != nil {
		return fmt.Errorf("oracle: agent run: %w", err)
	}
	if res.WasRateLimited() {
		return fmt.Errorf("oracle: agent is rate limited (reset after %s)", res.RateLimit.ResetAfter)
	}
	if !res.Success() {
		return fmt.Errorf("oracle: agent exited with code %d: %s", res.ExitCode, tail(res.Stderr, 500))
	}
	if err := jsonutil.ExtractInto(res.Stdout, out); err != nil {
		return fmt.Errorf("oracle: decoding agent reply: %w", err)
	}
	return nil
}

// planReply is the JSON contract for plan generation.
type planReply struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	TestCode         string `json:"test_code"`
	EstimatedSeconds int    `json:"estimated_seconds"`
}

// Plan generates a test plan for a scene. Any reasoning failure is logged
// and answered with the mechanical fallback plan.
func (o *CLIOracle) Plan(ctx context.Context, sc *scene.Scene, conn *target.Connection) *engine.TestPlan {
	if conn == nil {
		conn = target.Default()
	}

	var reply planReply
	if err := o.ask(ctx, planPrompt(sc, conn), &reply); err != nil {
		o.warn("plan generation failed, using fallback", "scene_id", sc.ID, "err", err)
		return FallbackPlan(sc, conn)
	}
	if reply.TestCode == "" {
		o.warn("plan generation returned no test code, using fallback", "scene_id", sc.ID)
		return FallbackPlan(sc, conn)
	}

	title := reply.Title
	if title == "" {
		title = sc.Title
	}
	estimated := time.Duration(reply.EstimatedSeconds) * time.Second
	if estimated <= 0 {
		estimated = estimateDuration(sc)
	}

	return &engine.TestPlan{
		ID:                uuid.NewString(),
		SceneID:           sc.ID,
		Title:             title,
		Description:       reply.Description,
		Artifact:          reply.TestCode,
		StepsCount:        len(sc.Steps),
		EstimatedDuration: estimated,
		Metadata: map[string]any{
			"generator": "oracle",
		},
	}
}

// SuggestEdgeCases proposes up to max edge-case variations. Reasoning
// failures yield an empty slice.
func (o *CLIOracle) SuggestEdgeCases(ctx context.Context, sc *scene.Scene, max int) []EdgeCaseSuggestion {
	if max <= 0 {
		return nil
	}

	var suggestions []EdgeCaseSuggestion
	if err := o.ask(ctx, edgeCasePrompt(sc, max), &suggestions); err != nil {
		o.warn("edge-case suggestion failed", "scene_id", sc.ID, "err", err)
		return nil
	}
	if len(suggestions) > max {
		suggestions = suggestions[:max]
	}
	return suggestions
}

// diagnoseReply is the JSON contract for failure diagnosis.
type diagnoseReply struct {
	RootCause      string   `json:"root_cause"`
	FailureType    string   `json:"failure_type"`
	IsFlaky        bool     `json:"is_flaky"`
	SuggestedFixes []string `json:"suggested_fixes"`
}

// Diagnose analyzes a failed execution. Reasoning failures yield a
// generic diagnosis rather than an error.
func (o *CLIOracle) Diagnose(ctx context.Context, plan *engine.TestPlan, result *engine.ExecutionResult) *engine.Diagnosis {
	var reply diagnoseReply
	if err := o.ask(ctx, diagnosePrompt(plan, result), &reply); err != nil {
		o.warn("diagnosis failed, using generic diagnosis", "plan_id", plan.ID, "err", err)
		return &engine.Diagnosis{
			TestID:      plan.ID,
			RootCause:   "Unknown",
			FailureType: "error",
		}
	}

	if reply.RootCause == "" {
		reply.RootCause = "Unknown"
	}
	if reply.FailureType == "" {
		reply.FailureType = "error"
	}
	return &engine.Diagnosis{
		TestID:         plan.ID,
		RootCause:      reply.RootCause,
		FailureType:    reply.FailureType,
		IsFlaky:        reply.IsFlaky,
		SuggestedFixes: reply.SuggestedFixes,
	}
}

// healReply is the JSON contract for test repair.
type healReply struct {
	TestCode string `json:"test_code"`
	Changes  string `json:"changes"`
}

// Heal generates a repaired plan for a failed test. The healed plan's ID
// is the original's with a "-healed" suffix.
func (o *CLIOracle) Heal(ctx context.Context, plan *engine.TestPlan, diag *engine.Diagnosis) (*engine.TestPlan, error) {
	var reply healReply
	if err := o.ask(ctx, healPrompt(plan, diag), &reply); err != nil {
		return nil, err
	}
	if reply.TestCode == "" {
		return nil, fmt.Errorf("oracle: healing returned no test code for plan %s", plan.ID)
	}

	return &engine.TestPlan{
		ID:                plan.ID + "-healed",
		SceneID:           plan.SceneID,
		Title:             plan.Title + " (healed)",
		Description:       plan.Description,
		Artifact:          reply.TestCode,
		StepsCount:        plan.StepsCount,
		EstimatedDuration: plan.EstimatedDuration,
		Metadata: map[string]any{
			"generator":   "oracle",
			"healed_from": plan.ID,
			"changes":     reply.Changes,
		},
	}, nil
}

// Judge evaluates response quality against the scene's intent. Unlike the
// other capabilities, judgment errors are surfaced: a silently degraded
// judge would produce verdicts worth nothing.
func (o *CLIOracle) Judge(ctx context.Context, sc *scene.Scene, response map[string]any) (*engine.JudgmentResult, error) {
	var verdict engine.JudgmentResult
	if err := o.ask(ctx, judgePrompt(sc, response), &verdict); err != nil {
		return nil, err
	}

	if verdict.Score < 0 {
		verdict.Score = 0
	}
	if verdict.Score > 1 {
		verdict.Score = 1
	}
	return &verdict, nil
}

// sceneReply is the JSON contract for natural-language scene parsing.
type sceneReply struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Steps       []scene.Step      `json:"steps"`
	Assertions  []scene.Assertion `json:"assertions"`
	EdgeCases   []string          `json:"edge_cases"`
	Priority    scene.Priority    `json:"priority"`
}

// ParseScene structures a natural-language scenario description. Output
// that cannot be decoded or validated is a hard error.
func (o *CLIOracle) ParseScene(ctx context.Context, text string) (*scene.Scene, error) {
	var reply sceneReply
	if err := o.ask(ctx, parseScenePrompt(text), &reply); err != nil {
		return nil, err
	}
	if reply.Title == "" {
		return nil, fmt.Errorf("oracle: parsed scene has no title")
	}

	sc := scene.New(reply.Title, reply.Description)
	sc.Steps = reply.Steps
	sc.Assertions = reply.Assertions
	sc.EdgeCases = reply.EdgeCases
	if reply.Priority != "" {
		sc.Priority = reply.Priority
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("oracle: parsed scene is invalid: %w", err)
	}
	return sc, nil
}

func (o *CLIOracle) warn(msg string, keyvals ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, keyvals...)
	}
}

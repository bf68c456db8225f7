package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/scene"
	"github.com/rigour-dev/rigour/internal/target"
)

// outputTail bounds how much captured output is embedded in diagnosis and
// healing prompts.
const outputTail = 4000

// planPrompt asks the model for an executable pytest module covering the
// scene against the given connection. The reply contract is a single JSON
// object so the extractor can pull it out of surrounding prose.
func planPrompt(sc *scene.Scene, conn *target.Connection) string {
	var b strings.Builder

	b.WriteString("You are a senior QA engineer. Generate a complete, runnable pytest test module for the scenario below.\n\n")
	b.WriteString("## Scenario\n")
	b.WriteString(sceneBlock(sc))

	b.WriteString("\n## Target\n")
	fmt.Fprintf(&b, "- Base URL: %s\n", conn.BaseURL)
	if conn.AuthType != "" {
		fmt.Fprintf(&b, "- Auth: %s (credentials are pre-resolved into headers)\n", conn.AuthType)
	}
	if headers := conn.AllHeaders(); len(headers) > 0 {
		hj, _ := json.Marshal(headers)
		fmt.Fprintf(&b, "- Default headers: %s\n", hj)
	}

	b.WriteString(`
## Requirements
- Use the requests library. No fixtures, no conftest, one self-contained file.
- Every assertion in the scenario must be checked explicitly.
- Print structured response data as a final line: RESPONSE_DATA: {json}

## Reply format
Reply with a single JSON object and nothing else:
{"title": "...", "description": "...", "test_code": "<full python source>", "estimated_seconds": <int>}
`)
	return b.String()
}

// edgeCasePrompt asks the model for up to max edge-case variations.
func edgeCasePrompt(sc *scene.Scene, max int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an adversarial QA engineer. Propose up to %d edge cases for the scenario below: boundary values, malformed input, auth abuse, concurrency hazards, and anything the happy path misses.\n\n", max)
	b.WriteString("## Scenario\n")
	b.WriteString(sceneBlock(sc))

	if len(sc.EdgeCases) > 0 {
		b.WriteString("\n## Hints from the author\n")
		for _, hint := range sc.EdgeCases {
			fmt.Fprintf(&b, "- %s\n", hint)
		}
	}

	b.WriteString(`
## Reply format
Reply with a single JSON array and nothing else:
[{"name": "...", "description": "...", "strategy": "boundary|malformed|auth|concurrency|other", "expected_behavior": "...", "priority": "high|medium|low"}]
`)
	return b.String()
}

// diagnosePrompt asks the model for a root-cause analysis of a failed
// execution.
func diagnosePrompt(plan *engine.TestPlan, result *engine.ExecutionResult) string {
	var b strings.Builder

	b.WriteString("A generated test failed. Diagnose the root cause.\n\n")
	fmt.Fprintf(&b, "## Test: %s\n\n", plan.Title)
	b.WriteString("## Test source\n```python\n")
	b.WriteString(plan.Artifact)
	b.WriteString("\n```\n\n")

	fmt.Fprintf(&b, "## Outcome\n- Status: %s\n- Error: %s\n\n", result.Status, result.ErrorMessage)
	b.WriteString("## Captured output\n```\n")
	b.WriteString(tail(result.Stdout+result.Stderr, outputTail))
	b.WriteString("\n```\n")

	b.WriteString(`
## Reply format
Reply with a single JSON object and nothing else:
{"root_cause": "...", "failure_type": "assertion|timeout|network|syntax|error", "is_flaky": <bool>, "suggested_fixes": ["..."]}
`)
	return b.String()
}

// healPrompt asks the model for a repaired version of a failed test,
// guided by its diagnosis.
func healPrompt(plan *engine.TestPlan, diag *engine.Diagnosis) string {
	var b strings.Builder

	b.WriteString("Repair the failing test below. Keep its intent intact; fix only what the diagnosis identifies.\n\n")
	fmt.Fprintf(&b, "## Diagnosis\n- Root cause: %s\n- Failure type: %s\n", diag.RootCause, diag.FailureType)
	for _, fix := range diag.SuggestedFixes {
		fmt.Fprintf(&b, "- Suggested fix: %s\n", fix)
	}

	b.WriteString("\n## Failing test source\n```python\n")
	b.WriteString(plan.Artifact)
	b.WriteString("\n```\n")

	b.WriteString(`
## Reply format
Reply with a single JSON object and nothing else:
{"test_code": "<full repaired python source>", "changes": "..."}
`)
	return b.String()
}

// judgePrompt asks the model for a semantic quality verdict on a response.
func judgePrompt(sc *scene.Scene, response map[string]any) string {
	var b strings.Builder

	b.WriteString("Judge whether the response below semantically satisfies the scenario's intent, beyond mechanical assertions.\n\n")
	b.WriteString("## Scenario\n")
	b.WriteString(sceneBlock(sc))

	for _, a := range sc.Assertions {
		if a.Type == scene.AssertSemantic && a.SemanticPrompt != "" {
			fmt.Fprintf(&b, "\n## Semantic criterion\n%s\n", a.SemanticPrompt)
		}
	}

	rj, _ := json.MarshalIndent(response, "", "  ")
	b.WriteString("\n## Response\n```json\n")
	b.Write(rj)
	b.WriteString("\n```\n")

	b.WriteString(`
## Reply format
Reply with a single JSON object and nothing else:
{"passed": <bool>, "score": <float 0..1>, "reasoning": "...", "suggestions": ["..."]}
`)
	return b.String()
}

// parseScenePrompt asks the model to structure a natural-language
// scenario description.
func parseScenePrompt(text string) string {
	return fmt.Sprintf(`Convert the natural-language test scenario below into a structured scene.

## Scenario text
%s

## Reply format
Reply with a single JSON object and nothing else:
{"title": "...", "description": "...", "steps": [{"action": "VERB /path or prose", "input": {}, "expect": "..."}], "assertions": [{"type": "status_code|body_contains|body_schema|db_state|response_time|header_contains|semantic|custom", "target": "...", "expected": <value>}], "edge_cases": ["..."], "priority": "critical|high|medium|low"}
`, text)
}

// sceneBlock renders the shared scenario section used by several prompts.
func sceneBlock(sc *scene.Scene) string {
	var b strings.Builder

	fmt.Fprintf(&b, "- Title: %s\n", sc.Title)
	if sc.Description != "" {
		fmt.Fprintf(&b, "- Description: %s\n", sc.Description)
	}
	if sc.Actor != nil && sc.Actor.Role != "" {
		fmt.Fprintf(&b, "- Actor: %s\n", sc.Actor.Role)
	}
	for i, step := range sc.Steps {
		fmt.Fprintf(&b, "- Step %d: %s", i+1, step.Action)
		if step.Expect != "" {
			fmt.Fprintf(&b, " (expect: %s)", step.Expect)
		}
		if len(step.Input) > 0 {
			ij, _ := json.Marshal(step.Input)
			fmt.Fprintf(&b, " input=%s", ij)
		}
		b.WriteString("\n")
	}
	for _, a := range sc.Assertions {
		fmt.Fprintf(&b, "- Assert %s on %s", a.Type, a.Target)
		if a.Expected != nil {
			fmt.Fprintf(&b, " == %v", a.Expected)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// tail returns the last n bytes of s, cutting at a line boundary when
// possible.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[len(s)-n:]
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && idx < len(s)-1 {
		s = s[idx+1:]
	}
	return s
}

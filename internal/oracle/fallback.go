package oracle

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/scene"
	"github.com/rigour-dev/rigour/internal/target"
)

// httpMethods is the set of verbs recognized at the start of a step
// action, e.g. "POST /login".
var httpMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// FallbackPlan mechanically derives a test plan from a scene without any
// reasoning. Step actions of the form "VERB /path" become HTTP calls;
// status-code assertions become exact checks and everything else falls
// back to asserting the response is not a server error. The generated
// artifact follows the executor's default pytest convention.
func FallbackPlan(sc *scene.Scene, conn *target.Connection) *engine.TestPlan {
	if conn == nil {
		conn = target.Default()
	}

	artifact := renderFallbackArtifact(sc, conn)

	return &engine.TestPlan{
		ID:                uuid.NewString(),
		SceneID:           sc.ID,
		Title:             sc.Title,
		Description:       sc.Description,
		Artifact:          artifact,
		StepsCount:        len(sc.Steps),
		EstimatedDuration: estimateDuration(sc),
		Metadata: map[string]any{
			"generator": "fallback",
		},
	}
}

// estimateDuration assumes roughly two seconds per step, with a floor of
// two seconds for step-less scenes.
func estimateDuration(sc *scene.Scene) time.Duration {
	steps := len(sc.Steps)
	if steps == 0 {
		steps = 1
	}
	return time.Duration(steps) * 2 * time.Second
}

// renderFallbackArtifact emits a pytest module exercising the scene's
// steps with the requests library.
func renderFallbackArtifact(sc *scene.Scene, conn *target.Connection) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Generated test for scene: %s\n", sc.Title)
	b.WriteString("import json\n")
	b.WriteString("import requests\n\n")
	timeout := conn.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	fmt.Fprintf(&b, "BASE_URL = %s\n", pyString(conn.BaseURL))
	fmt.Fprintf(&b, "HEADERS = %s\n", pyDict(conn.AllHeaders()))
	fmt.Fprintf(&b, "TIMEOUT = %d\n\n\n", timeout)

	fmt.Fprintf(&b, "def test_%s():\n", pyIdent(sc.Title))
	fmt.Fprintf(&b, "    \"\"\"%s\"\"\"\n", strings.ReplaceAll(sc.Description, `"`, `'`))

	wroteCall := false
	for _, step := range sc.Steps {
		method, path, ok := parseAction(step.Action)
		if !ok {
			fmt.Fprintf(&b, "    # Step not mechanically executable: %s\n", step.Action)
			continue
		}
		wroteCall = true
		fmt.Fprintf(&b, "    # %s\n", step.Action)
		switch method {
		case "GET", "DELETE", "HEAD", "OPTIONS":
			fmt.Fprintf(&b, "    resp = requests.%s(BASE_URL + %s, params=%s, headers=HEADERS, timeout=TIMEOUT)\n",
				strings.ToLower(method), pyString(path), pyAnyDict(step.Input))
		default:
			fmt.Fprintf(&b, "    resp = requests.%s(BASE_URL + %s, json=%s, headers=HEADERS, timeout=TIMEOUT)\n",
				strings.ToLower(method), pyString(path), pyAnyDict(step.Input))
		}
	}

	if !wroteCall {
		fmt.Fprintf(&b, "    resp = requests.get(BASE_URL + \"/\", headers=HEADERS, timeout=TIMEOUT)\n")
	}

	wroteAssert := false
	for _, a := range sc.Assertions {
		switch a.Type {
		case scene.AssertStatusCode:
			fmt.Fprintf(&b, "    assert resp.status_code == %v, f\"expected %v, got {resp.status_code}\"\n",
				pyValue(a.Expected), pyValue(a.Expected))
			wroteAssert = true
		case scene.AssertBodyContains:
			fmt.Fprintf(&b, "    assert %s in resp.text\n", pyString(fmt.Sprintf("%v", a.Expected)))
			wroteAssert = true
		case scene.AssertResponseTime:
			fmt.Fprintf(&b, "    assert resp.elapsed.total_seconds() <= %v\n", pyValue(a.Expected))
			wroteAssert = true
		}
	}

	if !wroteAssert {
		b.WriteString("    assert resp.status_code < 500, \"response is a server error\"\n")
	}

	return b.String()
}

// parseAction splits "POST /login" into its verb and path. Returns false
// for actions that are not HTTP-shaped.
func parseAction(action string) (method, path string, ok bool) {
	fields := strings.Fields(strings.TrimSpace(action))
	if len(fields) < 2 {
		return "", "", false
	}
	verb := strings.ToUpper(fields[0])
	if !httpMethods[verb] {
		return "", "", false
	}
	if !strings.HasPrefix(fields[1], "/") {
		return "", "", false
	}
	return verb, fields[1], true
}

// pyIdent turns a free-text title into a valid Python identifier.
func pyIdent(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	ident := strings.Trim(b.String(), "_")
	if ident == "" {
		return "scenario"
	}
	return ident
}

// pyString renders a Go string as a Python string literal. JSON string
// encoding is valid Python for the characters we emit.
func pyString(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}

// pyDict renders a string map as a Python dict literal via JSON.
func pyDict(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	out, _ := json.Marshal(m)
	return string(out)
}

// pyAnyDict renders an arbitrary map as a Python dict literal via JSON.
// JSON true/false/null differ from Python literals, which requests
// tolerates for our usage since values are re-serialized as JSON anyway.
func pyAnyDict(m map[string]any) string {
	if len(m) == 0 {
		return "{}"
	}
	out, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	s := string(out)
	s = strings.ReplaceAll(s, "true", "True")
	s = strings.ReplaceAll(s, "false", "False")
	s = strings.ReplaceAll(s, "null", "None")
	return s
}

// pyValue renders a scalar assertion value for interpolation into the
// artifact.
func pyValue(v any) string {
	switch t := v.(type) {
	case string:
		return pyString(t)
	case nil:
		return "None"
	default:
		return fmt.Sprintf("%v", t)
	}
}

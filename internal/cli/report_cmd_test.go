package cli

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigour-dev/rigour/internal/engine"
	"github.com/rigour-dev/rigour/internal/report"
	"github.com/rigour-dev/rigour/internal/runner"
	"github.com/rigour-dev/rigour/internal/scene"
)

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(orig) })
	require.NoError(t, os.Chdir(dir))
}

func TestReportCmd_NoStoredReport(t *testing.T) {
	resetRootCmd(t)
	chdir(t, t.TempDir())

	var errBuf bytes.Buffer
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs([]string{"report"})

	code := Execute()
	assert.Equal(t, 1, code, "report without a stored run must fail")
}

func TestReportCmd_RendersLastRun(t *testing.T) {
	resetRootCmd(t)
	dir := t.TempDir()
	chdir(t, dir)

	rr := &runner.RunResult{
		StartedAt:  time.Now().UTC().Add(-time.Second),
		FinishedAt: time.Now().UTC(),
		Scenes: []*runner.SceneResult{
			{
				Scene:   scene.New("Health check", ""),
				Plan:    &engine.TestPlan{ID: "p1", Title: "Health check"},
				Primary: &engine.ExecutionResult{PlanID: "p1", Status: engine.StatusPassed, Passed: true},
				Passed:  true,
			},
		},
	}
	require.NoError(t, report.Save(".rigour", rr))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"report"})

	code := Execute()
	require.Equal(t, 0, code)

	out := buf.String()
	assert.Contains(t, out, "Last run")
	assert.Contains(t, out, "Health check")
	assert.Contains(t, out, "1/1 scenes passed")
}

func TestReportCmd_RejectsArgs(t *testing.T) {
	resetRootCmd(t)

	var errBuf bytes.Buffer
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs([]string{"report", "extra"})

	code := Execute()
	assert.Equal(t, 1, code)
}
